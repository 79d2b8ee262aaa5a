package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned by lookups that find no matching row.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicateKey is returned when an insert violates a primary-key or
// unique-index constraint (e.g. re-selecting an already-selected mam_id).
type ErrDuplicateKey struct {
	Table string
	Key   string
}

func (e *ErrDuplicateKey) Error() string {
	return fmt.Sprintf("store: duplicate key %q in %s", e.Key, e.Table)
}

// classifyWriteErr turns a raw gorm/sqlite error into a typed store error
// where one is known, and passes everything else through unchanged.
func classifyWriteErr(table, key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &ErrDuplicateKey{Table: table, Key: key}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
