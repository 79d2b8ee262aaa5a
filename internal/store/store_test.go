package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mlm.db")
	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestOpenMigratesSchema(t *testing.T) {
	s := openTestStore(t)
	assert.True(t, s.DB().Migrator().HasTable(&Torrent{}))
	assert.True(t, s.DB().Migrator().HasTable(&SelectedTorrent{}))
	assert.True(t, s.DB().Migrator().HasTable(&schemaMeta{}))
}

func TestRWTxPersistsAcrossCalls(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.RWTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&Torrent{ID: "abc123", TitleSearch: "the great book", CreatedAt: time.Now()}).Error
	})
	require.NoError(t, err)

	got, err := s.TorrentByID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "the great book", got.TitleSearch)
}

func TestTryRWTxFailsWhileLocked(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.writeSem.Acquire(ctx, 1))
	defer s.writeSem.Release(1)

	err := s.TryRWTx(ctx, func(tx *gorm.DB) error { return nil })
	assert.ErrorIs(t, err, ErrWriteLocked)
}

func TestTorrentsByTitlePrefix(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.RWTx(ctx, func(tx *gorm.DB) error {
		rows := []Torrent{
			{ID: "a", TitleSearch: "the great book", CreatedAt: time.Now()},
			{ID: "b", TitleSearch: "the great book part 2", CreatedAt: time.Now()},
			{ID: "c", TitleSearch: "an unrelated title", CreatedAt: time.Now()},
		}
		for i := range rows {
			if err := tx.Create(&rows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	got, err := s.TorrentsByTitlePrefix(ctx, "the great book")
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestAppendEventInsideRWTx(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	tid := "abc123"

	err := s.RWTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&Torrent{ID: tid, CreatedAt: time.Now()}).Error; err != nil {
			return err
		}
		return AppendEvent(tx, &Event{ID: "ev1", Kind: EventGrabbed, TorrentID: &tid, Grabber: "autograb:fantasy"})
	})
	require.NoError(t, err)

	var ev Event
	require.NoError(t, s.DB().First(&ev, "id = ?", "ev1").Error)
	assert.Equal(t, EventGrabbed, ev.Kind)
	assert.False(t, ev.CreatedAt.IsZero())
}
