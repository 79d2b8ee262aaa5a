// Package libraryserver drives the optional library-server matcher pass:
// every linked Torrent that hasn't been registered with an external
// catalog (an audiobookshelf-style library server) gets one, and the
// catalog's id is persisted back onto the row for the Cleaner's
// delete_book hook to use later. Grounded on the same nil-adapter pattern
// internal/cleaner already uses for the same external collaborator.
package libraryserver

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sunerpy/mlm/internal/store"
)

// Adapter is the optional library-server integration. No concrete
// implementation ships in this repo; Runner.Run is a no-op whenever
// Adapter is nil.
type Adapter interface {
	// CreateMetadata registers a linked Torrent with the library server
	// and returns the catalog's id for it ("abs" in Torrent.ForeignIDs).
	CreateMetadata(ctx context.Context, t store.Torrent) (foreignID string, err error)
}

// Runner matches linked Torrent rows against the library server.
type Runner struct {
	store   *store.Store
	adapter Adapter
	log     *zap.Logger
}

func New(st *store.Store, adapter Adapter, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{store: st, adapter: adapter, log: log}
}

// Run registers every linked Torrent missing a catalog id. With no
// Adapter configured this is a no-op, not an error: folder-only and
// torrent-only setups never touch a library server at all.
func (r *Runner) Run(ctx context.Context) error {
	if r.adapter == nil {
		return nil
	}
	rows, err := r.store.LinkedTorrents(ctx)
	if err != nil {
		return fmt.Errorf("libraryserver: list linked torrents: %w", err)
	}
	for _, t := range rows {
		if t.ForeignIDs != nil && t.ForeignIDs["abs"] != "" {
			continue
		}
		id, err := r.adapter.CreateMetadata(ctx, t)
		if err != nil {
			r.log.Warn("libraryserver: create_metadata failed", zap.String("torrent", t.ID), zap.Error(err))
			continue
		}
		if id == "" {
			continue
		}
		if err := r.persistForeignID(ctx, t, id); err != nil {
			r.log.Warn("libraryserver: persist foreign id failed", zap.String("torrent", t.ID), zap.Error(err))
		}
	}
	return nil
}

func (r *Runner) persistForeignID(ctx context.Context, t store.Torrent, id string) error {
	return r.store.RWTx(ctx, func(tx *gorm.DB) error {
		foreign := map[string]string{}
		for k, v := range t.ForeignIDs {
			foreign[k] = v
		}
		foreign["abs"] = id
		return tx.Model(&store.Torrent{}).Where("id = ?", t.ID).Update("foreign_ids", foreign).Error
	})
}
