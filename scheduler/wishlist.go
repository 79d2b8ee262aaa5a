package scheduler

import (
	"context"
	"fmt"

	"github.com/sunerpy/mlm/app"
	"github.com/sunerpy/mlm/config"
	"github.com/sunerpy/mlm/internal/candidate"
	"github.com/sunerpy/mlm/internal/store"
)

// runWishlistImport drives scheduler task (g): ensure the List row backing
// src exists, then run Path B for every ListItem still ItemWanted.
func runWishlistImport(ctx context.Context, svc *app.Services, kind string, src config.ListSource) error {
	listID := kind + ":" + src.Name
	if err := svc.Store.UpsertList(ctx, listID, src.Name, kind); err != nil {
		return fmt.Errorf("scheduler: upsert list %s: %w", listID, err)
	}

	items, err := svc.Store.WantedListItems(ctx, listID)
	if err != nil {
		return fmt.Errorf("scheduler: wanted items for %s: %w", listID, err)
	}

	sel := svc.CandidateSelector()
	audioTypes, ebookTypes := svc.Config.Filetypes.Audio, svc.Config.Filetypes.Ebook
	var firstErr error
	for _, it := range items {
		wi := toWishlistItem(it)
		if err := sel.RunWishlistImport(ctx, wi, audioTypes, ebookTypes); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("scheduler: wishlist item %q: %w", it.Title, err)
		}
	}
	return firstErr
}

func toWishlistItem(it store.ListItem) candidate.WishlistItem {
	return candidate.WishlistItem{
		ID:        it.ID,
		ListID:    it.ListID,
		Title:     it.Title,
		Authors:   it.Authors,
		MediaType: it.MediaType,
	}
}
