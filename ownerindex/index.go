package ownerindex

import (
	"context"
	"fmt"

	"github.com/openfract/fractional/asset"
	"github.com/openfract/fractional/id"
)

// Index is the paginated owner set. Pages are kept dense: removal back-fills
// the vacated slot with the last occupied slot of the last page, so every
// page except the last is always full and insertion only ever appends.
type Index struct {
	s Store
}

// New creates an Index over the given store.
func New(s Store) *Index {
	return &Index{s: s}
}

// Add inserts an owner into the asset's owner set. The caller must have
// verified a zero-to-positive balance transition; adding a present owner
// returns ErrOwnerPresent.
func (ix *Index) Add(ctx context.Context, assetID asset.ID, owner id.AccountID) error {
	present, err := ix.s.HasAssetOwner(ctx, assetID, owner)
	if err != nil {
		return err
	}
	if present {
		return ErrOwnerPresent
	}

	if err := ix.s.SetAssetOwner(ctx, assetID, owner); err != nil {
		return err
	}
	if err := ix.s.SetOwnerAsset(ctx, owner, assetID); err != nil {
		return err
	}

	count, err := ix.s.GetOwnerCount(ctx, assetID)
	if err != nil {
		return err
	}
	if err := ix.s.SetOwnerCount(ctx, assetID, count+1); err != nil {
		return err
	}

	pageCount, err := ix.s.GetOwnerPageCount(ctx, assetID)
	if err != nil {
		return err
	}
	if pageCount == 0 {
		return ix.appendNewPage(ctx, assetID, owner, 0)
	}

	target := pageCount - 1
	if hint, ok, hintErr := ix.s.GetLastActivePage(ctx, assetID); hintErr != nil {
		return hintErr
	} else if ok && hint < pageCount {
		target = hint
	}

	page, err := ix.s.GetOwnerPage(ctx, assetID, target)
	if err != nil {
		return err
	}
	if len(page) >= PageCapacity {
		return ix.appendNewPage(ctx, assetID, owner, pageCount)
	}

	page = append(page, owner)
	if err := ix.s.PutOwnerPage(ctx, assetID, target, page); err != nil {
		return err
	}
	return ix.s.SetOwnerLocation(ctx, assetID, owner, Location{Page: target, Slot: uint32(len(page) - 1)})
}

// appendNewPage allocates page number page holding only owner, advancing the
// page count and the insertion hint.
func (ix *Index) appendNewPage(ctx context.Context, assetID asset.ID, owner id.AccountID, page uint32) error {
	if err := ix.s.PutOwnerPage(ctx, assetID, page, []id.AccountID{owner}); err != nil {
		return err
	}
	if err := ix.s.SetOwnerPageCount(ctx, assetID, page+1); err != nil {
		return err
	}
	if err := ix.s.SetLastActivePage(ctx, assetID, page); err != nil {
		return err
	}
	return ix.s.SetOwnerLocation(ctx, assetID, owner, Location{Page: page, Slot: 0})
}

// Remove deletes an owner from the asset's owner set. Removing an absent
// owner is a guarded no-op.
func (ix *Index) Remove(ctx context.Context, assetID asset.ID, owner id.AccountID) error {
	present, err := ix.s.HasAssetOwner(ctx, assetID, owner)
	if err != nil {
		return err
	}
	if !present {
		return nil
	}

	if err := ix.s.DeleteAssetOwner(ctx, assetID, owner); err != nil {
		return err
	}
	if err := ix.s.DeleteOwnerAsset(ctx, owner, assetID); err != nil {
		return err
	}

	count, err := ix.s.GetOwnerCount(ctx, assetID)
	if err != nil {
		return err
	}
	if count > 0 {
		if err := ix.s.SetOwnerCount(ctx, assetID, count-1); err != nil {
			return err
		}
	}

	loc, ok, err := ix.s.GetOwnerLocation(ctx, assetID, owner)
	if err != nil {
		return err
	}
	if !ok {
		// Existence flag without a location would mean the two got out of
		// sync; the flag is already cleared, nothing left to compact.
		return nil
	}

	pageCount, err := ix.s.GetOwnerPageCount(ctx, assetID)
	if err != nil {
		return err
	}
	if pageCount == 0 {
		return fmt.Errorf("ownerindex: asset %d has a located owner but no pages", assetID)
	}
	last := pageCount - 1

	lastPage, err := ix.s.GetOwnerPage(ctx, assetID, last)
	if err != nil {
		return err
	}
	if len(lastPage) == 0 {
		return fmt.Errorf("ownerindex: asset %d last page %d is empty", assetID, last)
	}

	tail := lastPage[len(lastPage)-1]
	lastPage = lastPage[:len(lastPage)-1]

	// Back-fill the vacated slot with the tail entry unless the entry being
	// removed was itself the tail.
	if !(loc.Page == last && int(loc.Slot) == len(lastPage)) {
		if loc.Page == last {
			lastPage[loc.Slot] = tail
		} else {
			target, pageErr := ix.s.GetOwnerPage(ctx, assetID, loc.Page)
			if pageErr != nil {
				return pageErr
			}
			if int(loc.Slot) >= len(target) {
				return fmt.Errorf("ownerindex: asset %d location %v out of range", assetID, loc)
			}
			target[loc.Slot] = tail
			if err := ix.s.PutOwnerPage(ctx, assetID, loc.Page, target); err != nil {
				return err
			}
		}
		if err := ix.s.SetOwnerLocation(ctx, assetID, tail, loc); err != nil {
			return err
		}
	}

	if len(lastPage) == 0 {
		if err := ix.s.DeleteOwnerPage(ctx, assetID, last); err != nil {
			return err
		}
		if err := ix.s.SetOwnerPageCount(ctx, assetID, last); err != nil {
			return err
		}
		if last > 0 {
			if err := ix.s.SetLastActivePage(ctx, assetID, last-1); err != nil {
				return err
			}
		}
	} else {
		if err := ix.s.PutOwnerPage(ctx, assetID, last, lastPage); err != nil {
			return err
		}
		if err := ix.s.SetLastActivePage(ctx, assetID, last); err != nil {
			return err
		}
	}

	return ix.s.DeleteOwnerLocation(ctx, assetID, owner)
}

// Contains reports whether the owner is indexed for the asset.
func (ix *Index) Contains(ctx context.Context, assetID asset.ID, owner id.AccountID) (bool, error) {
	return ix.s.HasAssetOwner(ctx, assetID, owner)
}

// Count returns the number of owners indexed for the asset.
func (ix *Index) Count(ctx context.Context, assetID asset.ID) (uint64, error) {
	return ix.s.GetOwnerCount(ctx, assetID)
}

// Owners enumerates every indexed owner for the asset across all pages.
func (ix *Index) Owners(ctx context.Context, assetID asset.ID) ([]id.AccountID, error) {
	pageCount, err := ix.s.GetOwnerPageCount(ctx, assetID)
	if err != nil {
		return nil, err
	}

	owners := make([]id.AccountID, 0, int(pageCount)*PageCapacity)
	for page := uint32(0); page < pageCount; page++ {
		entries, err := ix.s.GetOwnerPage(ctx, assetID, page)
		if err != nil {
			return nil, err
		}
		owners = append(owners, entries...)
	}
	return owners, nil
}

// AssetsOf lists the assets for which the owner is indexed.
func (ix *Index) AssetsOf(ctx context.Context, owner id.AccountID) ([]asset.ID, error) {
	return ix.s.ListOwnerAssets(ctx, owner)
}
