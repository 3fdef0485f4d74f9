package ownerindex_test

import (
	"context"
	"errors"
	"testing"

	"github.com/openfract/fractional/asset"
	"github.com/openfract/fractional/id"
	"github.com/openfract/fractional/ownerindex"
	"github.com/openfract/fractional/store/memory"
)

func newIndex() *ownerindex.Index {
	return ownerindex.New(memory.New())
}

func TestAddAndContains(t *testing.T) {
	ctx := context.Background()
	ix := newIndex()
	assetID := asset.ID(1)
	owner := id.NewAccountID()

	if err := ix.Add(ctx, assetID, owner); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	ok, err := ix.Contains(ctx, assetID, owner)
	if err != nil {
		t.Fatalf("Contains() error = %v", err)
	}
	if !ok {
		t.Error("Contains() = false, want true")
	}

	count, err := ix.Count(ctx, assetID)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestAddDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	ix := newIndex()
	assetID := asset.ID(1)
	owner := id.NewAccountID()

	if err := ix.Add(ctx, assetID, owner); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := ix.Add(ctx, assetID, owner); !errors.Is(err, ownerindex.ErrOwnerPresent) {
		t.Errorf("Add() duplicate error = %v, want ErrOwnerPresent", err)
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	ix := newIndex()

	if err := ix.Remove(ctx, asset.ID(1), id.NewAccountID()); err != nil {
		t.Errorf("Remove() absent owner error = %v, want nil", err)
	}
}

func TestRemoveLastOwner(t *testing.T) {
	ctx := context.Background()
	ix := newIndex()
	assetID := asset.ID(7)
	owner := id.NewAccountID()

	if err := ix.Add(ctx, assetID, owner); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := ix.Remove(ctx, assetID, owner); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	ok, err := ix.Contains(ctx, assetID, owner)
	if err != nil {
		t.Fatalf("Contains() error = %v", err)
	}
	if ok {
		t.Error("Contains() = true after removal, want false")
	}

	count, err := ix.Count(ctx, assetID)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}

	owners, err := ix.Owners(ctx, assetID)
	if err != nil {
		t.Fatalf("Owners() error = %v", err)
	}
	if len(owners) != 0 {
		t.Errorf("Owners() len = %d, want 0", len(owners))
	}
}

func TestMultiPageEnumeration(t *testing.T) {
	ctx := context.Background()
	ix := newIndex()
	assetID := asset.ID(3)

	// 55 owners span two pages at capacity 50.
	owners := make([]id.AccountID, 55)
	for i := range owners {
		owners[i] = id.NewAccountID()
		if err := ix.Add(ctx, assetID, owners[i]); err != nil {
			t.Fatalf("Add() owner %d error = %v", i, err)
		}
	}

	count, err := ix.Count(ctx, assetID)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 55 {
		t.Errorf("Count() = %d, want 55", count)
	}

	listed, err := ix.Owners(ctx, assetID)
	if err != nil {
		t.Fatalf("Owners() error = %v", err)
	}
	if len(listed) != 55 {
		t.Fatalf("Owners() len = %d, want 55", len(listed))
	}

	seen := make(map[id.AccountID]bool, len(listed))
	for _, o := range listed {
		seen[o] = true
	}
	for i, o := range owners {
		if !seen[o] {
			t.Errorf("owner %d missing from enumeration", i)
		}
	}
}

func TestRemoveBackfillsFromLastPage(t *testing.T) {
	ctx := context.Background()
	ix := newIndex()
	assetID := asset.ID(9)

	owners := make([]id.AccountID, 55)
	for i := range owners {
		owners[i] = id.NewAccountID()
		if err := ix.Add(ctx, assetID, owners[i]); err != nil {
			t.Fatalf("Add() owner %d error = %v", i, err)
		}
	}

	// Removing an owner from the first page pulls the tail entry of the
	// last page into its slot.
	if err := ix.Remove(ctx, assetID, owners[0]); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	count, err := ix.Count(ctx, assetID)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 54 {
		t.Errorf("Count() = %d, want 54", count)
	}

	ok, err := ix.Contains(ctx, assetID, owners[0])
	if err != nil {
		t.Fatalf("Contains() error = %v", err)
	}
	if ok {
		t.Error("removed owner still reported present")
	}

	// Every surviving owner remains present and removable.
	for i := 1; i < len(owners); i++ {
		ok, err := ix.Contains(ctx, assetID, owners[i])
		if err != nil {
			t.Fatalf("Contains() owner %d error = %v", i, err)
		}
		if !ok {
			t.Errorf("owner %d missing after unrelated removal", i)
		}
	}

	listed, err := ix.Owners(ctx, assetID)
	if err != nil {
		t.Fatalf("Owners() error = %v", err)
	}
	if len(listed) != 54 {
		t.Errorf("Owners() len = %d, want 54", len(listed))
	}
}

func TestDrainAcrossPages(t *testing.T) {
	ctx := context.Background()
	ix := newIndex()
	assetID := asset.ID(4)

	owners := make([]id.AccountID, 120)
	for i := range owners {
		owners[i] = id.NewAccountID()
		if err := ix.Add(ctx, assetID, owners[i]); err != nil {
			t.Fatalf("Add() owner %d error = %v", i, err)
		}
	}

	for i, o := range owners {
		if err := ix.Remove(ctx, assetID, o); err != nil {
			t.Fatalf("Remove() owner %d error = %v", i, err)
		}
	}

	count, err := ix.Count(ctx, assetID)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}

	listed, err := ix.Owners(ctx, assetID)
	if err != nil {
		t.Fatalf("Owners() error = %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("Owners() len = %d, want 0", len(listed))
	}

	// The drained index accepts fresh insertions.
	fresh := id.NewAccountID()
	if err := ix.Add(ctx, assetID, fresh); err != nil {
		t.Fatalf("Add() after drain error = %v", err)
	}
	ok, err := ix.Contains(ctx, assetID, fresh)
	if err != nil {
		t.Fatalf("Contains() error = %v", err)
	}
	if !ok {
		t.Error("fresh owner missing after drain and re-add")
	}
}

func TestAssetsOf(t *testing.T) {
	ctx := context.Background()
	ix := newIndex()
	owner := id.NewAccountID()

	for _, assetID := range []asset.ID{1, 2, 5} {
		if err := ix.Add(ctx, assetID, owner); err != nil {
			t.Fatalf("Add() asset %d error = %v", assetID, err)
		}
	}
	if err := ix.Remove(ctx, asset.ID(2), owner); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	assets, err := ix.AssetsOf(ctx, owner)
	if err != nil {
		t.Fatalf("AssetsOf() error = %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("AssetsOf() len = %d, want 2", len(assets))
	}
	for _, a := range assets {
		if a != 1 && a != 5 {
			t.Errorf("AssetsOf() contains unexpected asset %d", a)
		}
	}
}
