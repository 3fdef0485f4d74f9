// Package ownerindex maintains, per asset, the exact set of accounts holding
// a positive balance. Membership test, insertion and removal are O(1)
// regardless of holder count; full enumeration walks fixed-capacity pages in
// page order. Enumeration order is not significant — existence and count are
// the load-bearing guarantees.
package ownerindex

import (
	"context"
	"errors"

	"github.com/openfract/fractional/asset"
	"github.com/openfract/fractional/id"
)

// PageCapacity is the fixed number of owner slots per page.
const PageCapacity = 50

// ErrOwnerPresent is returned by Add when the owner is already indexed.
// Callers must only insert on a verified zero-to-positive balance transition,
// so hitting this is a programming error on the caller's side.
var ErrOwnerPresent = errors.New("ownerindex: owner already present")

// Location is the (page, slot) position of an owner inside an asset's page
// list. It exists so removal can find the entry without scanning.
type Location struct {
	Page uint32 `json:"page"`
	Slot uint32 `json:"slot"`
}

// Store is the storage surface the index operates over. The unified
// store.Store implements it.
type Store interface {
	GetOwnerPage(ctx context.Context, assetID asset.ID, page uint32) ([]id.AccountID, error)
	PutOwnerPage(ctx context.Context, assetID asset.ID, page uint32, owners []id.AccountID) error
	DeleteOwnerPage(ctx context.Context, assetID asset.ID, page uint32) error
	GetOwnerPageCount(ctx context.Context, assetID asset.ID) (uint32, error)
	SetOwnerPageCount(ctx context.Context, assetID asset.ID, count uint32) error
	GetLastActivePage(ctx context.Context, assetID asset.ID) (uint32, bool, error)
	SetLastActivePage(ctx context.Context, assetID asset.ID, page uint32) error
	GetOwnerLocation(ctx context.Context, assetID asset.ID, owner id.AccountID) (Location, bool, error)
	SetOwnerLocation(ctx context.Context, assetID asset.ID, owner id.AccountID, loc Location) error
	DeleteOwnerLocation(ctx context.Context, assetID asset.ID, owner id.AccountID) error
	GetOwnerCount(ctx context.Context, assetID asset.ID) (uint64, error)
	SetOwnerCount(ctx context.Context, assetID asset.ID, count uint64) error
	HasAssetOwner(ctx context.Context, assetID asset.ID, owner id.AccountID) (bool, error)
	SetAssetOwner(ctx context.Context, assetID asset.ID, owner id.AccountID) error
	DeleteAssetOwner(ctx context.Context, assetID asset.ID, owner id.AccountID) error
	HasOwnerAsset(ctx context.Context, owner id.AccountID, assetID asset.ID) (bool, error)
	SetOwnerAsset(ctx context.Context, owner id.AccountID, assetID asset.ID) error
	DeleteOwnerAsset(ctx context.Context, owner id.AccountID, assetID asset.ID) error
	ListOwnerAssets(ctx context.Context, owner id.AccountID) ([]asset.ID, error)
}
