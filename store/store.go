// Package store defines the persistence interface for the fractional ledger.
package store

import (
	"context"
	"time"

	"github.com/openfract/fractional/asset"
	"github.com/openfract/fractional/id"
	"github.com/openfract/fractional/ownerindex"
	"github.com/openfract/fractional/trade"
)

// Store is the unified persistence interface. A single implementation backs
// all domains so that one handle can be passed to the ledger.
type Store interface {
	// Assets
	CreateAsset(ctx context.Context, a *asset.Asset) error
	GetAsset(ctx context.Context, assetID asset.ID) (*asset.Asset, error)
	UpdateAsset(ctx context.Context, a *asset.Asset) error
	AssetExists(ctx context.Context, assetID asset.ID) (bool, error)
	NextAssetID(ctx context.Context) (asset.ID, error)
	SetNextAssetID(ctx context.Context, next asset.ID) error

	// Balances
	GetBalance(ctx context.Context, owner id.AccountID, assetID asset.ID) (uint64, error)
	SetBalance(ctx context.Context, owner id.AccountID, assetID asset.ID, balance uint64) error
	DeleteBalance(ctx context.Context, owner id.AccountID, assetID asset.ID) error

	// Allowances
	GetAllowance(ctx context.Context, owner, operator id.AccountID, assetID asset.ID) (uint64, error)
	SetAllowance(ctx context.Context, owner, operator id.AccountID, assetID asset.ID, amount uint64) error

	// Operator approvals
	GetOperatorApproval(ctx context.Context, owner, operator id.AccountID) (bool, error)
	SetOperatorApproval(ctx context.Context, owner, operator id.AccountID, approved bool) error

	// Ownership index primitives
	GetOwnerPage(ctx context.Context, assetID asset.ID, page uint32) ([]id.AccountID, error)
	PutOwnerPage(ctx context.Context, assetID asset.ID, page uint32, owners []id.AccountID) error
	DeleteOwnerPage(ctx context.Context, assetID asset.ID, page uint32) error
	GetOwnerPageCount(ctx context.Context, assetID asset.ID) (uint32, error)
	SetOwnerPageCount(ctx context.Context, assetID asset.ID, count uint32) error
	GetLastActivePage(ctx context.Context, assetID asset.ID) (uint32, bool, error)
	SetLastActivePage(ctx context.Context, assetID asset.ID, page uint32) error
	GetOwnerLocation(ctx context.Context, assetID asset.ID, owner id.AccountID) (ownerindex.Location, bool, error)
	SetOwnerLocation(ctx context.Context, assetID asset.ID, owner id.AccountID, loc ownerindex.Location) error
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

	// Sale proposals
	CreateProposal(ctx context.Context, p *trade.SaleProposal) error
	GetProposal(ctx context.Context, seller, buyer id.AccountID, assetID asset.ID) (*trade.SaleProposal, error)
	DeleteProposal(ctx context.Context, seller, buyer id.AccountID, assetID asset.ID) error
	AddSellerSale(ctx context.Context, seller id.AccountID, ref trade.Ref) error
	RemoveSellerSale(ctx context.Context, seller id.AccountID, ref trade.Ref) error
	ListSellerSales(ctx context.Context, seller id.AccountID) ([]trade.Ref, error)
	AddBuyerOffer(ctx context.Context, buyer id.AccountID, ref trade.Ref) error
	RemoveBuyerOffer(ctx context.Context, buyer id.AccountID, ref trade.Ref) error
	ListBuyerOffers(ctx context.Context, buyer id.AccountID) ([]trade.Ref, error)

	// Trade history
	AppendTrade(ctx context.Context, rec *trade.Record) error
	GetTrade(ctx context.Context, tradeID uint64) (*trade.Record, error)
	TradeCount(ctx context.Context) (uint64, error)
	AddAssetTrade(ctx context.Context, assetID asset.ID, tradeID uint64) error
	ListAssetTrades(ctx context.Context, assetID asset.ID) ([]uint64, error)

	// Ledger metadata
	GetAdmin(ctx context.Context) (id.AccountID, error)
	SetAdmin(ctx context.Context, admin id.AccountID) error
	GetSettlementAccount(ctx context.Context) (id.AccountID, error)
	SetSettlementAccount(ctx context.Context, account id.AccountID) error
	GetContractURI(ctx context.Context) (string, error)
	SetContractURI(ctx context.Context, uri string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Config holds common store configuration.
type Config struct {
	// Path is the database file location for file-backed stores.
	Path string

	// Timeout bounds how long file-backed stores wait for the lock.
	Timeout time.Duration
}
