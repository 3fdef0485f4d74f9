package trade

import (
	"context"

	"github.com/openfract/fractional/asset"
	"github.com/openfract/fractional/id"
)

// ProposalStore holds active sale proposals and the per-user convenience
// indexes. The indexes must always match the set of stored proposals.
type ProposalStore interface {
	Create(ctx context.Context, p *SaleProposal) error
	Get(ctx context.Context, seller, buyer id.AccountID, assetID asset.ID) (*SaleProposal, error)
	Delete(ctx context.Context, seller, buyer id.AccountID, assetID asset.ID) error

	AddSellerSale(ctx context.Context, seller id.AccountID, ref Ref) error
	RemoveSellerSale(ctx context.Context, seller id.AccountID, ref Ref) error
	ListSellerSales(ctx context.Context, seller id.AccountID) ([]Ref, error)

	AddBuyerOffer(ctx context.Context, buyer id.AccountID, ref Ref) error
	RemoveBuyerOffer(ctx context.Context, buyer id.AccountID, ref Ref) error
	ListBuyerOffers(ctx context.Context, buyer id.AccountID) ([]Ref, error)
}

// HistoryStore appends and reads the immutable trade history.
type HistoryStore interface {
	// Append assigns the next sequential trade id to rec.ID and stores the
	// record. Ids start at 1.
	Append(ctx context.Context, rec *Record) error
	Get(ctx context.Context, tradeID uint64) (*Record, error)
	Count(ctx context.Context) (uint64, error)

	AddAssetTrade(ctx context.Context, assetID asset.ID, tradeID uint64) error
	ListAssetTrades(ctx context.Context, assetID asset.ID) ([]uint64, error)
}
