package trade

import (
	"time"

	"github.com/openfract/fractional/asset"
	"github.com/openfract/fractional/id"
	"github.com/openfract/fractional/types"
)

// SaleProposal is an offer from a seller to a specific buyer to exchange
// TokenAmount units of an asset for Price settlement-currency units.
// Proposals are keyed by (seller, buyer, asset): at most one active proposal
// exists per triple. Terms are immutable after creation; the proposal is
// deleted on completion, withdrawal or expiry cleanup.
type SaleProposal struct {
	Seller      id.AccountID `json:"seller"`
	Buyer       id.AccountID `json:"buyer"`
	AssetID     asset.ID     `json:"asset_id"`
	TokenAmount uint64       `json:"token_amount"`
	Price       types.Amount `json:"price"`
	Active      bool         `json:"active"`
	CreatedAt   time.Time    `json:"created_at"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// Expired reports whether the proposal's expiry has passed at the given time.
func (p *SaleProposal) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Ref is a (counterparty, asset) pair kept in the per-user proposal indexes:
// a seller's outgoing list holds (buyer, asset) pairs and a buyer's incoming
// list holds (seller, asset) pairs. The indexes are query conveniences only
// and carry no authorization weight.
type Ref struct {
	Counterparty id.AccountID `json:"counterparty"`
	AssetID      asset.ID     `json:"asset_id"`
}

// Record is an append-only trade-history entry. Records are numbered
// sequentially from 1 and are never mutated or deleted.
type Record struct {
	ID          uint64       `json:"id"`
	Seller      id.AccountID `json:"seller"`
	Buyer       id.AccountID `json:"buyer"`
	AssetID     asset.ID     `json:"asset_id"`
	TokenAmount uint64       `json:"token_amount"`
	Price       types.Amount `json:"price"`
	ExecutedAt  time.Time    `json:"executed_at"`
}
