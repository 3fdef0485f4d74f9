package fractional

import (
	"context"
	"fmt"
	"time"

	"github.com/openfract/fractional/asset"
	"github.com/openfract/fractional/id"
	"github.com/openfract/fractional/trade"
	"github.com/openfract/fractional/types"
)

// ──────────────────────────────────────────────────
// Settlement Protocol
// ──────────────────────────────────────────────────

// Propose opens a sale proposal from seller to buyer for the given asset.
// Proposing immediately raises the seller's allowance to the settlement
// account by the token amount, additively on top of any existing grant, so
// that Finish needs no further signature from the seller.
func (l *Ledger) Propose(ctx context.Context, seller, buyer id.AccountID, assetID asset.ID, tokenAmount uint64, price types.Amount, duration time.Duration) error {
	if tokenAmount == 0 || price.IsZero() {
		return ErrInvalidAmount
	}
	if seller == buyer {
		return ErrSelfTransfer
	}
	if buyer.IsNil() {
		return ValidationError{Field: "buyer", Message: "account is required"}
	}
	if duration < l.minSaleDuration || duration > l.maxSaleDuration {
		return fmt.Errorf("%w: %s not in [%s, %s]", ErrDurationOutOfRange, duration, l.minSaleDuration, l.maxSaleDuration)
	}

	if err := l.requireAuth(ctx, seller); err != nil {
		return err
	}

	exists, err := l.store.AssetExists(ctx, assetID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrAssetNotFound
	}

	balance, err := l.store.GetBalance(ctx, seller, assetID)
	if err != nil {
		return err
	}
	if balance < tokenAmount {
		return ErrInsufficientBalance
	}

	if _, err := l.store.GetProposal(ctx, seller, buyer, assetID); err == nil {
		return ErrProposalExists
	} else if !IsNotFound(err) {
		return err
	}

	settlement, err := l.store.GetSettlementAccount(ctx)
	if err != nil {
		return err
	}

	current, err := l.store.GetAllowance(ctx, seller, settlement, assetID)
	if err != nil {
		return err
	}
	granted, err := addChecked(current, tokenAmount)
	if err != nil {
		return err
	}
	if err := l.store.SetAllowance(ctx, seller, settlement, assetID, granted); err != nil {
		return err
	}

	now := l.now()
	p := &trade.SaleProposal{
		Seller:      seller,
		Buyer:       buyer,
		AssetID:     assetID,
		TokenAmount: tokenAmount,
		Price:       price,
		Active:      true,
		CreatedAt:   now,
		ExpiresAt:   now.Add(duration),
	}
	if err := l.store.CreateProposal(ctx, p); err != nil {
		return err
	}
	if err := l.store.AddSellerSale(ctx, seller, trade.Ref{Counterparty: buyer, AssetID: assetID}); err != nil {
		return err
	}
	if err := l.store.AddBuyerOffer(ctx, buyer, trade.Ref{Counterparty: seller, AssetID: assetID}); err != nil {
		return err
	}

	l.logger.Info("sale proposed",
		"seller", seller,
		"buyer", buyer,
		"asset_id", assetID,
		"token_amount", tokenAmount,
		"price", p.Price,
		"expires_at", p.ExpiresAt,
	)
	l.plugins.EmitProposalCreated(ctx, p)
	return nil
}

// Finish completes a sale. The caller must be the buyer named in the
// proposal and must restate the expected token amount and price; any
// divergence from the stored terms fails with ErrTermsMismatch before a
// single unit moves. The token leg runs first through the settlement
// account's allowance, then the payment leg in settlement currency. If the
// payment leg fails, the token leg is reversed so no partial trade survives.
func (l *Ledger) Finish(ctx context.Context, buyer, seller id.AccountID, assetID asset.ID, expectedTokens uint64, expectedPrice types.Amount) error {
	if err := l.requireAuth(ctx, buyer); err != nil {
		return err
	}

	p, err := l.store.GetProposal(ctx, seller, buyer, assetID)
	if err != nil {
		return err
	}
	if p.Buyer != buyer || p.Seller != seller {
		return ErrWrongCounterparty
	}
	if !p.Active {
		return ErrProposalNotActive
	}
	if p.Expired(l.now()) {
		return ErrProposalExpired
	}
	if expectedTokens != p.TokenAmount || !expectedPrice.Equal(p.Price) {
		return ErrTermsMismatch
	}

	settlement, err := l.store.GetSettlementAccount(ctx)
	if err != nil {
		return err
	}

	// Re-verify every precondition at completion time.
	sellerBalance, err := l.store.GetBalance(ctx, seller, assetID)
	if err != nil {
		return err
	}
	if sellerBalance < p.TokenAmount {
		return ErrInsufficientBalance
	}
	buyerFunds, err := l.currency.Balance(ctx, buyer)
	if err != nil {
		return err
	}
	if buyerFunds.LessThan(p.Price) {
		return ErrInsufficientFunds
	}
	allowance, err := l.store.GetAllowance(ctx, seller, settlement, assetID)
	if err != nil {
		return err
	}
	if allowance < p.TokenAmount {
		return ErrInsufficientAllowance
	}

	// Token leg. The grant raised at proposal time is consumed directly:
	// blanket operator approval must not leave it dangling.
	if err := l.store.SetAllowance(ctx, seller, settlement, assetID, allowance-p.TokenAmount); err != nil {
		return err
	}
	restore := func(ctx context.Context) error {
		current, err := l.store.GetAllowance(ctx, seller, settlement, assetID)
		if err != nil {
			return err
		}
		restored, err := addChecked(current, p.TokenAmount)
		if err != nil {
			return err
		}
		return l.store.SetAllowance(ctx, seller, settlement, assetID, restored)
	}
	if err := l.transferInternal(ctx, seller, buyer, assetID, p.TokenAmount); err != nil {
		if restoreErr := restore(ctx); restoreErr != nil {
			return fmt.Errorf("%w (allowance restore failed: %v)", err, restoreErr)
		}
		return err
	}

	// Payment leg. On failure, reverse the token leg.
	if err := l.currency.Transfer(ctx, buyer, seller, p.Price); err != nil {
		if revErr := l.transferInternal(ctx, buyer, seller, assetID, p.TokenAmount); revErr != nil {
			return fmt.Errorf("payment failed and token reversal failed: %v (payment: %w)", revErr, err)
		}
		if restoreErr := restore(ctx); restoreErr != nil {
			return fmt.Errorf("payment failed and allowance restore failed: %v (payment: %w)", restoreErr, err)
		}
		return fmt.Errorf("payment leg: %w", err)
	}

	// Clear the proposal and its index entries before history is appended,
	// so a reentrant call cannot observe a completed trade with a live
	// proposal record.
	if err := l.store.DeleteProposal(ctx, seller, buyer, assetID); err != nil {
		return err
	}
	if err := l.store.RemoveSellerSale(ctx, seller, trade.Ref{Counterparty: buyer, AssetID: assetID}); err != nil {
		return err
	}
	if err := l.store.RemoveBuyerOffer(ctx, buyer, trade.Ref{Counterparty: seller, AssetID: assetID}); err != nil {
		return err
	}

	rec := &trade.Record{
		Seller:      seller,
		Buyer:       buyer,
		AssetID:     assetID,
		TokenAmount: p.TokenAmount,
		Price:       p.Price,
		ExecutedAt:  l.now(),
	}
	if err := l.store.AppendTrade(ctx, rec); err != nil {
		return err
	}
	if err := l.store.AddAssetTrade(ctx, assetID, rec.ID); err != nil {
		return err
	}

	l.logger.Info("trade completed",
		"trade_id", rec.ID,
		"seller", seller,
		"buyer", buyer,
		"asset_id", assetID,
		"token_amount", rec.TokenAmount,
		"price", rec.Price,
	)
	l.plugins.EmitTradeCompleted(ctx, rec)
	return nil
}

// Withdraw cancels a proposal. Only the seller may withdraw. The allowance
// granted at proposal time is taken back, floored at zero in case it was
// reduced independently since.
func (l *Ledger) Withdraw(ctx context.Context, seller, buyer id.AccountID, assetID asset.ID) error {
	if err := l.requireAuth(ctx, seller); err != nil {
		return err
	}

	p, err := l.store.GetProposal(ctx, seller, buyer, assetID)
	if err != nil {
		return err
	}
	if p.Seller != seller {
		return ErrWrongCounterparty
	}

	if err := l.reverseAllowanceGrant(ctx, seller, assetID, p.TokenAmount); err != nil {
		return err
	}
	if err := l.removeProposal(ctx, seller, buyer, assetID); err != nil {
		return err
	}

	l.logger.Info("sale withdrawn", "seller", seller, "buyer", buyer, "asset_id", assetID)
	l.plugins.EmitProposalWithdrawn(ctx, seller, buyer, assetID)
	return nil
}

// CleanupExpired deletes an expired proposal and reverses its allowance
// grant. Anyone may call it; there is nothing to gain from cleaning up a
// proposal that has already run out.
func (l *Ledger) CleanupExpired(ctx context.Context, seller, buyer id.AccountID, assetID asset.ID) error {
	p, err := l.store.GetProposal(ctx, seller, buyer, assetID)
	if err != nil {
		return err
	}
	if !p.Expired(l.now()) {
		return ErrProposalNotExpired
	}

	if err := l.reverseAllowanceGrant(ctx, seller, assetID, p.TokenAmount); err != nil {
		return err
	}
	if err := l.removeProposal(ctx, seller, buyer, assetID); err != nil {
		return err
	}

	l.logger.Info("expired sale cleaned up", "seller", seller, "buyer", buyer, "asset_id", assetID)
	l.plugins.EmitProposalExpired(ctx, seller, buyer, assetID)
	return nil
}

// ResetTradeAllowance zeroes the owner's allowance to the settlement
// account for one asset. Admin only; the escape hatch for a grant left
// dangling by external interference.
func (l *Ledger) ResetTradeAllowance(ctx context.Context, owner id.AccountID, assetID asset.ID) error {
	if _, err := l.requireAdmin(ctx); err != nil {
		return err
	}

	settlement, err := l.store.GetSettlementAccount(ctx)
	if err != nil {
		return err
	}
	if err := l.store.SetAllowance(ctx, owner, settlement, assetID, 0); err != nil {
		return err
	}

	l.logger.Warn("trade allowance reset", "owner", owner, "asset_id", assetID)
	return nil
}

// reverseAllowanceGrant lowers the owner's settlement allowance by amount,
// floored at zero.
func (l *Ledger) reverseAllowanceGrant(ctx context.Context, owner id.AccountID, assetID asset.ID, amount uint64) error {
	settlement, err := l.store.GetSettlementAccount(ctx)
	if err != nil {
		return err
	}

	current, err := l.store.GetAllowance(ctx, owner, settlement, assetID)
	if err != nil {
		return err
	}
	remaining := uint64(0)
	if current > amount {
		remaining = current - amount
	}
	return l.store.SetAllowance(ctx, owner, settlement, assetID, remaining)
}

// removeProposal deletes a proposal and both per-user index entries.
func (l *Ledger) removeProposal(ctx context.Context, seller, buyer id.AccountID, assetID asset.ID) error {
	if err := l.store.DeleteProposal(ctx, seller, buyer, assetID); err != nil {
		return err
	}
	if err := l.store.RemoveSellerSale(ctx, seller, trade.Ref{Counterparty: buyer, AssetID: assetID}); err != nil {
		return err
	}
	return l.store.RemoveBuyerOffer(ctx, buyer, trade.Ref{Counterparty: seller, AssetID: assetID})
}

// ──────────────────────────────────────────────────
// Settlement queries
// ──────────────────────────────────────────────────

// Proposal returns the active proposal for the (seller, buyer, asset) key.
func (l *Ledger) Proposal(ctx context.Context, seller, buyer id.AccountID, assetID asset.ID) (*trade.SaleProposal, error) {
	return l.store.GetProposal(ctx, seller, buyer, assetID)
}

// ProposalExists reports whether a proposal exists for the key.
func (l *Ledger) ProposalExists(ctx context.Context, seller, buyer id.AccountID, assetID asset.ID) (bool, error) {
	_, err := l.store.GetProposal(ctx, seller, buyer, assetID)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SellerSales lists the (buyer, asset) pairs of the seller's open proposals.
func (l *Ledger) SellerSales(ctx context.Context, seller id.AccountID) ([]trade.Ref, error) {
	return l.store.ListSellerSales(ctx, seller)
}

// BuyerOffers lists the (seller, asset) pairs of proposals naming the buyer.
func (l *Ledger) BuyerOffers(ctx context.Context, buyer id.AccountID) ([]trade.Ref, error) {
	return l.store.ListBuyerOffers(ctx, buyer)
}

// TimeUntilExpiry returns how long a proposal remains actionable. Expired
// proposals report zero.
func (l *Ledger) TimeUntilExpiry(ctx context.Context, seller, buyer id.AccountID, assetID asset.ID) (time.Duration, error) {
	p, err := l.store.GetProposal(ctx, seller, buyer, assetID)
	if err != nil {
		return 0, err
	}

	remaining := p.ExpiresAt.Sub(l.now())
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// GrantedAllowance returns the owner's current allowance to the settlement
// account for one asset.
func (l *Ledger) GrantedAllowance(ctx context.Context, owner id.AccountID, assetID asset.ID) (uint64, error) {
	settlement, err := l.store.GetSettlementAccount(ctx)
	if err != nil {
		return 0, err
	}
	return l.store.GetAllowance(ctx, owner, settlement, assetID)
}

// Trade returns one trade-history record by id.
func (l *Ledger) Trade(ctx context.Context, tradeID uint64) (*trade.Record, error) {
	return l.store.GetTrade(ctx, tradeID)
}

// TradeCount returns the number of completed trades.
func (l *Ledger) TradeCount(ctx context.Context) (uint64, error) {
	return l.store.TradeCount(ctx)
}

// AssetTrades returns every completed trade of one asset, oldest first.
func (l *Ledger) AssetTrades(ctx context.Context, assetID asset.ID) ([]*trade.Record, error) {
	ids, err := l.store.ListAssetTrades(ctx, assetID)
	if err != nil {
		return nil, err
	}

	records := make([]*trade.Record, 0, len(ids))
	for _, tradeID := range ids {
		rec, err := l.store.GetTrade(ctx, tradeID)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
