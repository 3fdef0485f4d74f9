package fractional

import (
	"context"
	"fmt"
	"math"

	"github.com/openfract/fractional/asset"
	"github.com/openfract/fractional/id"
	"github.com/openfract/fractional/types"
)

// ──────────────────────────────────────────────────
// Minting
// ──────────────────────────────────────────────────

// Mint creates a new asset with the next sequential id and credits its full
// supply to the creator. Only the admin may mint.
func (l *Ledger) Mint(ctx context.Context, to id.AccountID, amount uint64, uri string) (asset.ID, error) {
	if amount == 0 {
		return 0, ErrInvalidAmount
	}
	if to.IsNil() {
		return 0, ValidationError{Field: "to", Message: "account is required"}
	}
	if _, err := l.requireAdmin(ctx); err != nil {
		return 0, err
	}

	assetID, err := l.store.NextAssetID(ctx)
	if err != nil {
		return 0, err
	}
	if err := l.store.SetNextAssetID(ctx, assetID+1); err != nil {
		return 0, err
	}

	a := &asset.Asset{
		Entity:  types.NewEntity(),
		ID:      assetID,
		Supply:  amount,
		Creator: to,
		URI:     uri,
	}
	if err := l.store.CreateAsset(ctx, a); err != nil {
		return 0, err
	}

	if err := l.store.SetBalance(ctx, to, assetID, amount); err != nil {
		return 0, err
	}
	if err := l.index.Add(ctx, assetID, to); err != nil {
		return 0, err
	}

	l.logger.Info("asset minted", "asset_id", assetID, "to", to, "amount", amount)
	l.plugins.EmitMint(ctx, to, assetID, amount)
	return assetID, nil
}

// MintTo increases supply of an existing asset and credits each recipient its
// paired amount. The operation is all or nothing: every input is validated
// and every arithmetic step proven safe before the first write.
func (l *Ledger) MintTo(ctx context.Context, assetID asset.ID, recipients []id.AccountID, amounts []uint64) error {
	if len(recipients) == 0 {
		return ErrNoRecipients
	}
	if len(recipients) != len(amounts) {
		return ErrLengthMismatch
	}
	if _, err := l.requireAdmin(ctx); err != nil {
		return err
	}

	a, err := l.store.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}

	// Validate before mutating anything. Amounts are aggregated per
	// recipient so a duplicated recipient accumulates rather than having a
	// later credit overwrite an earlier one.
	newSupply := a.Supply
	totals := make(map[id.AccountID]uint64, len(recipients))
	order := make([]id.AccountID, 0, len(recipients))
	for i, to := range recipients {
		if to.IsNil() {
			return ValidationError{Field: "recipients", Message: "account is required"}
		}
		if amounts[i] == 0 {
			return ErrInvalidAmount
		}
		newSupply, err = addChecked(newSupply, amounts[i])
		if err != nil {
			return err
		}
		if _, seen := totals[to]; !seen {
			order = append(order, to)
		}
		totals[to], err = addChecked(totals[to], amounts[i])
		if err != nil {
			return err
		}
	}

	priorBalances := make(map[id.AccountID]uint64, len(order))
	newBalances := make(map[id.AccountID]uint64, len(order))
	for _, to := range order {
		bal, err := l.store.GetBalance(ctx, to, assetID)
		if err != nil {
			return err
		}
		priorBalances[to] = bal
		newBalances[to], err = addChecked(bal, totals[to])
		if err != nil {
			return err
		}
	}

	for _, to := range order {
		if err := l.store.SetBalance(ctx, to, assetID, newBalances[to]); err != nil {
			return err
		}
		if priorBalances[to] == 0 {
			if err := l.index.Add(ctx, assetID, to); err != nil {
				return err
			}
		}
	}

	a.Supply = newSupply
	a.Touch()
	if err := l.store.UpdateAsset(ctx, a); err != nil {
		return err
	}

	for i, to := range recipients {
		l.plugins.EmitMint(ctx, to, assetID, amounts[i])
	}
	l.logger.Info("supply minted", "asset_id", assetID, "recipients", len(recipients))
	return nil
}

// ──────────────────────────────────────────────────
// Transfers
// ──────────────────────────────────────────────────

// Transfer moves tokens between accounts. The sender must authorize.
func (l *Ledger) Transfer(ctx context.Context, from, to id.AccountID, assetID asset.ID, amount uint64) error {
	if err := l.requireAuth(ctx, from); err != nil {
		return err
	}
	return l.transferInternal(ctx, from, to, assetID, amount)
}

// TransferFrom moves tokens on behalf of the sender. When the operator is
// the sender itself, direct authorization suffices. Otherwise the operator
// needs either blanket approval or a specific allowance covering the amount;
// a specific allowance is decremented before the transfer executes.
func (l *Ledger) TransferFrom(ctx context.Context, operator, from, to id.AccountID, assetID asset.ID, amount uint64) error {
	if operator == from {
		return l.Transfer(ctx, from, to, assetID, amount)
	}

	if err := l.requireAuth(ctx, operator); err != nil {
		return err
	}

	restore, err := l.consumeAllowance(ctx, from, operator, assetID, amount)
	if err != nil {
		return err
	}

	if err := l.transferInternal(ctx, from, to, assetID, amount); err != nil {
		if restoreErr := restore(ctx); restoreErr != nil {
			return fmt.Errorf("%w (allowance restore failed: %v)", err, restoreErr)
		}
		return err
	}
	return nil
}

// BatchTransferFrom moves tokens from one sender to several recipients in a
// single all-or-nothing operation. Authorization covers the summed amount.
func (l *Ledger) BatchTransferFrom(ctx context.Context, operator, from id.AccountID, recipients []id.AccountID, assetID asset.ID, amounts []uint64) error {
	if len(recipients) == 0 {
		return ErrNoRecipients
	}
	if len(recipients) != len(amounts) {
		return ErrLengthMismatch
	}

	var (
		total uint64
		err   error
	)
	for i, to := range recipients {
		if amounts[i] == 0 {
			return ErrInvalidAmount
		}
		if to == from {
			return ErrSelfTransfer
		}
		total, err = addChecked(total, amounts[i])
		if err != nil {
			return err
		}
	}

	if operator == from {
		if err := l.requireAuth(ctx, from); err != nil {
			return err
		}
	} else {
		if err := l.requireAuth(ctx, operator); err != nil {
			return err
		}
	}

	balance, err := l.store.GetBalance(ctx, from, assetID)
	if err != nil {
		return err
	}
	if balance < total {
		return ErrInsufficientBalance
	}

	var restore func(context.Context) error
	if operator != from {
		restore, err = l.consumeAllowance(ctx, from, operator, assetID, total)
		if err != nil {
			return err
		}
	}

	for i, to := range recipients {
		if err := l.transferInternal(ctx, from, to, assetID, amounts[i]); err != nil {
			// Cannot fail after the combined balance check, short of a
			// store fault. Surface it with the restore outcome attached.
			if restore != nil {
				if restoreErr := restore(ctx); restoreErr != nil {
					return fmt.Errorf("%w (allowance restore failed: %v)", err, restoreErr)
				}
			}
			return err
		}
	}
	return nil
}

// consumeAllowance debits the operator's spending rights for the amount and
// returns a function that restores them. Blanket operator approval bypasses
// the specific allowance entirely.
func (l *Ledger) consumeAllowance(ctx context.Context, owner, operator id.AccountID, assetID asset.ID, amount uint64) (func(context.Context) error, error) {
	approved, err := l.store.GetOperatorApproval(ctx, owner, operator)
	if err != nil {
		return nil, err
	}
	if approved {
		return func(context.Context) error { return nil }, nil
	}

	allowance, err := l.store.GetAllowance(ctx, owner, operator, assetID)
	if err != nil {
		return nil, err
	}
	if allowance < amount {
		return nil, ErrInsufficientAllowance
	}
	if err := l.store.SetAllowance(ctx, owner, operator, assetID, allowance-amount); err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		current, err := l.store.GetAllowance(ctx, owner, operator, assetID)
		if err != nil {
			return err
		}
		restored, err := addChecked(current, amount)
		if err != nil {
			return err
		}
		return l.store.SetAllowance(ctx, owner, operator, assetID, restored)
	}, nil
}

// transferInternal debits from, credits to, and keeps the ownership index in
// step with zero-crossing balance transitions. Transition checks use the
// pre-transfer and post-transfer values.
func (l *Ledger) transferInternal(ctx context.Context, from, to id.AccountID, assetID asset.ID, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if from == to {
		return ErrSelfTransfer
	}

	exists, err := l.store.AssetExists(ctx, assetID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrAssetNotFound
	}

	fromBalance, err := l.store.GetBalance(ctx, from, assetID)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return ErrInsufficientBalance
	}

	toBalance, err := l.store.GetBalance(ctx, to, assetID)
	if err != nil {
		return err
	}
	newToBalance, err := addChecked(toBalance, amount)
	if err != nil {
		return err
	}
	newFromBalance := fromBalance - amount

	if newFromBalance == 0 {
		if err := l.store.DeleteBalance(ctx, from, assetID); err != nil {
			return err
		}
	} else {
		if err := l.store.SetBalance(ctx, from, assetID, newFromBalance); err != nil {
			return err
		}
	}
	if err := l.store.SetBalance(ctx, to, assetID, newToBalance); err != nil {
		return err
	}

	if toBalance == 0 {
		if err := l.index.Add(ctx, assetID, to); err != nil {
			return err
		}
	}
	if newFromBalance == 0 {
		if err := l.index.Remove(ctx, assetID, from); err != nil {
			return err
		}
	}

	l.plugins.EmitTransfer(ctx, from, to, assetID, amount)
	return nil
}

// ──────────────────────────────────────────────────
// Approvals
// ──────────────────────────────────────────────────

// Approve sets the operator's allowance over the owner's tokens of one asset.
// Setting zero revokes it.
func (l *Ledger) Approve(ctx context.Context, owner, operator id.AccountID, assetID asset.ID, amount uint64) error {
	if operator.IsNil() {
		return ValidationError{Field: "operator", Message: "account is required"}
	}
	if err := l.requireAuth(ctx, owner); err != nil {
		return err
	}

	exists, err := l.store.AssetExists(ctx, assetID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrAssetNotFound
	}

	if err := l.store.SetAllowance(ctx, owner, operator, assetID, amount); err != nil {
		return err
	}

	l.plugins.EmitApproval(ctx, owner, operator, assetID, amount)
	return nil
}

// SetApprovalForAll grants or revokes blanket transfer rights over all of the
// owner's assets.
func (l *Ledger) SetApprovalForAll(ctx context.Context, owner, operator id.AccountID, approved bool) error {
	if operator.IsNil() {
		return ValidationError{Field: "operator", Message: "account is required"}
	}
	if err := l.requireAuth(ctx, owner); err != nil {
		return err
	}

	if err := l.store.SetOperatorApproval(ctx, owner, operator, approved); err != nil {
		return err
	}

	l.plugins.EmitApprovalForAll(ctx, owner, operator, approved)
	return nil
}

// Allowance returns the operator's remaining allowance over the owner's
// tokens of the asset.
func (l *Ledger) Allowance(ctx context.Context, owner, operator id.AccountID, assetID asset.ID) (uint64, error) {
	return l.store.GetAllowance(ctx, owner, operator, assetID)
}

// IsApprovedForAll reports whether the operator holds blanket approval.
func (l *Ledger) IsApprovedForAll(ctx context.Context, owner, operator id.AccountID) (bool, error) {
	return l.store.GetOperatorApproval(ctx, owner, operator)
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// BalanceOf returns the owner's balance of the asset. Unknown owners and
// unknown assets read as zero.
func (l *Ledger) BalanceOf(ctx context.Context, owner id.AccountID, assetID asset.ID) (uint64, error) {
	return l.store.GetBalance(ctx, owner, assetID)
}

// BalanceOfBatch returns balances for paired (owner, asset) inputs.
func (l *Ledger) BalanceOfBatch(ctx context.Context, owners []id.AccountID, assetIDs []asset.ID) ([]uint64, error) {
	if len(owners) != len(assetIDs) {
		return nil, ErrLengthMismatch
	}

	balances := make([]uint64, len(owners))
	for i := range owners {
		bal, err := l.store.GetBalance(ctx, owners[i], assetIDs[i])
		if err != nil {
			return nil, err
		}
		balances[i] = bal
	}
	return balances, nil
}

// AssetSupply returns the total supply of the asset.
func (l *Ledger) AssetSupply(ctx context.Context, assetID asset.ID) (uint64, error) {
	a, err := l.store.GetAsset(ctx, assetID)
	if err != nil {
		return 0, err
	}
	return a.Supply, nil
}

// AssetExists reports whether the asset has been minted.
func (l *Ledger) AssetExists(ctx context.Context, assetID asset.ID) (bool, error) {
	return l.store.AssetExists(ctx, assetID)
}

// AssetOwners enumerates every account with a positive balance of the asset.
func (l *Ledger) AssetOwners(ctx context.Context, assetID asset.ID) ([]id.AccountID, error) {
	return l.index.Owners(ctx, assetID)
}

// OwnerCount returns the number of accounts with a positive balance.
func (l *Ledger) OwnerCount(ctx context.Context, assetID asset.ID) (uint64, error) {
	return l.index.Count(ctx, assetID)
}

// OwnsAsset reports whether the owner holds a positive balance of the asset.
func (l *Ledger) OwnsAsset(ctx context.Context, owner id.AccountID, assetID asset.ID) (bool, error) {
	return l.index.Contains(ctx, assetID, owner)
}

// OwnerAssets lists every asset the owner holds a positive balance of.
func (l *Ledger) OwnerAssets(ctx context.Context, owner id.AccountID) ([]asset.ID, error) {
	return l.index.AssetsOf(ctx, owner)
}

// AssetCreator returns the account the asset was originally minted to.
func (l *Ledger) AssetCreator(ctx context.Context, assetID asset.ID) (id.AccountID, error) {
	a, err := l.store.GetAsset(ctx, assetID)
	if err != nil {
		return id.Nil, err
	}
	return a.Creator, nil
}

// ──────────────────────────────────────────────────
// Metadata
// ──────────────────────────────────────────────────

// SetAssetURI updates the asset's metadata URI. The admin or the asset's
// creator may call it.
func (l *Ledger) SetAssetURI(ctx context.Context, assetID asset.ID, uri string) error {
	a, err := l.store.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}

	if _, adminErr := l.requireAdmin(ctx); adminErr != nil {
		if creatorErr := l.requireAuth(ctx, a.Creator); creatorErr != nil {
			return creatorErr
		}
	}

	a.URI = uri
	a.Touch()
	if err := l.store.UpdateAsset(ctx, a); err != nil {
		return err
	}

	l.plugins.EmitAssetURIUpdated(ctx, assetID, uri)
	return nil
}

// AssetURI returns the asset's metadata URI.
func (l *Ledger) AssetURI(ctx context.Context, assetID asset.ID) (string, error) {
	a, err := l.store.GetAsset(ctx, assetID)
	if err != nil {
		return "", err
	}
	return a.URI, nil
}

// SetContractURI updates the ledger-wide metadata URI. Admin only.
func (l *Ledger) SetContractURI(ctx context.Context, uri string) error {
	if _, err := l.requireAdmin(ctx); err != nil {
		return err
	}
	return l.store.SetContractURI(ctx, uri)
}

// ContractURI returns the ledger-wide metadata URI.
func (l *Ledger) ContractURI(ctx context.Context) (string, error) {
	return l.store.GetContractURI(ctx)
}

// Checked arithmetic. Overflow is fatal, never wrapped or saturated.

func addChecked(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, fmt.Errorf("%w: %d + %d overflows", ErrArithmetic, a, b)
	}
	return a + b, nil
}
