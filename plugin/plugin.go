// Package plugin provides an extensible plugin system for Fractional.
// Plugins can hook into ledger and settlement lifecycle events to extend
// functionality — audit trails, metrics, host-side notifications.
//
// Hooks observe events after the fact; they cannot veto or mutate them, and
// hook failures never propagate into the operation that emitted the event.
package plugin

import (
	"context"

	"github.com/openfract/fractional/asset"
	"github.com/openfract/fractional/id"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Token ledger hooks
// ──────────────────────────────────────────────────

// OnMint is called when tokens are minted, whether into a new asset or an
// existing one.
type OnMint interface {
	Plugin
	OnMint(ctx context.Context, to id.AccountID, assetID asset.ID, amount uint64) error
}

// OnTransfer is called after every successful balance transfer, including the
// token leg of a settled trade.
type OnTransfer interface {
	Plugin
	OnTransfer(ctx context.Context, from, to id.AccountID, assetID asset.ID, amount uint64) error
}

// OnApproval is called when a per-asset allowance is set.
type OnApproval interface {
	Plugin
	OnApproval(ctx context.Context, owner, operator id.AccountID, assetID asset.ID, amount uint64) error
}

// OnApprovalForAll is called when a blanket operator approval changes.
type OnApprovalForAll interface {
	Plugin
	OnApprovalForAll(ctx context.Context, owner, operator id.AccountID, approved bool) error
}

// OnAdminTransferred is called when ledger administration changes hands.
type OnAdminTransferred interface {
	Plugin
	OnAdminTransferred(ctx context.Context, oldAdmin, newAdmin id.AccountID) error
}

// OnAssetURIUpdated is called when an asset's metadata URI is set.
type OnAssetURIUpdated interface {
	Plugin
	OnAssetURIUpdated(ctx context.Context, assetID asset.ID, uri string) error
}

// ──────────────────────────────────────────────────
// Settlement hooks
// ──────────────────────────────────────────────────

// OnProposalCreated is called when a seller opens a sale proposal.
// The payload is a *trade.SaleProposal.
type OnProposalCreated interface {
	Plugin
	OnProposalCreated(ctx context.Context, proposal interface{}) error
}

// OnTradeCompleted is called after a trade settles and its history record is
// appended. The payload is a *trade.Record.
type OnTradeCompleted interface {
	Plugin
	OnTradeCompleted(ctx context.Context, record interface{}) error
}

// OnProposalWithdrawn is called when a seller withdraws a proposal.
type OnProposalWithdrawn interface {
	Plugin
	OnProposalWithdrawn(ctx context.Context, seller, buyer id.AccountID, assetID asset.ID) error
}

// OnProposalExpired is called when an expired proposal is cleaned up.
type OnProposalExpired interface {
	Plugin
	OnProposalExpired(ctx context.Context, seller, buyer id.AccountID, assetID asset.ID) error
}
