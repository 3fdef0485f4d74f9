// Package fractional provides a fractional-ownership token ledger and an
// atomic peer-to-peer settlement protocol for Go applications.
//
// Fractional is designed as a library, not a service. The host application
// authenticates callers, guarantees serialized invocation of every operation,
// and imports the engine directly. It provides:
//
//   - A multi-asset token ledger: sequentially numbered assets, per-owner
//     balances, supply tracking, per-asset allowances and blanket operator
//     approvals
//   - A paginated ownership index with O(1) membership, insertion and removal
//     regardless of holder count
//   - An atomic sale-settlement protocol exchanging asset units for an
//     external settlement currency, with buyer tamper guards and
//     reentrancy-safe cleanup ordering
//   - An immutable, sequentially numbered trade history
//   - Pluggable persistence (in-memory and bbolt stores included)
//   - Lifecycle hooks for every ledger and settlement event
//
// # Quick Start
//
// Create a ledger instance with your preferred store and settlement currency:
//
//	import (
//	    "github.com/openfract/fractional"
//	    "github.com/openfract/fractional/currency"
//	    "github.com/openfract/fractional/store/memory"
//	)
//
//	cur := currency.NewMemoryLedger()
//	l := fractional.New(memory.New(), cur)
//
//	ctx := context.Background()
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
//	admin := id.NewAccountID()
//	if err := l.Initialize(ctx, admin); err != nil {
//	    log.Fatal(err)
//	}
//
// Mint a new asset and trade a slice of it:
//
//	assetID, _ := l.Mint(ctx, alice, 1000, "ipfs://metadata")
//	_ = l.Propose(ctx, alice, bob, assetID, 100, fractional.NewAmount(100000000), time.Hour)
//	_ = l.Finish(ctx, bob, alice, assetID, 100, fractional.NewAmount(100000000))
//
// # Invariants
//
// The engine maintains, at all times:
//
//   - Supply conservation: the sum of balances for an asset equals its
//     recorded supply
//   - Index correctness: an account appears in an asset's owner index exactly
//     when its balance is positive, exactly once
//   - Allowance non-negativity: allowances never go below zero; settlement
//     reductions floor at zero
//   - At most one active proposal per (seller, buyer, asset) key
//   - Atomicity: multi-step operations either complete every state update or
//     leave state untouched
//
// All balance arithmetic is checked. Overflow or underflow fails the
// operation with ErrArithmetic; nothing wraps or saturates.
//
// # TypeID
//
// Account identities use TypeID for globally unique, type-safe identifiers:
//
//	acct_01h2xcejqtf2nbrexx3vqjhp41  // Account ID
//	stl_01h455vb4pex5vsknk084sn02q   // Settlement identity
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of identities.
package fractional
