package fractional_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/openfract/fractional"
	"github.com/openfract/fractional/currency"
	"github.com/openfract/fractional/id"
	"github.com/openfract/fractional/store/memory"
)

// TestDocumentationExamples verifies that the examples in the package
// documentation compile and run.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store and settlement currency (memory for demo, use the
		// bolt store for durable deployments)
		cash := currency.NewMemoryLedger()

		l := fractional.New(memory.New(), cash,
			fractional.WithLogger(slog.Default()),
			fractional.WithSaleDurationBounds(time.Hour, 7*24*time.Hour),
		)

		ctx := context.Background()
		if err := l.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer l.Stop()

		admin := id.NewAccountID()
		if err := l.Initialize(ctx, admin); err != nil {
			t.Fatal(err)
		}

		// Mint a new asset to alice
		alice := id.NewAccountID()
		bob := id.NewAccountID()
		assetID, err := l.Mint(ctx, alice, 1000, "ipfs://metadata")
		if err != nil {
			t.Fatal(err)
		}

		// Fund bob and settle a 100-unit sale
		price := fractional.NewAmount(100_000_000)
		if err := cash.Deposit(ctx, bob, price); err != nil {
			t.Fatal(err)
		}
		if err := l.Propose(ctx, alice, bob, assetID, 100, price, 24*time.Hour); err != nil {
			t.Fatal(err)
		}
		if err := l.Finish(ctx, bob, alice, assetID, 100, price); err != nil {
			t.Fatal(err)
		}

		bal, err := l.BalanceOf(ctx, bob, assetID)
		if err != nil {
			t.Fatal(err)
		}
		if bal != 100 {
			t.Fatalf("bob balance = %d, want 100", bal)
		}
	})

	t.Run("OwnershipQueries", func(t *testing.T) {
		l := fractional.New(memory.New(), currency.NewMemoryLedger())
		ctx := context.Background()

		if err := l.Initialize(ctx, id.NewAccountID()); err != nil {
			t.Fatal(err)
		}

		holder := id.NewAccountID()
		assetID, err := l.Mint(ctx, holder, 500, "")
		if err != nil {
			t.Fatal(err)
		}

		owners, err := l.AssetOwners(ctx, assetID)
		if err != nil {
			t.Fatal(err)
		}
		if len(owners) != 1 || owners[0] != holder {
			t.Fatalf("AssetOwners() = %v, want [%s]", owners, holder)
		}

		count, err := l.OwnerCount(ctx, assetID)
		if err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Fatalf("OwnerCount() = %d, want 1", count)
		}
	})
}
