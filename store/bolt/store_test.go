package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openfract/fractional"
	"github.com/openfract/fractional/asset"
	"github.com/openfract/fractional/id"
	"github.com/openfract/fractional/ownerindex"
	"github.com/openfract/fractional/store"
	"github.com/openfract/fractional/trade"
	"github.com/openfract/fractional/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(store.Config{Path: filepath.Join(t.TempDir(), "fractional.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAssetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	creator := id.NewAccountID()

	next, err := s.NextAssetID(ctx)
	require.NoError(t, err)
	require.Equal(t, asset.ID(1), next)

	a := &asset.Asset{
		Entity:  types.NewEntity(),
		ID:      next,
		Supply:  1000,
		Creator: creator,
		URI:     "ipfs://metadata",
	}
	require.NoError(t, s.CreateAsset(ctx, a))
	require.ErrorIs(t, s.CreateAsset(ctx, a), fractional.ErrAlreadyExists)
	require.NoError(t, s.SetNextAssetID(ctx, next+1))

	got, err := s.GetAsset(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, a.Supply, got.Supply)
	require.Equal(t, a.Creator, got.Creator)
	require.Equal(t, a.URI, got.URI)

	got.Supply = 1500
	require.NoError(t, s.UpdateAsset(ctx, got))
	got, err = s.GetAsset(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(1500), got.Supply)

	_, err = s.GetAsset(ctx, asset.ID(99))
	require.ErrorIs(t, err, fractional.ErrAssetNotFound)
}

func TestBalancesAndAllowances(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	owner := id.NewAccountID()
	operator := id.NewAccountID()
	assetID := asset.ID(1)

	bal, err := s.GetBalance(ctx, owner, assetID)
	require.NoError(t, err)
	require.Zero(t, bal)

	require.NoError(t, s.SetBalance(ctx, owner, assetID, 700))
	bal, err = s.GetBalance(ctx, owner, assetID)
	require.NoError(t, err)
	require.Equal(t, uint64(700), bal)

	require.NoError(t, s.DeleteBalance(ctx, owner, assetID))
	bal, err = s.GetBalance(ctx, owner, assetID)
	require.NoError(t, err)
	require.Zero(t, bal)

	require.NoError(t, s.SetAllowance(ctx, owner, operator, assetID, 50))
	allowance, err := s.GetAllowance(ctx, owner, operator, assetID)
	require.NoError(t, err)
	require.Equal(t, uint64(50), allowance)

	require.NoError(t, s.SetOperatorApproval(ctx, owner, operator, true))
	approved, err := s.GetOperatorApproval(ctx, owner, operator)
	require.NoError(t, err)
	require.True(t, approved)

	require.NoError(t, s.SetOperatorApproval(ctx, owner, operator, false))
	approved, err = s.GetOperatorApproval(ctx, owner, operator)
	require.NoError(t, err)
	require.False(t, approved)
}

func TestOwnerIndexPrimitives(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	assetID := asset.ID(5)
	owner := id.NewAccountID()
	other := id.NewAccountID()

	_, ok, err := s.GetLastActivePage(ctx, assetID)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.PutOwnerPage(ctx, assetID, 0, []id.AccountID{owner, other}))
	page, err := s.GetOwnerPage(ctx, assetID, 0)
	require.NoError(t, err)
	require.Equal(t, []id.AccountID{owner, other}, page)

	require.NoError(t, s.SetOwnerLocation(ctx, assetID, owner, ownerindex.Location{Page: 0, Slot: 1}))
	loc, ok, err := s.GetOwnerLocation(ctx, assetID, owner)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ownerindex.Location{Page: 0, Slot: 1}, loc)

	require.NoError(t, s.SetOwnerAsset(ctx, owner, assetID))
	require.NoError(t, s.SetOwnerAsset(ctx, owner, asset.ID(9)))
	assets, err := s.ListOwnerAssets(ctx, owner)
	require.NoError(t, err)
	require.ElementsMatch(t, []asset.ID{assetID, asset.ID(9)}, assets)

	require.NoError(t, s.DeleteOwnerAsset(ctx, owner, asset.ID(9)))
	assets, err = s.ListOwnerAssets(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, []asset.ID{assetID}, assets)
}

func TestProposalsAndHistory(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	seller := id.NewAccountID()
	buyer := id.NewAccountID()
	assetID := asset.ID(2)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p := &trade.SaleProposal{
		Seller:      seller,
		Buyer:       buyer,
		AssetID:     assetID,
		TokenAmount: 100,
		Price:       types.NewAmount(5000),
		Active:      true,
		CreatedAt:   now,
		ExpiresAt:   now.Add(24 * time.Hour),
	}
	require.NoError(t, s.CreateProposal(ctx, p))
	require.ErrorIs(t, s.CreateProposal(ctx, p), fractional.ErrProposalExists)

	got, err := s.GetProposal(ctx, seller, buyer, assetID)
	require.NoError(t, err)
	require.Equal(t, p.TokenAmount, got.TokenAmount)
	require.True(t, got.Price.Equal(p.Price))
	require.True(t, got.ExpiresAt.Equal(p.ExpiresAt))

	ref := trade.Ref{Counterparty: buyer, AssetID: assetID}
	require.NoError(t, s.AddSellerSale(ctx, seller, ref))
	sales, err := s.ListSellerSales(ctx, seller)
	require.NoError(t, err)
	require.Equal(t, []trade.Ref{ref}, sales)

	require.NoError(t, s.RemoveSellerSale(ctx, seller, ref))
	sales, err = s.ListSellerSales(ctx, seller)
	require.NoError(t, err)
	require.Empty(t, sales)

	require.NoError(t, s.DeleteProposal(ctx, seller, buyer, assetID))
	_, err = s.GetProposal(ctx, seller, buyer, assetID)
	require.ErrorIs(t, err, fractional.ErrProposalNotFound)

	rec := &trade.Record{
		Seller:      seller,
		Buyer:       buyer,
		AssetID:     assetID,
		TokenAmount: 100,
		Price:       types.NewAmount(5000),
		ExecutedAt:  now,
	}
	require.NoError(t, s.AppendTrade(ctx, rec))
	require.Equal(t, uint64(1), rec.ID)
	require.NoError(t, s.AddAssetTrade(ctx, assetID, rec.ID))

	count, err := s.TradeCount(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), count)

	ids, err := s.ListAssetTrades(ctx, assetID)
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, ids)
}

func TestMetadataPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fractional.db")
	admin := id.NewAccountID()

	s, err := Open(store.Config{Path: path})
	require.NoError(t, err)

	_, err = s.GetAdmin(ctx)
	require.ErrorIs(t, err, fractional.ErrNotInitialized)

	require.NoError(t, s.SetAdmin(ctx, admin))
	require.NoError(t, s.SetContractURI(ctx, "https://example.com/c.json"))
	require.NoError(t, s.Close())

	s, err = Open(store.Config{Path: path})
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetAdmin(ctx)
	require.NoError(t, err)
	require.Equal(t, admin, got)

	uri, err := s.GetContractURI(ctx)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/c.json", uri)
}
