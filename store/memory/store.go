package memory

import (
	"context"
	"sync"

	"github.com/openfract/fractional"
	"github.com/openfract/fractional/asset"
	"github.com/openfract/fractional/id"
	"github.com/openfract/fractional/ownerindex"
	"github.com/openfract/fractional/store"
	"github.com/openfract/fractional/trade"
)

var _ store.Store = (*Store)(nil)

type balanceKey struct {
	owner   id.AccountID
	assetID asset.ID
}

type allowanceKey struct {
	owner    id.AccountID
	operator id.AccountID
	assetID  asset.ID
}

type operatorKey struct {
	owner    id.AccountID
	operator id.AccountID
}

type pageKey struct {
	assetID asset.ID
	page    uint32
}

type proposalKey struct {
	seller  id.AccountID
	buyer   id.AccountID
	assetID asset.ID
}

type Store struct {
	mu sync.RWMutex

	// Asset storage
	assets      map[asset.ID]*asset.Asset
	nextAssetID asset.ID

	// Token state
	balances   map[balanceKey]uint64
	allowances map[allowanceKey]uint64
	operators  map[operatorKey]bool

	// Ownership index
	ownerPages     map[pageKey][]id.AccountID
	pageCounts     map[asset.ID]uint32
	lastActive     map[asset.ID]uint32
	ownerLocations map[balanceKey]ownerindex.Location
	ownerCounts    map[asset.ID]uint64
	assetOwners    map[balanceKey]bool
	ownerAssets    map[balanceKey]bool

	// Settlement state
	proposals   map[proposalKey]*trade.SaleProposal
	sellerSales map[id.AccountID][]trade.Ref
	buyerOffers map[id.AccountID][]trade.Ref

	// Trade history
	trades      map[uint64]*trade.Record
	tradeCount  uint64
	assetTrades map[asset.ID][]uint64

	// Ledger metadata
	admin         id.AccountID
	settlement    id.AccountID
	contractURI   string
	hasAdmin      bool
	hasSettlement bool
}

func New() *Store {
	return &Store{
		assets:         make(map[asset.ID]*asset.Asset),
		nextAssetID:    1,
		balances:       make(map[balanceKey]uint64),
		allowances:     make(map[allowanceKey]uint64),
		operators:      make(map[operatorKey]bool),
		ownerPages:     make(map[pageKey][]id.AccountID),
		pageCounts:     make(map[asset.ID]uint32),
		lastActive:     make(map[asset.ID]uint32),
		ownerLocations: make(map[balanceKey]ownerindex.Location),
		ownerCounts:    make(map[asset.ID]uint64),
		assetOwners:    make(map[balanceKey]bool),
		ownerAssets:    make(map[balanceKey]bool),
		proposals:      make(map[proposalKey]*trade.SaleProposal),
		sellerSales:    make(map[id.AccountID][]trade.Ref),
		buyerOffers:    make(map[id.AccountID][]trade.Ref),
		trades:         make(map[uint64]*trade.Record),
		assetTrades:    make(map[asset.ID][]uint64),
	}
}

// Asset Store implementation

func (s *Store) CreateAsset(_ context.Context, a *asset.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.assets[a.ID]; exists {
		return fractional.ErrAlreadyExists
	}
	cp := *a
	s.assets[a.ID] = &cp
	return nil
}

func (s *Store) GetAsset(_ context.Context, assetID asset.ID) (*asset.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.assets[assetID]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, fractional.ErrAssetNotFound
}

func (s *Store) UpdateAsset(_ context.Context, a *asset.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.assets[a.ID]; !exists {
		return fractional.ErrAssetNotFound
	}
	cp := *a
	s.assets[a.ID] = &cp
	return nil
}

func (s *Store) AssetExists(_ context.Context, assetID asset.ID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.assets[assetID]
	return ok, nil
}

func (s *Store) NextAssetID(_ context.Context) (asset.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextAssetID, nil
}

func (s *Store) SetNextAssetID(_ context.Context, next asset.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAssetID = next
	return nil
}

// Balance storage

func (s *Store) GetBalance(_ context.Context, owner id.AccountID, assetID asset.ID) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[balanceKey{owner, assetID}], nil
}

func (s *Store) SetBalance(_ context.Context, owner id.AccountID, assetID asset.ID, balance uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[balanceKey{owner, assetID}] = balance
	return nil
}

func (s *Store) DeleteBalance(_ context.Context, owner id.AccountID, assetID asset.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.balances, balanceKey{owner, assetID})
	return nil
}

// Allowance storage

func (s *Store) GetAllowance(_ context.Context, owner, operator id.AccountID, assetID asset.ID) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allowances[allowanceKey{owner, operator, assetID}], nil
}

func (s *Store) SetAllowance(_ context.Context, owner, operator id.AccountID, assetID asset.ID, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := allowanceKey{owner, operator, assetID}
	if amount == 0 {
		delete(s.allowances, key)
		return nil
	}
	s.allowances[key] = amount
	return nil
}

// Operator approvals

func (s *Store) GetOperatorApproval(_ context.Context, owner, operator id.AccountID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.operators[operatorKey{owner, operator}], nil
}

func (s *Store) SetOperatorApproval(_ context.Context, owner, operator id.AccountID, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := operatorKey{owner, operator}
	if !approved {
		delete(s.operators, key)
		return nil
	}
	s.operators[key] = true
	return nil
}

// Ownership index primitives

func (s *Store) GetOwnerPage(_ context.Context, assetID asset.ID, page uint32) ([]id.AccountID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owners := s.ownerPages[pageKey{assetID, page}]
	cp := make([]id.AccountID, len(owners))
	copy(cp, owners)
	return cp, nil
}

func (s *Store) PutOwnerPage(_ context.Context, assetID asset.ID, page uint32, owners []id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]id.AccountID, len(owners))
	copy(cp, owners)
	s.ownerPages[pageKey{assetID, page}] = cp
	return nil
}

func (s *Store) DeleteOwnerPage(_ context.Context, assetID asset.ID, page uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ownerPages, pageKey{assetID, page})
	return nil
}

func (s *Store) GetOwnerPageCount(_ context.Context, assetID asset.ID) (uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pageCounts[assetID], nil
}

func (s *Store) SetOwnerPageCount(_ context.Context, assetID asset.ID, count uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if count == 0 {
		delete(s.pageCounts, assetID)
		return nil
	}
	s.pageCounts[assetID] = count
	return nil
}

func (s *Store) GetLastActivePage(_ context.Context, assetID asset.ID) (uint32, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page, ok := s.lastActive[assetID]
	return page, ok, nil
}

func (s *Store) SetLastActivePage(_ context.Context, assetID asset.ID, page uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive[assetID] = page
	return nil
}

func (s *Store) GetOwnerLocation(_ context.Context, assetID asset.ID, owner id.AccountID) (ownerindex.Location, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loc, ok := s.ownerLocations[balanceKey{owner, assetID}]
	return loc, ok, nil
}

func (s *Store) SetOwnerLocation(_ context.Context, assetID asset.ID, owner id.AccountID, loc ownerindex.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownerLocations[balanceKey{owner, assetID}] = loc
	return nil
}

func (s *Store) DeleteOwnerLocation(_ context.Context, assetID asset.ID, owner id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ownerLocations, balanceKey{owner, assetID})
	return nil
}

func (s *Store) GetOwnerCount(_ context.Context, assetID asset.ID) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ownerCounts[assetID], nil
}

func (s *Store) SetOwnerCount(_ context.Context, assetID asset.ID, count uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if count == 0 {
		delete(s.ownerCounts, assetID)
		return nil
	}
	s.ownerCounts[assetID] = count
	return nil
}

func (s *Store) HasAssetOwner(_ context.Context, assetID asset.ID, owner id.AccountID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assetOwners[balanceKey{owner, assetID}], nil
}

func (s *Store) SetAssetOwner(_ context.Context, assetID asset.ID, owner id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assetOwners[balanceKey{owner, assetID}] = true
	return nil
}

func (s *Store) DeleteAssetOwner(_ context.Context, assetID asset.ID, owner id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assetOwners, balanceKey{owner, assetID})
	return nil
}

func (s *Store) HasOwnerAsset(_ context.Context, owner id.AccountID, assetID asset.ID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ownerAssets[balanceKey{owner, assetID}], nil
}

func (s *Store) SetOwnerAsset(_ context.Context, owner id.AccountID, assetID asset.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownerAssets[balanceKey{owner, assetID}] = true
	return nil
}

func (s *Store) DeleteOwnerAsset(_ context.Context, owner id.AccountID, assetID asset.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ownerAssets, balanceKey{owner, assetID})
	return nil
}

func (s *Store) ListOwnerAssets(_ context.Context, owner id.AccountID) ([]asset.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]asset.ID, 0)
	for key := range s.ownerAssets {
		if key.owner == owner {
			result = append(result, key.assetID)
		}
	}
	return result, nil
}

// Sale proposals

func (s *Store) CreateProposal(_ context.Context, p *trade.SaleProposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := proposalKey{p.Seller, p.Buyer, p.AssetID}
	if _, exists := s.proposals[key]; exists {
		return fractional.ErrProposalExists
	}
	cp := *p
	s.proposals[key] = &cp
	return nil
}

func (s *Store) GetProposal(_ context.Context, seller, buyer id.AccountID, assetID asset.ID) (*trade.SaleProposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.proposals[proposalKey{seller, buyer, assetID}]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, fractional.ErrProposalNotFound
}

func (s *Store) DeleteProposal(_ context.Context, seller, buyer id.AccountID, assetID asset.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := proposalKey{seller, buyer, assetID}
	if _, exists := s.proposals[key]; !exists {
		return fractional.ErrProposalNotFound
	}
	delete(s.proposals, key)
	return nil
}

func (s *Store) AddSellerSale(_ context.Context, seller id.AccountID, ref trade.Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sellerSales[seller] = append(s.sellerSales[seller], ref)
	return nil
}

func (s *Store) RemoveSellerSale(_ context.Context, seller id.AccountID, ref trade.Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sellerSales[seller] = removeRef(s.sellerSales[seller], ref)
	return nil
}

func (s *Store) ListSellerSales(_ context.Context, seller id.AccountID) ([]trade.Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := s.sellerSales[seller]
	cp := make([]trade.Ref, len(refs))
	copy(cp, refs)
	return cp, nil
}

func (s *Store) AddBuyerOffer(_ context.Context, buyer id.AccountID, ref trade.Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buyerOffers[buyer] = append(s.buyerOffers[buyer], ref)
	return nil
}

func (s *Store) RemoveBuyerOffer(_ context.Context, buyer id.AccountID, ref trade.Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buyerOffers[buyer] = removeRef(s.buyerOffers[buyer], ref)
	return nil
}

func (s *Store) ListBuyerOffers(_ context.Context, buyer id.AccountID) ([]trade.Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := s.buyerOffers[buyer]
	cp := make([]trade.Ref, len(refs))
	copy(cp, refs)
	return cp, nil
}

func removeRef(refs []trade.Ref, ref trade.Ref) []trade.Ref {
	for i, r := range refs {
		if r == ref {
			return append(refs[:i], refs[i+1:]...)
		}
	}
	return refs
}

// Trade history

func (s *Store) AppendTrade(_ context.Context, rec *trade.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tradeCount++
	rec.ID = s.tradeCount
	cp := *rec
	s.trades[rec.ID] = &cp
	return nil
}

func (s *Store) GetTrade(_ context.Context, tradeID uint64) (*trade.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.trades[tradeID]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, fractional.ErrTradeNotFound
}

func (s *Store) TradeCount(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tradeCount, nil
}

func (s *Store) AddAssetTrade(_ context.Context, assetID asset.ID, tradeID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assetTrades[assetID] = append(s.assetTrades[assetID], tradeID)
	return nil
}

func (s *Store) ListAssetTrades(_ context.Context, assetID asset.ID) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.assetTrades[assetID]
	cp := make([]uint64, len(ids))
	copy(cp, ids)
	return cp, nil
}

// Ledger metadata

func (s *Store) GetAdmin(_ context.Context) (id.AccountID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasAdmin {
		return id.Nil, fractional.ErrNotInitialized
	}
	return s.admin, nil
}

func (s *Store) SetAdmin(_ context.Context, admin id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.admin = admin
	s.hasAdmin = true
	return nil
}

func (s *Store) GetSettlementAccount(_ context.Context) (id.AccountID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasSettlement {
		return id.Nil, fractional.ErrNotInitialized
	}
	return s.settlement, nil
}

func (s *Store) SetSettlementAccount(_ context.Context, account id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settlement = account
	s.hasSettlement = true
	return nil
}

func (s *Store) GetContractURI(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contractURI, nil
}

func (s *Store) SetContractURI(_ context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contractURI = uri
	return nil
}

// Lifecycle

func (s *Store) Migrate(_ context.Context) error {
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}
