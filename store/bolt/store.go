// Package bolt provides a file-backed store implementation on top of bbolt.
//
// Each key namespace lives in its own bucket. Composite keys join segments
// with a 0x00 separator; numeric segments are big-endian so cursor order
// matches numeric order.
package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/openfract/fractional"
	"github.com/openfract/fractional/asset"
	"github.com/openfract/fractional/id"
	"github.com/openfract/fractional/ownerindex"
	"github.com/openfract/fractional/store"
	"github.com/openfract/fractional/trade"
)

var (
	bucketAssets         = []byte("assets")
	bucketMeta           = []byte("meta")
	bucketBalances       = []byte("balances")
	bucketAllowances     = []byte("allowances")
	bucketOperators      = []byte("operators")
	bucketOwnerPages     = []byte("owner-pages")
	bucketPageCounts     = []byte("page-counts")
	bucketLastActive     = []byte("last-active")
	bucketOwnerLocations = []byte("owner-locations")
	bucketOwnerCounts    = []byte("owner-counts")
	bucketAssetOwners    = []byte("asset-owners")
	bucketOwnerAssets    = []byte("owner-assets")
	bucketProposals      = []byte("proposals")
	bucketSellerSales    = []byte("seller-sales")
	bucketBuyerOffers    = []byte("buyer-offers")
	bucketTrades         = []byte("trades")
	bucketAssetTrades    = []byte("asset-trades")
)

var allBuckets = [][]byte{
	bucketAssets, bucketMeta, bucketBalances, bucketAllowances,
	bucketOperators, bucketOwnerPages, bucketPageCounts, bucketLastActive,
	bucketOwnerLocations, bucketOwnerCounts, bucketAssetOwners,
	bucketOwnerAssets, bucketProposals, bucketSellerSales,
	bucketBuyerOffers, bucketTrades, bucketAssetTrades,
}

var (
	keyNextAssetID = []byte("next-asset-id")
	keyAdmin       = []byte("admin")
	keySettlement  = []byte("settlement-account")
	keyContractURI = []byte("contract-uri")
	keyTradeCount  = []byte("trade-count")
)

var _ store.Store = (*Store)(nil)

type Store struct {
	db *bolt.DB
}

// Open opens or creates the database file at cfg.Path and ensures all
// buckets exist.
func Open(cfg store.Config) (*Store, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("bolt: open %s: %w", cfg.Path, err)
	}

	s := &Store{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Migrate(_ context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("bolt: create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

func (s *Store) Ping(_ context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketMeta) == nil {
			return fractional.ErrNotInitialized
		}
		return nil
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Key encoding

func u32be(v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b[:]
}

func u64be(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

func assetKey(assetID asset.ID) []byte {
	return u64be(uint64(assetID))
}

// compositeKey joins segments with a 0x00 separator. Account segments are
// TypeID strings and never contain 0x00.
func compositeKey(segments ...[]byte) []byte {
	return bytes.Join(segments, []byte{0x00})
}

func accountKey(acct id.AccountID) []byte {
	return []byte(acct.String())
}

func ownerAssetKey(owner id.AccountID, assetID asset.ID) []byte {
	return compositeKey(accountKey(owner), assetKey(assetID))
}

func assetOwnerKey(assetID asset.ID, owner id.AccountID) []byte {
	return compositeKey(assetKey(assetID), accountKey(owner))
}

func proposalKey(seller, buyer id.AccountID, assetID asset.ID) []byte {
	return compositeKey(accountKey(seller), accountKey(buyer), assetKey(assetID))
}

// Asset Store implementation

func (s *Store) CreateAsset(_ context.Context, a *asset.Asset) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAssets)
		key := assetKey(a.ID)
		if b.Get(key) != nil {
			return fractional.ErrAlreadyExists
		}
		val, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("bolt: encode asset: %w", err)
		}
		return b.Put(key, val)
	})
}

func (s *Store) GetAsset(_ context.Context, assetID asset.ID) (*asset.Asset, error) {
	var a asset.Asset
	err := s.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(bucketAssets).Get(assetKey(assetID))
		if val == nil {
			return fractional.ErrAssetNotFound
		}
		return json.Unmarshal(val, &a)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) UpdateAsset(_ context.Context, a *asset.Asset) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAssets)
		key := assetKey(a.ID)
		if b.Get(key) == nil {
			return fractional.ErrAssetNotFound
		}
		val, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("bolt: encode asset: %w", err)
		}
		return b.Put(key, val)
	})
}

func (s *Store) AssetExists(_ context.Context, assetID asset.ID) (bool, error) {
	var exists bool
	err := s.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(bucketAssets).Get(assetKey(assetID)) != nil
		return nil
	})
	return exists, err
}

func (s *Store) NextAssetID(_ context.Context) (asset.ID, error) {
	var next asset.ID = 1
	err := s.db.View(func(tx *bolt.Tx) error {
		if val := tx.Bucket(bucketMeta).Get(keyNextAssetID); val != nil {
			next = asset.ID(binary.BigEndian.Uint64(val))
		}
		return nil
	})
	return next, err
}

func (s *Store) SetNextAssetID(_ context.Context, next asset.ID) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyNextAssetID, u64be(uint64(next)))
	})
}

// Balances

func (s *Store) GetBalance(_ context.Context, owner id.AccountID, assetID asset.ID) (uint64, error) {
	return s.getCounter(bucketBalances, ownerAssetKey(owner, assetID))
}

func (s *Store) SetBalance(_ context.Context, owner id.AccountID, assetID asset.ID, balance uint64) error {
	return s.putCounter(bucketBalances, ownerAssetKey(owner, assetID), balance)
}

func (s *Store) DeleteBalance(_ context.Context, owner id.AccountID, assetID asset.ID) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBalances).Delete(ownerAssetKey(owner, assetID))
	})
}

// Allowances

func (s *Store) GetAllowance(_ context.Context, owner, operator id.AccountID, assetID asset.ID) (uint64, error) {
	key := compositeKey(accountKey(owner), accountKey(operator), assetKey(assetID))
	return s.getCounter(bucketAllowances, key)
}

func (s *Store) SetAllowance(_ context.Context, owner, operator id.AccountID, assetID asset.ID, amount uint64) error {
	key := compositeKey(accountKey(owner), accountKey(operator), assetKey(assetID))
	if amount == 0 {
		return s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketAllowances).Delete(key)
		})
	}
	return s.putCounter(bucketAllowances, key, amount)
}

// Operator approvals

func (s *Store) GetOperatorApproval(_ context.Context, owner, operator id.AccountID) (bool, error) {
	var approved bool
	key := compositeKey(accountKey(owner), accountKey(operator))
	err := s.db.View(func(tx *bolt.Tx) error {
		approved = tx.Bucket(bucketOperators).Get(key) != nil
		return nil
	})
	return approved, err
}

func (s *Store) SetOperatorApproval(_ context.Context, owner, operator id.AccountID, approved bool) error {
	key := compositeKey(accountKey(owner), accountKey(operator))
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketOperators)
		if !approved {
			return b.Delete(key)
		}
		return b.Put(key, []byte{0x01})
	})
}

// Ownership index primitives

func (s *Store) GetOwnerPage(_ context.Context, assetID asset.ID, page uint32) ([]id.AccountID, error) {
	var owners []id.AccountID
	key := compositeKey(assetKey(assetID), u32be(page))
	err := s.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(bucketOwnerPages).Get(key)
		if val == nil {
			return nil
		}
		return json.Unmarshal(val, &owners)
	})
	return owners, err
}

func (s *Store) PutOwnerPage(_ context.Context, assetID asset.ID, page uint32, owners []id.AccountID) error {
	key := compositeKey(assetKey(assetID), u32be(page))
	val, err := json.Marshal(owners)
	if err != nil {
		return fmt.Errorf("bolt: encode owner page: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketOwnerPages).Put(key, val)
	})
}

func (s *Store) DeleteOwnerPage(_ context.Context, assetID asset.ID, page uint32) error {
	key := compositeKey(assetKey(assetID), u32be(page))
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketOwnerPages).Delete(key)
	})
}

func (s *Store) GetOwnerPageCount(_ context.Context, assetID asset.ID) (uint32, error) {
	var count uint32
	err := s.db.View(func(tx *bolt.Tx) error {
		if val := tx.Bucket(bucketPageCounts).Get(assetKey(assetID)); val != nil {
			count = binary.BigEndian.Uint32(val)
		}
		return nil
	})
	return count, err
}

func (s *Store) SetOwnerPageCount(_ context.Context, assetID asset.ID, count uint32) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPageCounts)
		if count == 0 {
			return b.Delete(assetKey(assetID))
		}
		return b.Put(assetKey(assetID), u32be(count))
	})
}

func (s *Store) GetLastActivePage(_ context.Context, assetID asset.ID) (uint32, bool, error) {
	var (
		page uint32
		ok   bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		if val := tx.Bucket(bucketLastActive).Get(assetKey(assetID)); val != nil {
			page = binary.BigEndian.Uint32(val)
			ok = true
		}
		return nil
	})
	return page, ok, err
}

func (s *Store) SetLastActivePage(_ context.Context, assetID asset.ID, page uint32) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketLastActive).Put(assetKey(assetID), u32be(page))
	})
}

func (s *Store) GetOwnerLocation(_ context.Context, assetID asset.ID, owner id.AccountID) (ownerindex.Location, bool, error) {
	var (
		loc ownerindex.Location
		ok  bool
	)
	key := assetOwnerKey(assetID, owner)
	err := s.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(bucketOwnerLocations).Get(key)
		if val == nil {
			return nil
		}
		if len(val) != 8 {
			return fmt.Errorf("bolt: corrupt owner location for asset %d", assetID)
		}
		loc.Page = binary.BigEndian.Uint32(val[:4])
		loc.Slot = binary.BigEndian.Uint32(val[4:])
		ok = true
		return nil
	})
	return loc, ok, err
}

func (s *Store) SetOwnerLocation(_ context.Context, assetID asset.ID, owner id.AccountID, loc ownerindex.Location) error {
	val := make([]byte, 8)
	binary.BigEndian.PutUint32(val[:4], loc.Page)
	binary.BigEndian.PutUint32(val[4:], loc.Slot)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketOwnerLocations).Put(assetOwnerKey(assetID, owner), val)
	})
}

func (s *Store) DeleteOwnerLocation(_ context.Context, assetID asset.ID, owner id.AccountID) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketOwnerLocations).Delete(assetOwnerKey(assetID, owner))
	})
}

func (s *Store) GetOwnerCount(_ context.Context, assetID asset.ID) (uint64, error) {
	return s.getCounter(bucketOwnerCounts, assetKey(assetID))
}

func (s *Store) SetOwnerCount(_ context.Context, assetID asset.ID, count uint64) error {
	if count == 0 {
		return s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketOwnerCounts).Delete(assetKey(assetID))
		})
	}
	return s.putCounter(bucketOwnerCounts, assetKey(assetID), count)
}

func (s *Store) HasAssetOwner(_ context.Context, assetID asset.ID, owner id.AccountID) (bool, error) {
	return s.hasFlag(bucketAssetOwners, assetOwnerKey(assetID, owner))
}

func (s *Store) SetAssetOwner(_ context.Context, assetID asset.ID, owner id.AccountID) error {
	return s.setFlag(bucketAssetOwners, assetOwnerKey(assetID, owner))
}

func (s *Store) DeleteAssetOwner(_ context.Context, assetID asset.ID, owner id.AccountID) error {
	return s.deleteFlag(bucketAssetOwners, assetOwnerKey(assetID, owner))
}

func (s *Store) HasOwnerAsset(_ context.Context, owner id.AccountID, assetID asset.ID) (bool, error) {
	return s.hasFlag(bucketOwnerAssets, ownerAssetKey(owner, assetID))
}

func (s *Store) SetOwnerAsset(_ context.Context, owner id.AccountID, assetID asset.ID) error {
	return s.setFlag(bucketOwnerAssets, ownerAssetKey(owner, assetID))
}

func (s *Store) DeleteOwnerAsset(_ context.Context, owner id.AccountID, assetID asset.ID) error {
	return s.deleteFlag(bucketOwnerAssets, ownerAssetKey(owner, assetID))
}

func (s *Store) ListOwnerAssets(_ context.Context, owner id.AccountID) ([]asset.ID, error) {
	prefix := append(accountKey(owner), 0x00)
	result := make([]asset.ID, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketOwnerAssets).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			rest := k[len(prefix):]
			if len(rest) != 8 {
				return fmt.Errorf("bolt: corrupt owner-asset key for %s", owner)
			}
			result = append(result, asset.ID(binary.BigEndian.Uint64(rest)))
		}
		return nil
	})
	return result, err
}

// Sale proposals

func (s *Store) CreateProposal(_ context.Context, p *trade.SaleProposal) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProposals)
		key := proposalKey(p.Seller, p.Buyer, p.AssetID)
		if b.Get(key) != nil {
			return fractional.ErrProposalExists
		}
		val, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("bolt: encode proposal: %w", err)
		}
		return b.Put(key, val)
	})
}

func (s *Store) GetProposal(_ context.Context, seller, buyer id.AccountID, assetID asset.ID) (*trade.SaleProposal, error) {
	var p trade.SaleProposal
	err := s.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(bucketProposals).Get(proposalKey(seller, buyer, assetID))
		if val == nil {
			return fractional.ErrProposalNotFound
		}
		return json.Unmarshal(val, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) DeleteProposal(_ context.Context, seller, buyer id.AccountID, assetID asset.ID) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProposals)
		key := proposalKey(seller, buyer, assetID)
		if b.Get(key) == nil {
			return fractional.ErrProposalNotFound
		}
		return b.Delete(key)
	})
}

func (s *Store) AddSellerSale(_ context.Context, seller id.AccountID, ref trade.Ref) error {
	return s.updateRefList(bucketSellerSales, accountKey(seller), func(refs []trade.Ref) []trade.Ref {
		return append(refs, ref)
	})
}

func (s *Store) RemoveSellerSale(_ context.Context, seller id.AccountID, ref trade.Ref) error {
	return s.updateRefList(bucketSellerSales, accountKey(seller), func(refs []trade.Ref) []trade.Ref {
		return removeRef(refs, ref)
	})
}

func (s *Store) ListSellerSales(_ context.Context, seller id.AccountID) ([]trade.Ref, error) {
	return s.getRefList(bucketSellerSales, accountKey(seller))
}

func (s *Store) AddBuyerOffer(_ context.Context, buyer id.AccountID, ref trade.Ref) error {
	return s.updateRefList(bucketBuyerOffers, accountKey(buyer), func(refs []trade.Ref) []trade.Ref {
		return append(refs, ref)
	})
}

func (s *Store) RemoveBuyerOffer(_ context.Context, buyer id.AccountID, ref trade.Ref) error {
	return s.updateRefList(bucketBuyerOffers, accountKey(buyer), func(refs []trade.Ref) []trade.Ref {
		return removeRef(refs, ref)
	})
}

func (s *Store) ListBuyerOffers(_ context.Context, buyer id.AccountID) ([]trade.Ref, error) {
	return s.getRefList(bucketBuyerOffers, accountKey(buyer))
}

// Trade history

func (s *Store) AppendTrade(_ context.Context, rec *trade.Record) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketMeta)

		var count uint64
		if val := meta.Get(keyTradeCount); val != nil {
			count = binary.BigEndian.Uint64(val)
		}
		count++
		rec.ID = count

		val, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("bolt: encode trade record: %w", err)
		}
		if err := tx.Bucket(bucketTrades).Put(u64be(rec.ID), val); err != nil {
			return err
		}
		return meta.Put(keyTradeCount, u64be(count))
	})
}

func (s *Store) GetTrade(_ context.Context, tradeID uint64) (*trade.Record, error) {
	var rec trade.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(bucketTrades).Get(u64be(tradeID))
		if val == nil {
			return fractional.ErrTradeNotFound
		}
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) TradeCount(_ context.Context) (uint64, error) {
	var count uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		if val := tx.Bucket(bucketMeta).Get(keyTradeCount); val != nil {
			count = binary.BigEndian.Uint64(val)
		}
		return nil
	})
	return count, err
}

func (s *Store) AddAssetTrade(_ context.Context, assetID asset.ID, tradeID uint64) error {
	key := compositeKey(assetKey(assetID), u64be(tradeID))
	return s.setFlag(bucketAssetTrades, key)
}

func (s *Store) ListAssetTrades(_ context.Context, assetID asset.ID) ([]uint64, error) {
	prefix := append(assetKey(assetID), 0x00)
	result := make([]uint64, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketAssetTrades).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			rest := k[len(prefix):]
			if len(rest) != 8 {
				return fmt.Errorf("bolt: corrupt asset-trade key for asset %d", assetID)
			}
			result = append(result, binary.BigEndian.Uint64(rest))
		}
		return nil
	})
	return result, err
}

// Ledger metadata

func (s *Store) GetAdmin(_ context.Context) (id.AccountID, error) {
	return s.getAccount(keyAdmin)
}

func (s *Store) SetAdmin(_ context.Context, admin id.AccountID) error {
	return s.putAccount(keyAdmin, admin)
}

func (s *Store) GetSettlementAccount(_ context.Context) (id.AccountID, error) {
	return s.getAccount(keySettlement)
}

func (s *Store) SetSettlementAccount(_ context.Context, account id.AccountID) error {
	return s.putAccount(keySettlement, account)
}

func (s *Store) GetContractURI(_ context.Context) (string, error) {
	var uri string
	err := s.db.View(func(tx *bolt.Tx) error {
		if val := tx.Bucket(bucketMeta).Get(keyContractURI); val != nil {
			uri = string(val)
		}
		return nil
	})
	return uri, err
}

func (s *Store) SetContractURI(_ context.Context, uri string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyContractURI, []byte(uri))
	})
}

// Helpers

func (s *Store) getCounter(bucket, key []byte) (uint64, error) {
	var v uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		if val := tx.Bucket(bucket).Get(key); val != nil {
			v = binary.BigEndian.Uint64(val)
		}
		return nil
	})
	return v, err
}

func (s *Store) putCounter(bucket, key []byte, v uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put(key, u64be(v))
	})
}

func (s *Store) hasFlag(bucket, key []byte) (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		ok = tx.Bucket(bucket).Get(key) != nil
		return nil
	})
	return ok, err
}

func (s *Store) setFlag(bucket, key []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put(key, []byte{0x01})
	})
}

func (s *Store) deleteFlag(bucket, key []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete(key)
	})
}

func (s *Store) getRefList(bucket, key []byte) ([]trade.Ref, error) {
	refs := make([]trade.Ref, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(bucket).Get(key)
		if val == nil {
			return nil
		}
		return json.Unmarshal(val, &refs)
	})
	return refs, err
}

func (s *Store) updateRefList(bucket, key []byte, fn func([]trade.Ref) []trade.Ref) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)

		var refs []trade.Ref
		if val := b.Get(key); val != nil {
			if err := json.Unmarshal(val, &refs); err != nil {
				return fmt.Errorf("bolt: decode ref list: %w", err)
			}
		}

		refs = fn(refs)
		if len(refs) == 0 {
			return b.Delete(key)
		}
		val, err := json.Marshal(refs)
		if err != nil {
			return fmt.Errorf("bolt: encode ref list: %w", err)
		}
		return b.Put(key, val)
	})
}

func removeRef(refs []trade.Ref, ref trade.Ref) []trade.Ref {
	for i, r := range refs {
		if r == ref {
			return append(refs[:i], refs[i+1:]...)
		}
	}
	return refs
}

func (s *Store) getAccount(key []byte) (id.AccountID, error) {
	var acct id.AccountID
	err := s.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(bucketMeta).Get(key)
		if val == nil {
			return fractional.ErrNotInitialized
		}
		parsed, err := id.ParseAny(string(val))
		if err != nil {
			return fmt.Errorf("bolt: corrupt account under %s: %w", key, err)
		}
		acct = parsed
		return nil
	})
	if err != nil {
		return id.Nil, err
	}
	return acct, nil
}

func (s *Store) putAccount(key []byte, acct id.AccountID) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(key, []byte(acct.String()))
	})
}
