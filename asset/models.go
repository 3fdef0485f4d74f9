package asset

import (
	"github.com/openfract/fractional/id"
	"github.com/openfract/fractional/types"
)

// ID identifies an asset. Ids are allocated sequentially starting at 1;
// 0 is never a valid asset id.
type ID uint64

// Asset is a fractionalized unit of value divided into a fixed supply of
// balance units. Supply only grows (via minting), never shrinks.
type Asset struct {
	types.Entity
	ID      ID           `json:"id"`
	Supply  uint64       `json:"supply"`
	Creator id.AccountID `json:"creator"`
	URI     string       `json:"uri,omitempty"`
}
