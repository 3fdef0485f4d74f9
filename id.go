package fractional

import "github.com/openfract/fractional/id"

// AccountID is the identifier type for all Fractional accounts.
type AccountID = id.AccountID

// Prefix identifies the identity type encoded in a TypeID.
type Prefix = id.Prefix
