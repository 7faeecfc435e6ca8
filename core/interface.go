// Package core defines the interfaces a contract uses to talk to its host.
// Contract authors only need the types in this package.
package core

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// AccountID is the opaque account name supplied by the host
type AccountID string

// Hash identifies a block or transaction
type Hash [32]byte

var ZeroHash = Hash{}

// ErrNotFound is returned by Context.Get when the key holds no value
var ErrNotFound = errors.New("key not found")

func (id AccountID) String() string {
	return string(id)
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func HashFromString(str string) Hash {
	str = strings.TrimPrefix(str, "0x")
	b, err := hex.DecodeString(str)
	if err != nil {
		return ZeroHash
	}
	var h Hash
	copy(h[:], b)
	return h
}

// Context is the contract's view of the chain for a single call
type Context interface {
	// chain information
	BlockHeight() uint64        // current block height
	BlockTime() int64           // current block timestamp in milliseconds
	ContractAccount() AccountID // account the contract is deployed to
	TransactionHash() Hash      // hash of the current transaction

	// caller identity
	Sender() AccountID // direct caller of the function
	Signer() AccountID // account that signed the transaction

	// state, values are JSON encoded
	Get(key string, value any) error // ErrNotFound if missing
	Set(key string, value any) error
	Has(key string) (bool, error)
	Delete(key string) error

	// events
	Log(eventName string, keyValues ...any)
}

// Request aborts the current call when condition is false or a non-nil error.
// The engine recovers the panic and discards the call's writes.
func Request(condition any) {
	switch v := condition.(type) {
	case bool:
		if !v {
			panic("request failed")
		}
	case error:
		if v != nil {
			panic(v)
		}
	case nil:
	default:
		panic(fmt.Sprintf("request: unsupported condition %T", condition))
	}
}
