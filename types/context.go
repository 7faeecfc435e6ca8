// Package types contains the host-side interfaces shared by the engine and
// the blockchain context backends.
package types

import (
	"github.com/govm-net/gamescore/core"
)

// Event is a contract log entry. Events of a call are persisted with its writes.
type Event struct {
	Contract  core.AccountID `json:"contract"`
	Name      string         `json:"name"`
	KeyValues []any          `json:"key_values,omitempty"`
}

// BlockchainContext is the state and environment provider behind the engine
type BlockchainContext interface {
	// set block info and transaction info
	SetBlockInfo(height uint64, time int64, hash core.Hash) error
	SetTransactionInfo(hash core.Hash, sender, signer, contract core.AccountID) error

	// chain information
	BlockHeight() uint64             // current block height
	BlockTime() int64                // current block timestamp in milliseconds
	TransactionHash() core.Hash      // current transaction hash
	ContractAccount() core.AccountID // contract of the current transaction
	Sender() core.AccountID          // caller of the current transaction
	Signer() core.AccountID          // signer of the current transaction

	// state
	GetState(contract core.AccountID, key string) ([]byte, error) // core.ErrNotFound if missing
	Commit(contract core.AccountID, batch *Batch, events []Event) error

	// logs and events outside of a commit
	Log(contract core.AccountID, eventName string, keyValues ...any)

	Close() error
}
