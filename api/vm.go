// Package api provides the interfaces between the host and the contract engine.
// It is not used by contracts directly.
package api

import (
	"github.com/govm-net/gamescore/core"
)

// VM represents the engine that executes contracts
type VM interface {
	// Deploy binds a registered contract kind to an account
	Deploy(kind string, account core.AccountID) error

	// Execute calls a function of a deployed contract with JSON args and
	// returns its JSON encoded result
	Execute(contract core.AccountID, function string, args []byte) ([]byte, error)

	// Functions lists the entry points of a contract kind
	Functions(kind string) ([]string, error)

	// GasUsed reports the gas consumed by the last Execute
	GasUsed() int64

	Close() error
}

// ContractConfig defines limits applied to each contract call
type ContractConfig struct {
	// MaxGas is the maximum amount of gas that can be used by a call
	MaxGas int64

	// MaxArgsSize is the maximum size of the JSON args of a call
	MaxArgsSize int
}

// DefaultContractConfig returns a default configuration for contracts
func DefaultContractConfig() ContractConfig {
	return ContractConfig{
		MaxGas:      1000000,
		MaxArgsSize: 64 * 1024,
	}
}
