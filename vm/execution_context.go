package vm

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/govm-net/gamescore/core"
	"github.com/govm-net/gamescore/types"
)

// ExecutionContext is the core.Context handed to a contract for one call.
// Writes go to a batch and events are buffered; the engine commits both only
// when the call succeeds.
type ExecutionContext struct {
	host     types.BlockchainContext
	contract core.AccountID
	batch    *types.Batch
	events   []types.Event
	gas      *GasMeter
}

func NewExecutionContext(host types.BlockchainContext, contract core.AccountID, gas *GasMeter) *ExecutionContext {
	return &ExecutionContext{
		host:     host,
		contract: contract,
		batch:    types.NewBatch(),
		gas:      gas,
	}
}

func (ctx *ExecutionContext) BlockHeight() uint64 {
	return ctx.host.BlockHeight()
}

func (ctx *ExecutionContext) BlockTime() int64 {
	return ctx.host.BlockTime()
}

func (ctx *ExecutionContext) ContractAccount() core.AccountID {
	return ctx.contract
}

func (ctx *ExecutionContext) TransactionHash() core.Hash {
	return ctx.host.TransactionHash()
}

func (ctx *ExecutionContext) Sender() core.AccountID {
	return ctx.host.Sender()
}

func (ctx *ExecutionContext) Signer() core.AccountID {
	return ctx.host.Signer()
}

// read returns the raw value of key, pending writes first
func (ctx *ExecutionContext) read(key string) ([]byte, error) {
	ctx.gas.Consume(GasRead)
	if value, deleted, found := ctx.batch.Lookup(key); found {
		if deleted {
			return nil, core.ErrNotFound
		}
		ctx.gas.Consume(int64(len(value)) * GasPerByte)
		return value, nil
	}

	value, err := ctx.host.GetState(ctx.contract, key)
	if err != nil {
		return nil, err
	}
	ctx.gas.Consume(int64(len(value)) * GasPerByte)
	return value, nil
}

// Get decodes the JSON value of key into value
func (ctx *ExecutionContext) Get(key string, value any) error {
	data, err := ctx.read(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, value); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// Set stores value as JSON under key
func (ctx *ExecutionContext) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	ctx.gas.Consume(GasWrite + int64(len(key)+len(data))*GasPerByte)
	ctx.batch.Put(key, data)
	return nil
}

// Has reports whether key holds a value. Backend failures are returned,
// never reported as absent.
func (ctx *ExecutionContext) Has(key string) (bool, error) {
	_, err := ctx.read(key)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return true, nil
}

func (ctx *ExecutionContext) Delete(key string) error {
	ctx.gas.Consume(GasDelete)
	ctx.batch.Delete(key)
	return nil
}

// Log buffers an event until the call commits
func (ctx *ExecutionContext) Log(eventName string, keyValues ...any) {
	ctx.gas.Consume(GasLog + int64(len(eventName))*GasPerByte)
	ctx.events = append(ctx.events, types.Event{
		Contract:  ctx.contract,
		Name:      eventName,
		KeyValues: keyValues,
	})
}

func (ctx *ExecutionContext) commit() error {
	return ctx.host.Commit(ctx.contract, ctx.batch, ctx.events)
}
