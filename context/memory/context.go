package memory

import (
	"log/slog"
	"sync"

	"github.com/govm-net/gamescore/context"
	"github.com/govm-net/gamescore/core"
	"github.com/govm-net/gamescore/types"
)

// defaultBlockchainContext keeps all state in process memory
type defaultBlockchainContext struct {
	mu sync.Mutex

	// Block information
	blockHeight uint64
	blockTime   int64
	blockHash   core.Hash

	// Current transaction
	txHash   core.Hash
	sender   core.AccountID
	signer   core.AccountID
	contract core.AccountID

	// contract -> key -> value
	state  map[core.AccountID]map[string][]byte
	events []types.Event

	logger *slog.Logger
}

func init() {
	context.Register(context.MemoryContextType, NewBlockchainContext)
}

// NewBlockchainContext creates an empty in-memory context.
// params["logger"] may carry a *slog.Logger for contract events.
func NewBlockchainContext(params map[string]any) (types.BlockchainContext, error) {
	logger := slog.Default()
	if l, ok := params["logger"].(*slog.Logger); ok && l != nil {
		logger = l
	}
	return &defaultBlockchainContext{
		state:  make(map[core.AccountID]map[string][]byte),
		logger: logger,
	}, nil
}

func (ctx *defaultBlockchainContext) SetBlockInfo(height uint64, time int64, hash core.Hash) error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.blockHeight = height
	ctx.blockTime = time
	ctx.blockHash = hash
	return nil
}

func (ctx *defaultBlockchainContext) SetTransactionInfo(hash core.Hash, sender, signer, contract core.AccountID) error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.txHash = hash
	ctx.sender = sender
	ctx.signer = signer
	ctx.contract = contract
	return nil
}

func (ctx *defaultBlockchainContext) BlockHeight() uint64 {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.blockHeight
}

func (ctx *defaultBlockchainContext) BlockTime() int64 {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.blockTime
}

func (ctx *defaultBlockchainContext) TransactionHash() core.Hash {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.txHash
}

func (ctx *defaultBlockchainContext) ContractAccount() core.AccountID {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.contract
}

func (ctx *defaultBlockchainContext) Sender() core.AccountID {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.sender
}

func (ctx *defaultBlockchainContext) Signer() core.AccountID {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.signer
}

// GetState returns a copy of the stored value
func (ctx *defaultBlockchainContext) GetState(contract core.AccountID, key string) ([]byte, error) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	value, ok := ctx.state[contract][key]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Commit applies the batch under a single lock
func (ctx *defaultBlockchainContext) Commit(contract core.AccountID, batch *types.Batch, events []types.Event) error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	kv, ok := ctx.state[contract]
	if !ok {
		kv = make(map[string][]byte)
		ctx.state[contract] = kv
	}
	for _, w := range batch.Writes() {
		if w.Deleted {
			delete(kv, w.Key)
			continue
		}
		kv[w.Key] = w.Value
	}

	for _, ev := range events {
		ctx.events = append(ctx.events, ev)
		ctx.emit(ev.Contract, ev.Name, ev.KeyValues...)
	}
	return nil
}

// Log records events
func (ctx *defaultBlockchainContext) Log(contract core.AccountID, eventName string, keyValues ...any) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.events = append(ctx.events, types.Event{Contract: contract, Name: eventName, KeyValues: keyValues})
	ctx.emit(contract, eventName, keyValues...)
}

func (ctx *defaultBlockchainContext) emit(contract core.AccountID, eventName string, keyValues ...any) {
	params := []any{
		"contract", contract,
		"event", eventName,
	}
	params = append(params, keyValues...)
	ctx.logger.Info("Contract log", params...)
}

// Events returns every event recorded so far
func (ctx *defaultBlockchainContext) Events() []types.Event {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	out := make([]types.Event, len(ctx.events))
	copy(out, ctx.events)
	return out
}

func (ctx *defaultBlockchainContext) Close() error {
	return nil
}
