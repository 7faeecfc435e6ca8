// Package redis keeps contract state in a Redis server. Each commit is a
// single MULTI/EXEC transaction.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	vmcontext "github.com/govm-net/gamescore/context"
	"github.com/govm-net/gamescore/core"
	"github.com/govm-net/gamescore/types"
)

const (
	defaultAddr   = "localhost:6379"
	defaultPrefix = "gamescore"

	opTimeout = 5 * time.Second
)

// Context implements types.BlockchainContext on Redis
type Context struct {
	rdb    *redis.Client
	prefix string
	logger *slog.Logger

	mu          sync.Mutex
	blockHeight uint64
	blockTime   int64
	blockHash   core.Hash
	txHash      core.Hash
	sender      core.AccountID
	signer      core.AccountID
	contract    core.AccountID
}

func init() {
	vmcontext.Register(vmcontext.RedisContextType, NewContext)
}

// NewContext connects to params["addr"] and pings the server.
// Optional params: password, db, prefix, logger.
func NewContext(params map[string]any) (types.BlockchainContext, error) {
	logger := slog.Default()
	if l, ok := params["logger"].(*slog.Logger); ok && l != nil {
		logger = l
	}
	addr := vmcontext.StringParam(params, "addr", defaultAddr)
	db := vmcontext.IntParam(params, "db", 0)

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     vmcontext.StringParam(params, "password", ""),
		DB:           db,
		DialTimeout:  opTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Debug("Connected to Redis", "addr", addr, "db", db)

	return &Context{
		rdb:    rdb,
		prefix: vmcontext.StringParam(params, "prefix", defaultPrefix),
		logger: logger,
	}, nil
}

func (c *Context) stateKey(contract core.AccountID, key string) string {
	return fmt.Sprintf("%s:state:%s:%s", c.prefix, contract, key)
}

func (c *Context) eventsKey(contract core.AccountID) string {
	return fmt.Sprintf("%s:events:%s", c.prefix, contract)
}

func (c *Context) blockKey(height uint64) string {
	return fmt.Sprintf("%s:block:%d", c.prefix, height)
}

// SetBlockInfo stores the block header and makes it current
func (c *Context) SetBlockInfo(height uint64, blockTime int64, hash core.Hash) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := c.rdb.HSet(ctx, c.blockKey(height), "time", blockTime, "hash", hash.String()).Err(); err != nil {
		return fmt.Errorf("failed to save block: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.blockHeight = height
	c.blockTime = blockTime
	c.blockHash = hash
	return nil
}

func (c *Context) SetTransactionInfo(hash core.Hash, sender, signer, contract core.AccountID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txHash = hash
	c.sender = sender
	c.signer = signer
	c.contract = contract
	return nil
}

func (c *Context) BlockHeight() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blockHeight
}

func (c *Context) BlockTime() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blockTime
}

func (c *Context) TransactionHash() core.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txHash
}

func (c *Context) ContractAccount() core.AccountID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contract
}

func (c *Context) Sender() core.AccountID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sender
}

func (c *Context) Signer() core.AccountID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signer
}

// GetState implements types.BlockchainContext
func (c *Context) GetState(contract core.AccountID, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	value, err := c.rdb.Get(ctx, c.stateKey(contract, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state: %w", err)
	}
	return value, nil
}

// Commit applies the batch and appends the events inside MULTI/EXEC
func (c *Context) Commit(contract core.AccountID, batch *types.Batch, events []types.Event) error {
	encoded := make([]any, 0, len(events))
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		encoded = append(encoded, data)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, w := range batch.Writes() {
			key := c.stateKey(contract, w.Key)
			if w.Deleted {
				pipe.Del(ctx, key)
				continue
			}
			pipe.Set(ctx, key, w.Value, 0)
		}
		if len(encoded) > 0 {
			pipe.RPush(ctx, c.eventsKey(contract), encoded...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	for _, ev := range events {
		c.emit(ev)
	}
	return nil
}

// Log appends a single event outside of a commit
func (c *Context) Log(contract core.AccountID, eventName string, keyValues ...any) {
	ev := types.Event{Contract: contract, Name: eventName, KeyValues: keyValues}
	data, err := json.Marshal(ev)
	if err != nil {
		c.logger.Error("Failed to marshal event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := c.rdb.RPush(ctx, c.eventsKey(contract), data).Err(); err != nil {
		c.logger.Error("Failed to save event", "error", err)
		return
	}
	c.emit(ev)
}

func (c *Context) emit(ev types.Event) {
	params := []any{
		"block", c.BlockHeight(),
		"contract", ev.Contract,
		"event", ev.Name,
	}
	params = append(params, ev.KeyValues...)
	c.logger.Info("Contract event", params...)
}

// LoadEvents returns the stored events of a contract, oldest first
func (c *Context) LoadEvents(contract core.AccountID) ([]types.Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	raw, err := c.rdb.LRange(ctx, c.eventsKey(contract), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	out := make([]types.Event, 0, len(raw))
	for _, item := range raw {
		var ev types.Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		out = append(out, ev)
	}
	return out, nil
}

func (c *Context) Close() error {
	return c.rdb.Close()
}
