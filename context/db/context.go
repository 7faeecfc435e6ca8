package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/govm-net/gamescore/context"
	"github.com/govm-net/gamescore/core"
	"github.com/govm-net/gamescore/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const (
	defaultDBPath = "./gamescore.db"
)

type DBBlock struct {
	gorm.Model
	Height uint64 `gorm:"column:height;not null;unique;index"`
	Time   int64  `gorm:"column:block_time;not null"`
	Hash   string `gorm:"column:block_hash;not null;index;size:66"`
}

func (DBBlock) TableName() string {
	return "blocks"
}

type DBTransaction struct {
	gorm.Model
	Hash        string `gorm:"column:tx_hash;not null;unique;index;size:66"`
	BlockHeight uint64 `gorm:"column:block_height;not null;index"`
	Sender      string `gorm:"column:sender;not null;index;size:64"`
	Signer      string `gorm:"column:signer;not null;size:64"`
	Contract    string `gorm:"column:contract;not null;index;size:64"`
}

func (DBTransaction) TableName() string {
	return "transactions"
}

// DBState is one key of a contract's state. Rows are hard deleted.
type DBState struct {
	ID        uint      `gorm:"primaryKey"`
	Contract  string    `gorm:"column:contract;not null;size:64;uniqueIndex:idx_contract_key"`
	Key       string    `gorm:"column:state_key;not null;size:255;uniqueIndex:idx_contract_key"`
	Value     []byte    `gorm:"column:state_value;type:blob;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (DBState) TableName() string {
	return "states"
}

// DBEvent is a contract event
type DBEvent struct {
	gorm.Model
	BlockHeight uint64 `gorm:"column:block_height;not null;index"`
	TxHash      string `gorm:"column:tx_hash;not null;index;size:66"`
	Contract    string `gorm:"column:contract;not null;index;size:64"`
	EventName   string `gorm:"column:event_name;not null;index;size:255"`
	KeyValues   []byte `gorm:"column:key_values;type:blob;not null"` // JSON encoded key-value pairs
}

func (DBEvent) TableName() string {
	return "events"
}

// Context implements types.BlockchainContext on SQLite through gorm
type Context struct {
	db     *gorm.DB
	logger *slog.Logger

	mu       sync.Mutex
	block    DBBlock
	txHash   core.Hash
	sender   core.AccountID
	signer   core.AccountID
	contract core.AccountID
}

func init() {
	context.Register(context.DBContextType, NewContext)
}

// NewContext opens (or creates) the SQLite database at params["db_path"]
func NewContext(params map[string]any) (types.BlockchainContext, error) {
	dbPath := context.StringParam(params, "db_path", defaultDBPath)
	logger := slog.Default()
	if l, ok := params["logger"].(*slog.Logger); ok && l != nil {
		logger = l
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx := &Context{db: db, logger: logger}
	if err := ctx.initDB(); err != nil {
		return nil, err
	}
	return ctx, nil
}

func (c *Context) initDB() error {
	err := c.db.AutoMigrate(
		&DBBlock{},
		&DBTransaction{},
		&DBState{},
		&DBEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SetBlockInfo records the block and makes it current
func (c *Context) SetBlockInfo(height uint64, time int64, hash core.Hash) error {
	var block DBBlock
	result := c.db.Where(DBBlock{Height: height}).
		Assign(DBBlock{Time: time, Hash: hash.String()}).
		FirstOrCreate(&block)
	if result.Error != nil {
		return fmt.Errorf("failed to save block: %w", result.Error)
	}

	c.mu.Lock()
	c.block = block
	c.mu.Unlock()
	return nil
}

// SetTransactionInfo records the transaction and makes it current
func (c *Context) SetTransactionInfo(hash core.Hash, sender, signer, contract core.AccountID) error {
	c.mu.Lock()
	height := c.block.Height
	c.mu.Unlock()

	var tx DBTransaction
	result := c.db.Where(DBTransaction{Hash: hash.String()}).
		Assign(DBTransaction{
			BlockHeight: height,
			Sender:      sender.String(),
			Signer:      signer.String(),
			Contract:    contract.String(),
		}).
		FirstOrCreate(&tx)
	if result.Error != nil {
		return fmt.Errorf("failed to save transaction: %w", result.Error)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.txHash = hash
	c.sender = sender
	c.signer = signer
	c.contract = contract
	return nil
}

// BlockHeight implements types.BlockchainContext
func (c *Context) BlockHeight() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.block.Height
}

// BlockTime implements types.BlockchainContext
func (c *Context) BlockTime() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.block.Time
}

// TransactionHash implements types.BlockchainContext
func (c *Context) TransactionHash() core.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txHash
}

// ContractAccount implements types.BlockchainContext
func (c *Context) ContractAccount() core.AccountID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contract
}

// Sender implements types.BlockchainContext
func (c *Context) Sender() core.AccountID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sender
}

// Signer implements types.BlockchainContext
func (c *Context) Signer() core.AccountID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signer
}

// GetState implements types.BlockchainContext
func (c *Context) GetState(contract core.AccountID, key string) ([]byte, error) {
	var row DBState
	result := c.db.Where("contract = ? AND state_key = ?", contract.String(), key).First(&row)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, core.ErrNotFound
	}
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get state: %w", result.Error)
	}
	return row.Value, nil
}

// Commit writes the batch and events in one SQL transaction
func (c *Context) Commit(contract core.AccountID, batch *types.Batch, events []types.Event) error {
	c.mu.Lock()
	height := c.block.Height
	txHash := c.txHash.String()
	c.mu.Unlock()

	err := c.db.Transaction(func(tx *gorm.DB) error {
		for _, w := range batch.Writes() {
			if w.Deleted {
				if err := tx.Where("contract = ? AND state_key = ?", contract.String(), w.Key).
					Delete(&DBState{}).Error; err != nil {
					return fmt.Errorf("failed to delete %s: %w", w.Key, err)
				}
				continue
			}
			row := DBState{Contract: contract.String(), Key: w.Key, Value: w.Value}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "contract"}, {Name: "state_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"state_value", "updated_at"}),
			}).Create(&row).Error; err != nil {
				return fmt.Errorf("failed to write %s: %w", w.Key, err)
			}
		}

		for _, ev := range events {
			row, err := newDBEvent(height, txHash, ev)
			if err != nil {
				return err
			}
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("failed to save event: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, ev := range events {
		c.emit(height, txHash, ev)
	}
	return nil
}

func newDBEvent(height uint64, txHash string, ev types.Event) (*DBEvent, error) {
	data, err := json.Marshal(ev.KeyValues)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return &DBEvent{
		BlockHeight: height,
		TxHash:      txHash,
		Contract:    ev.Contract.String(),
		EventName:   ev.Name,
		KeyValues:   data,
	}, nil
}

// Log implements types.BlockchainContext
func (c *Context) Log(contract core.AccountID, eventName string, keyValues ...any) {
	c.mu.Lock()
	height := c.block.Height
	txHash := c.txHash.String()
	c.mu.Unlock()

	ev := types.Event{Contract: contract, Name: eventName, KeyValues: keyValues}
	row, err := newDBEvent(height, txHash, ev)
	if err != nil {
		c.logger.Error("Failed to marshal event data", "error", err)
		return
	}
	if err := c.db.Create(row).Error; err != nil {
		c.logger.Error("Failed to save event", "error", err)
		return
	}
	c.emit(height, txHash, ev)
}

func (c *Context) emit(height uint64, txHash string, ev types.Event) {
	params := []any{
		"block", height,
		"tx", txHash,
		"contract", ev.Contract,
		"event", ev.Name,
	}
	params = append(params, ev.KeyValues...)
	c.logger.Info("Contract event", params...)
}

// LoadEvents returns the stored events of a contract, oldest first
func (c *Context) LoadEvents(contract core.AccountID) ([]types.Event, error) {
	var rows []DBEvent
	if err := c.db.Where("contract = ?", contract.String()).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	out := make([]types.Event, 0, len(rows))
	for _, row := range rows {
		var kv []any
		if err := json.Unmarshal(row.KeyValues, &kv); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event data: %w", err)
		}
		out = append(out, types.Event{Contract: core.AccountID(row.Contract), Name: row.EventName, KeyValues: kv})
	}
	return out, nil
}

// Close releases the database handle
func (c *Context) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
