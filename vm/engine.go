// Package vm runs registered contracts against a blockchain context backend.
package vm

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/govm-net/gamescore/api"
	"github.com/govm-net/gamescore/context"
	_ "github.com/govm-net/gamescore/context/memory"
	"github.com/govm-net/gamescore/core"
	"github.com/govm-net/gamescore/repository"
	"github.com/govm-net/gamescore/types"
)

var (
	ErrUnknownKind      = errors.New("unknown contract kind")
	ErrFunctionNotFound = errors.New("function not found")
	ErrArgsTooLarge     = errors.New("arguments too large")
)

// ExecutionError is returned when a contract call fails. Err is the
// contract's own error, or the recovered panic.
type ExecutionError struct {
	Contract core.AccountID
	Function string
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute %s.%s: %v", e.Contract, e.Function, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Engine is responsible for contract deployment and execution
type Engine struct {
	config      *Config
	codeManager *repository.Manager
	ctx         types.BlockchainContext
	logger      *slog.Logger

	mu      sync.Mutex
	gasUsed int64
}

var _ api.VM = (*Engine)(nil)

// Config represents engine configuration
type Config struct {
	ContextType   string         // Blockchain context type, empty selects the default
	ContextParams map[string]any // Blockchain context parameters
	RepositoryDir string         // Deployment metadata directory
	GasLimit      int64          // Gas available to each call, 0 uses the default
	MaxArgsSize   int            // Maximum JSON args size, 0 uses the default
	Logger        *slog.Logger
}

// NewEngine creates a new contract engine
func NewEngine(config *Config) (*Engine, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	defaults := api.DefaultContractConfig()
	if config.GasLimit == 0 {
		config.GasLimit = defaults.MaxGas
	}
	if config.MaxArgsSize == 0 {
		config.MaxArgsSize = defaults.MaxArgsSize
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	codeManager, err := repository.NewManager(config.RepositoryDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create code manager: %w", err)
	}

	params := make(map[string]any, len(config.ContextParams)+1)
	for k, v := range config.ContextParams {
		params[k] = v
	}
	if _, ok := params["logger"]; !ok {
		params["logger"] = logger
	}
	ctx, err := context.Get(context.ContextType(config.ContextType), params)
	if err != nil {
		return nil, fmt.Errorf("failed to get context: %w", err)
	}

	return &Engine{
		config:      config,
		codeManager: codeManager,
		ctx:         ctx,
		logger:      logger,
	}, nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	if config.RepositoryDir == "" {
		return fmt.Errorf("repository directory is empty")
	}

	if config.GasLimit < 0 {
		return fmt.Errorf("invalid gas limit: %d", config.GasLimit)
	}

	if config.MaxArgsSize < 0 {
		return fmt.Errorf("invalid max args size: %d", config.MaxArgsSize)
	}

	return nil
}

// GetContext returns the blockchain context. Callers set block and
// transaction info on it before Execute.
func (e *Engine) GetContext() types.BlockchainContext {
	return e.ctx
}

// Deploy binds kind to account
func (e *Engine) Deploy(kind string, account core.AccountID) error {
	if _, err := lookup(kind); err != nil {
		return err
	}
	if _, err := e.codeManager.RegisterContract(account, kind); err != nil {
		return fmt.Errorf("failed to register contract: %w", err)
	}
	e.logger.Info("Contract deployed", "contract", account, "kind", kind)
	return nil
}

// Contracts lists the deployments
func (e *Engine) Contracts() ([]*repository.ContractMetadata, error) {
	return e.codeManager.ListContracts()
}

// Functions lists the entry points of kind, sorted
func (e *Engine) Functions(kind string) ([]string, error) {
	factory, err := lookup(kind)
	if err != nil {
		return nil, err
	}
	handlers := factory().Functions()
	out := make([]string, 0, len(handlers))
	for name := range handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Execute calls function on the contract deployed to contract. args is a JSON
// object, empty args are treated as {}. The call's writes and events are
// committed only when the handler succeeds.
func (e *Engine) Execute(contract core.AccountID, function string, args []byte) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gasUsed = 0

	if len(args) > e.config.MaxArgsSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrArgsTooLarge, len(args), e.config.MaxArgsSize)
	}
	if len(args) == 0 {
		args = []byte("{}")
	}

	metadata, err := e.codeManager.GetContract(contract)
	if err != nil {
		return nil, err
	}
	factory, err := lookup(metadata.Kind)
	if err != nil {
		return nil, err
	}
	handler, ok := factory().Functions()[function]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, function)
	}

	gas := NewGasMeter(e.config.GasLimit)
	execCtx := NewExecutionContext(e.ctx, contract, gas)

	result, err := e.call(execCtx, handler, args)
	e.gasUsed = gas.Used()
	if err != nil {
		e.ctx.Log(contract, "execution_reverted",
			"function", function,
			"sender", e.ctx.Sender(),
			"error", err.Error(),
		)
		return nil, &ExecutionError{Contract: contract, Function: function, Err: err}
	}

	out, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := execCtx.commit(); err != nil {
		return nil, fmt.Errorf("failed to commit %s.%s: %w", contract, function, err)
	}

	e.logger.Debug("Contract executed",
		"contract", contract,
		"function", function,
		"gas", e.gasUsed,
		"gas_left", gas.Remaining(),
	)
	return out, nil
}

// call runs the handler and turns panics into errors
func (e *Engine) call(ctx *ExecutionContext, handler Handler, args []byte) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case error:
				err = v
			default:
				err = fmt.Errorf("panic: %v", v)
			}
		}
	}()

	ctx.gas.Consume(GasCall + int64(len(args))*GasPerByte)
	return handler(ctx, args)
}

// GasUsed reports the gas consumed by the last Execute
func (e *Engine) GasUsed() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gasUsed
}

// Close closes the blockchain context
func (e *Engine) Close() error {
	if err := e.ctx.Close(); err != nil {
		return fmt.Errorf("failed to close context: %w", err)
	}
	return nil
}
