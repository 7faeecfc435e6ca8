package context

import (
	"fmt"
	"sort"
	"sync"

	"github.com/govm-net/gamescore/types"
)

// ContextType names a blockchain context backend
type ContextType string

const (
	// MemoryContextType keeps state in process memory
	MemoryContextType ContextType = "memory"
	// DBContextType keeps state in SQLite through gorm
	DBContextType ContextType = "db"
	// RedisContextType keeps state in a Redis server
	RedisContextType ContextType = "redis"
)

// ContextConstructor creates a new BlockchainContext from backend specific params
type ContextConstructor func(params map[string]any) (types.BlockchainContext, error)

// Registry manages the available BlockchainContext backends
type Registry interface {
	// Register adds a backend to the registry
	Register(ct ContextType, constructor ContextConstructor) error
	// SetDefault sets the default context type
	SetDefault(ct ContextType) error
	// Get returns a new instance of the specified context type
	Get(ct ContextType, params map[string]any) (types.BlockchainContext, error)
	// GetDefault returns a new instance of the default context type
	GetDefault(params map[string]any) (types.BlockchainContext, error)
	// DefaultContextType returns the current default context type
	DefaultContextType() ContextType
	// ListRegistered returns the registered context types, sorted
	ListRegistered() []ContextType
}

type registry struct {
	mu        sync.RWMutex
	contexts  map[ContextType]ContextConstructor
	defaultCt ContextType
}

var defaultRegistry Registry = NewRegistry()

// NewRegistry returns an empty registry. Backends register with the package
// level registry, a separate instance is mostly useful in tests.
func NewRegistry() Registry {
	return &registry{
		contexts: make(map[ContextType]ContextConstructor),
	}
}

// GetRegistry returns the global Registry instance
func GetRegistry() Registry {
	return defaultRegistry
}

func (r *registry) Register(ct ContextType, constructor ContextConstructor) error {
	if constructor == nil {
		return fmt.Errorf("context type %s has no constructor", ct)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contexts[ct]; exists {
		return fmt.Errorf("context type %s already registered", ct)
	}

	r.contexts[ct] = constructor
	return nil
}

func (r *registry) SetDefault(ct ContextType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contexts[ct]; !exists {
		return fmt.Errorf("context type %s not registered", ct)
	}

	r.defaultCt = ct
	return nil
}

func (r *registry) Get(ct ContextType, params map[string]any) (types.BlockchainContext, error) {
	r.mu.RLock()
	constructor, exists := r.contexts[ct]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("context type %s not found", ct)
	}
	if params == nil {
		params = make(map[string]any)
	}

	ctx, err := constructor(params)
	if err != nil {
		return nil, fmt.Errorf("create %s context: %w", ct, err)
	}
	return ctx, nil
}

func (r *registry) GetDefault(params map[string]any) (types.BlockchainContext, error) {
	r.mu.RLock()
	ct := r.defaultCt
	r.mu.RUnlock()

	if ct == "" {
		return nil, fmt.Errorf("no default context type set")
	}
	return r.Get(ct, params)
}

func (r *registry) DefaultContextType() ContextType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.defaultCt == "" {
		return MemoryContextType
	}
	return r.defaultCt
}

func (r *registry) ListRegistered() []ContextType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ContextType, 0, len(r.contexts))
	for ct := range r.contexts {
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Package level functions that delegate to defaultRegistry

// Register adds a backend to the global registry
func Register(ct ContextType, constructor ContextConstructor) error {
	return GetRegistry().Register(ct, constructor)
}

// SetDefault sets the default context type of the global registry
func SetDefault(ct ContextType) error {
	return GetRegistry().SetDefault(ct)
}

// Get returns a new instance of the specified context type.
// An empty type selects the default.
func Get(ct ContextType, params map[string]any) (types.BlockchainContext, error) {
	if ct == "" {
		ct = GetRegistry().DefaultContextType()
	}
	return GetRegistry().Get(ct, params)
}

// GetDefault returns a new instance of the default context type
func GetDefault(params map[string]any) (types.BlockchainContext, error) {
	return GetRegistry().GetDefault(params)
}

// DefaultContextType returns the default context type of the global registry
func DefaultContextType() ContextType {
	return GetRegistry().DefaultContextType()
}

// ListRegistered returns the registered context types of the global registry
func ListRegistered() []ContextType {
	return GetRegistry().ListRegistered()
}

// StringParam reads a string parameter, falling back to def
func StringParam(params map[string]any, key, def string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return def
}

// IntParam reads an int parameter, falling back to def
func IntParam(params map[string]any, key string, def int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return def
}
