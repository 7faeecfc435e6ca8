package vm

import (
	"fmt"
	"sort"
	"sync"

	"github.com/govm-net/gamescore/core"
)

// Handler is a contract entry point. params is the raw JSON argument object
// and the result is JSON encoded by the engine.
type Handler func(ctx core.Context, params []byte) (any, error)

// Contract exposes the entry points of a contract kind
type Contract interface {
	Functions() map[string]Handler
}

// Factory creates a Contract. Contracts hold no state between calls, all
// state lives in the context.
type Factory func() Contract

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes a contract kind deployable. It panics on a duplicate kind,
// registration happens in init.
func Register(kind string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if factory == nil {
		panic(fmt.Sprintf("vm: contract kind %s has no factory", kind))
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("vm: contract kind %s already registered", kind))
	}
	factories[kind] = factory
}

func lookup(kind string) (Factory, error) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	factory, ok := factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return factory, nil
}

// Kinds lists the registered contract kinds, sorted
func Kinds() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	out := make([]string, 0, len(factories))
	for kind := range factories {
		out = append(out, kind)
	}
	sort.Strings(out)
	return out
}
