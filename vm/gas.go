package vm

import (
	"errors"
	"fmt"
)

// ErrOutOfGas aborts a call whose meter is exhausted
var ErrOutOfGas = errors.New("out of gas")

// Gas costs charged by the execution context
const (
	GasCall    int64 = 100
	GasRead    int64 = 10
	GasWrite   int64 = 20
	GasDelete  int64 = 5
	GasLog     int64 = 5
	GasPerByte int64 = 1
)

// GasMeter tracks the gas of a single call. It is not safe for concurrent use,
// calls are serialized by the engine.
type GasMeter struct {
	gas  int64
	used int64
}

func NewGasMeter(limit int64) *GasMeter {
	return &GasMeter{gas: limit}
}

// Remaining returns the gas left
func (m *GasMeter) Remaining() int64 {
	return m.gas
}

// Used returns the gas consumed so far
func (m *GasMeter) Used() int64 {
	return m.used
}

// Consume charges amount and panics with ErrOutOfGas when the meter cannot
// cover it. The engine recovers the panic.
func (m *GasMeter) Consume(amount int64) {
	if amount <= 0 {
		return
	}

	if m.gas < amount {
		panic(fmt.Errorf("%w: gas=%d, need=%d", ErrOutOfGas, m.gas, amount))
	}

	m.gas -= amount
	m.used += amount
}
