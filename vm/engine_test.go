package vm

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/govm-net/gamescore/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type counterContract struct{}

func (counterContract) Functions() map[string]Handler {
	return map[string]Handler{
		"incr":  incr,
		"get":   get,
		"fail":  fail,
		"abort": abort,
		"burn":  burn,
		"whoami": func(ctx core.Context, _ []byte) (any, error) {
			return map[string]any{
				"sender":   ctx.Sender(),
				"signer":   ctx.Signer(),
				"contract": ctx.ContractAccount(),
				"time":     ctx.BlockTime(),
			}, nil
		},
	}
}

func load(ctx core.Context) int {
	var n int
	if err := ctx.Get("counter", &n); err != nil && !errors.Is(err, core.ErrNotFound) {
		core.Request(err)
	}
	return n
}

func incr(ctx core.Context, params []byte) (any, error) {
	var args struct {
		By int `json:"by"`
	}
	if err := json.Unmarshal(params, &args); err != nil {
		return nil, err
	}
	if args.By == 0 {
		args.By = 1
	}
	n := load(ctx) + args.By
	core.Request(ctx.Set("counter", n))
	ctx.Log("incremented", "value", n)
	return n, nil
}

func get(ctx core.Context, _ []byte) (any, error) {
	return load(ctx), nil
}

func fail(ctx core.Context, _ []byte) (any, error) {
	core.Request(ctx.Set("counter", 1000))
	return nil, errBoom
}

func abort(ctx core.Context, _ []byte) (any, error) {
	core.Request(ctx.Set("counter", 1000))
	core.Request(false)
	return nil, nil
}

func burn(ctx core.Context, _ []byte) (any, error) {
	for i := 0; ; i++ {
		core.Request(ctx.Set(fmt.Sprintf("junk/%d", i), i))
	}
}

func init() {
	Register("counter", func() Contract { return counterContract{} })
}

func setupEngine(t *testing.T, gasLimit int64) *Engine {
	engine, err := NewEngine(&Config{
		RepositoryDir: t.TempDir(),
		GasLimit:      gasLimit,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		engine.Close()
	})

	require.NoError(t, engine.Deploy("counter", "counter.near"))
	require.NoError(t, engine.GetContext().SetTransactionInfo(core.ZeroHash, "alice.near", "bob.near", "counter.near"))
	return engine
}

func TestNewEngineInvalidConfig(t *testing.T) {
	_, err := NewEngine(nil)
	assert.Error(t, err)

	_, err = NewEngine(&Config{})
	assert.Error(t, err)

	_, err = NewEngine(&Config{RepositoryDir: t.TempDir(), GasLimit: -1})
	assert.Error(t, err)

	_, err = NewEngine(&Config{RepositoryDir: t.TempDir(), ContextType: "nope"})
	assert.Error(t, err)
}

func TestExecute(t *testing.T) {
	engine := setupEngine(t, 0)

	out, err := engine.Execute("counter.near", "incr", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `1`, string(out))
	assert.Greater(t, engine.GasUsed(), GasCall)

	out, err = engine.Execute("counter.near", "incr", []byte(`{"by":5}`))
	require.NoError(t, err)
	assert.JSONEq(t, `6`, string(out))

	out, err = engine.Execute("counter.near", "get", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `6`, string(out))
}

func TestExecuteIdentity(t *testing.T) {
	engine := setupEngine(t, 0)
	require.NoError(t, engine.GetContext().SetBlockInfo(3, 1700000000000, core.ZeroHash))

	out, err := engine.Execute("counter.near", "whoami", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sender":"alice.near","signer":"bob.near","contract":"counter.near","time":1700000000000}`, string(out))
}

func TestFailedCallDiscardsWrites(t *testing.T) {
	engine := setupEngine(t, 0)

	_, err := engine.Execute("counter.near", "incr", nil)
	require.NoError(t, err)

	_, err = engine.Execute("counter.near", "fail", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "fail", execErr.Function)
	assert.Equal(t, core.AccountID("counter.near"), execErr.Contract)

	_, err = engine.Execute("counter.near", "abort", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")

	out, err := engine.Execute("counter.near", "get", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `1`, string(out))
}

func TestOutOfGas(t *testing.T) {
	engine := setupEngine(t, 2000)

	_, err := engine.Execute("counter.near", "burn", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfGas)
	assert.LessOrEqual(t, engine.GasUsed(), int64(2000))

	_, err = engine.GetContext().GetState("counter.near", "junk/0")
	assert.ErrorIs(t, err, core.ErrNotFound)

	// a call below the limit still works
	_, err = engine.Execute("counter.near", "incr", nil)
	assert.NoError(t, err)
}

func TestUnknownTargets(t *testing.T) {
	engine := setupEngine(t, 0)

	_, err := engine.Execute("counter.near", "nope", nil)
	assert.ErrorIs(t, err, ErrFunctionNotFound)

	_, err = engine.Execute("missing.near", "incr", nil)
	assert.Error(t, err)

	assert.ErrorIs(t, engine.Deploy("nope", "x.near"), ErrUnknownKind)
	assert.Error(t, engine.Deploy("counter", "counter.near"))

	_, err = engine.Execute("counter.near", "incr", make([]byte, 70*1024))
	assert.ErrorIs(t, err, ErrArgsTooLarge)
}

func TestFunctions(t *testing.T) {
	engine := setupEngine(t, 0)

	names, err := engine.Functions("counter")
	require.NoError(t, err)
	assert.Equal(t, []string{"abort", "burn", "fail", "get", "incr", "whoami"}, names)

	_, err = engine.Functions("nope")
	assert.ErrorIs(t, err, ErrUnknownKind)

	assert.Contains(t, Kinds(), "counter")
}

func TestContracts(t *testing.T) {
	engine := setupEngine(t, 0)

	list, err := engine.Contracts()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "counter", list[0].Kind)
}
