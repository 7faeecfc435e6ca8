package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/govm-net/gamescore/api"
	"github.com/govm-net/gamescore/core"
	"github.com/govm-net/gamescore/types"
)

var (
	execContract string
	execFunc     string
	execArgs     string
	execSender   string
	execSigner   string
	execHeight   uint64
)

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Call a contract function",
	Long: `Call a function of a deployed contract with JSON arguments.
Example: gamescore-cli execute -c game.near -f create_character -s alice.near -a '{"name":"Conan","class":"Warrior"}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		return runExecute(engine, engine.GetContext(), time.Now().UnixMilli())
	},
}

func init() {
	executeCmd.Flags().StringVarP(&execContract, "contract", "c", "", "Contract account (required)")
	executeCmd.Flags().StringVarP(&execFunc, "func", "f", "", "Function name (required)")
	executeCmd.Flags().StringVarP(&execArgs, "args", "a", "", "JSON arguments")
	executeCmd.Flags().StringVarP(&execSender, "sender", "s", "", "Sender account (required)")
	executeCmd.Flags().StringVar(&execSigner, "signer", "", "Signer account, defaults to the sender")
	executeCmd.Flags().Uint64Var(&execHeight, "height", 1, "Block height")
}

func runExecute(machine api.VM, ctx types.BlockchainContext, now int64) error {
	if execContract == "" {
		return fmt.Errorf("contract account is required")
	}
	if execFunc == "" {
		return fmt.Errorf("function name is required")
	}
	if execSender == "" {
		return fmt.Errorf("sender account is required")
	}
	signer := execSigner
	if signer == "" {
		signer = execSender
	}

	contract := core.AccountID(execContract)
	txHash := core.GetHash([]byte(fmt.Sprintf("%s/%s/%s/%d", contract, execFunc, execSender, now)))
	if err := ctx.SetBlockInfo(execHeight, now, core.GetHash(txHash[:])); err != nil {
		return fmt.Errorf("failed to set block info: %w", err)
	}
	if err := ctx.SetTransactionInfo(txHash, core.AccountID(execSender), core.AccountID(signer), contract); err != nil {
		return fmt.Errorf("failed to set transaction info: %w", err)
	}

	var params []byte
	if execArgs != "" {
		params = []byte(execArgs)
	}

	result, err := machine.Execute(contract, execFunc, params)
	if err != nil {
		return fmt.Errorf("failed to execute contract: %w", err)
	}

	if len(result) == 0 || string(result) == "null" {
		fmt.Printf("Function executed successfully with no return value (gas used: %d)\n", machine.GasUsed())
		return nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, result, "", "  "); err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	fmt.Printf("Execution result:\n%s\n", out.String())
	fmt.Printf("Gas used: %d\n", machine.GasUsed())
	return nil
}
