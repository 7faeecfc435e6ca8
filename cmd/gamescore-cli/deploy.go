package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/govm-net/gamescore/contracts/gamescore"
	"github.com/govm-net/gamescore/core"
)

var (
	deployAccount string
	deployKind    string
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy a contract",
	Long: `Deploy a registered contract kind under an account.
Example: gamescore-cli deploy -c game.near`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		slog.Info("deploying contract", "account", deployAccount, "kind", deployKind)
		if err := engine.Deploy(deployKind, core.AccountID(deployAccount)); err != nil {
			return fmt.Errorf("failed to deploy contract: %w", err)
		}

		fmt.Printf("Contract deployed successfully!\n")
		fmt.Printf("Contract account: %s\n", deployAccount)
		return nil
	},
}

func init() {
	deployCmd.Flags().StringVarP(&deployAccount, "contract", "c", "", "Contract account (required)")
	deployCmd.Flags().StringVarP(&deployKind, "kind", "k", gamescore.Kind, "Contract kind")
	deployCmd.MarkFlagRequired("contract")
}
