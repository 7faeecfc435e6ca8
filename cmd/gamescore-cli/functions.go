package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/govm-net/gamescore/api"
	"github.com/govm-net/gamescore/vm"
)

var functionsKind string

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List the functions of a contract kind, or of every registered kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		return runFunctions(engine, functionsKind, os.Stdout)
	},
}

func runFunctions(machine api.VM, kind string, w io.Writer) error {
	kinds := []string{kind}
	if kind == "" {
		kinds = vm.Kinds()
	}
	for _, k := range kinds {
		names, err := machine.Functions(k)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%s\n", k, name)
		}
	}
	return nil
}

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "List deployed contracts",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		contracts, err := engine.Contracts()
		if err != nil {
			return err
		}
		for _, c := range contracts {
			fmt.Printf("%s\t%s\t%s\n", c.Account, c.Kind, c.DeployTime.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	functionsCmd.Flags().StringVarP(&functionsKind, "kind", "k", "", "Contract kind, empty lists every kind")
}
