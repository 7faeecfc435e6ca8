package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/govm-net/gamescore/config"
	_ "github.com/govm-net/gamescore/context/db"
	_ "github.com/govm-net/gamescore/context/redis"
	_ "github.com/govm-net/gamescore/contracts/gamescore"
	"github.com/govm-net/gamescore/vm"
)

var (
	envFile     string
	contextType string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "gamescore-cli",
	Short: "Game score contract command line tool",
	Long: `Command line tool for deploying and calling the game score contract.
Settings come from GAMESCORE_* environment variables or a .env file; flags override them.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file")
	rootCmd.PersistentFlags().StringVar(&contextType, "context", "", "Context backend: memory, db or redis")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(executeCmd)
	rootCmd.AddCommand(functionsCmd)
	rootCmd.AddCommand(contractsCmd)
}

// newEngine loads the configuration, applies flag overrides, installs the
// logger and opens the engine.
func newEngine() (*vm.Engine, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if contextType != "" {
		cfg.ContextType = contextType
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	engine, err := vm.NewEngine(cfg.EngineConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create VM engine: %w", err)
	}
	return engine, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
