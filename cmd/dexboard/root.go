package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vadiminshakov/dexboard/config"
	"github.com/vadiminshakov/dexboard/internal"
	"github.com/vadiminshakov/dexboard/internal/domain"
)

var (
	configPath string
	verbose    bool
	jsonOutput bool
	chainID    string
	account    string
)

var rootCmd = &cobra.Command{
	Use:   "dexboard",
	Short: "DEX swap dashboard",
	Long: `dexboard quotes and executes token swaps through a DEX aggregator
and shows the ERC20 and NFT transfer history of a wallet.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to yaml config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "development logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of tables")
	rootCmd.PersistentFlags().StringVar(&chainID, "chain", "", "chain id in hex (default from config)")
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadDashboard reads the config and builds the dashboard with a logger that must be synced by the caller.
func loadDashboard() (*internal.Dashboard, *zap.Logger, error) {
	conf, err := config.Get(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return internal.NewDashboard(conf, logger), logger, nil
}

// session builds the wallet session from the flags. An empty account is an unauthenticated session.
func session(d *internal.Dashboard) domain.Session {
	chain := chainID
	if chain == "" {
		chain = d.Config.DefaultChain
	}
	return domain.NewSession(account, chain, account != "")
}

func withSpinner(suffix string, fn func() error) error {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + suffix
	s.Writer = os.Stderr
	s.Start()
	defer s.Stop()
	return fn()
}

func commandContext(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func printError(err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintf(os.Stderr, "Error: ")
	fmt.Fprintln(os.Stderr, err)
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen, color.Bold)
	green.Println(msg)
}
