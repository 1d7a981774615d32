package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vadiminshakov/dexboard/internal"
	"github.com/vadiminshakov/dexboard/internal/domain"
	"github.com/vadiminshakov/dexboard/internal/render"
	"github.com/vadiminshakov/dexboard/internal/services/trade"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <from> <to>",
	Short: "Quote a swap without submitting it",
	Long: `Quote a swap. Tokens are given by symbol or address, the amount in
human units of the source token.`,
	Example: `  dexboard quote 1.5 ETH USDC
  dexboard quote 100 USDC 0xdac17f958d2ee523a2206206994597c13d831ec7 --chain 0x1`,
	Args: cobra.ExactArgs(3),
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVar(&account, "account", "", "wallet address (enables the allowance check)")
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	d, logger, err := loadDashboard()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := commandContext(cmd, commandTimeout)
	defer cancel()

	snap, err := prepareTrade(ctx, d, args[0], args[1], args[2])
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(snap)
	}
	return printQuote(snap)
}

// prepareTrade connects the session of the flags, resolves both tokens and derives quote and allowance.
func prepareTrade(ctx context.Context, d *internal.Dashboard, amount, from, to string) (trade.Snapshot, error) {
	err := withSpinner("Fetching quote...", func() error {
		if err := d.Connect(ctx, session(d)); err != nil {
			return err
		}

		fromToken, ok := d.Catalog.Resolve(from)
		if !ok {
			return errors.Wrapf(domain.ErrInvalidIntent, "unknown token %q", from)
		}
		toToken, ok := d.Catalog.Resolve(to)
		if !ok {
			return errors.Wrapf(domain.ErrInvalidIntent, "unknown token %q", to)
		}

		return d.Pipeline.Select(ctx, trade.Selection{
			FromToken: fromToken.Address,
			ToToken:   toToken.Address,
			Amount:    amount,
		})
	})
	if err != nil {
		return trade.Snapshot{}, err
	}
	return d.Pipeline.Snapshot(), nil
}

func printQuote(snap trade.Snapshot) error {
	if snap.Quote == nil {
		return errors.Wrap(domain.ErrQuote, "no quote")
	}
	view, err := render.NewQuoteView(*snap.Quote)
	if err != nil {
		return err
	}
	if err := render.WriteQuote(os.Stdout, view); err != nil {
		return err
	}
	if snap.Session.Account != "" {
		fmt.Printf("Allowance: %s\n", snap.Allowance)
	}
	return nil
}
