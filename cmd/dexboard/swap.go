package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vadiminshakov/dexboard/internal/domain"
	"github.com/vadiminshakov/dexboard/internal/services/swap"
)

var noConfirm bool

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <from> <to>",
	Short: "Quote and submit a swap",
	Long: `Quote a swap, approve the source token when its allowance is
insufficient and submit the swap for the given account.`,
	Example: `  dexboard swap 1.5 ETH USDC --account 0x...
  dexboard swap 100 USDC DAI --account 0x... --chain 0x89 --yes`,
	Args: cobra.ExactArgs(3),
	RunE: runSwap,
}

func init() {
	swapCmd.Flags().StringVar(&account, "account", "", "wallet address (required)")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "skip the confirmation prompt")
	_ = swapCmd.MarkFlagRequired("account")
	rootCmd.AddCommand(swapCmd)
}

func runSwap(cmd *cobra.Command, args []string) error {
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
	if err := printQuote(snap); err != nil {
		return err
	}

	if !noConfirm {
		confirmed := false
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Swap %s %s for %s with %s%% slippage?",
						snap.Selection.Amount, args[1], args[2], swap.SlippagePercent(d.Config.SlippageBps))).
					Affirmative("Swap").
					Negative("Cancel").
					Value(&confirmed),
			),
		).Run()
		if err != nil {
			return err
		}
		if !confirmed {
			return errors.New("swap cancelled")
		}
	}

	var result domain.SwapResult
	swapErr := withSpinner("Submitting swap...", func() error {
		var err error
		result, err = d.Pipeline.Swap(ctx)
		return err
	})

	if jsonOutput {
		if err := json.NewEncoder(os.Stdout).Encode(d.Pipeline.Snapshot()); err != nil {
			return err
		}
		return swapErr
	}

	if swapErr != nil {
		return swapErr
	}

	printSuccess(domain.SwapCompleteMessage)
	if result.TxHash != "" {
		tx := result.TxHash
		if chain, ok := domain.LookupChain(d.Config.Chains, snap.Session.ChainID); ok && chain.Explorer != "" {
			tx = chain.TxURL(result.TxHash)
		}
		fmt.Printf("%s %s\n", color.CyanString("Transaction:"), tx)
	}
	return nil
}
