package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/vadiminshakov/dexboard/internal/domain"
	"github.com/vadiminshakov/dexboard/internal/render"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the ERC20 and NFT transfers of an account",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&account, "account", "", "wallet address")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	d, logger, err := loadDashboard()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := commandContext(cmd, commandTimeout)
	defer cancel()

	s := session(d)
	if err := s.Validate(); err != nil {
		return err
	}
	chain := d.Config.Chain(s.ChainID)

	var transfers []domain.GenericTransfer
	loaded := false
	if s.CanTrade() {
		err = withSpinner("Loading transfers...", func() error {
			var err error
			transfers, err = d.History.Load(ctx, s)
			return err
		})
		if err != nil {
			return err
		}
		loaded = true
	}

	view := render.NewHistoryView(transfers, loaded, s.IsAuthenticated, chain)
	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(view)
	}
	return render.WriteHistory(os.Stdout, view)
}
