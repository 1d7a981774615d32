package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vadiminshakov/dexboard/internal/domain"
	"github.com/vadiminshakov/dexboard/internal/render"
)

const commandTimeout = 2 * time.Minute

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "List the tradable tokens of a chain",
	RunE:  runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, _ []string) error {
	d, logger, err := loadDashboard()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := commandContext(cmd, commandTimeout)
	defer cancel()

	s := session(d)
	var tokens []domain.Token
	err = withSpinner("Loading tokens...", func() error {
		var err error
		tokens, err = d.Catalog.ListTokens(ctx, s.ChainID)
		return err
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(tokens)
	}
	return render.WriteTokens(os.Stdout, tokens)
}
