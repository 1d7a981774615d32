package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vadiminshakov/dexboard/internal/domain"
	"github.com/vadiminshakov/dexboard/internal/services/trade"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API",
	Long: `Run the dashboard JSON API and the trade event stream. The session of
--account and --chain is applied on start; clients replace it with POST /session.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&account, "account", "", "wallet address connected on start")
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	d, logger, err := loadDashboard()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if listenAddr != "" {
		d.Config.Web.Addr = listenAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := make(chan domain.Session, 1)
	sessions <- session(d)
	close(sessions)

	var selections chan trade.Selection
	if err := d.Run(ctx, sessions, selections); err != nil {
		logger.Error("dashboard stopped", zap.Error(err))
		return err
	}
	return nil
}
