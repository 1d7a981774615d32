// Command streamload opens many subscribers on the dashboard trade stream and
// reports how many trade events they receive.
//
// Usage:
//
//	streamload --url http://localhost:8080/trade/stream --conns 1000 --dur 60s
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var cfg loadConfig

	cmd := &cobra.Command{
		Use:   "streamload",
		Short: "Load test the trade event stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Connections <= 0 {
				return fmt.Errorf("invalid conns: %d", cfg.Connections)
			}

			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("starting stream load",
				zap.String("url", cfg.URL),
				zap.Int("conns", cfg.Connections),
				zap.Duration("duration", cfg.Duration),
				zap.Duration("ramp", cfg.RampUp))

			s := runLoad(ctx, logger, newClient(cfg.Connections), cfg)

			fmt.Printf("done: connected=%d connect_errs=%d stream_errs=%d events=%d heartbeats=%d elapsed=%s events/s=%.2f\n",
				s.Connected, s.ConnectErrs, s.StreamErrs, s.Events, s.Heartbeats,
				s.Elapsed.Truncate(time.Millisecond), s.EventsPerSecond())
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.URL, "url", "http://localhost:8080/trade/stream", "trade stream URL")
	cmd.Flags().IntVar(&cfg.Connections, "conns", 1000, "number of concurrent subscribers")
	cmd.Flags().DurationVar(&cfg.Duration, "dur", 60*time.Second, "test duration (0 for until interrupted)")
	cmd.Flags().DurationVar(&cfg.RampUp, "ramp", 0, "spread subscriber starts across this window")
	cmd.Flags().DurationVar(&cfg.Report, "report", 5*time.Second, "status log interval")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
