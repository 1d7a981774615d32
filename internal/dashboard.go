package internal

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/dexboard/config"
	"github.com/vadiminshakov/dexboard/internal/clients"
	"github.com/vadiminshakov/dexboard/internal/domain"
	"github.com/vadiminshakov/dexboard/internal/events"
	"github.com/vadiminshakov/dexboard/internal/services/allowance"
	"github.com/vadiminshakov/dexboard/internal/services/catalog"
	"github.com/vadiminshakov/dexboard/internal/services/ledger"
	"github.com/vadiminshakov/dexboard/internal/services/quote"
	"github.com/vadiminshakov/dexboard/internal/services/swap"
	"github.com/vadiminshakov/dexboard/internal/services/trade"
	"github.com/vadiminshakov/dexboard/internal/web"
)

const snapshotBuffer = 256

// Dashboard wires the remote clients, the swap pipeline and the transfer history.
type Dashboard struct {
	Config     config.Config
	Aggregator *clients.AggregatorClient
	Ledger     *clients.LedgerClient
	Catalog    *catalog.Catalog
	Quotes     *quote.Engine
	Gate       *allowance.Gate
	Executor   *swap.Executor
	Pipeline   *trade.Pipeline
	History    *ledger.History
	Events     *events.Broadcaster[trade.Snapshot]

	l *zap.Logger
}

// NewDashboard builds every component from conf.
func NewDashboard(conf config.Config, logger *zap.Logger) *Dashboard {
	aggregator := clients.NewAggregatorClient(conf.AggregatorURL, conf.AggregatorAPIKey, conf.Timeout)
	ledgerClient := clients.NewLedgerClient(conf.LedgerURL, conf.LedgerAPIKey, conf.Timeout, conf.LedgerPageSize)

	bus := events.NewBroadcaster[trade.Snapshot](snapshotBuffer)
	cat := catalog.NewCatalog(logger.Named("catalog"), aggregator)
	quotes := quote.NewEngine(logger.Named("quote"), aggregator)
	gate := allowance.NewGate(logger.Named("allowance"), aggregator)
	executor := swap.NewExecutor(logger.Named("swap"), aggregator)
	pipeline := trade.NewPipeline(logger.Named("trade"), cat, quotes, gate, executor, bus, conf.SlippageBps)

	return &Dashboard{
		Config:     conf,
		Aggregator: aggregator,
		Ledger:     ledgerClient,
		Catalog:    cat,
		Quotes:     quotes,
		Gate:       gate,
		Executor:   executor,
		Pipeline:   pipeline,
		History:    ledger.NewHistory(logger.Named("history"), ledgerClient),
		Events:     bus,
		l:          logger,
	}
}

// Connect applies a wallet session: the token list of its chain is loaded.
func (d *Dashboard) Connect(ctx context.Context, session domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	if err := d.Pipeline.SetSession(ctx, session); err != nil {
		return errors.Wrap(err, "failed to apply session")
	}
	return nil
}

// Serve runs the dashboard API until ctx is done. Automatic TLS is used when domains are configured.
func (d *Dashboard) Serve(ctx context.Context) error {
	server := web.NewServer(d.l.Named("web"), d.Config.Web.Addr, d.Pipeline, d.Catalog, d.History, d.Events, d.Config.Chains)

	if len(d.Config.Web.TLSDomain) > 0 {
		return server.StartWithAutoTLS(ctx, d.Config.Web.TLSDomain, d.Config.Web.CertCache)
	}
	return server.Start(ctx)
}

// Run serves the API and feeds the pipeline from session and selection channels.
func (d *Dashboard) Run(ctx context.Context, sessions <-chan domain.Session, selections <-chan trade.Selection) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Pipeline.Run(ctx, sessions, selections)
	}()

	d.l.Info("dashboard started", zap.String("addr", d.Config.Web.Addr), zap.Int("slippage_bps", d.Config.SlippageBps))
	serveErr := d.Serve(ctx)
	cancel()

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		d.l.Error("trade pipeline stopped", zap.Error(err))
	}
	return serveErr
}
