package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/dexboard/internal/domain"
	"github.com/vadiminshakov/dexboard/internal/render"
	"github.com/vadiminshakov/dexboard/internal/services/trade"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
)

const (
	heartbeatInterval = 30 * time.Second
	shutdownTimeout   = 5 * time.Second
	maxBodyBytes      = 1 << 20
)

type tradePipeline interface {
	SetSession(ctx context.Context, session domain.Session) error
	Select(ctx context.Context, selection trade.Selection) error
	Swap(ctx context.Context) (domain.SwapResult, error)
	Snapshot() trade.Snapshot
	Session() domain.Session
}

type tokenList interface {
	Tokens() (string, []domain.Token)
}

type transferHistory interface {
	Load(ctx context.Context, session domain.Session) ([]domain.GenericTransfer, error)
	Transfers(session domain.Session) ([]domain.GenericTransfer, bool)
	Reset()
}

type snapshotStream interface {
	Subscribe() chan trade.Snapshot
	Unsubscribe(ch chan trade.Snapshot)
	Subscribers() int
}

// Server exposes the dashboard JSON API and the trade SSE stream.
type Server struct {
	l        *zap.Logger
	addr     string
	pipeline tradePipeline
	tokens   tokenList
	history  transferHistory
	stream   snapshotStream
	chains   []domain.Chain
}

// NewServer creates a new web server instance.
func NewServer(l *zap.Logger, addr string, pipeline tradePipeline, tokens tokenList, history transferHistory,
	stream snapshotStream, chains []domain.Chain) *Server {

	return &Server{
		l:        l,
		addr:     addr,
		pipeline: pipeline,
		tokens:   tokens,
		history:  history,
		stream:   stream,
		chains:   chains,
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /chains", s.handleChains)
	mux.HandleFunc("POST /session", s.handleSession)
	mux.HandleFunc("DELETE /session", s.handleDisconnect)
	mux.HandleFunc("GET /tokens", s.handleTokens)
	mux.HandleFunc("GET /trade", s.handleTrade)
	mux.HandleFunc("POST /trade/selection", s.handleSelection)
	mux.HandleFunc("POST /trade/swap", s.handleSwap)
	mux.HandleFunc("GET /trade/stream", s.handleTradeStream)
	mux.HandleFunc("GET /history", s.handleHistory)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.l.Info("web server listening", zap.String("addr", s.addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with automatic TLS certificates via ACME.
// It also starts an HTTP server on port 80 to handle ACME HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if len(domains) == 0 {
		return fmt.Errorf("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.l.Error("http (acme) server shutdown error", zap.Error(err))
		}
		if err := httpsSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.l.Error("https server shutdown error", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.l.Error("http (acme) server error", zap.Error(err))
		}
	}()

	s.l.Info("web server listening with TLS", zap.String("addr", s.addr), zap.Strings("domains", domains))
	if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChains(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.chains)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	var body domain.Session
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	session := domain.NewSession(body.Account, body.ChainID, body.IsAuthenticated)
	if err := session.Validate(); err != nil {
		writeError(w, errorStatus(err), err)
		return
	}

	s.applySession(w, r, session)
}

// handleDisconnect keeps account and chain but drops the wallet authentication.
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.applySession(w, r, s.pipeline.Session().WithAuthenticated(false))
}

func (s *Server) applySession(w http.ResponseWriter, r *http.Request, session domain.Session) {
	prev := s.pipeline.Session()

	// token loading outlives the request
	ctx := context.WithoutCancel(r.Context())
	err := s.pipeline.SetSession(ctx, session)

	// history is keyed by session; the reset only supersedes loads still in flight
	if prev != session {
		s.history.Reset()
	}

	if err != nil && !errors.Is(err, domain.ErrStaleResponse) {
		s.l.Error("failed to apply session", zap.Error(err))
		writeError(w, errorStatus(err), err)
		return
	}

	writeJSON(w, http.StatusOK, s.pipeline.Snapshot())
}

func (s *Server) handleTokens(w http.ResponseWriter, _ *http.Request) {
	chain, tokens := s.tokens.Tokens()
	writeJSON(w, http.StatusOK, struct {
		Chain  string         `json:"chain"`
		Tokens []domain.Token `json:"tokens"`
	}{Chain: chain, Tokens: tokens})
}

type tradeView struct {
	trade.Snapshot
	QuoteView *render.QuoteView `json:"quoteView,omitempty"`
	Outcome   string            `json:"outcome,omitempty"`
}

func newTradeView(snap trade.Snapshot) tradeView {
	view := tradeView{Snapshot: snap, Outcome: snap.Outcome()}
	if snap.Quote != nil {
		if qv, err := render.NewQuoteView(*snap.Quote); err == nil {
			view.QuoteView = &qv
		}
	}
	return view
}

func (s *Server) handleTrade(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newTradeView(s.pipeline.Snapshot()))
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var selection trade.Selection
	if err := decodeBody(r, &selection); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := s.pipeline.Select(context.WithoutCancel(r.Context()), selection)
	if err != nil && !errors.Is(err, domain.ErrStaleResponse) {
		writeJSON(w, errorStatus(err), newTradeView(s.pipeline.Snapshot()))
		return
	}

	writeJSON(w, http.StatusOK, newTradeView(s.pipeline.Snapshot()))
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	_, err := s.pipeline.Swap(context.WithoutCancel(r.Context()))
	if err != nil {
		writeJSON(w, errorStatus(err), newTradeView(s.pipeline.Snapshot()))
		return
	}
	writeJSON(w, http.StatusOK, newTradeView(s.pipeline.Snapshot()))
}

func (s *Server) handleTradeStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sub := s.stream.Subscribe()
	defer s.stream.Unsubscribe(sub)

	// send a comment heartbeat so proxies keep connection
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	streamID := uuid.NewString()
	s.l.Debug("trade stream opened", zap.String("stream", streamID), zap.Int("subscribers", s.stream.Subscribers()))

	for {
		select {
		case <-r.Context().Done():
			s.l.Debug("trade stream closed", zap.String("stream", streamID))
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case snap, ok := <-sub:
			if !ok {
				return
			}
			payload, err := json.Marshal(newTradeView(snap))
			if err != nil {
				s.l.Error("failed to marshal trade snapshot", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "id: %s-%d\n", streamID, snap.Generation)
			fmt.Fprintf(w, "event: trade\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	session := s.pipeline.Session()
	chain, _ := domain.LookupChain(s.chains, session.ChainID)

	if !session.CanTrade() {
		writeJSON(w, http.StatusOK, render.NewHistoryView(nil, false, false, chain))
		return
	}

	transfers, loaded := s.history.Transfers(session)
	if !loaded || r.URL.Query().Get("refresh") == "true" {
		var err error
		transfers, err = s.history.Load(r.Context(), session)
		switch {
		case errors.Is(err, domain.ErrStaleResponse):
			writeJSON(w, http.StatusOK, render.NewHistoryView(nil, false, true, chain))
			return
		case err != nil:
			s.l.Error("failed to load history", zap.Error(err))
			writeError(w, errorStatus(err), err)
			return
		}
		loaded = true
	}

	writeJSON(w, http.StatusOK, render.NewHistoryView(transfers, loaded, true, chain))
}
