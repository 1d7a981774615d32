package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/dexboard/internal/domain"
	"github.com/vadiminshakov/dexboard/internal/events"
	"github.com/vadiminshakov/dexboard/internal/render"
	"github.com/vadiminshakov/dexboard/internal/services/allowance"
	"github.com/vadiminshakov/dexboard/internal/services/catalog"
	"github.com/vadiminshakov/dexboard/internal/services/ledger"
	"github.com/vadiminshakov/dexboard/internal/services/quote"
	"github.com/vadiminshakov/dexboard/internal/services/swap"
	"github.com/vadiminshakov/dexboard/internal/services/trade"
	"github.com/vadiminshakov/dexboard/mocks"
	"go.uber.org/zap"
)

const account = "0x00000000000000000000000000000000000000aa"

var (
	eth  = domain.Token{Address: domain.NativeAddress, Symbol: "ETH", Decimals: 18}
	usdc = domain.Token{Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", Symbol: "USDC", Decimals: 6}
)

type testEnv struct {
	agg  *mocks.Aggregator
	feed *mocks.TransferFeed
	srv  *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	agg := &mocks.Aggregator{}
	agg.On("GetSupportedTokens", mock.Anything, "0x1").Return([]domain.Token{eth, usdc}, nil).Maybe()
	feed := &mocks.TransferFeed{}

	l := zap.NewNop()
	bus := events.NewBroadcaster[trade.Snapshot](64)
	cat := catalog.NewCatalog(l, agg)
	pipeline := trade.NewPipeline(l, cat, quote.NewEngine(l, agg), allowance.NewGate(l, agg), swap.NewExecutor(l, agg), bus, 100)
	history := ledger.NewHistory(l, feed)

	server := NewServer(l, ":0", pipeline, cat, history, bus, domain.KnownChains)
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)

	return &testEnv{agg: agg, feed: feed, srv: srv}
}

func (e *testEnv) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(e.srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(e.srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func connect(t *testing.T, e *testEnv) {
	t.Helper()
	resp := e.post(t, "/session", `{"account":"`+account+`","chainId":"0x1","isAuthenticated":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	resp := e.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])
}

func TestSessionLoadsTokens(t *testing.T) {
	e := newTestEnv(t)
	connect(t, e)

	body := decode[struct {
		Chain  string         `json:"chain"`
		Tokens []domain.Token `json:"tokens"`
	}](t, e.get(t, "/tokens"))

	assert.Equal(t, "0x1", body.Chain)
	require.Len(t, body.Tokens, 2)
	assert.Equal(t, "ETH", body.Tokens[0].Symbol)
}

func TestSessionRejectsBadBody(t *testing.T) {
	e := newTestEnv(t)
	resp := e.post(t, "/session", `{"unknown":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionRejectsMalformedAccount(t *testing.T) {
	e := newTestEnv(t)
	for _, body := range []string{
		`{"account":"0xabc/erc20?x=1","chainId":"0x1","isAuthenticated":true}`,
		`{"account":"../admin","chainId":"0x1","isAuthenticated":true}`,
		`{"account":"` + account + `","chainId":"mainnet","isAuthenticated":true}`,
	} {
		resp := e.post(t, "/session", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
	e.feed.AssertNotCalled(t, "ERC20Transfers", mock.Anything, mock.Anything, mock.Anything)
}

func TestDisconnectDisablesSwap(t *testing.T) {
	e := newTestEnv(t)
	connect(t, e)

	intent, err := domain.NewTradeIntent("0x1", eth, usdc, "1.5")
	require.NoError(t, err)
	e.agg.On("Quote", mock.Anything, intent).Return(domain.Quote{
		EstimatedGas:    21000,
		FromTokenAmount: intent.AmountRaw,
		ToTokenAmount:   "3000000",
		FromToken:       eth,
		ToToken:         usdc,
	}, nil)

	resp := e.post(t, "/trade/selection", `{"fromToken":"`+eth.Address+`","toToken":"`+usdc.Address+`","amount":"1.5"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, decode[tradeView](t, resp).SwapEnabled)

	req, err := http.NewRequest(http.MethodDelete, e.srv.URL+"/session", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snap := decode[trade.Snapshot](t, resp)
	assert.False(t, snap.Session.IsAuthenticated)
	assert.False(t, snap.SwapEnabled)

	resp = e.post(t, "/trade/swap", `{}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	e.agg.AssertNotCalled(t, "Swap", mock.Anything, mock.Anything)
}

func TestSelectionAndSwap(t *testing.T) {
	e := newTestEnv(t)
	connect(t, e)

	intent, err := domain.NewTradeIntent("0x1", eth, usdc, "1.5")
	require.NoError(t, err)
	e.agg.On("Quote", mock.Anything, intent).Return(domain.Quote{
		EstimatedGas:    21000,
		FromTokenAmount: intent.AmountRaw,
		ToTokenAmount:   "3000000",
		FromToken:       eth,
		ToToken:         usdc,
	}, nil)
	e.agg.On("Swap", mock.Anything, mock.Anything).Return(domain.SwapResponse{StatusCode: http.StatusOK, TxHash: "0x01"}, nil)

	resp := e.post(t, "/trade/selection", `{"fromToken":"`+eth.Address+`","toToken":"`+usdc.Address+`","amount":"1.5"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	view := decode[tradeView](t, resp)
	assert.Equal(t, trade.StageAllowanceSufficient, view.Stage)
	assert.True(t, view.SwapEnabled)
	require.NotNil(t, view.QuoteView)
	assert.Equal(t, "3.0", view.QuoteView.OutputAmount)

	resp = e.post(t, "/trade/swap", `{}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view = decode[tradeView](t, resp)
	assert.Equal(t, domain.SwapCompleteMessage, view.Outcome)
}

func TestSwapNotReadyConflict(t *testing.T) {
	e := newTestEnv(t)
	connect(t, e)

	resp := e.post(t, "/trade/swap", `{}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSelectionInvalidAmount(t *testing.T) {
	e := newTestEnv(t)
	connect(t, e)

	resp := e.post(t, "/trade/selection", `{"fromToken":"`+usdc.Address+`","toToken":"`+eth.Address+`","amount":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	view := decode[tradeView](t, resp)
	assert.NotEmpty(t, view.Error)
}

func TestHistory(t *testing.T) {
	e := newTestEnv(t)

	view := decode[render.HistoryView](t, e.get(t, "/history"))
	assert.Equal(t, render.MessageNotConnected, view.Message)

	connect(t, e)
	e.feed.On("ERC20Transfers", mock.Anything, "0x1", account).Return([]domain.ERC20Transfer{}, nil)
	e.feed.On("NFTTransfers", mock.Anything, "0x1", account).Return([]domain.NFTTransfer{}, nil)

	resp := e.get(t, "/history")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view = decode[render.HistoryView](t, resp)
	assert.True(t, view.Loaded)
	assert.Equal(t, render.MessageNoHistory, view.Message)
}

func TestTradeStream(t *testing.T) {
	e := newTestEnv(t)
	connect(t, e)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.srv.URL+"/trade/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	var event, data string
	for data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}

	assert.Equal(t, "trade", event)
	var view tradeView
	require.NoError(t, json.Unmarshal([]byte(data), &view))
	assert.Equal(t, "0x1", view.Session.ChainID)
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, errorStatus(domain.ErrInvalidAmount))
	assert.Equal(t, http.StatusUnauthorized, errorStatus(domain.ErrNotAuthenticated))
	assert.Equal(t, http.StatusConflict, errorStatus(domain.ErrNotReady))
	assert.Equal(t, http.StatusServiceUnavailable, errorStatus(domain.ErrServiceUnavailable))
	assert.Equal(t, http.StatusBadGateway, errorStatus(domain.ErrSwapRejected))
	assert.Equal(t, http.StatusInternalServerError, errorStatus(assert.AnError))
}
