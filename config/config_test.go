package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGetDefaults(t *testing.T) {
	cfg, err := Get("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSlippageBps, cfg.SlippageBps)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "https://etherscan.io/tx/0x1", cfg.Chain("0x1").TxURL("0x1"))
}

func TestGetYaml(t *testing.T) {
	path := writeConfig(t, `
aggregator:
  url: http://aggregator.local
  api_key: agg-key
ledger:
  url: http://ledger.local
  page_size: 50
timeout: 10s
slippage_bps: 50
default_chain: "0x89"
chains:
  - id: "0x89"
    explorer: https://explorer.polygon.local/
  - id: "0x5"
    name: Goerli
    explorer: https://goerli.etherscan.io/
web:
  addr: ":9000"
  tls_domains: [dex.example.com]
`)

	cfg, err := Get(path)
	require.NoError(t, err)
	assert.Equal(t, "http://aggregator.local", cfg.AggregatorURL)
	assert.Equal(t, "agg-key", cfg.AggregatorAPIKey)
	assert.Equal(t, "http://ledger.local", cfg.LedgerURL)
	assert.Equal(t, 50, cfg.LedgerPageSize)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 50, cfg.SlippageBps)
	assert.Equal(t, "0x89", cfg.DefaultChain)
	assert.Equal(t, ":9000", cfg.Web.Addr)
	assert.Equal(t, []string{"dex.example.com"}, cfg.Web.TLSDomain)

	polygon := cfg.Chain("0x89")
	assert.Equal(t, "Polygon", polygon.Name)
	assert.Equal(t, "https://explorer.polygon.local/", polygon.Explorer)
	assert.Equal(t, "Goerli", cfg.Chain("0x5").Name)
	assert.Equal(t, "", cfg.Chain("0x2").Explorer)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvAggregatorAPIKey, "env-agg")
	t.Setenv(EnvLedgerAPIKey, "env-ledger")
	t.Setenv(EnvAggregatorURL, "http://env-aggregator")
	t.Setenv(EnvLedgerURL, "http://env-ledger")

	path := writeConfig(t, "aggregator:\n  api_key: file-key\n")
	cfg, err := Get(path)
	require.NoError(t, err)
	assert.Equal(t, "env-agg", cfg.AggregatorAPIKey)
	assert.Equal(t, "env-ledger", cfg.LedgerAPIKey)
	assert.Equal(t, "http://env-aggregator", cfg.AggregatorURL)
	assert.Equal(t, "http://env-ledger", cfg.LedgerURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "zero slippage", content: "slippage_bps: 0\n"},
		{name: "huge slippage", content: "slippage_bps: 9000\n"},
		{name: "bad default chain", content: "default_chain: mainnet\n"},
		{name: "bad chain id", content: "chains:\n  - id: polygon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Get(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestGetMissingFile(t *testing.T) {
	_, err := Get(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.AggregatorAPIKey = "k"
	cfg.SlippageBps = 75

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(path, cfg))

	loaded, err := Get(path)
	require.NoError(t, err)
	assert.Equal(t, 75, loaded.SlippageBps)
	assert.Equal(t, "k", loaded.AggregatorAPIKey)
	assert.Len(t, loaded.Chains, len(cfg.Chains))
}
