package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vadiminshakov/dexboard/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	EnvAggregatorAPIKey = "DEXBOARD_AGGREGATOR_API_KEY"
	EnvLedgerAPIKey     = "DEXBOARD_LEDGER_API_KEY"
	EnvAggregatorURL    = "DEXBOARD_AGGREGATOR_URL"
	EnvLedgerURL        = "DEXBOARD_LEDGER_URL"

	DefaultAggregatorURL = "https://api.1inch.io/v4.0"
	DefaultLedgerURL     = "https://deep-index.moralis.io/api/v2"
	DefaultTimeout       = 30 * time.Second
	DefaultSlippageBps   = 100
	DefaultListenAddr    = ":8080"
	DefaultChain         = "0x1"
	DefaultPageSize      = 100

	maxSlippageBps = 5000
)

// Config runtime settings of the dashboard.
type Config struct {
	AggregatorURL    string
	AggregatorAPIKey string
	LedgerURL        string
	LedgerAPIKey     string
	Timeout          time.Duration
	SlippageBps      int
	LedgerPageSize   int
	DefaultChain     string
	Chains           []domain.Chain
	Web              WebConfig
}

// WebConfig dashboard API listener.
type WebConfig struct {
	Addr      string
	TLSDomain []string
	CertCache string
}

// ConfigTmp yaml shape of Config.
type ConfigTmp struct {
	Aggregator struct {
		URL    string `yaml:"url"`
		APIKey string `yaml:"api_key"`
	} `yaml:"aggregator"`
	Ledger struct {
		URL      string `yaml:"url"`
		APIKey   string `yaml:"api_key"`
		PageSize int    `yaml:"page_size,omitempty"`
	} `yaml:"ledger"`
	Timeout      time.Duration  `yaml:"timeout,omitempty"`
	SlippageBps  *int           `yaml:"slippage_bps,omitempty"`
	DefaultChain string         `yaml:"default_chain,omitempty"`
	Chains       []domain.Chain `yaml:"chains,omitempty"`
	Web          struct {
		Addr       string   `yaml:"addr"`
		TLSDomains []string `yaml:"tls_domains,omitempty"`
		CertCache  string   `yaml:"cert_cache,omitempty"`
	} `yaml:"web"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	chains := make([]domain.Chain, len(domain.KnownChains))
	copy(chains, domain.KnownChains)

	return Config{
		AggregatorURL:  DefaultAggregatorURL,
		LedgerURL:      DefaultLedgerURL,
		Timeout:        DefaultTimeout,
		SlippageBps:    DefaultSlippageBps,
		LedgerPageSize: DefaultPageSize,
		DefaultChain:   DefaultChain,
		Chains:         chains,
		Web:            WebConfig{Addr: DefaultListenAddr},
	}
}

// Get loads .env (if present), the yaml file at path (if not empty) and applies environment overrides.
func Get(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		var err error
		cfg, err = getYaml(path)
		if err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, fmt.Errorf("incorrect yaml config %s: %w", path, err)
	}

	return fromTmp(tmp), nil
}

func fromTmp(tmp ConfigTmp) Config {
	cfg := Default()

	if tmp.Aggregator.URL != "" {
		cfg.AggregatorURL = tmp.Aggregator.URL
	}
	cfg.AggregatorAPIKey = tmp.Aggregator.APIKey
	if tmp.Ledger.URL != "" {
		cfg.LedgerURL = tmp.Ledger.URL
	}
	cfg.LedgerAPIKey = tmp.Ledger.APIKey
	if tmp.Ledger.PageSize > 0 {
		cfg.LedgerPageSize = tmp.Ledger.PageSize
	}
	if tmp.Timeout > 0 {
		cfg.Timeout = tmp.Timeout
	}
	if tmp.SlippageBps != nil {
		cfg.SlippageBps = *tmp.SlippageBps
	}
	if tmp.DefaultChain != "" {
		cfg.DefaultChain = strings.ToLower(tmp.DefaultChain)
	}
	cfg.Chains = mergeChains(cfg.Chains, tmp.Chains)
	if tmp.Web.Addr != "" {
		cfg.Web.Addr = tmp.Web.Addr
	}
	cfg.Web.TLSDomain = tmp.Web.TLSDomains
	cfg.Web.CertCache = tmp.Web.CertCache

	return cfg
}

// mergeChains overrides known chains by id and appends new ones.
func mergeChains(base, overrides []domain.Chain) []domain.Chain {
	out := make([]domain.Chain, len(base))
	copy(out, base)

	for _, o := range overrides {
		o.ID = strings.ToLower(o.ID)
		replaced := false
		for i := range out {
			if strings.EqualFold(out[i].ID, o.ID) {
				if o.Name != "" {
					out[i].Name = o.Name
				}
				if o.Explorer != "" {
					out[i].Explorer = o.Explorer
				}
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, o)
		}
	}
	return out
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAggregatorURL); v != "" {
		cfg.AggregatorURL = v
	}
	if v := os.Getenv(EnvAggregatorAPIKey); v != "" {
		cfg.AggregatorAPIKey = v
	}
	if v := os.Getenv(EnvLedgerURL); v != "" {
		cfg.LedgerURL = v
	}
	if v := os.Getenv(EnvLedgerAPIKey); v != "" {
		cfg.LedgerAPIKey = v
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.SlippageBps <= 0 || c.SlippageBps > maxSlippageBps {
		return fmt.Errorf("incorrect 'slippage_bps' param in yaml config (must be within 1..%d), got %d", maxSlippageBps, c.SlippageBps)
	}
	if _, err := domain.ChainNumber(c.DefaultChain); err != nil {
		return fmt.Errorf("incorrect 'default_chain' param in yaml config: %w", err)
	}
	for _, ch := range c.Chains {
		if _, err := domain.ChainNumber(ch.ID); err != nil {
			return fmt.Errorf("incorrect chain id %q in yaml config: %w", ch.ID, err)
		}
	}
	return nil
}

// Chain returns the chain with id, falling back to a chain without explorer.
func (c Config) Chain(id string) domain.Chain {
	if ch, ok := domain.LookupChain(c.Chains, id); ok {
		return ch
	}
	return domain.Chain{ID: strings.ToLower(id)}
}

// Save writes the yaml form of cfg to path.
func Save(path string, cfg Config) error {
	var tmp ConfigTmp
	tmp.Aggregator.URL = cfg.AggregatorURL
	tmp.Aggregator.APIKey = cfg.AggregatorAPIKey
	tmp.Ledger.URL = cfg.LedgerURL
	tmp.Ledger.APIKey = cfg.LedgerAPIKey
	tmp.Ledger.PageSize = cfg.LedgerPageSize
	tmp.Timeout = cfg.Timeout
	slippage := cfg.SlippageBps
	tmp.SlippageBps = &slippage
	tmp.DefaultChain = cfg.DefaultChain
	tmp.Chains = cfg.Chains
	tmp.Web.Addr = cfg.Web.Addr
	tmp.Web.TLSDomains = cfg.Web.TLSDomain
	tmp.Web.CertCache = cfg.Web.CertCache

	data, err := yaml.Marshal(&tmp)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
