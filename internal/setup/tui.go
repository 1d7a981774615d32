// Package setup implements the interactive configuration wizard.
package setup

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/vadiminshakov/dexboard/config"
	"github.com/vadiminshakov/dexboard/internal/domain"
)

const title = "DEXBOARD CONFIG WIZARD"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// Answers raw wizard input.
type Answers struct {
	AggregatorURL    string
	AggregatorAPIKey string
	LedgerURL        string
	LedgerAPIKey     string
	Timeout          string
	Slippage         string
	DefaultChain     string
	ListenAddr       string
	TLSDomains       string
}

// DefaultAnswers prefilled wizard values.
func DefaultAnswers() Answers {
	d := config.Default()
	return Answers{
		AggregatorURL: d.AggregatorURL,
		LedgerURL:     d.LedgerURL,
		Timeout:       d.Timeout.String(),
		Slippage:      strconv.Itoa(d.SlippageBps),
		DefaultChain:  d.DefaultChain,
		ListenAddr:    d.Web.Addr,
	}
}

// Config converts answers into a validated configuration.
func (a Answers) Config() (config.Config, error) {
	cfg := config.Default()

	cfg.AggregatorURL = strings.TrimSpace(a.AggregatorURL)
	cfg.AggregatorAPIKey = strings.TrimSpace(a.AggregatorAPIKey)
	cfg.LedgerURL = strings.TrimSpace(a.LedgerURL)
	cfg.LedgerAPIKey = strings.TrimSpace(a.LedgerAPIKey)
	cfg.DefaultChain = strings.ToLower(strings.TrimSpace(a.DefaultChain))
	cfg.Web.Addr = strings.TrimSpace(a.ListenAddr)

	timeout, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid timeout: %w", err)
	}
	cfg.Timeout = timeout

	slippage, err := strconv.Atoi(strings.TrimSpace(a.Slippage))
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid slippage: %w", err)
	}
	cfg.SlippageBps = slippage

	for _, d := range strings.Split(a.TLSDomains, ",") {
		if d = strings.TrimSpace(d); d != "" {
			cfg.Web.TLSDomain = append(cfg.Web.TLSDomain, d)
		}
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// RunTUI launches the terminal configuration wizard and saves the result to path.
func RunTUI(path string) error {
	answers := DefaultAnswers()
	var confirm bool

	// step 1: aggregator
	clearScreen()
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Point the dashboard at your swap and ledger APIs.\n"))
	fmt.Println(stepStyle.Render("STEP 1: AGGREGATOR"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Aggregator API URL").
				Value(&answers.AggregatorURL).
				Validate(notEmpty("url")),
			huh.NewInput().
				Title("Aggregator API Key").
				Description("Optional, sent as a bearer token").
				Value(&answers.AggregatorAPIKey).
				EchoMode(huh.EchoModePassword),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 2: ledger
	clearScreen()
	fmt.Println(stepStyle.Render("STEP 2: TRANSFER LEDGER"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Ledger API URL").
				Value(&answers.LedgerURL).
				Validate(notEmpty("url")),
			huh.NewInput().
				Title("Ledger API Key").
				Value(&answers.LedgerAPIKey).
				EchoMode(huh.EchoModePassword),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 3: trading
	chainOptions := make([]huh.Option[string], 0, len(domain.KnownChains))
	for _, c := range domain.KnownChains {
		chainOptions = append(chainOptions, huh.NewOption(fmt.Sprintf("%s (%s)", c.Name, c.ID), c.ID))
	}

	clearScreen()
	fmt.Println(stepStyle.Render("STEP 3: TRADING"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default chain").
				Options(chainOptions...).
				Value(&answers.DefaultChain),
			huh.NewInput().
				Title("Slippage (bps)").
				Description("1 bps = 0.01%, e.g. 100 for 1%").
				Value(&answers.Slippage).
				Validate(validateSlippage),
			huh.NewInput().
				Title("Request timeout").
				Description("Duration string (e.g. 10s, 30s)").
				Value(&answers.Timeout).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 4: web
	clearScreen()
	fmt.Println(stepStyle.Render("STEP 4: DASHBOARD API"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Value(&answers.ListenAddr).
				Validate(notEmpty("address")),
			huh.NewInput().
				Title("TLS domains").
				Description("Comma separated, empty for plain HTTP").
				Value(&answers.TLSDomains),
		),
	).Run()
	if err != nil {
		return err
	}

	cfg, err := answers.Config()
	if err != nil {
		return err
	}

	// confirmation
	clearScreen()
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(Summary(cfg)))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s", path)))
	return nil
}

// Summary short description of cfg shown before saving.
func Summary(cfg config.Config) string {
	chain := cfg.Chain(cfg.DefaultChain)
	name := chain.Name
	if name == "" {
		name = chain.ID
	}
	if n, err := domain.ChainNumber(chain.ID); err == nil {
		name = fmt.Sprintf("%s (%d)", name, n)
	}

	return fmt.Sprintf(
		"Aggregator: %s\nLedger: %s\nChain: %s\nSlippage: %d bps\nListen: %s\n",
		cfg.AggregatorURL, cfg.LedgerURL, name, cfg.SlippageBps, cfg.Web.Addr,
	)
}

func clearScreen() {
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render(title))
}

func notEmpty(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", what)
		}
		return nil
	}
}

func validateSlippage(s string) error {
	bps, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a whole number of bps")
	}
	if bps < 1 || bps > 5000 {
		return fmt.Errorf("must be between 1 and 5000")
	}
	return nil
}
