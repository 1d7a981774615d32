package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/vadiminshakov/dexboard/internal/domain"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}

	headerStyle = lipgloss.NewStyle().
			Foreground(highlight).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(subtle).
				Italic(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(highlight)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// WriteHistory prints the history panel as a table or its placeholder message.
func WriteHistory(w io.Writer, view HistoryView) error {
	if view.Message != "" {
		_, err := fmt.Fprintln(w, placeholderStyle.Render(view.Message))
		return err
	}

	t := newTable("Token", "From", "To", "Value", "Transaction")
	for _, r := range view.Rows {
		t.Row(r.Token, r.From, r.To, r.Value, r.TxURL)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// WriteTokens prints a token list.
func WriteTokens(w io.Writer, tokens []domain.Token) error {
	if len(tokens) == 0 {
		_, err := fmt.Fprintln(w, placeholderStyle.Render("No tokens"))
		return err
	}

	t := newTable("Symbol", "Name", "Decimals", "Address")
	for _, tok := range tokens {
		t.Row(tok.Symbol, tok.Name, strconv.Itoa(int(tok.Decimals)), tok.Address)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// WriteQuote prints a quote.
func WriteQuote(w io.Writer, view QuoteView) error {
	t := newTable("Pay", "Receive", "Rate", "Estimated gas")
	t.Row(
		view.InputAmount+" "+view.FromSymbol,
		view.OutputAmount+" "+view.ToSymbol,
		view.Rate,
		strconv.FormatUint(view.EstimatedGas, 10),
	)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
