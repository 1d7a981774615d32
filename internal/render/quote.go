// Package render turns domain values into view models for the dashboard and the terminal.
package render

import (
	"github.com/vadiminshakov/dexboard/internal/domain"
)

const valuePlaces = 6

// QuoteView quote as shown next to the swap button.
type QuoteView struct {
	FromSymbol   string `json:"fromSymbol"`
	ToSymbol     string `json:"toSymbol"`
	InputAmount  string `json:"inputAmount"`
	OutputAmount string `json:"outputAmount"`
	Rate         string `json:"rate"`
	EstimatedGas uint64 `json:"estimatedGas"`
}

// NewQuoteView scales quote amounts by their token decimals.
// Only the output amount is required; input and rate stay empty when the
// aggregator omits the source amount.
func NewQuoteView(q domain.Quote) (QuoteView, error) {
	out, err := q.OutputAmount()
	if err != nil {
		return QuoteView{}, err
	}

	view := QuoteView{
		FromSymbol:   q.FromToken.String(),
		ToSymbol:     q.ToToken.String(),
		OutputAmount: out,
		EstimatedGas: q.EstimatedGas,
	}
	if in, err := q.InputAmount(); err == nil {
		view.InputAmount = in
	}
	if rate, err := q.Rate(); err == nil {
		view.Rate = rate.Round(valuePlaces).String()
	}
	return view, nil
}
