package render

import (
	"github.com/vadiminshakov/dexboard/internal/domain"
)

const (
	ellipsisKeep = 8

	MessageNotConnected = "Please connect to your wallet..."
	MessageLoading      = "Loading..."
	MessageNoHistory    = "No History"
)

// HistoryRow one line of the history table.
type HistoryRow struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Token string `json:"token"`
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
	TxURL string `json:"txUrl"`
}

// HistoryView history panel: either rows or a placeholder message.
type HistoryView struct {
	Rows    []HistoryRow `json:"rows"`
	Message string       `json:"message,omitempty"`
	Loaded  bool         `json:"loaded"`
}

// NewHistoryView builds the history panel. A not yet loaded ledger shows the loading
// message, a loaded empty one "No History".
func NewHistoryView(transfers []domain.GenericTransfer, loaded, authenticated bool, chain domain.Chain) HistoryView {
	switch {
	case !authenticated:
		return HistoryView{Rows: []HistoryRow{}, Message: MessageNotConnected}
	case !loaded:
		return HistoryView{Rows: []HistoryRow{}, Message: MessageLoading}
	case len(transfers) == 0:
		return HistoryView{Rows: []HistoryRow{}, Message: MessageNoHistory, Loaded: true}
	}

	return HistoryView{Rows: HistoryRows(transfers, chain), Loaded: true}
}

// HistoryRows formats transfers for display.
func HistoryRows(transfers []domain.GenericTransfer, chain domain.Chain) []HistoryRow {
	rows := make([]HistoryRow, 0, len(transfers))
	for _, t := range transfers {
		rows = append(rows, HistoryRow{
			Key:   t.Key(),
			Type:  t.Type.String(),
			Token: Ellipsis(t.TokenAddress, ellipsisKeep),
			From:  Ellipsis(t.FromAddress, ellipsisKeep),
			To:    Ellipsis(t.ToAddress, ellipsisKeep),
			Value: FormatValue(t),
			TxURL: chain.TxURL(t.TransactionHash),
		})
	}
	return rows
}

// FormatValue scales the raw value and rounds it to six places without trailing zeros.
func FormatValue(t domain.GenericTransfer) string {
	v, err := t.Value()
	if err != nil {
		return t.ValueRaw
	}
	return v.Round(valuePlaces).String()
}

// Ellipsis keeps the first and last n characters of s, e.g. 0x1234...abcd.
func Ellipsis(s string, n int) string {
	if n <= 0 || len(s) <= 2*n+3 {
		return s
	}
	return s[:n] + "..." + s[len(s)-n:]
}
