package domain

import "strings"

// Chain network the dashboard can switch to.
type Chain struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Explorer string `json:"explorer" yaml:"explorer"`
}

// KnownChains networks offered by default.
var KnownChains = []Chain{
	{ID: "0x1", Name: "Ethereum", Explorer: "https://etherscan.io/"},
	{ID: "0x38", Name: "Binance", Explorer: "https://bscscan.com/"},
	{ID: "0x89", Name: "Polygon", Explorer: "https://polygonscan.com/"},
	{ID: "0xa86a", Name: "Avalanche", Explorer: "https://snowtrace.io/"},
}

// TxURL returns the explorer page of a transaction.
func (c Chain) TxURL(hash string) string {
	if c.Explorer == "" || hash == "" {
		return ""
	}
	return strings.TrimRight(c.Explorer, "/") + "/tx/" + hash
}

// LookupChain finds a chain by id among chains.
func LookupChain(chains []Chain, id string) (Chain, bool) {
	for _, c := range chains {
		if strings.EqualFold(c.ID, id) {
			return c, true
		}
	}
	return Chain{}, false
}
