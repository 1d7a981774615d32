// Command dexboard runs the DEX swap dashboard: a JSON/SSE API over a token
// aggregator and a transfer ledger, plus terminal commands for one-off
// quotes, swaps and transfer history.
//
// Usage:
//
//	dexboard init                          (interactive config wizard)
//	dexboard serve --config config.yaml
//	dexboard tokens --chain 0x38
//	dexboard quote 1.5 ETH USDC
//	dexboard swap 1.5 ETH USDC --account 0x... [--yes]
//	dexboard history --account 0x...
//
// Environment variables override the yaml file:
//
//	DEXBOARD_AGGREGATOR_URL, DEXBOARD_AGGREGATOR_API_KEY
//	DEXBOARD_LEDGER_URL, DEXBOARD_LEDGER_API_KEY
package main

func main() {
	Execute()
}
