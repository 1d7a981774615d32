package domain

import "encoding/json"

// AllowanceRequest asks whether account allowed the aggregator to spend amount of token.
type AllowanceRequest struct {
	Chain        string
	TokenAddress string
	Account      string
	Amount       string
}

// Allowance aggregator answer. Either Approved or Amount is set.
type Allowance struct {
	Approved *bool
	Amount   string
}

// ApproveRequest asks the aggregator to issue a spending approval.
type ApproveRequest struct {
	Chain        string `json:"-"`
	TokenAddress string `json:"tokenAddress"`
	Account      string `json:"fromAddress"`
}

// ApprovalReceipt approval transaction reference.
type ApprovalReceipt struct {
	TransactionHash string `json:"transactionHash"`
}

// SwapRequest swap submission parameters. Slippage is a percentage.
type SwapRequest struct {
	Chain            string
	FromTokenAddress string
	ToTokenAddress   string
	Amount           string
	FromAddress      string
	Slippage         string
}

// SwapResponse raw aggregator answer to a swap submission.
type SwapResponse struct {
	StatusCode int
	Message    string
	TxHash     string
	Raw        json.RawMessage
}
