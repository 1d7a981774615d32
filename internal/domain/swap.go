package domain

import (
	"encoding/json"
	"net/http"
)

// StatusSwapRejected status the aggregator answers with when it refuses a swap without failing the call.
const StatusSwapRejected = http.StatusBadRequest

// SwapCompleteMessage outcome message of a successful swap.
const SwapCompleteMessage = "Swap Complete!"

// SwapResult outcome of a single swap submission.
type SwapResult struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Raw        json.RawMessage `json:"raw,omitempty"`
	TxHash     string          `json:"txHash,omitempty"`
}

// SwapSucceeded applies the submission rule: no error and a status code other than a failure status.
func SwapSucceeded(statusCode int) bool {
	if statusCode == StatusSwapRejected {
		return false
	}
	return statusCode < http.StatusBadRequest
}
