// Package ledger joins the ERC20 and NFT transfer feeds of an account into one history.
package ledger

import (
	"sort"

	"github.com/vadiminshakov/dexboard/internal/domain"
)

// Merge normalizes both feeds and orders them newest first. Records with equal timestamps
// keep their feed order, ERC20 before NFT. The result is never nil.
func Merge(erc20 []domain.ERC20Transfer, nfts []domain.NFTTransfer) []domain.GenericTransfer {
	merged := make([]domain.GenericTransfer, 0, len(erc20)+len(nfts))
	for _, r := range erc20 {
		merged = append(merged, r.Generic())
	}
	for _, r := range nfts {
		merged = append(merged, r.Generic())
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].BlockTimestamp.After(merged[j].BlockTimestamp)
	})

	return merged
}
