package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/dexboard/internal/domain"
)

var base = time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

func at(hours int) time.Time {
	return base.Add(time.Duration(hours) * time.Hour)
}

func TestMergeEmpty(t *testing.T) {
	merged := Merge(nil, nil)
	require.NotNil(t, merged)
	assert.Empty(t, merged)

	merged = Merge([]domain.ERC20Transfer{}, []domain.NFTTransfer{})
	require.NotNil(t, merged)
	assert.Empty(t, merged)
}

func TestMergeTimeDescending(t *testing.T) {
	erc20 := []domain.ERC20Transfer{
		{TransactionHash: "0xe1", BlockTimestamp: at(1), Value: "1"},
		{TransactionHash: "0xe2", BlockTimestamp: at(5), Value: "2"},
		{TransactionHash: "0xe3", BlockTimestamp: at(3), Value: "3"},
	}
	nfts := []domain.NFTTransfer{
		{TransactionHash: "0xn1", BlockTimestamp: at(4), TokenID: "1"},
		{TransactionHash: "0xn2", BlockTimestamp: at(0), TokenID: "2"},
	}

	merged := Merge(erc20, nfts)
	require.Len(t, merged, 5)

	var hashes []string
	for i, tr := range merged {
		hashes = append(hashes, tr.TransactionHash)
		if i > 0 {
			assert.False(t, tr.BlockTimestamp.After(merged[i-1].BlockTimestamp))
		}
	}
	assert.Equal(t, []string{"0xe2", "0xn1", "0xe3", "0xe1", "0xn2"}, hashes)
}

func TestMergeTiesAreStable(t *testing.T) {
	erc20 := []domain.ERC20Transfer{
		{TransactionHash: "0xe1", BlockTimestamp: at(1)},
		{TransactionHash: "0xe2", BlockTimestamp: at(1)},
	}
	nfts := []domain.NFTTransfer{
		{TransactionHash: "0xn1", BlockTimestamp: at(1)},
	}

	merged := Merge(erc20, nfts)
	require.Len(t, merged, 3)
	assert.Equal(t, "0xe1", merged[0].TransactionHash)
	assert.Equal(t, "0xe2", merged[1].TransactionHash)
	assert.Equal(t, "0xn1", merged[2].TransactionHash)
	assert.Equal(t, domain.TransferNFT, merged[2].Type)
}
