// services/treasury_test.go
package services

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointsToWei(t *testing.T) {
	// 1 point = 0.00001 ETH = 1e13 wei, integer math throughout.
	assert.Equal(t, 0, PointsToWei(1).Cmp(big.NewInt(10_000_000_000_000)))
	assert.Equal(t, 0, PointsToWei(0).Cmp(big.NewInt(0)))

	// 100,000 points = 1 ETH exactly.
	oneEth := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	assert.Equal(t, 0, PointsToWei(100_000).Cmp(oneEth))
}

func TestEthAmountForPoints(t *testing.T) {
	assert.Equal(t, "0.000010", EthAmountForPoints(1))
	assert.Equal(t, "0.000400", EthAmountForPoints(40))
	assert.Equal(t, "1.000000", EthAmountForPoints(100_000))
}

func TestTransactionURL(t *testing.T) {
	assert.Equal(t, "https://sepolia.etherscan.io/tx/0xabc", TransactionURL("0xabc"))
}
