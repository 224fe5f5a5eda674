package escrow

import (
	"errors"
	"testing"

	"github.com/openwave/ows/internal/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyRevert(t *testing.T) {
	cases := []string{
		"execution reverted: caller is not the owner",
		"insufficient funds for gas * price + value",
		"invalid opcode: INVALID",
		"nonce too low",
	}

	for _, msg := range cases {
		err := Classify("forwardFunds", errors.New(msg))
		assert.True(t, apperr.IsTransactionFailed(err), "expected revert classification for %q", msg)
		assert.False(t, apperr.IsConnectivity(err))
	}
}

func TestClassifyConnectivity(t *testing.T) {
	cases := []string{
		"dial tcp 127.0.0.1:8545: connect: connection refused",
		"context deadline exceeded",
		"EOF",
		"502 Bad Gateway",
	}

	for _, msg := range cases {
		err := Classify("deposit", errors.New(msg))
		assert.True(t, apperr.IsConnectivity(err), "expected connectivity classification for %q", msg)
		assert.False(t, apperr.IsTransactionFailed(err))
	}
}

func TestClassifyNil(t *testing.T) {
	assert.NoError(t, Classify("deposit", nil))
}

func TestToWei(t *testing.T) {
	amount, err := decimal.NewFromString("10.5")
	require.NoError(t, err)

	wei := toWei(amount)
	assert.Equal(t, "10500000000000000000", wei.String())

	// 小额不丢精度
	small, err := decimal.NewFromString("0.000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, "1", toWei(small).String())
}
