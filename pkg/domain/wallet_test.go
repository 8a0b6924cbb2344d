package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "medledger/pkg/domain-errors"
)

// EIP-55 reference vectors.
var checksumVectors = []string{
	"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
	"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
	"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
}

func TestParseWalletAddress(t *testing.T) {
	t.Run("lowercase input is normalized to checksum form", func(t *testing.T) {
		for _, want := range checksumVectors {
			got, err := ParseWalletAddress(strings.ToLower(want))
			require.NoError(t, err)
			assert.Equal(t, WalletAddress(want), got)
		}
	})

	t.Run("valid checksum is accepted unchanged", func(t *testing.T) {
		for _, want := range checksumVectors {
			got, err := ParseWalletAddress(want)
			require.NoError(t, err)
			assert.Equal(t, want, got.String())
		}
	})

	t.Run("bad checksum is rejected", func(t *testing.T) {
		_, err := ParseWalletAddress("0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("wrong length and non-hex are rejected", func(t *testing.T) {
		for _, in := range []string{"", "0x1234", "5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "0xZZAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"} {
			_, err := ParseWalletAddress(in)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), in)
		}
	})

	t.Run("equality ignores case", func(t *testing.T) {
		raw := WalletAddress(strings.ToLower(checksumVectors[0]))
		assert.True(t, raw.Equal(WalletAddress(checksumVectors[0])))
		assert.False(t, raw.Equal(WalletAddress(checksumVectors[1])))
	})
}
