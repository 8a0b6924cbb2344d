package walletauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)

var wallet = domain.WalletAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
var expiresIn = time.Hour

func Test_IssueToken(t *testing.T) {
	token, err := jwtService.IssueToken(wallet, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, wallet.String(), claims.Wallet)
	assert.Equal(t, wallet.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_IssueToken_RequiresWallet(t *testing.T) {
	_, err := jwtService.IssueToken("", expiresIn)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Equal(t, "invalid token", dErrors.MessageOf(err))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.IssueToken(wallet, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, "token has expired", dErrors.MessageOf(err))
}

func Test_ValidateToken_WrongAudience(t *testing.T) {
	other := NewJWTService("test-signing-key", "test-issuer", "other-audience")
	token, err := other.IssueToken(wallet, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := NewJWTService("another-key", "test-issuer", "test-audience")
	token, err := other.IssueToken(wallet, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateSession(t *testing.T) {
	t.Run("normalizes wallet claim", func(t *testing.T) {
		token, err := jwtService.IssueToken(wallet, expiresIn)
		require.NoError(t, err)

		session, err := jwtService.ValidateSession(token)
		require.NoError(t, err)
		assert.Equal(t, wallet, session.Wallet)
		assert.NotEmpty(t, session.SessionID)
	})

	t.Run("rejects malformed wallet claim", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			Wallet: "not-a-wallet",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				Issuer:    "test-issuer",
				Audience:  []string{"test-audience"},
			},
		})
		token, err := raw.SignedString([]byte("test-signing-key"))
		require.NoError(t, err)

		_, err = jwtService.ValidateSession(token)
		require.Error(t, err)
		assert.Equal(t, "invalid wallet claim", dErrors.MessageOf(err))
	})
}
