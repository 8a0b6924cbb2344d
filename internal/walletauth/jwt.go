// Package walletauth issues and validates the session tokens that carry a
// caller's verified wallet address. Wallet ownership is proven out of band;
// this package only vouches for the binding once established.
package walletauth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
)

// Claims represents the JWT claims for wallet session tokens.
type Claims struct {
	Wallet string `json:"wallet"`
	jwt.RegisteredClaims
}

// Session is what the HTTP middleware needs from a validated token.
type Session struct {
	Wallet    domain.WalletAddress
	SessionID string
	ExpiresAt time.Time
}

// JWTService handles session token creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	now        func() time.Time
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		now:        time.Now,
	}
}

// IssueToken signs a session for wallet valid for expiresIn.
func (s *JWTService) IssueToken(wallet domain.WalletAddress, expiresIn time.Duration) (string, error) {
	if wallet.IsNil() {
		return "", dErrors.New(dErrors.CodeBadRequest, "wallet is required")
	}
	now := s.now()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Wallet: wallet.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   wallet.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ValidateSession validates the token and re-parses the wallet claim so a
// tampered-but-signed payload cannot smuggle a malformed address through.
func (s *JWTService) ValidateSession(tokenString string) (*Session, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	wallet, err := domain.ParseWalletAddress(claims.Wallet)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid wallet claim")
	}
	session := &Session{Wallet: wallet, SessionID: claims.ID}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}
