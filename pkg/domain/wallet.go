package domain

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"

	dErrors "medledger/pkg/domain-errors"
)

// WalletAddress is a 20-byte account address in EIP-55 checksum form.
// Two addresses are equal iff they refer to the same account, regardless of
// the casing the caller supplied.
type WalletAddress string

const walletHexLen = 40

// ParseWalletAddress validates a hex address ("0x" + 40 hex chars) and returns
// it in checksum form. Mixed-case input must carry a valid checksum.
func ParseWalletAddress(s string) (WalletAddress, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "wallet address cannot be empty")
	}
	body, ok := strings.CutPrefix(s, "0x")
	if !ok {
		body, ok = strings.CutPrefix(s, "0X")
	}
	if !ok || len(body) != walletHexLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "wallet address must be 0x followed by 40 hex characters")
	}
	if _, err := hex.DecodeString(body); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "wallet address must be hex encoded")
	}
	checksummed := checksum(strings.ToLower(body))
	if isMixedCase(body) && "0x"+body != checksummed {
		return "", dErrors.New(dErrors.CodeInvalidInput, "wallet address checksum mismatch")
	}
	return WalletAddress(checksummed), nil
}

// checksum applies EIP-55 casing to a lowercase 40-char hex body.
func checksum(lower string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := hex.EncodeToString(h.Sum(nil))

	out := make([]byte, 0, walletHexLen+2)
	out = append(out, '0', 'x')
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c >= 'a' && c <= 'f' && digest[i] >= '8' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

func isMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}

func (w WalletAddress) String() string { return string(w) }

// IsNil reports whether the address is empty.
func (w WalletAddress) IsNil() bool { return w == "" }

// Equal compares two addresses. Both sides are expected to come from
// ParseWalletAddress; raw strings are compared case-insensitively.
func (w WalletAddress) Equal(other WalletAddress) bool {
	return strings.EqualFold(string(w), string(other))
}
