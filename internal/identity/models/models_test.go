package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
)

const walletA = domain.WalletAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")

func TestNewDoctor(t *testing.T) {
	now := time.Now()

	d, err := NewDoctor(5, "  Dr. Ada  ", walletA, now)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Ada", d.Name)
	assert.Equal(t, now, d.RegisteredAt)

	_, err = NewDoctor(0, "Dr. Ada", walletA, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = NewDoctor(5, "   ", walletA, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = NewDoctor(5, "Dr. Ada", "", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestNewPatient(t *testing.T) {
	_, err := NewPatient(1, strings.Repeat("x", maxNameLength+1), walletA, time.Now())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	p, err := NewPatient(1, "Alice", walletA, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.PatientID(1), p.ID)
}

func TestOwnedBy(t *testing.T) {
	p := &Patient{ID: 1, Wallet: walletA}
	assert.True(t, p.OwnedBy(domain.WalletAddress(strings.ToLower(string(walletA)))))
	assert.False(t, p.OwnedBy(""))
	assert.False(t, p.OwnedBy("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"))

	var nilDoctor *Doctor
	assert.False(t, nilDoctor.OwnedBy(walletA))
}
