package models

import (
	"strings"
	"time"

	"medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
)

const maxNameLength = 256

// Doctor is a clinician admitted after a roster check. Records are
// write-once: a doctor id is never re-bound.
type Doctor struct {
	ID           domain.DoctorID
	Name         string
	Wallet       domain.WalletAddress
	RegisteredAt time.Time
}

// Patient owns a record. Only the patient's wallet may manage grants.
type Patient struct {
	ID           domain.PatientID
	Name         string
	Wallet       domain.WalletAddress
	RegisteredAt time.Time
}

// RosterEntry is the externally supplied (doctor id, name) trust anchor.
type RosterEntry struct {
	DoctorID domain.DoctorID
	Name     string
}

func NewDoctor(id domain.DoctorID, name string, wallet domain.WalletAddress, now time.Time) (*Doctor, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "doctor id is required")
	}
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	if wallet.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "wallet is required")
	}
	return &Doctor{ID: id, Name: name, Wallet: wallet, RegisteredAt: now}, nil
}

func NewPatient(id domain.PatientID, name string, wallet domain.WalletAddress, now time.Time) (*Patient, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "patient id is required")
	}
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	if wallet.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "wallet is required")
	}
	return &Patient{ID: id, Name: name, Wallet: wallet, RegisteredAt: now}, nil
}

// NormalizeName trims surrounding space and rejects empty or oversized names.
// Interior text, including case, is compared exactly against the roster.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	if len(name) > maxNameLength {
		return "", dErrors.New(dErrors.CodeBadRequest, "name is too long")
	}
	return name, nil
}

// OwnedBy reports whether wallet is this doctor's registered wallet.
func (d *Doctor) OwnedBy(wallet domain.WalletAddress) bool {
	return d != nil && !wallet.IsNil() && d.Wallet.Equal(wallet)
}

// OwnedBy reports whether wallet is this patient's registered wallet.
func (p *Patient) OwnedBy(wallet domain.WalletAddress) bool {
	return p != nil && !wallet.IsNil() && p.Wallet.Equal(wallet)
}
