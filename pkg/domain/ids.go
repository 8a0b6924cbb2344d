package domain

import (
	"strconv"
	"strings"

	dErrors "medledger/pkg/domain-errors"
)

// DoctorID identifies a registered doctor. Values come from the roster and
// are always positive.
type DoctorID uint64

// PatientID identifies a registered patient. Values are assigned by the
// identity registry's counter and are always positive.
type PatientID uint64

// DocumentIndex is the 0-based position of a document in a patient's record.
// Indexes are stable: deleting a document never shifts the others.
type DocumentIndex int

// ParseDoctorID parses a doctor id from external input.
func ParseDoctorID(s string) (DoctorID, error) {
	v, err := parsePositive(s, "doctor id")
	if err != nil {
		return 0, err
	}
	return DoctorID(v), nil
}

// ParsePatientID parses a patient id from external input.
func ParsePatientID(s string) (PatientID, error) {
	v, err := parsePositive(s, "patient id")
	if err != nil {
		return 0, err
	}
	return PatientID(v), nil
}

// ParseDocumentIndex parses a document index from external input.
func ParseDocumentIndex(s string) (DocumentIndex, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "document index cannot be empty")
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "document index must be a non-negative integer")
	}
	return DocumentIndex(v), nil
}

func parsePositive(s, field string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be empty")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, field+" must be a positive integer")
	}
	if v == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, field+" must be a positive integer")
	}
	return v, nil
}

func (id DoctorID) String() string { return strconv.FormatUint(uint64(id), 10) }

func (id PatientID) String() string { return strconv.FormatUint(uint64(id), 10) }

func (i DocumentIndex) String() string { return strconv.Itoa(int(i)) }

// IsNil reports whether the id is the zero value.
func (id DoctorID) IsNil() bool { return id == 0 }

// IsNil reports whether the id is the zero value.
func (id PatientID) IsNil() bool { return id == 0 }

// Role names who is asking for patient data.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// ParseRole validates a requestor role from external input.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RolePatient, RoleDoctor:
		return r, nil
	case "":
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "role must be patient or doctor")
	}
}

func (r Role) String() string { return string(r) }
