// Package history records one entry per registry mutation attempt. Success
// entries are written inside the mutating transaction so a mutation and its
// entry commit together; failure entries are written after rollback.
package history

import (
	"time"

	"github.com/google/uuid"

	"medledger/pkg/domain"
)

// Kind names the mutation an entry records.
type Kind string

const (
	KindRosterRegistered  Kind = "doctor_roster_registered"
	KindDoctorRegistered  Kind = "doctor_registered"
	KindPatientRegistered Kind = "patient_registered"
	KindAccessGranted     Kind = "access_granted"
	KindAccessRevoked     Kind = "access_revoked"
	KindDocumentUploaded  Kind = "document_uploaded"
	KindDocumentDeleted   Kind = "document_deleted"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Entry is an immutable history record. Sequence is assigned by the store
// and is strictly increasing across all entries.
type Entry struct {
	ID            uuid.UUID             `json:"id"`
	Sequence      uint64                `json:"sequence"`
	Kind          Kind                  `json:"kind"`
	Outcome       Outcome               `json:"outcome"`
	PatientID     domain.PatientID      `json:"patient_id,omitempty"`
	DoctorID      domain.DoctorID       `json:"doctor_id,omitempty"`
	DocumentIndex *domain.DocumentIndex `json:"document_index,omitempty"`
	Actor         domain.WalletAddress  `json:"actor,omitempty"`
	ErrorCode     string                `json:"error_code,omitempty"`
	Reason        string                `json:"reason,omitempty"`
	RequestID     string                `json:"request_id,omitempty"`
	Client        string                `json:"client,omitempty"`
	Timestamp     time.Time             `json:"timestamp"`
}

// IndexPtr is a convenience for populating Entry.DocumentIndex.
func IndexPtr(i domain.DocumentIndex) *domain.DocumentIndex {
	return &i
}

// OutboxRecord is a committed entry awaiting relay to the event stream.
type OutboxRecord struct {
	ID      int64
	EntryID uuid.UUID
	Payload []byte
}
