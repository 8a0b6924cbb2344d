package models

import (
	"time"

	"github.com/google/uuid"

	"medledger/pkg/domain"
)

// Document is one entry in a patient's record. Deleted entries stay in place
// as tombstones so surviving indexes never shift and a deleted index is never
// handed out again.
type Document struct {
	Index       domain.DocumentIndex
	PatientID   domain.PatientID
	DoctorID    domain.DoctorID
	DiseaseName string
	Description string
	ContentRef  domain.ContentRef
	UploadedAt  time.Time
	DeletedAt   *time.Time
	DeletedBy   domain.DoctorID
}

func (d *Document) IsDeleted() bool {
	return d.DeletedAt != nil
}

// UploadRequest carries a document attachment from an authorized doctor.
type UploadRequest struct {
	PatientID    domain.PatientID
	DoctorID     domain.DoctorID
	ContentRef   domain.ContentRef
	DiseaseName  string
	Description  string
	ActingWallet domain.WalletAddress
}

// UploadReceipt is returned after commit. EntryID and Sequence locate the
// history entry that records the upload.
type UploadReceipt struct {
	Index       domain.DocumentIndex `json:"index"`
	ContentRef  domain.ContentRef    `json:"content_ref"`
	EntryID     uuid.UUID            `json:"entry_id"`
	Sequence    uint64               `json:"sequence"`
	CommittedAt time.Time            `json:"committed_at"`
}

// Requestor identifies who is reading a patient's record. ID is a patient id
// for RolePatient and a doctor id for RoleDoctor.
type Requestor struct {
	Role   domain.Role
	ID     uint64
	Wallet domain.WalletAddress
}

// Present returns the non-deleted documents in index order.
func Present(docs []*Document) []*Document {
	out := make([]*Document, 0, len(docs))
	for _, d := range docs {
		if !d.IsDeleted() {
			out = append(out, d)
		}
	}
	return out
}
