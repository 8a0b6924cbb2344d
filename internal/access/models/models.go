package models

import (
	"time"

	"medledger/pkg/domain"
)

// Grant records that a patient allows a doctor to attach and manage
// documents. Existence is the only signal: grants carry no scope or expiry.
type Grant struct {
	PatientID domain.PatientID
	DoctorID  domain.DoctorID
	GrantedAt time.Time
}

// Grantee is a doctor currently holding a grant, as returned to the patient.
type Grantee struct {
	DoctorID  domain.DoctorID `json:"doctor_id"`
	Name      string          `json:"name"`
	GrantedAt time.Time       `json:"granted_at"`
}
