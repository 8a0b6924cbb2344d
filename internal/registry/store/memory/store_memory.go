// Package memory holds the registry tables (doctors, patients, grants and
// documents) in process memory. Mutations made under a journaled transaction
// register undo steps so a failed transaction leaves no trace.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	accessModels "medledger/internal/access/models"
	documentModels "medledger/internal/documents/models"
	identityModels "medledger/internal/identity/models"
	"medledger/pkg/domain"
	"medledger/pkg/platform/sentinel"
	txcontext "medledger/pkg/platform/tx"
)

type grantKey struct {
	patientID domain.PatientID
	doctorID  domain.DoctorID
}

// InMemoryStore is safe for concurrent use. Serialization of read-check-write
// sequences is the transaction runner's job; the store mutex only protects
// the maps themselves.
type InMemoryStore struct {
	mu            sync.RWMutex
	lastPatientID domain.PatientID
	doctors       map[domain.DoctorID]*identityModels.Doctor
	doctorWallets map[string]domain.DoctorID
	patients      map[domain.PatientID]*identityModels.Patient
	grants        map[grantKey]*accessModels.Grant
	documents     map[domain.PatientID][]*documentModels.Document
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		doctors:       make(map[domain.DoctorID]*identityModels.Doctor),
		doctorWallets: make(map[string]domain.DoctorID),
		patients:      make(map[domain.PatientID]*identityModels.Patient),
		grants:        make(map[grantKey]*accessModels.Grant),
		documents:     make(map[domain.PatientID][]*documentModels.Document),
	}
}

func walletKey(w domain.WalletAddress) string {
	return strings.ToLower(w.String())
}

// NextPatientID advances the patient counter. The counter is not rewound on
// rollback: ids stay strictly increasing and gaps are acceptable.
func (s *InMemoryStore) NextPatientID(_ context.Context) (domain.PatientID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPatientID++
	return s.lastPatientID, nil
}

func (s *InMemoryStore) CreateDoctor(ctx context.Context, doctor *identityModels.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.doctors[doctor.ID]; exists {
		return sentinel.ErrConflict
	}
	key := walletKey(doctor.Wallet)
	if _, bound := s.doctorWallets[key]; bound {
		return sentinel.ErrConflict
	}
	cp := *doctor
	s.doctors[doctor.ID] = &cp
	s.doctorWallets[key] = doctor.ID

	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.doctors, doctor.ID)
		delete(s.doctorWallets, key)
	})
	return nil
}

func (s *InMemoryStore) CreatePatient(ctx context.Context, patient *identityModels.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.patients[patient.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *patient
	s.patients[patient.ID] = &cp

	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.patients, patient.ID)
	})
	return nil
}

func (s *InMemoryStore) FindDoctor(_ context.Context, id domain.DoctorID) (*identityModels.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.doctors[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *InMemoryStore) FindDoctorByWallet(_ context.Context, wallet domain.WalletAddress) (*identityModels.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.doctorWallets[walletKey(wallet)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.doctors[id]
	return &cp, nil
}

func (s *InMemoryStore) FindPatient(_ context.Context, id domain.PatientID) (*identityModels.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// ListDoctors returns every registered doctor ordered by id.
func (s *InMemoryStore) ListDoctors(_ context.Context) ([]*identityModels.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*identityModels.Doctor, 0, len(s.doctors))
	for _, d := range s.doctors {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PutGrant inserts the grant if absent. created is false for an existing
// grant, which keeps its original GrantedAt.
func (s *InMemoryStore) PutGrant(ctx context.Context, grant *accessModels.Grant) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := grantKey{patientID: grant.PatientID, doctorID: grant.DoctorID}
	if _, exists := s.grants[key]; exists {
		return false, nil
	}
	cp := *grant
	s.grants[key] = &cp

	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.grants, key)
	})
	return true, nil
}

// DeleteGrant removes the grant if present and reports whether it existed.
func (s *InMemoryStore) DeleteGrant(ctx context.Context, patientID domain.PatientID, doctorID domain.DoctorID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := grantKey{patientID: patientID, doctorID: doctorID}
	existing, exists := s.grants[key]
	if !exists {
		return false, nil
	}
	delete(s.grants, key)

	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.grants[key] = existing
	})
	return true, nil
}

func (s *InMemoryStore) HasGrant(_ context.Context, patientID domain.PatientID, doctorID domain.DoctorID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.grants[grantKey{patientID: patientID, doctorID: doctorID}]
	return ok, nil
}

// ListGrants returns the patient's grants ordered by doctor id.
func (s *InMemoryStore) ListGrants(_ context.Context, patientID domain.PatientID) ([]*accessModels.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*accessModels.Grant, 0)
	for key, g := range s.grants {
		if key.patientID != patientID {
			continue
		}
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DoctorID < out[j].DoctorID })
	return out, nil
}

// AppendDocument stores doc at the next index, which counts tombstones, and
// returns that index.
func (s *InMemoryStore) AppendDocument(ctx context.Context, doc *documentModels.Document) (domain.DocumentIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.documents[doc.PatientID]
	cp := *doc
	cp.Index = domain.DocumentIndex(len(docs))
	s.documents[doc.PatientID] = append(docs, &cp)
	doc.Index = cp.Index

	patientID := doc.PatientID
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		current := s.documents[patientID]
		if len(current) > 0 && current[len(current)-1] == &cp {
			s.documents[patientID] = current[:len(current)-1]
		}
	})
	return cp.Index, nil
}

// FindDocument returns the entry at index, tombstoned or not.
func (s *InMemoryStore) FindDocument(_ context.Context, patientID domain.PatientID, index domain.DocumentIndex) (*documentModels.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.documents[patientID]
	if index < 0 || int(index) >= len(docs) {
		return nil, sentinel.ErrNotFound
	}
	return copyDocument(docs[index]), nil
}

// MarkDeleted tombstones a present document. Deleting a tombstone returns
// ErrNotFound.
func (s *InMemoryStore) MarkDeleted(ctx context.Context, patientID domain.PatientID, index domain.DocumentIndex, by domain.DoctorID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.documents[patientID]
	if index < 0 || int(index) >= len(docs) || docs[index].IsDeleted() {
		return sentinel.ErrNotFound
	}
	doc := docs[index]
	deletedAt := at
	doc.DeletedAt = &deletedAt
	doc.DeletedBy = by

	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		doc.DeletedAt = nil
		doc.DeletedBy = 0
	})
	return nil
}

// ListDocuments returns every entry for the patient in index order,
// tombstones included.
func (s *InMemoryStore) ListDocuments(_ context.Context, patientID domain.PatientID) ([]*documentModels.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.documents[patientID]
	out := make([]*documentModels.Document, len(docs))
	for i, d := range docs {
		out[i] = copyDocument(d)
	}
	return out, nil
}

func copyDocument(d *documentModels.Document) *documentModels.Document {
	cp := *d
	if d.DeletedAt != nil {
		at := *d.DeletedAt
		cp.DeletedAt = &at
	}
	return &cp
}
