// Package postgres implements the registry tables on PostgreSQL. Every query
// goes through the transaction carried on the context when there is one.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	accessModels "medledger/internal/access/models"
	documentModels "medledger/internal/documents/models"
	identityModels "medledger/internal/identity/models"
	pg "medledger/internal/platform/postgres"
	"medledger/pkg/domain"
	"medledger/pkg/platform/sentinel"
	txcontext "medledger/pkg/platform/tx"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// NextPatientID bumps the singleton counter row. Inside a transaction the row
// lock is held until commit, so concurrent registrations queue behind it.
func (s *Store) NextPatientID(ctx context.Context) (domain.PatientID, error) {
	var id int64
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`UPDATE patient_id_seq SET last_id = last_id + 1 WHERE singleton RETURNING last_id`,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("next patient id: %w", err)
	}
	return domain.PatientID(id), nil
}

func (s *Store) CreateDoctor(ctx context.Context, doctor *identityModels.Doctor) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO doctors (id, name, wallet, registered_at)
		VALUES ($1, $2, $3, $4)`,
		int64(doctor.ID), doctor.Name, doctor.Wallet.String(), doctor.RegisteredAt,
	)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert doctor: %w", err)
	}
	return nil
}

func (s *Store) CreatePatient(ctx context.Context, patient *identityModels.Patient) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO patients (id, name, wallet, registered_at)
		VALUES ($1, $2, $3, $4)`,
		int64(patient.ID), patient.Name, patient.Wallet.String(), patient.RegisteredAt,
	)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

const doctorColumns = `id, name, wallet, registered_at`

func (s *Store) FindDoctor(ctx context.Context, id domain.DoctorID) (*identityModels.Doctor, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, int64(id))
	return scanDoctor(row)
}

// FindDoctorByWallet matches case-insensitively; wallets are stored in
// checksum form.
func (s *Store) FindDoctorByWallet(ctx context.Context, wallet domain.WalletAddress) (*identityModels.Doctor, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+doctorColumns+` FROM doctors WHERE lower(wallet) = lower($1)`, wallet.String())
	return scanDoctor(row)
}

func (s *Store) ListDoctors(ctx context.Context) ([]*identityModels.Doctor, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+doctorColumns+` FROM doctors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	out := make([]*identityModels.Doctor, 0)
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate doctors: %w", err)
	}
	return out, nil
}

func (s *Store) FindPatient(ctx context.Context, id domain.PatientID) (*identityModels.Patient, error) {
	var (
		patient identityModels.Patient
		rawID   int64
		wallet  string
	)
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, name, wallet, registered_at FROM patients WHERE id = $1`, int64(id),
	).Scan(&rawID, &patient.Name, &wallet, &patient.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find patient: %w", err)
	}
	patient.ID = domain.PatientID(rawID)
	patient.Wallet = domain.WalletAddress(wallet)
	return &patient, nil
}

// PutGrant upserts the pair; created reports whether a row was inserted.
func (s *Store) PutGrant(ctx context.Context, grant *accessModels.Grant) (bool, error) {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO access_grants (patient_id, doctor_id, granted_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (patient_id, doctor_id) DO NOTHING`,
		int64(grant.PatientID), int64(grant.DoctorID), grant.GrantedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert grant: %w", err)
	}
	return affected(res)
}

func (s *Store) DeleteGrant(ctx context.Context, patientID domain.PatientID, doctorID domain.DoctorID) (bool, error) {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM access_grants WHERE patient_id = $1 AND doctor_id = $2`,
		int64(patientID), int64(doctorID),
	)
	if err != nil {
		return false, fmt.Errorf("delete grant: %w", err)
	}
	return affected(res)
}

func (s *Store) HasGrant(ctx context.Context, patientID domain.PatientID, doctorID domain.DoctorID) (bool, error) {
	var exists bool
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM access_grants WHERE patient_id = $1 AND doctor_id = $2)`,
		int64(patientID), int64(doctorID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check grant: %w", err)
	}
	return exists, nil
}

func (s *Store) ListGrants(ctx context.Context, patientID domain.PatientID) ([]*accessModels.Grant, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT doctor_id, granted_at FROM access_grants
		WHERE patient_id = $1
		ORDER BY doctor_id`, int64(patientID))
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	out := make([]*accessModels.Grant, 0)
	for rows.Next() {
		var doctorID int64
		g := &accessModels.Grant{PatientID: patientID}
		if err := rows.Scan(&doctorID, &g.GrantedAt); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		g.DoctorID = domain.DoctorID(doctorID)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grants: %w", err)
	}
	return out, nil
}

// AppendDocument assigns the next index as the row count for the patient.
// Callers hold the patient's advisory lock, so the count is stable.
func (s *Store) AppendDocument(ctx context.Context, doc *documentModels.Document) (domain.DocumentIndex, error) {
	var idx int
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO documents (
			patient_id, idx, doctor_id, disease_name, description, content_ref, uploaded_at
		)
		SELECT $1::bigint, COUNT(*)::int, $2, $3, $4, $5, $6 FROM documents WHERE patient_id = $1::bigint
		RETURNING idx`,
		int64(doc.PatientID), int64(doc.DoctorID), doc.DiseaseName, doc.Description,
		doc.ContentRef.String(), doc.UploadedAt,
	).Scan(&idx)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return 0, sentinel.ErrConflict
		}
		return 0, fmt.Errorf("insert document: %w", err)
	}
	doc.Index = domain.DocumentIndex(idx)
	return doc.Index, nil
}

const documentColumns = `patient_id, idx, doctor_id, disease_name, description, content_ref,
	uploaded_at, deleted_at, deleted_by`

func (s *Store) FindDocument(ctx context.Context, patientID domain.PatientID, index domain.DocumentIndex) (*documentModels.Document, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE patient_id = $1 AND idx = $2`,
		int64(patientID), int(index))
	return scanDocument(row)
}

func (s *Store) MarkDeleted(ctx context.Context, patientID domain.PatientID, index domain.DocumentIndex, by domain.DoctorID, at time.Time) error {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE documents SET deleted_at = $3, deleted_by = $4
		WHERE patient_id = $1 AND idx = $2 AND deleted_at IS NULL`,
		int64(patientID), int(index), at, int64(by),
	)
	if err != nil {
		return fmt.Errorf("tombstone document: %w", err)
	}
	changed, err := affected(res)
	if err != nil {
		return err
	}
	if !changed {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) ListDocuments(ctx context.Context, patientID domain.PatientID) ([]*documentModels.Document, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE patient_id = $1 ORDER BY idx`,
		int64(patientID))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]*documentModels.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDoctor(row scanner) (*identityModels.Doctor, error) {
	var (
		d      identityModels.Doctor
		id     int64
		wallet string
	)
	err := row.Scan(&id, &d.Name, &wallet, &d.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan doctor: %w", err)
	}
	d.ID = domain.DoctorID(id)
	d.Wallet = domain.WalletAddress(wallet)
	return &d, nil
}

func scanDocument(row scanner) (*documentModels.Document, error) {
	var (
		d          documentModels.Document
		patientID  int64
		idx        int
		doctorID   int64
		contentRef string
		deletedAt  sql.NullTime
		deletedBy  sql.NullInt64
	)
	err := row.Scan(&patientID, &idx, &doctorID, &d.DiseaseName, &d.Description, &contentRef,
		&d.UploadedAt, &deletedAt, &deletedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}
	d.PatientID = domain.PatientID(patientID)
	d.Index = domain.DocumentIndex(idx)
	d.DoctorID = domain.DoctorID(doctorID)
	d.ContentRef = domain.ContentRef(contentRef)
	if deletedAt.Valid {
		at := deletedAt.Time
		d.DeletedAt = &at
	}
	if deletedBy.Valid {
		d.DeletedBy = domain.DoctorID(deletedBy.Int64)
	}
	return &d, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
