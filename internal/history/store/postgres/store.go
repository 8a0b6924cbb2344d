package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"medledger/internal/history"
	"medledger/pkg/domain"
	"medledger/pkg/platform/sentinel"
	txcontext "medledger/pkg/platform/tx"
)

// Store implements history.Store with a transactional outbox: the entry row
// and its outbox row are inserted through the same executor, so both commit
// with the registry mutation that produced them.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const entryColumns = `sequence, id, kind, outcome, patient_id, doctor_id, document_index,
	actor, error_code, reason, request_id, client, recorded_at`

func (s *Store) Append(ctx context.Context, entry *history.Entry) error {
	exec := txcontext.Executor(ctx, s.db)

	var docIndex sql.NullInt32
	if entry.DocumentIndex != nil {
		docIndex = sql.NullInt32{Int32: int32(*entry.DocumentIndex), Valid: true}
	}

	var seq int64
	err := exec.QueryRowContext(ctx, `
		INSERT INTO history_entries (
			id, kind, outcome, patient_id, doctor_id, document_index,
			actor, error_code, reason, request_id, client, recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING sequence`,
		entry.ID,
		string(entry.Kind),
		string(entry.Outcome),
		nullableID(uint64(entry.PatientID)),
		nullableID(uint64(entry.DoctorID)),
		docIndex,
		entry.Actor.String(),
		entry.ErrorCode,
		entry.Reason,
		entry.RequestID,
		entry.Client,
		entry.Timestamp,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	entry.Sequence = uint64(seq)

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history payload: %w", err)
	}
	if _, err := exec.ExecContext(ctx,
		`INSERT INTO history_outbox (entry_id, payload) VALUES ($1, $2)`,
		entry.ID, payload,
	); err != nil {
		return fmt.Errorf("insert history outbox: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*history.Entry, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM history_entries WHERE id = $1`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return entry, err
}

func (s *Store) ListByPatient(ctx context.Context, patientID domain.PatientID, limit int) ([]*history.Entry, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+entryColumns+` FROM history_entries
		WHERE patient_id = $1
		ORDER BY sequence ASC
		LIMIT $2`, int64(patientID), limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("query history entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]*history.Entry, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+entryColumns+` FROM history_entries
		ORDER BY sequence DESC
		LIMIT $1`, limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("query history entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *Store) Pending(ctx context.Context, limit int) ([]history.OutboxRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entry_id, payload FROM history_outbox
		WHERE processed_at IS NULL
		ORDER BY id ASC
		LIMIT $1`, limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("query history outbox: %w", err)
	}
	defer rows.Close()

	out := make([]history.OutboxRecord, 0)
	for rows.Next() {
		var rec history.OutboxRecord
		if err := rows.Scan(&rec.ID, &rec.EntryID, &rec.Payload); err != nil {
			return nil, fmt.Errorf("scan history outbox: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history outbox: %w", err)
	}
	return out, nil
}

func (s *Store) MarkProcessed(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE history_outbox SET processed_at = NOW() WHERE id = ANY($1)`,
		pq.Array(ids),
	); err != nil {
		return fmt.Errorf("mark history outbox processed: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*history.Entry, error) {
	var (
		e         history.Entry
		seq       int64
		kind      string
		outcome   string
		patientID sql.NullInt64
		doctorID  sql.NullInt64
		docIndex  sql.NullInt32
		actor     string
	)
	if err := row.Scan(&seq, &e.ID, &kind, &outcome, &patientID, &doctorID, &docIndex,
		&actor, &e.ErrorCode, &e.Reason, &e.RequestID, &e.Client, &e.Timestamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan history entry: %w", err)
	}
	e.Sequence = uint64(seq)
	e.Kind = history.Kind(kind)
	e.Outcome = history.Outcome(outcome)
	e.Actor = domain.WalletAddress(actor)
	if patientID.Valid {
		e.PatientID = domain.PatientID(patientID.Int64)
	}
	if doctorID.Valid {
		e.DoctorID = domain.DoctorID(doctorID.Int64)
	}
	if docIndex.Valid {
		e.DocumentIndex = history.IndexPtr(domain.DocumentIndex(docIndex.Int32))
	}
	return &e, nil
}

func scanEntries(rows *sql.Rows) ([]*history.Entry, error) {
	out := make([]*history.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history entries: %w", err)
	}
	return out, nil
}

func nullableID(v uint64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}

// limitOrAll maps a non-positive limit to Postgres' LIMIT ALL.
func limitOrAll(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
