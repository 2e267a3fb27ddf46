package verificationlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"certifly/internal/certificate/models"
	id "certifly/pkg/domain"
	txcontext "certifly/pkg/platform/tx"
)

// PostgresStore persists verification log entries in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const logColumns = `id, certificate_id, step, status, details, created_at`

func (s *PostgresStore) Append(ctx context.Context, e *models.LogEntry) error {
	var details any
	if len(e.Details) > 0 {
		details = string(e.Details)
	}
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO verification_logs (`+logColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(e.ID), uuid.UUID(e.CertificateID), string(e.Step), e.Status, details, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert verification log: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByCertificate(ctx context.Context, certID id.CertificateID) ([]*models.LogEntry, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+logColumns+` FROM verification_logs WHERE certificate_id = $1 ORDER BY created_at, id`,
		uuid.UUID(certID))
	if err != nil {
		return nil, fmt.Errorf("list verification logs: %w", err)
	}
	defer rows.Close()

	out := make([]*models.LogEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verification logs: %w", err)
	}
	return out, nil
}

// LatestByCertificates fetches the newest entry per certificate in one query.
func (s *PostgresStore) LatestByCertificates(ctx context.Context, certIDs []id.CertificateID) (map[id.CertificateID]*models.LogEntry, error) {
	out := make(map[id.CertificateID]*models.LogEntry, len(certIDs))
	if len(certIDs) == 0 {
		return out, nil
	}
	ids := make([]string, len(certIDs))
	for i, c := range certIDs {
		ids[i] = c.String()
	}
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, `
		SELECT DISTINCT ON (certificate_id) `+logColumns+`
		FROM verification_logs
		WHERE certificate_id = ANY($1::uuid[])
		ORDER BY certificate_id, created_at DESC, id DESC
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("latest verification logs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out[e.CertificateID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verification logs: %w", err)
	}
	return out, nil
}

// DeleteByCertificate is a no-op in PostgreSQL; the foreign key cascades.
func (s *PostgresStore) DeleteByCertificate(context.Context, id.CertificateID) error {
	return nil
}

func scanEntry(rows *sql.Rows) (*models.LogEntry, error) {
	var (
		e       models.LogEntry
		entryID uuid.UUID
		certID  uuid.UUID
		step    string
		details []byte
	)
	if err := rows.Scan(&entryID, &certID, &step, &e.Status, &details, &e.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan verification log: %w", err)
	}
	e.ID = id.LogEntryID(entryID)
	e.CertificateID = id.CertificateID(certID)
	e.Step = models.LogStep(step)
	if len(details) > 0 {
		e.Details = json.RawMessage(details)
	}
	return &e, nil
}
