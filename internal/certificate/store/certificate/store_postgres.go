package certificate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"certifly/internal/certificate/models"
	"certifly/internal/platform/postgres"
	id "certifly/pkg/domain"
	"certifly/pkg/platform/sentinel"
	txcontext "certifly/pkg/platform/tx"
)

// PostgresStore persists certificates in PostgreSQL. Conditional updates are
// single UPDATE ... WHERE statements, safe across instances.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const certificateColumns = `id, user_id, title, institution_name, program_name, issue_date,
	document_key, document_url, verification_url, status, verification_details,
	ledger_address, mint_id, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, c *models.Certificate) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO certificates (`+certificateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, uuid.UUID(c.ID), uuid.UUID(c.UserID), c.Title, c.InstitutionName, c.ProgramName, c.IssueDate,
		c.DocumentKey, c.DocumentURL, c.VerificationURL, string(c.Status), nullableJSON(c.VerificationDetails),
		c.LedgerAddress, c.MintID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, certID id.CertificateID) (*models.Certificate, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+certificateColumns+` FROM certificates WHERE id = $1`, uuid.UUID(certID))
	return scanCertificate(row)
}

func (s *PostgresStore) FindByIDAndUser(ctx context.Context, certID id.CertificateID, userID id.UserID) (*models.Certificate, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+certificateColumns+` FROM certificates WHERE id = $1 AND user_id = $2`,
		uuid.UUID(certID), uuid.UUID(userID))
	return scanCertificate(row)
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Certificate, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+certificateColumns+` FROM certificates WHERE user_id = $1 ORDER BY created_at DESC`,
		uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Certificate, 0)
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate certificates: %w", err)
	}
	return out, nil
}

// Delete removes the owner's certificate. Verification logs go with it via ON DELETE CASCADE.
func (s *PostgresStore) Delete(ctx context.Context, certID id.CertificateID, userID id.UserID) (*models.Certificate, error) {
	var deleted *models.Certificate
	err := txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		exec := txcontext.Exec(ctx, s.db)
		c, err := scanCertificate(exec.QueryRowContext(ctx,
			`SELECT `+certificateColumns+` FROM certificates WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			uuid.UUID(certID), uuid.UUID(userID)))
		if err != nil {
			return err
		}
		if _, err := exec.ExecContext(ctx, `DELETE FROM certificates WHERE id = $1`, uuid.UUID(certID)); err != nil {
			return fmt.Errorf("delete certificate: %w", err)
		}
		deleted = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (s *PostgresStore) CompareAndSetVerification(ctx context.Context, certID id.CertificateID, expect, status models.Status, details json.RawMessage, now time.Time) (bool, error) {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE certificates
		SET status = $3, verification_details = $4, updated_at = $5
		WHERE id = $1 AND status = $2
	`, uuid.UUID(certID), string(expect), string(status), nullableJSON(details), now)
	if err != nil {
		return false, fmt.Errorf("update certificate status: %w", err)
	}
	return s.applied(ctx, res, certID)
}

func (s *PostgresStore) SetLedgerAddressIfEmpty(ctx context.Context, certID id.CertificateID, address string, now time.Time) (bool, error) {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE certificates SET ledger_address = $2, updated_at = $3
		WHERE id = $1 AND ledger_address IS NULL
	`, uuid.UUID(certID), address, now)
	if err != nil {
		return false, fmt.Errorf("update ledger address: %w", err)
	}
	return s.applied(ctx, res, certID)
}

func (s *PostgresStore) SetMintIDIfEmpty(ctx context.Context, certID id.CertificateID, mintID string, now time.Time) (bool, error) {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE certificates SET mint_id = $2, updated_at = $3
		WHERE id = $1 AND mint_id IS NULL AND status = 'verified'
	`, uuid.UUID(certID), mintID, now)
	if err != nil {
		return false, fmt.Errorf("update mint id: %w", err)
	}
	return s.applied(ctx, res, certID)
}

// applied distinguishes a lost compare-and-set from a missing row.
func (s *PostgresStore) applied(ctx context.Context, res sql.Result, certID id.CertificateID) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return true, nil
	}
	var exists bool
	if err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM certificates WHERE id = $1)`, uuid.UUID(certID)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check certificate exists: %w", err)
	}
	if !exists {
		return false, sentinel.ErrNotFound
	}
	return false, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCertificate(row rowScanner) (*models.Certificate, error) {
	var (
		c       models.Certificate
		certID  uuid.UUID
		userID  uuid.UUID
		status  string
		details []byte
		ledger  sql.NullString
		mintID  sql.NullString
	)
	err := row.Scan(&certID, &userID, &c.Title, &c.InstitutionName, &c.ProgramName, &c.IssueDate,
		&c.DocumentKey, &c.DocumentURL, &c.VerificationURL, &status, &details,
		&ledger, &mintID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan certificate: %w", err)
	}
	c.ID = id.CertificateID(certID)
	c.UserID = id.UserID(userID)
	c.Status = models.Status(status)
	if len(details) > 0 {
		c.VerificationDetails = json.RawMessage(details)
	}
	if ledger.Valid {
		c.LedgerAddress = &ledger.String
	}
	if mintID.Valid {
		c.MintID = &mintID.String
	}
	return &c, nil
}

// nullableJSON maps empty details to SQL NULL so the jsonb column accepts it.
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
