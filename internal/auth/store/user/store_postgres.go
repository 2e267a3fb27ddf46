package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"certifly/internal/auth/models"
	id "certifly/pkg/domain"
	"certifly/pkg/platform/sentinel"
	txcontext "certifly/pkg/platform/tx"
)

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, wallet_address, display_name, email, created_at, updated_at`

// FindOrCreateByWallet inserts candidate unless its wallet is already bound.
// ON CONFLICT DO NOTHING makes concurrent first logins converge on one row.
func (s *PostgresStore) FindOrCreateByWallet(ctx context.Context, candidate *models.User) (*models.User, bool, error) {
	exec := txcontext.Exec(ctx, s.db)
	res, err := exec.ExecContext(ctx, `
		INSERT INTO users (id, wallet_address, display_name, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (wallet_address) DO NOTHING
	`, uuid.UUID(candidate.ID), candidate.WalletAddress.String(), candidate.DisplayName,
		candidate.Email, candidate.CreatedAt, candidate.UpdatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("insert user: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert user rows affected: %w", err)
	}
	user, err := s.FindByWallet(ctx, candidate.WalletAddress)
	if err != nil {
		return nil, false, err
	}
	return user, inserted == 1, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
	return scanUser(row)
}

func (s *PostgresStore) FindByWallet(ctx context.Context, wallet id.WalletAddress) (*models.User, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE wallet_address = $1`, wallet.String())
	return scanUser(row)
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, user *models.User) error {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE users SET display_name = $2, email = $3, updated_at = $4
		WHERE id = $1
	`, uuid.UUID(user.ID), user.DisplayName, user.Email, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user profile rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u      models.User
		userID uuid.UUID
		wallet string
		email  sql.NullString
	)
	if err := row.Scan(&userID, &wallet, &u.DisplayName, &email, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = id.UserID(userID)
	u.WalletAddress = id.WalletAddress(wallet)
	if email.Valid {
		u.Email = &email.String
	}
	return &u, nil
}
