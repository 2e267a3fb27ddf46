package revocation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	txcontext "certifly/pkg/platform/tx"
)

// PostgresTRL keeps revocations in the token_revocations table. Expired rows
// are ignored by lookups and removed by PurgeExpired.
type PostgresTRL struct {
	db    *sql.DB
	clock Clock
}

func NewPostgresTRL(db *sql.DB, opts ...Option) *PostgresTRL {
	return &PostgresTRL{db: db, clock: buildOptions(opts).clock}
}

func (t *PostgresTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	_, err := txcontext.Exec(ctx, t.db).ExecContext(ctx, `
		INSERT INTO token_revocations (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO UPDATE
		SET expires_at = GREATEST(token_revocations.expires_at, EXCLUDED.expires_at)`,
		jti, t.clock().Add(ttl),
	)
	if err != nil {
		return fmt.Errorf("revoke %s: %w", jti, err)
	}
	return nil
}

func (t *PostgresTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	defer observeCheck("postgres", time.Now())

	var revoked bool
	err := txcontext.Exec(ctx, t.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM token_revocations WHERE jti = $1 AND expires_at > $2)`,
		jti, t.clock(),
	).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("look up revocation %s: %w", jti, err)
	}
	return revoked, nil
}

// PurgeExpired deletes rows whose credential can no longer be presented and
// returns how many were removed.
func (t *PostgresTRL) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := txcontext.Exec(ctx, t.db).ExecContext(ctx,
		`DELETE FROM token_revocations WHERE expires_at <= $1`, t.clock())
	if err != nil {
		return 0, fmt.Errorf("purge revocations: %w", err)
	}
	return res.RowsAffected()
}
