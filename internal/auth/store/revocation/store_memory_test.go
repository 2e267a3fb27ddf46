package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certifly/pkg/platform/sentinel"
)

func TestInMemoryTRL_Lifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	trl := NewInMemoryTRL(WithClock(func() time.Time { return now }))

	revoked, err := trl.IsRevoked(ctx, "session-a")
	require.NoError(t, err)
	assert.False(t, revoked, "never revoked")

	require.NoError(t, trl.RevokeToken(ctx, "session-a", time.Hour))
	revoked, err = trl.IsRevoked(ctx, "session-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(time.Hour)
	revoked, err = trl.IsRevoked(ctx, "session-a")
	require.NoError(t, err)
	assert.False(t, revoked, "the credential itself has expired by now")
	assert.Empty(t, trl.expires)
}

func TestInMemoryTRL_RevokingAgainNeverShortens(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	trl := NewInMemoryTRL(WithClock(func() time.Time { return now }))

	require.NoError(t, trl.RevokeToken(ctx, "session-b", 3*time.Hour))
	require.NoError(t, trl.RevokeToken(ctx, "session-b", time.Minute))

	now = now.Add(2 * time.Hour)
	revoked, err := trl.IsRevoked(ctx, "session-b")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestInMemoryTRL_RejectsBadInput(t *testing.T) {
	trl := NewInMemoryTRL()
	ctx := context.Background()

	require.NoError(t, trl.RevokeToken(ctx, "", time.Hour), "blank identifiers are ignored")
	assert.ErrorIs(t, trl.RevokeToken(ctx, "session-c", 0), sentinel.ErrInvalidState)
	assert.ErrorIs(t, trl.RevokeToken(ctx, "session-c", -time.Second), sentinel.ErrInvalidState)
}
