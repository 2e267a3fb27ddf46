package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	id "certifly/pkg/domain"
)

func TestAccessors_ZeroValuesWhenUnset(t *testing.T) {
	ctx := context.Background()
	assert.True(t, UserID(ctx).IsNil())
	assert.Empty(t, WalletAddress(ctx))
	assert.Empty(t, TokenID(ctx))
	assert.True(t, TokenExpiry(ctx).IsZero())
	assert.Empty(t, RequestID(ctx))
	assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
}

func TestAccessors_ReadBackWrittenValues(t *testing.T) {
	userID := id.UserID(uuid.New())
	expiry := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	pinned := time.Date(2026, 4, 24, 8, 0, 0, 0, time.UTC)

	ctx := WithUserID(context.Background(), userID)
	ctx = WithWalletAddress(ctx, "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	ctx = WithToken(ctx, "jti-1", expiry)
	ctx = WithRequestID(ctx, "req-7")
	ctx = WithTime(ctx, pinned)

	assert.Equal(t, userID, UserID(ctx))
	assert.Equal(t, "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T", WalletAddress(ctx))
	assert.Equal(t, "jti-1", TokenID(ctx))
	assert.Equal(t, expiry, TokenExpiry(ctx))
	assert.Equal(t, "req-7", RequestID(ctx))
	assert.Equal(t, pinned, Now(ctx))
}

func TestKeysDoNotCollide(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithToken(ctx, "jti-2", time.Time{})
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "jti-2", TokenID(ctx))
}
