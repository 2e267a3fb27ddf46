// Package requestcontext carries request-scoped values through services that
// never import net/http. Middleware writes them; services read them:
//
//	owner := requestcontext.UserID(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests pin the clock with WithTime.
package requestcontext

import (
	"context"
	"time"

	id "certifly/pkg/domain"
)

type key int

const (
	userIDKey key = iota
	walletKey
	tokenIDKey
	tokenExpiryKey
	requestIDKey
	timeKey
)

// get returns the zero T when key is absent.
func get[T any](ctx context.Context, k key) T {
	v, _ := ctx.Value(k).(T)
	return v
}

// UserID is the authenticated owner, or the nil ID on public routes.
func UserID(ctx context.Context) id.UserID { return get[id.UserID](ctx, userIDKey) }

func WithUserID(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// WalletAddress is the wallet the session credential was issued to.
func WalletAddress(ctx context.Context) string { return get[string](ctx, walletKey) }

func WithWalletAddress(ctx context.Context, wallet string) context.Context {
	return context.WithValue(ctx, walletKey, wallet)
}

// TokenID and TokenExpiry describe the credential that authenticated the
// request; logout revokes TokenID until TokenExpiry.
func TokenID(ctx context.Context) string { return get[string](ctx, tokenIDKey) }

func TokenExpiry(ctx context.Context) time.Time { return get[time.Time](ctx, tokenExpiryKey) }

func WithToken(ctx context.Context, jti string, expiresAt time.Time) context.Context {
	ctx = context.WithValue(ctx, tokenIDKey, jti)
	return context.WithValue(ctx, tokenExpiryKey, expiresAt)
}

func RequestID(ctx context.Context) string { return get[string](ctx, requestIDKey) }

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Now is the time pinned for this request, or the wall clock outside one.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(timeKey).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, timeKey, t)
}
