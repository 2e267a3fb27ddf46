package jwttoken

import (
	"context"

	authmw "certifly/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *Claims) *authmw.JWTClaims {
	mc := &authmw.JWTClaims{
		UserID:        claims.UserID,
		WalletAddress: claims.WalletAddress,
		JTI:           claims.ID, // JWT ID for revocation tracking
	}
	if claims.ExpiresAt != nil {
		mc.ExpiresAt = claims.ExpiresAt.Time
	}
	return mc
}

type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}

// RevocationList is the lookup side of the credential revocation list.
type RevocationList interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RevocationCheckerAdapter exposes a RevocationList to the auth middleware.
type RevocationCheckerAdapter struct {
	list RevocationList
}

func NewRevocationCheckerAdapter(list RevocationList) *RevocationCheckerAdapter {
	return &RevocationCheckerAdapter{list: list}
}

func (a *RevocationCheckerAdapter) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return a.list.IsRevoked(ctx, jti)
}
