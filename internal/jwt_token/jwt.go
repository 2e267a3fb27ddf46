package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "certifly/pkg/domain"
	dErrors "certifly/pkg/domain-errors"
)

// Claims represents the session credential issued after wallet login.
type Claims struct {
	UserID        string `json:"user_id"`
	WalletAddress string `json:"wallet_address"`
	jwt.RegisteredClaims
}

// SessionToken is a signed credential with its identifying claims.
type SessionToken struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// JWTService handles session credential creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	now        func() time.Time
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		now:        time.Now,
	}
}

// GenerateSessionToken signs an HS256 credential for userID valid for expiresIn.
func (s *JWTService) GenerateSessionToken(
	userID id.UserID,
	wallet id.WalletAddress,
	expiresIn time.Duration) (*SessionToken, error) {
	now := s.now()
	expiresAt := now.Add(expiresIn)
	jti := uuid.NewString()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:        userID.String(),
		WalletAddress: wallet.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        jti,
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return nil, err
	}
	return &SessionToken{Token: signedToken, JTI: jti, ExpiresAt: expiresAt.Truncate(time.Second)}, nil
}

// ValidateToken verifies signature, issuer, audience and expiry. Every
// failure is CodeUnauthorized with reason invalid_token.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(s.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.WithReason(dErrors.CodeUnauthorized, dErrors.ReasonInvalidToken, "token has expired")
		}
		return nil, dErrors.WithReason(dErrors.CodeUnauthorized, dErrors.ReasonInvalidToken, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.WithReason(dErrors.CodeUnauthorized, dErrors.ReasonInvalidToken, "invalid token")
	}
	if _, err := id.ParseUserID(claims.UserID); err != nil {
		return nil, dErrors.WithReason(dErrors.CodeUnauthorized, dErrors.ReasonInvalidToken, "invalid token claims")
	}

	return claims, nil
}
