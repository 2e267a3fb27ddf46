package models

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	id "certifly/pkg/domain"
	dErrors "certifly/pkg/domain-errors"
)

// MaxDisplayNameLength bounds profile names.
const MaxDisplayNameLength = 100

// User is the identity bound to a wallet. WalletAddress never changes after
// creation and at most one user exists per wallet.
type User struct {
	ID            id.UserID
	WalletAddress id.WalletAddress
	DisplayName   string
	Email         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewUser builds the record created on a wallet's first successful login.
func NewUser(userID id.UserID, wallet id.WalletAddress, now time.Time) *User {
	return &User{
		ID:            userID,
		WalletAddress: wallet,
		DisplayName:   DefaultDisplayName(userID),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// DefaultDisplayName is "User " followed by the first six characters of the ID.
func DefaultDisplayName(userID id.UserID) string {
	return "User " + userID.String()[:6]
}

// ProfileUpdate carries optional profile changes. Nil fields are left alone.
type ProfileUpdate struct {
	DisplayName *string
	Email       *string
}

// Validate checks bounds and formats of the provided fields.
func (u ProfileUpdate) Validate() error {
	if u.DisplayName == nil && u.Email == nil {
		return dErrors.New(dErrors.CodeValidation, "no profile fields to update")
	}
	if u.DisplayName != nil {
		name := strings.TrimSpace(*u.DisplayName)
		if name == "" {
			return dErrors.New(dErrors.CodeValidation, "display name cannot be empty")
		}
		if utf8.RuneCountInString(name) > MaxDisplayNameLength {
			return dErrors.New(dErrors.CodeValidation, "display name must be at most 100 characters")
		}
	}
	if u.Email != nil && *u.Email != "" {
		addr, err := mail.ParseAddress(*u.Email)
		if err != nil || addr.Address != *u.Email {
			return dErrors.New(dErrors.CodeValidation, "invalid email address")
		}
	}
	return nil
}

// Apply copies the provided fields onto user. An empty email clears it.
func (u ProfileUpdate) Apply(user *User, now time.Time) {
	if u.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*u.DisplayName)
	}
	if u.Email != nil {
		if *u.Email == "" {
			user.Email = nil
		} else {
			email := *u.Email
			user.Email = &email
		}
	}
	user.UpdatedAt = now
}

// LoginRequest is the wallet proof submitted at login.
type LoginRequest struct {
	Message   string
	Signature string
	PublicKey string
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *User
	Created   bool
}
