package handler

import (
	"strings"
	"time"

	"certifly/internal/auth/models"
	dErrors "certifly/pkg/domain-errors"
)

type LoginRequest struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
	PublicKey string `json:"publicKey"`
}

func (r *LoginRequest) Normalize() {
	r.Signature = strings.TrimSpace(r.Signature)
	r.PublicKey = strings.TrimSpace(r.PublicKey)
}

func (r *LoginRequest) Validate() error {
	if r.Message == "" || r.Signature == "" || r.PublicKey == "" {
		return dErrors.New(dErrors.CodeValidation, "missing required parameters: message, signature, publicKey")
	}
	return nil
}

type UpdateProfileRequest struct {
	FullName *string `json:"fullName,omitempty"`
	Email    *string `json:"email,omitempty"`
}

func (r *UpdateProfileRequest) Normalize() {
	if r.FullName != nil {
		name := strings.TrimSpace(*r.FullName)
		r.FullName = &name
	}
	if r.Email != nil {
		email := strings.TrimSpace(*r.Email)
		r.Email = &email
	}
}

func (r *UpdateProfileRequest) Validate() error {
	return r.toModel().Validate()
}

func (r *UpdateProfileRequest) toModel() models.ProfileUpdate {
	return models.ProfileUpdate{DisplayName: r.FullName, Email: r.Email}
}

type UserResponse struct {
	ID            string    `json:"id"`
	Email         *string   `json:"email,omitempty"`
	FullName      string    `json:"full_name"`
	WalletAddress string    `json:"wallet_address"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:            u.ID.String(),
		Email:         u.Email,
		FullName:      u.DisplayName,
		WalletAddress: u.WalletAddress.String(),
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type ProfileResponse struct {
	User UserResponse `json:"user"`
}
