package auth

import (
	"github.com/pageturn/bookstore-backend/internal/users"
)

// LoginRequest carries local credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the token pair and the account it belongs to.
type LoginResponse struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	User         users.UserResponse `json:"user"`
}

// RegisterRequest carries the payload for local account creation.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RefreshRequest rotates a refresh token using the expired access token's jti.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse returns the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// OAuthProfile is the verified identity handed over after an external
// provider login. The handshake itself happens elsewhere. Fields are not
// validated here: incomplete profiles are skipped downstream instead of
// failing the caller.
type OAuthProfile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
