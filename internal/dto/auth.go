package dto

import (
	"time"

	"github.com/google/uuid"
)

// DevTokenRequest is the optional body of POST /dev/token. A blank UserID issues
// a token for a fresh user.
type DevTokenRequest struct {
	UserID string `json:"userId,omitempty" validate:"omitempty,uuid"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
}

type DevTokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	UserID      uuid.UUID `json:"userId"`
}
