package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CredentialStore persists password hashes keyed by user id.
type CredentialStore interface {
	Create(ctx context.Context, credential Credential) (Credential, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (Credential, error)
}

// Credential is the secret material of a user, stored apart from the profile.
type Credential struct {
	UserID       uuid.UUID `json:"userId"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
