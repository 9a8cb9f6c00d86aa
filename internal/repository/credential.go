package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/modulehub/internal/model"
)

var _ model.CredentialStore = (*CredentialRepository)(nil)

// CredentialRepository stores password hashes keyed by user id.
type CredentialRepository struct {
	store model.Store[model.Credential, uuid.UUID]
}

func NewCredentialRepository(store model.Store[model.Credential, uuid.UUID]) *CredentialRepository {
	return &CredentialRepository{store: store}
}

func (r *CredentialRepository) Create(ctx context.Context, credential model.Credential) (model.Credential, error) {
	saved, err := r.store.Create(ctx, credential)
	if err != nil {
		return model.Credential{}, fmt.Errorf("failed to create credential: %w", err)
	}
	return saved, nil
}

func (r *CredentialRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (model.Credential, error) {
	credential, err := r.store.FindByID(ctx, userID)
	if err != nil {
		return model.Credential{}, fmt.Errorf("failed to get credential: %w", err)
	}
	return credential, nil
}
