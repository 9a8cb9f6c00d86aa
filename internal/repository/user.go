// Package repository builds the domain stores on top of a generic model.Store.
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/modulehub/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

// UserRepository stores user profiles.
type UserRepository struct {
	store model.Store[model.User, uuid.UUID]
}

func NewUserRepository(store model.Store[model.User, uuid.UUID]) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	saved, err := r.store.Create(ctx, user)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return saved, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := r.store.FindByID(ctx, id)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// FindByEmail returns every user whose email equals email exactly.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) ([]model.User, error) {
	users, err := r.store.Find(ctx, model.Filter{Where: model.Where{"email": email}})
	if err != nil {
		return nil, fmt.Errorf("failed to find users by email: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
