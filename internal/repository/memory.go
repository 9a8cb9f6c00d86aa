package repository

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dtroode/modulehub/internal/model"
	"github.com/dtroode/modulehub/internal/repository/memory"
)

// NewMemoryUserStore returns a generic in-memory store for users with
// generated ids and unique emails.
func NewMemoryUserStore() *memory.Store[model.User, uuid.UUID] {
	return memory.New(memory.Options[model.User, uuid.UUID]{
		KeyField:     "id",
		KeyOf:        func(u model.User) uuid.UUID { return u.ID },
		WithKey:      func(u model.User, id uuid.UUID) model.User { u.ID = id; return u },
		NextKey:      uuid.New,
		Unique:       []string{"email"},
		CreatedField: "createdAt",
		UpdatedField: "updatedAt",
	})
}

// NewMemoryCredentialStore returns a generic in-memory store for credentials
// keyed by user id.
func NewMemoryCredentialStore() *memory.Store[model.Credential, uuid.UUID] {
	return memory.New(memory.Options[model.Credential, uuid.UUID]{
		KeyField:     "userId",
		KeyOf:        func(c model.Credential) uuid.UUID { return c.UserID },
		WithKey:      func(c model.Credential, id uuid.UUID) model.Credential { c.UserID = id; return c },
		CreatedField: "createdAt",
		UpdatedField: "updatedAt",
	})
}

// NewMemoryModuleStore returns a generic in-memory store for modules with
// sequential ids.
func NewMemoryModuleStore() *memory.Store[model.Module, int64] {
	var seq atomic.Int64
	return memory.New(memory.Options[model.Module, int64]{
		KeyField:     "id",
		KeyOf:        func(m model.Module) int64 { return m.ID },
		WithKey:      func(m model.Module, id int64) model.Module { m.ID = id; return m },
		NextKey:      func() int64 { return seq.Add(1) },
		CreatedField: "createdAt",
		UpdatedField: "updatedAt",
	})
}
