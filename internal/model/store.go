package model

import "context"

// Where is a set of field equality conditions. A nil value matches NULL.
type Where map[string]any

// Patch maps field names to new values for a partial update.
type Patch map[string]any

// Filter narrows a Find query.
type Filter struct {
	Where  Where
	Order  []string
	Limit  int
	Offset int
}

// Store is a CRUD capability over records of type T keyed by ID.
// Field names in Where, Patch and Order are the records' JSON names.
type Store[T any, ID comparable] interface {
	Create(ctx context.Context, record T) (T, error)
	Find(ctx context.Context, filter Filter) ([]T, error)
	FindByID(ctx context.Context, id ID) (T, error)
	Count(ctx context.Context, where Where) (int64, error)
	UpdateByID(ctx context.Context, id ID, patch Patch) error
	ReplaceByID(ctx context.Context, id ID, record T) error
	DeleteByID(ctx context.Context, id ID) error
	UpdateAll(ctx context.Context, patch Patch, where Where) (int64, error)
}

// Transactor runs fn so that every store call made with the passed context
// commits or rolls back together.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
