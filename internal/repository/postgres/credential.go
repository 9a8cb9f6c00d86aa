package postgres

import (
	"github.com/google/uuid"

	"github.com/dtroode/modulehub/internal/model"
)

var credentialSchema = assertFields(Schema[model.Credential, uuid.UUID]{
	Table: "user_credentials",
	Key:   "user_id",
	Fields: map[string]string{
		"userId":       "user_id",
		"passwordHash": "password_hash",
	},
	Columns:   []string{"password_hash"},
	ReadOnly:  []string{"created_at", "updated_at"},
	InsertKey: true,
	Touch:     "updated_at",
	Values: func(c model.Credential) []any {
		return []any{c.PasswordHash}
	},
	KeyOf: func(c model.Credential) uuid.UUID { return c.UserID },
	Scan: func(row Scanner) (model.Credential, error) {
		var c model.Credential
		err := row.Scan(&c.UserID, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	},
})

// NewCredentialTable returns the user_credentials table keyed by user id.
func NewCredentialTable(db *Connection) *Table[model.Credential, uuid.UUID] {
	return NewTable(db, credentialSchema)
}
