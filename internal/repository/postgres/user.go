package postgres

import (
	"github.com/google/uuid"

	"github.com/dtroode/modulehub/internal/model"
)

var userSchema = assertFields(Schema[model.User, uuid.UUID]{
	Table: "users",
	Key:   "id",
	Fields: map[string]string{
		"id":        "id",
		"email":     "email",
		"username":  "username",
		"firstName": "first_name",
		"lastName":  "last_name",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	},
	Columns:  []string{"email", "username", "first_name", "last_name"},
	ReadOnly: []string{"created_at", "updated_at"},
	Touch:    "updated_at",
	Values: func(u model.User) []any {
		return []any{u.Email, u.Username, u.FirstName, u.LastName}
	},
	KeyOf: func(u model.User) uuid.UUID { return u.ID },
	Scan: func(row Scanner) (model.User, error) {
		var u model.User
		err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
		return u, err
	},
})

// NewUserTable returns the users table. Ids are generated by the database.
func NewUserTable(db *Connection) *Table[model.User, uuid.UUID] {
	return NewTable(db, userSchema)
}
