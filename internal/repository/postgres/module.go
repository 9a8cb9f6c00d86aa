package postgres

import (
	"github.com/dtroode/modulehub/internal/model"
)

var _ model.ModuleStore = (*Table[model.Module, int64])(nil)

var moduleSchema = assertFields(Schema[model.Module, int64]{
	Table: "modules",
	Key:   "id",
	Fields: map[string]string{
		"id":          "id",
		"name":        "name",
		"description": "description",
		"version":     "version",
		"contentType": "content_type",
		"contentSize": "content_size",
		"createdAt":   "created_at",
		"updatedAt":   "updated_at",
	},
	Columns:  []string{"name", "description", "version", "content_type", "content_size"},
	ReadOnly: []string{"created_at", "updated_at"},
	Touch:    "updated_at",
	Values: func(m model.Module) []any {
		return []any{m.Name, m.Description, m.Version, m.ContentType, m.ContentSize}
	},
	KeyOf: func(m model.Module) int64 { return m.ID },
	Scan: func(row Scanner) (model.Module, error) {
		var m model.Module
		err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Version, &m.ContentType, &m.ContentSize, &m.CreatedAt, &m.UpdatedAt)
		return m, err
	},
})

// NewModuleTable returns the modules table. Ids come from a BIGSERIAL.
func NewModuleTable(db *Connection) *Table[model.Module, int64] {
	return NewTable(db, moduleSchema)
}
