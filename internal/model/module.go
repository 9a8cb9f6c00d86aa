package model

import (
	"fmt"
	"time"
)

// ModuleStore persists modules. It adds nothing on top of the generic store.
type ModuleStore = Store[Module, int64]

// Module is a generic CRUD resource with optional binary content.
type Module struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Version     string    `json:"version"`
	ContentType string    `json:"contentType"`
	ContentSize int64     `json:"contentSize"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasContent reports whether content was uploaded for the module.
func (m Module) HasContent() bool {
	return m.ContentSize > 0 || m.ContentType != ""
}

// ContentKey returns the object storage key of the module content.
func ContentKey(id int64) string {
	return fmt.Sprintf("modules/%d/content", id)
}
