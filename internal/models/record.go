package models

import (
	"time"

	"github.com/google/uuid"
)

// Record holds the identity, timestamp, and soft-delete columns shared by
// every persisted table. Concrete models embed it instead of inheriting a
// base type; the Entity interface is the common contract repositories rely on.
type Record struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(40)" validate:"omitempty,uuid"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt time.Time  `json:"updated_at"`
	IsDeleted bool       `json:"is_deleted" gorm:"index;default:false"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Entity is implemented by every persisted model.
type Entity interface {
	RecordID() string
	Validate() error
}

// RecordID returns the assigned identifier, empty until EnsureID or a
// repository assigns one. The ID never changes after that.
func (r *Record) RecordID() string {
	return r.ID
}

// EnsureID assigns a fresh UUID if the record has none yet.
func (r *Record) EnsureID() {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
}

// Touch advances the update timestamp.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now().UTC()
}

// MarkDeleted flags the record as soft-deleted. The row stays addressable
// by ID; default queries exclude it.
func (r *Record) MarkDeleted() {
	now := time.Now().UTC()
	r.IsDeleted = true
	r.DeletedAt = &now
	r.UpdatedAt = now
}
