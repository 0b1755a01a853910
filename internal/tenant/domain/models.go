package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Tenant is a workspace: one business with its own document numbering, plan,
// and quota record.
type Tenant struct {
	ID   snowflake.ID `gorm:"primaryKey" json:"id"`
	Name string       `gorm:"type:text;not null" json:"name"`
	Slug string       `gorm:"type:text;not null;uniqueIndex" json:"slug"`

	ContactEmail string `gorm:"type:text" json:"contactEmail,omitempty"`
	Country      string `gorm:"type:text;not null;default:TH" json:"country"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }
