// Package domain contains persistence models for provisioned users.
package domain

import (
	"context"
	"time"

	"github.com/joseikin-rescue/server/internal/identity"
)

// User mirrors the identity provider's account inside our own store. The ID
// is the provider's opaque identifier, not one we generate.
type User struct {
	ID                string    `gorm:"primaryKey;type:text"`
	Email             string    `gorm:"type:text;not null"`
	DisplayName       string    `gorm:"type:text"`
	BillingCustomerID *string   `gorm:"type:text"`
	CreatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

type ProvisionRequest struct {
	DisplayName string `json:"display_name"`
}

type ProvisionResult struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	QuestionsLimit int    `json:"questions_limit"`
	Remaining      int    `json:"remaining"`
}

// Service provisions an authenticated identity into a local user row plus its
// trial quota allowance. Safe to call more than once for the same identity.
type Service interface {
	Provision(ctx context.Context, who identity.AuthenticatedUser, req ProvisionRequest) (ProvisionResult, error)
}
