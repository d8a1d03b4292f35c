// Package domain contains persistence models for user question quotas.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/joseikin-rescue/server/internal/config"
	"gorm.io/datatypes"
)

// RecordStatus represents lifecycle states for a quota record.
type RecordStatus string

const (
	RecordStatusActive    RecordStatus = "active"
	RecordStatusCancelled RecordStatus = "cancelled"
)

// QuotaRecord governs how many advisory questions a user may still ask.
// Superseded records are kept with status cancelled for audit history;
// at most one record per user is active at a time.
type QuotaRecord struct {
	ID             snowflake.ID      `gorm:"primaryKey"`
	UserID         string            `gorm:"type:text;not null;index"`
	Tier           config.Tier       `gorm:"type:text;not null"`
	QuestionsLimit int               `gorm:"not null"`
	QuestionsUsed  int               `gorm:"not null;default:0"`
	ResetAt        *time.Time        `gorm:""`
	BillingRef     *string           `gorm:"type:text"`
	Status         RecordStatus      `gorm:"type:text;not null;index"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (QuotaRecord) TableName() string { return "quota_records" }

func (r *QuotaRecord) Remaining() int {
	remaining := r.QuestionsLimit - r.QuestionsUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// PackPurchase records a one-time credit-pack purchase. The unique billing
// reference is what makes pack redelivery idempotent.
type PackPurchase struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	UserID       string       `gorm:"type:text;not null;index"`
	BillingRef   string       `gorm:"type:text;not null;uniqueIndex"`
	CreditsAdded int          `gorm:"not null"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PackPurchase) TableName() string { return "pack_purchases" }
