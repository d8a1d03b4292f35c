package domain

import (
	"context"
	"errors"
	"time"

	"github.com/joseikin-rescue/server/internal/config"
)

// ConsumeResult reports the counter state after a successful consumption.
type ConsumeResult struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// UsageStats is the read-only quota snapshot shown to the user.
type UsageStats struct {
	QuestionsUsed  int         `json:"questions_used"`
	QuestionsLimit int         `json:"questions_limit"`
	Remaining      int         `json:"remaining"`
	Tier           config.Tier `json:"tier"`
	Status         string      `json:"status"`
	ResetAt        *time.Time  `json:"reset_at,omitempty"`
}

//go:generate mockgen -source=service.go -destination=./mocks/mock_service.go -package=mocks
type Service interface {
	// GetActiveRecord returns the latest active record for the user, applying
	// a lazy period reset when ResetAt has elapsed. Returns (nil, nil) when
	// the user has no subscription state.
	GetActiveRecord(ctx context.Context, userID string) (*QuotaRecord, error)
	// CreateTrialRecord provisions the lifetime trial allowance. Calling it
	// again while an active record exists is a no-op.
	CreateTrialRecord(ctx context.Context, userID string) (*QuotaRecord, error)
	// Consume records one question against the active record. Rejection has
	// zero side effects.
	Consume(ctx context.Context, userID string) (ConsumeResult, error)
	// UpgradeTier supersedes the active record with a fresh allowance for the
	// given tier. Redelivery with the same billingRef is a no-op.
	UpgradeTier(ctx context.Context, userID string, tier string, billingRef string) error
	// AddCredits raises the active record's limit in place. Redelivery with
	// the same billingRef is a no-op.
	AddCredits(ctx context.Context, userID string, billingRef string, credits int) error
	// Cancel marks the active record cancelled without a replacement.
	Cancel(ctx context.Context, userID string) error
	// UsageStats returns the zero-valued "none" shape when no record exists.
	UsageStats(ctx context.Context, userID string) (UsageStats, error)
}

var (
	ErrNoActiveSubscription = errors.New("no_active_subscription")
	ErrQuotaExceeded        = errors.New("quota_exceeded")
	ErrInvalidTier          = errors.New("invalid_tier")
	ErrInvalidCredits       = errors.New("invalid_credits")
	ErrInvalidUser          = errors.New("invalid_user")
	ErrInvalidBillingRef    = errors.New("invalid_billing_ref")
	ErrDuplicateRecord      = errors.New("duplicate_record")
)
