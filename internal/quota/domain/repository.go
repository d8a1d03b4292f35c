package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *QuotaRecord) error
	FindActiveByUserID(ctx context.Context, db *gorm.DB, userID string) (*QuotaRecord, error)
	FindActiveByUserIDForUpdate(ctx context.Context, db *gorm.DB, userID string) (*QuotaRecord, error)
	UpdateUsage(ctx context.Context, db *gorm.DB, id snowflake.ID, used int, now time.Time) error
	UpdateLimit(ctx context.Context, db *gorm.DB, id snowflake.ID, limit int, now time.Time) error
	ResetPeriod(ctx context.Context, db *gorm.DB, id snowflake.ID, resetAt time.Time, now time.Time) error
	CancelActiveByUserID(ctx context.Context, db *gorm.DB, userID string, now time.Time) (int64, error)
	InsertPackPurchase(ctx context.Context, db *gorm.DB, purchase *PackPurchase) error
	FindPackPurchaseByBillingRef(ctx context.Context, db *gorm.DB, billingRef string) (*PackPurchase, error)
}
