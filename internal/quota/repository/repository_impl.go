package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	quotadomain "github.com/joseikin-rescue/server/internal/quota/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() quotadomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *quotadomain.QuotaRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) FindActiveByUserID(ctx context.Context, db *gorm.DB, userID string) (*quotadomain.QuotaRecord, error) {
	return r.findActive(ctx, db, userID, false)
}

func (r *repo) FindActiveByUserIDForUpdate(ctx context.Context, db *gorm.DB, userID string) (*quotadomain.QuotaRecord, error) {
	return r.findActive(ctx, db, userID, true)
}

func (r *repo) findActive(ctx context.Context, db *gorm.DB, userID string, forUpdate bool) (*quotadomain.QuotaRecord, error) {
	stmt := db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, quotadomain.RecordStatusActive).
		Order("created_at DESC")

	// sqlite has no row locks; its single writer serializes anyway.
	if forUpdate && db.Dialector.Name() != "sqlite" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var record quotadomain.QuotaRecord
	err := stmt.First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repo) UpdateUsage(ctx context.Context, db *gorm.DB, id snowflake.ID, used int, now time.Time) error {
	return db.WithContext(ctx).
		Model(&quotadomain.QuotaRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"questions_used": used,
			"updated_at":     now,
		}).Error
}

func (r *repo) UpdateLimit(ctx context.Context, db *gorm.DB, id snowflake.ID, limit int, now time.Time) error {
	return db.WithContext(ctx).
		Model(&quotadomain.QuotaRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"questions_limit": limit,
			"updated_at":      now,
		}).Error
}

func (r *repo) ResetPeriod(ctx context.Context, db *gorm.DB, id snowflake.ID, resetAt time.Time, now time.Time) error {
	return db.WithContext(ctx).
		Model(&quotadomain.QuotaRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"questions_used": 0,
			"reset_at":       resetAt,
			"updated_at":     now,
		}).Error
}

func (r *repo) CancelActiveByUserID(ctx context.Context, db *gorm.DB, userID string, now time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&quotadomain.QuotaRecord{}).
		Where("user_id = ? AND status = ?", userID, quotadomain.RecordStatusActive).
		Updates(map[string]any{
			"status":     quotadomain.RecordStatusCancelled,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *repo) InsertPackPurchase(ctx context.Context, db *gorm.DB, purchase *quotadomain.PackPurchase) error {
	return db.WithContext(ctx).Create(purchase).Error
}

func (r *repo) FindPackPurchaseByBillingRef(ctx context.Context, db *gorm.DB, billingRef string) (*quotadomain.PackPurchase, error) {
	var purchase quotadomain.PackPurchase
	err := db.WithContext(ctx).
		Where("billing_ref = ?", billingRef).
		First(&purchase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &purchase, nil
}
