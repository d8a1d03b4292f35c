package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/joseikin-rescue/server/internal/clock"
	"github.com/joseikin-rescue/server/internal/config"
	"github.com/joseikin-rescue/server/internal/identity"
	quotadomain "github.com/joseikin-rescue/server/internal/quota/domain"
	quotarepository "github.com/joseikin-rescue/server/internal/quota/repository"
	quotaservice "github.com/joseikin-rescue/server/internal/quota/service"
	userdomain "github.com/joseikin-rescue/server/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupUserService(t *testing.T) (userdomain.Service, quotadomain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&quotadomain.QuotaRecord{},
		&quotadomain.PackPurchase{},
	))
	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_quota_records_active_user
		 ON quota_records (user_id) WHERE status = 'active'`,
	).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	quota := quotaservice.NewService(quotaservice.ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  quotarepository.Provide(),
		Plans: config.NewStaticPlanConfigHolder(config.DefaultPlanConfig()),
	})

	users := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fake,
		Quota: quota,
	})

	return users, quota, db
}

func TestProvisionCreatesUserAndTrial(t *testing.T) {
	users, _, db := setupUserService(t)

	result, err := users.Provision(context.Background(), identity.AuthenticatedUser{
		ID:    "auth0|123",
		Email: "taro@example.jp",
	}, userdomain.ProvisionRequest{DisplayName: "Taro"})
	require.NoError(t, err)
	assert.Equal(t, "auth0|123", result.UserID)
	assert.Equal(t, 5, result.QuestionsLimit)
	assert.Equal(t, 5, result.Remaining)

	var user userdomain.User
	require.NoError(t, db.First(&user, "id = ?", "auth0|123").Error)
	assert.Equal(t, "taro@example.jp", user.Email)
}

func TestProvisionIsRepeatable(t *testing.T) {
	users, quota, db := setupUserService(t)
	ctx := context.Background()
	who := identity.AuthenticatedUser{ID: "auth0|123", Email: "taro@example.jp"}

	_, err := users.Provision(ctx, who, userdomain.ProvisionRequest{})
	require.NoError(t, err)

	// Burn some units, then re-provision; the allowance must survive.
	_, err = quota.Consume(ctx, "auth0|123")
	require.NoError(t, err)

	result, err := users.Provision(ctx, who, userdomain.ProvisionRequest{})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Remaining)

	var records int64
	require.NoError(t, db.Model(&quotadomain.QuotaRecord{}).Count(&records).Error)
	assert.EqualValues(t, 1, records)
}

// raceLoserQuota always loses the trial-creation race; the winning record is
// only reachable through GetActiveRecord.
type raceLoserQuota struct {
	record *quotadomain.QuotaRecord
}

func (q *raceLoserQuota) GetActiveRecord(ctx context.Context, userID string) (*quotadomain.QuotaRecord, error) {
	return q.record, nil
}

func (q *raceLoserQuota) CreateTrialRecord(ctx context.Context, userID string) (*quotadomain.QuotaRecord, error) {
	return nil, quotadomain.ErrDuplicateRecord
}

func (q *raceLoserQuota) Consume(ctx context.Context, userID string) (quotadomain.ConsumeResult, error) {
	return quotadomain.ConsumeResult{}, nil
}

func (q *raceLoserQuota) UpgradeTier(ctx context.Context, userID, tier, billingRef string) error {
	return nil
}

func (q *raceLoserQuota) AddCredits(ctx context.Context, userID, billingRef string, credits int) error {
	return nil
}

func (q *raceLoserQuota) Cancel(ctx context.Context, userID string) error { return nil }

func (q *raceLoserQuota) UsageStats(ctx context.Context, userID string) (quotadomain.UsageStats, error) {
	return quotadomain.UsageStats{}, nil
}

func TestProvisionRecoversFromTrialRace(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&userdomain.User{}))

	users := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)),
		Quota: &raceLoserQuota{record: &quotadomain.QuotaRecord{
			Tier:           config.TierTrial,
			QuestionsLimit: 5,
			QuestionsUsed:  1,
			Status:         quotadomain.RecordStatusActive,
		}},
	})

	result, err := users.Provision(context.Background(), identity.AuthenticatedUser{
		ID:    "auth0|123",
		Email: "taro@example.jp",
	}, userdomain.ProvisionRequest{})
	require.NoError(t, err)
	assert.Equal(t, 5, result.QuestionsLimit)
	assert.Equal(t, 4, result.Remaining, "the winning record's allowance is reported")
}

func TestProvisionRejectsBlankIdentity(t *testing.T) {
	users, _, _ := setupUserService(t)

	_, err := users.Provision(context.Background(), identity.AuthenticatedUser{ID: " "}, userdomain.ProvisionRequest{})
	assert.ErrorIs(t, err, quotadomain.ErrInvalidUser)
}
