package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/joseikin-rescue/server/internal/clock"
	"github.com/joseikin-rescue/server/internal/config"
	"github.com/joseikin-rescue/server/internal/metrics"
	quotadomain "github.com/joseikin-rescue/server/internal/quota/domain"
	"github.com/joseikin-rescue/server/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    quotadomain.Repository
	Plans   *config.PlanConfigHolder
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	clock   clock.Clock
	repo    quotadomain.Repository
	plans   *config.PlanConfigHolder
	metrics *metrics.Metrics
}

func NewService(p ServiceParam) quotadomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("quota.service"),

		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		plans:   p.Plans,
		metrics: p.Metrics,
	}
}

// GetActiveRecord implements domain.Service.
func (s *Service) GetActiveRecord(ctx context.Context, userID string) (*quotadomain.QuotaRecord, error) {
	userID, err := normalizeUserID(userID)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.FindActiveByUserID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	now := s.clock.Now()
	if !periodElapsed(record, now) {
		return record, nil
	}

	// Lazy reset: re-read under lock so concurrent resets stay idempotent.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.repo.FindActiveByUserIDForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if locked == nil {
			record = nil
			return nil
		}
		if err := s.applyLazyReset(ctx, tx, locked, now); err != nil {
			return err
		}
		record = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// CreateTrialRecord implements domain.Service.
func (s *Service) CreateTrialRecord(ctx context.Context, userID string) (*quotadomain.QuotaRecord, error) {
	userID, err := normalizeUserID(userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindActiveByUserID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	plans := s.plans.Get()
	_, plan, ok := plans.TierPlan(string(config.TierTrial))
	if !ok {
		return nil, quotadomain.ErrInvalidTier
	}

	now := s.clock.Now()
	record := &quotadomain.QuotaRecord{
		ID:             s.genID.Generate(),
		UserID:         userID,
		Tier:           config.TierTrial,
		QuestionsLimit: plan.QuestionsLimit,
		QuestionsUsed:  0,
		Status:         quotadomain.RecordStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if plan.Resets {
		resetAt := now.Add(plans.BillingPeriod())
		record.ResetAt = &resetAt
	}

	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Two provisioning calls raced past the pre-check; the unique
			// active index caught the loser. Safe to retry once upstream.
			return nil, quotadomain.ErrDuplicateRecord
		}
		return nil, err
	}

	s.log.Info("trial record created",
		zap.String("user_id", userID),
		zap.Int("limit", record.QuestionsLimit),
	)
	return record, nil
}

// Consume implements domain.Service.
func (s *Service) Consume(ctx context.Context, userID string) (quotadomain.ConsumeResult, error) {
	userID, err := normalizeUserID(userID)
	if err != nil {
		return quotadomain.ConsumeResult{}, err
	}

	var result quotadomain.ConsumeResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := s.repo.FindActiveByUserIDForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if record == nil {
			return quotadomain.ErrNoActiveSubscription
		}

		now := s.clock.Now()
		if err := s.applyLazyReset(ctx, tx, record, now); err != nil {
			return err
		}

		if record.QuestionsUsed >= record.QuestionsLimit {
			return quotadomain.ErrQuotaExceeded
		}

		used := record.QuestionsUsed + 1
		if err := s.repo.UpdateUsage(ctx, tx, record.ID, used, now); err != nil {
			return err
		}

		result = quotadomain.ConsumeResult{
			Used:      used,
			Limit:     record.QuestionsLimit,
			Remaining: record.QuestionsLimit - used,
		}
		return nil
	})
	if err != nil {
		return quotadomain.ConsumeResult{}, err
	}

	if s.metrics != nil {
		s.metrics.QuestionsConsumed.Inc()
	}
	return result, nil
}

// UpgradeTier implements domain.Service.
func (s *Service) UpgradeTier(ctx context.Context, userID string, tier string, billingRef string) error {
	userID, err := normalizeUserID(userID)
	if err != nil {
		return err
	}
	billingRef = strings.TrimSpace(billingRef)
	if billingRef == "" {
		return quotadomain.ErrInvalidBillingRef
	}

	plans := s.plans.Get()
	resolvedTier, plan, ok := plans.TierPlan(tier)
	if !ok {
		return quotadomain.ErrInvalidTier
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindActiveByUserIDForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if current != nil && current.BillingRef != nil && *current.BillingRef == billingRef {
			// Redelivered checkout event; the upgrade already happened.
			return nil
		}

		now := s.clock.Now()
		if _, err := s.repo.CancelActiveByUserID(ctx, tx, userID, now); err != nil {
			return err
		}

		record := &quotadomain.QuotaRecord{
			ID:             s.genID.Generate(),
			UserID:         userID,
			Tier:           resolvedTier,
			QuestionsLimit: plan.QuestionsLimit,
			QuestionsUsed:  0,
			BillingRef:     &billingRef,
			Status:         quotadomain.RecordStatusActive,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if plan.Resets {
			resetAt := now.Add(plans.BillingPeriod())
			record.ResetAt = &resetAt
		}

		if err := s.repo.Insert(ctx, tx, record); err != nil {
			return err
		}

		s.log.Info("tier upgraded",
			zap.String("user_id", userID),
			zap.String("tier", string(resolvedTier)),
			zap.String("billing_ref", billingRef),
		)
		return nil
	})
}

// AddCredits implements domain.Service.
func (s *Service) AddCredits(ctx context.Context, userID string, billingRef string, credits int) error {
	userID, err := normalizeUserID(userID)
	if err != nil {
		return err
	}
	billingRef = strings.TrimSpace(billingRef)
	if billingRef == "" {
		return quotadomain.ErrInvalidBillingRef
	}
	if credits <= 0 {
		return quotadomain.ErrInvalidCredits
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, err := s.repo.FindPackPurchaseByBillingRef(ctx, tx, billingRef)
		if err != nil {
			return err
		}
		if applied != nil {
			// Redelivered checkout event; the credits were already granted.
			return nil
		}

		record, err := s.repo.FindActiveByUserIDForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if record == nil {
			return quotadomain.ErrNoActiveSubscription
		}

		now := s.clock.Now()
		if err := s.repo.UpdateLimit(ctx, tx, record.ID, record.QuestionsLimit+credits, now); err != nil {
			return err
		}

		purchase := &quotadomain.PackPurchase{
			ID:           s.genID.Generate(),
			UserID:       userID,
			BillingRef:   billingRef,
			CreditsAdded: credits,
			CreatedAt:    now,
		}
		if err := s.repo.InsertPackPurchase(ctx, tx, purchase); err != nil {
			return err
		}

		s.log.Info("credits added",
			zap.String("user_id", userID),
			zap.Int("credits", credits),
			zap.String("billing_ref", billingRef),
		)
		return nil
	})
}

// Cancel implements domain.Service.
func (s *Service) Cancel(ctx context.Context, userID string) error {
	userID, err := normalizeUserID(userID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cancelled, err := s.repo.CancelActiveByUserID(ctx, tx, userID, s.clock.Now())
		if err != nil {
			return err
		}
		if cancelled == 0 {
			return quotadomain.ErrNoActiveSubscription
		}
		return nil
	})
}

// UsageStats implements domain.Service.
func (s *Service) UsageStats(ctx context.Context, userID string) (quotadomain.UsageStats, error) {
	record, err := s.GetActiveRecord(ctx, userID)
	if err != nil {
		return quotadomain.UsageStats{}, err
	}
	if record == nil {
		return quotadomain.UsageStats{
			Tier:   "none",
			Status: "inactive",
		}, nil
	}

	return quotadomain.UsageStats{
		QuestionsUsed:  record.QuestionsUsed,
		QuestionsLimit: record.QuestionsLimit,
		Remaining:      record.Remaining(),
		Tier:           record.Tier,
		Status:         string(record.Status),
		ResetAt:        record.ResetAt,
	}, nil
}

// applyLazyReset zeroes the counter in place when the record's period has
// elapsed. Missed periods collapse into a single reset anchored at now.
func (s *Service) applyLazyReset(ctx context.Context, tx *gorm.DB, record *quotadomain.QuotaRecord, now time.Time) error {
	if !periodElapsed(record, now) {
		return nil
	}

	next := now.Add(s.plans.Get().BillingPeriod())
	if err := s.repo.ResetPeriod(ctx, tx, record.ID, next, now); err != nil {
		return err
	}

	record.QuestionsUsed = 0
	record.ResetAt = &next
	record.UpdatedAt = now

	s.log.Info("quota period reset",
		zap.String("user_id", record.UserID),
		zap.Time("next_reset", next),
	)
	return nil
}

func periodElapsed(record *quotadomain.QuotaRecord, now time.Time) bool {
	return record.ResetAt != nil && !record.ResetAt.After(now)
}

func normalizeUserID(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", quotadomain.ErrInvalidUser
	}
	return userID, nil
}
