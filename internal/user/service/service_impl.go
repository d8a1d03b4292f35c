package service

import (
	"context"
	"errors"
	"strings"

	"github.com/joseikin-rescue/server/internal/clock"
	"github.com/joseikin-rescue/server/internal/identity"
	quotadomain "github.com/joseikin-rescue/server/internal/quota/domain"
	userdomain "github.com/joseikin-rescue/server/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Quota quotadomain.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	quota quotadomain.Service
}

func NewService(p ServiceParam) userdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("user.service"),
		clock: p.Clock,
		quota: p.Quota,
	}
}

// Provision implements domain.Service.
func (s *Service) Provision(ctx context.Context, who identity.AuthenticatedUser, req userdomain.ProvisionRequest) (userdomain.ProvisionResult, error) {
	userID := strings.TrimSpace(who.ID)
	if userID == "" {
		return userdomain.ProvisionResult{}, quotadomain.ErrInvalidUser
	}

	now := s.clock.Now()
	user := &userdomain.User{
		ID:          userID,
		Email:       strings.TrimSpace(who.Email),
		DisplayName: strings.TrimSpace(req.DisplayName),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "updated_at"}),
		}).
		Create(user).Error
	if err != nil {
		return userdomain.ProvisionResult{}, err
	}

	record, err := s.quota.CreateTrialRecord(ctx, userID)
	if errors.Is(err, quotadomain.ErrDuplicateRecord) {
		// Transient provisioning race; the winning insert is what we want.
		record, err = s.quota.GetActiveRecord(ctx, userID)
	}
	if err != nil {
		return userdomain.ProvisionResult{}, err
	}
	if record == nil {
		return userdomain.ProvisionResult{}, quotadomain.ErrNoActiveSubscription
	}

	s.log.Info("user provisioned",
		zap.String("user_id", userID),
		zap.String("tier", string(record.Tier)),
	)

	return userdomain.ProvisionResult{
		UserID:         userID,
		Email:          user.Email,
		QuestionsLimit: record.QuestionsLimit,
		Remaining:      record.Remaining(),
	}, nil
}
