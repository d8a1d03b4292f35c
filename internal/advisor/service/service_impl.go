package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	advisordomain "github.com/joseikin-rescue/server/internal/advisor/domain"
	"github.com/joseikin-rescue/server/internal/clock"
	"github.com/joseikin-rescue/server/internal/gate"
	quotadomain "github.com/joseikin-rescue/server/internal/quota/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Gate   *gate.Gate
	Quota  quotadomain.Service
	Client advisordomain.Client
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	gate   *gate.Gate
	quota  quotadomain.Service
	client advisordomain.Client
}

func NewService(p ServiceParam) advisordomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("advisor.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		gate:   p.Gate,
		quota:  p.Quota,
		client: p.Client,
	}
}

// Ask runs one metered advisory turn: gate check, then the billable LLM call,
// then consumption. A failed LLM call is never charged.
func (s *Service) Ask(ctx context.Context, userID string, req advisordomain.AskRequest) (advisordomain.AskResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return advisordomain.AskResponse{}, advisordomain.ErrEmptyQuestion
	}

	decision, err := s.gate.Check(ctx, userID)
	if err != nil {
		return advisordomain.AskResponse{}, err
	}
	if !decision.Allowed {
		switch decision.Reason {
		case gate.ReasonNoSubscription:
			return advisordomain.AskResponse{}, quotadomain.ErrNoActiveSubscription
		default:
			return advisordomain.AskResponse{}, quotadomain.ErrQuotaExceeded
		}
	}

	answer, err := s.client.Complete(ctx, question)
	if err != nil {
		return advisordomain.AskResponse{}, err
	}

	result, err := s.quota.Consume(ctx, userID)
	if err != nil {
		return advisordomain.AskResponse{}, err
	}

	turn := &advisordomain.ChatTurn{
		ID:        s.genID.Generate(),
		UserID:    userID,
		Question:  question,
		Answer:    answer,
		CreatedAt: s.clock.Now(),
	}
	if err := s.db.WithContext(ctx).Create(turn).Error; err != nil {
		// The unit was consumed and the answer exists; losing the transcript
		// row must not fail the user's request.
		s.log.Error("chat turn persist failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	return advisordomain.AskResponse{
		Answer:    answer,
		Used:      result.Used,
		Limit:     result.Limit,
		Remaining: result.Remaining,
	}, nil
}
