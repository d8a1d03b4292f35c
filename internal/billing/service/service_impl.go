package service

import (
	"context"
	"strings"

	billingdomain "github.com/joseikin-rescue/server/internal/billing/domain"
	"github.com/joseikin-rescue/server/internal/config"
	"github.com/joseikin-rescue/server/internal/metrics"
	quotadomain "github.com/joseikin-rescue/server/internal/quota/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log     *zap.Logger
	Quota   quotadomain.Service
	Plans   *config.PlanConfigHolder
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	quota   quotadomain.Service
	plans   *config.PlanConfigHolder
	metrics *metrics.Metrics
}

func NewService(p ServiceParam) billingdomain.Service {
	return &Service{
		log:     p.Log.Named("billing.translator"),
		quota:   p.Quota,
		plans:   p.Plans,
		metrics: p.Metrics,
	}
}

// TranslateAndApply implements domain.Service.
func (s *Service) TranslateAndApply(ctx context.Context, event billingdomain.CheckoutEvent) error {
	userID := strings.TrimSpace(event.UserID)
	productCode := strings.ToLower(strings.TrimSpace(event.ProductCode))
	externalRef := strings.TrimSpace(event.ExternalRef)

	if userID == "" || productCode == "" || externalRef == "" {
		return billingdomain.ErrInvalidEvent
	}

	plans := s.plans.Get()

	// Only purchasable tiers are valid product codes; trial and admin exist
	// in the catalogue but cannot be bought.
	if tier, plan, ok := plans.TierPlan(productCode); ok && plan.Purchasable {
		err := s.quota.UpgradeTier(ctx, userID, string(tier), externalRef)
		s.report("upgrade", err)
		if err != nil {
			s.log.Error("tier upgrade from checkout event failed",
				zap.String("user_id", userID),
				zap.String("product_code", productCode),
				zap.String("external_ref", externalRef),
				zap.Error(err),
			)
		}
		return err
	}

	if _, credits, ok := plans.PackCredits(productCode); ok {
		err := s.quota.AddCredits(ctx, userID, externalRef, credits)
		s.report("credit_pack", err)
		if err != nil {
			s.log.Error("credit pack from checkout event failed",
				zap.String("user_id", userID),
				zap.String("product_code", productCode),
				zap.String("external_ref", externalRef),
				zap.Error(err),
			)
		}
		return err
	}

	// Configuration drift: a paid-for product the ledger cannot honour.
	// This has to page an operator, not disappear into a 2xx.
	s.report("unrecognized", billingdomain.ErrUnrecognizedProduct)
	s.log.Error("unrecognized product code on checkout event",
		zap.String("user_id", userID),
		zap.String("product_code", productCode),
		zap.String("external_ref", externalRef),
	)
	return billingdomain.ErrUnrecognizedProduct
}

func (s *Service) report(kind string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := kind + "_ok"
	if err != nil {
		outcome = kind + "_failed"
	}
	s.metrics.BillingEvents.WithLabelValues(outcome).Inc()
}
