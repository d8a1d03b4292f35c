package billing

import (
	billingdomain "github.com/joseikin-rescue/server/internal/billing/domain"
	"github.com/joseikin-rescue/server/internal/billing/service"
	"github.com/joseikin-rescue/server/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(service.NewService),
	fx.Provide(newVerifier),
)

func newVerifier(cfg config.Config) billingdomain.SignatureVerifier {
	return NewHMACVerifier(cfg.WebhookSecret)
}
