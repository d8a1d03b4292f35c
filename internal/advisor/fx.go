package advisor

import (
	advisordomain "github.com/joseikin-rescue/server/internal/advisor/domain"
	"github.com/joseikin-rescue/server/internal/advisor/service"
	"github.com/joseikin-rescue/server/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("advisor.service",
	fx.Provide(newClient),
	fx.Provide(service.NewService),
)

func newClient(cfg config.Config) advisordomain.Client {
	return NewHTTPClient(cfg.LLMEndpoint, cfg.LLMAPIKey)
}
