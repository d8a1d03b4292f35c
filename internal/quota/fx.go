package quota

import (
	"github.com/joseikin-rescue/server/internal/quota/repository"
	"github.com/joseikin-rescue/server/internal/quota/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quota.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
