package identity

import (
	"github.com/joseikin-rescue/server/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("identity",
	fx.Provide(newVerifier),
)

func newVerifier(cfg config.Config) Verifier {
	if cfg.AuthMode == config.AuthModeInsecure {
		return NewHeaderVerifier()
	}
	return NewRemoteVerifier(cfg.AuthIntrospectionURL)
}
