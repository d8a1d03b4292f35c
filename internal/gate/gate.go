// Package gate decides whether a metered request may proceed. It never
// performs the consumption itself; callers record usage through the quota
// service only after the billable work succeeded.
package gate

import (
	"context"

	"github.com/joseikin-rescue/server/internal/metrics"
	quotadomain "github.com/joseikin-rescue/server/internal/quota/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// DenyReason classifies why the gate rejected a request.
type DenyReason string

const (
	ReasonNoSubscription DenyReason = "no_subscription"
	ReasonQuotaExceeded  DenyReason = "quota_exceeded"
)

// Decision is the outcome of a gate check.
type Decision struct {
	Allowed   bool
	Remaining int
	Reason    DenyReason
}

type Gate struct {
	log     *zap.Logger
	quota   quotadomain.Service
	metrics *metrics.Metrics
}

type Param struct {
	fx.In

	Log     *zap.Logger
	Quota   quotadomain.Service
	Metrics *metrics.Metrics `optional:"true"`
}

func New(p Param) *Gate {
	return &Gate{
		log:     p.Log.Named("gate"),
		quota:   p.Quota,
		metrics: p.Metrics,
	}
}

// Check reads the user's active quota record and reports whether another
// question may be asked. Repeated checks are safe; nothing is consumed here.
func (g *Gate) Check(ctx context.Context, userID string) (Decision, error) {
	record, err := g.quota.GetActiveRecord(ctx, userID)
	if err != nil {
		return Decision{}, err
	}
	if record == nil {
		g.deny(ReasonNoSubscription)
		return Decision{Reason: ReasonNoSubscription}, nil
	}

	remaining := record.Remaining()
	if remaining <= 0 {
		g.deny(ReasonQuotaExceeded)
		return Decision{Reason: ReasonQuotaExceeded}, nil
	}

	return Decision{Allowed: true, Remaining: remaining}, nil
}

func (g *Gate) deny(reason DenyReason) {
	if g.metrics != nil {
		g.metrics.GateDenials.WithLabelValues(string(reason)).Inc()
	}
}

var Module = fx.Module("gate",
	fx.Provide(New),
)
