package gate

import (
	"context"
	"errors"
	"testing"

	quotadomain "github.com/joseikin-rescue/server/internal/quota/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type quotaStub struct {
	record *quotadomain.QuotaRecord
	err    error
}

func (q *quotaStub) GetActiveRecord(ctx context.Context, userID string) (*quotadomain.QuotaRecord, error) {
	return q.record, q.err
}

func (q *quotaStub) CreateTrialRecord(ctx context.Context, userID string) (*quotadomain.QuotaRecord, error) {
	return nil, nil
}

func (q *quotaStub) Consume(ctx context.Context, userID string) (quotadomain.ConsumeResult, error) {
	return quotadomain.ConsumeResult{}, nil
}

func (q *quotaStub) UpgradeTier(ctx context.Context, userID, tier, billingRef string) error {
	return nil
}

func (q *quotaStub) AddCredits(ctx context.Context, userID, billingRef string, credits int) error {
	return nil
}

func (q *quotaStub) Cancel(ctx context.Context, userID string) error { return nil }

func (q *quotaStub) UsageStats(ctx context.Context, userID string) (quotadomain.UsageStats, error) {
	return quotadomain.UsageStats{}, nil
}

func newGate(quota quotadomain.Service) *Gate {
	return New(Param{Log: zap.NewNop(), Quota: quota})
}

func TestCheckAllowsWhenUnitsRemain(t *testing.T) {
	g := newGate(&quotaStub{record: &quotadomain.QuotaRecord{
		QuestionsLimit: 20,
		QuestionsUsed:  4,
	}})

	decision, err := g.Check(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 16, decision.Remaining)
}

func TestCheckDeniesWithoutSubscription(t *testing.T) {
	g := newGate(&quotaStub{})

	decision, err := g.Check(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonNoSubscription, decision.Reason)
}

func TestCheckNeverAllowsExhaustedQuota(t *testing.T) {
	records := []*quotadomain.QuotaRecord{
		{QuestionsLimit: 5, QuestionsUsed: 5},
		{QuestionsLimit: 5, QuestionsUsed: 7}, // over-consumed, e.g. after a limit decrease
		{QuestionsLimit: 0, QuestionsUsed: 0},
	}

	for _, record := range records {
		g := newGate(&quotaStub{record: record})
		decision, err := g.Check(context.Background(), "user-1")
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, ReasonQuotaExceeded, decision.Reason)
		assert.Equal(t, 0, decision.Remaining)
	}
}

func TestCheckPropagatesLedgerError(t *testing.T) {
	ledgerErr := errors.New("db down")
	g := newGate(&quotaStub{err: ledgerErr})

	_, err := g.Check(context.Background(), "user-1")
	assert.ErrorIs(t, err, ledgerErr)
}
