package service

import (
	"context"
	"errors"
	"testing"

	billingdomain "github.com/joseikin-rescue/server/internal/billing/domain"
	"github.com/joseikin-rescue/server/internal/config"
	quotadomain "github.com/joseikin-rescue/server/internal/quota/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type upgradeCall struct {
	userID     string
	tier       string
	billingRef string
}

type creditsCall struct {
	userID     string
	billingRef string
	credits    int
}

type quotaStub struct {
	upgrades []upgradeCall
	credits  []creditsCall
	failWith error
}

func (q *quotaStub) GetActiveRecord(ctx context.Context, userID string) (*quotadomain.QuotaRecord, error) {
	return nil, nil
}

func (q *quotaStub) CreateTrialRecord(ctx context.Context, userID string) (*quotadomain.QuotaRecord, error) {
	return nil, nil
}

func (q *quotaStub) Consume(ctx context.Context, userID string) (quotadomain.ConsumeResult, error) {
	return quotadomain.ConsumeResult{}, nil
}

func (q *quotaStub) UpgradeTier(ctx context.Context, userID, tier, billingRef string) error {
	if q.failWith != nil {
		return q.failWith
	}
	q.upgrades = append(q.upgrades, upgradeCall{userID, tier, billingRef})
	return nil
}

func (q *quotaStub) AddCredits(ctx context.Context, userID, billingRef string, credits int) error {
	if q.failWith != nil {
		return q.failWith
	}
	q.credits = append(q.credits, creditsCall{userID, billingRef, credits})
	return nil
}

func (q *quotaStub) Cancel(ctx context.Context, userID string) error {
	return nil
}

func (q *quotaStub) UsageStats(ctx context.Context, userID string) (quotadomain.UsageStats, error) {
	return quotadomain.UsageStats{}, nil
}

func newTranslator(quota quotadomain.Service) billingdomain.Service {
	return NewService(ServiceParam{
		Log:   zap.NewNop(),
		Quota: quota,
		Plans: config.NewStaticPlanConfigHolder(config.DefaultPlanConfig()),
	})
}

func TestTranslateTierCodes(t *testing.T) {
	cases := []struct {
		code string
		tier string
	}{
		{"light", "light"},
		{"regular", "regular"},
		{"heavy", "heavy"},
		{"basic", "regular"},
		{" Heavy ", "heavy"},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			quota := &quotaStub{}
			svc := newTranslator(quota)

			err := svc.TranslateAndApply(context.Background(), billingdomain.CheckoutEvent{
				UserID:      "user-1",
				ProductCode: tc.code,
				ExternalRef: "cs_1",
			})
			require.NoError(t, err)
			require.Len(t, quota.upgrades, 1)
			assert.Equal(t, upgradeCall{"user-1", tc.tier, "cs_1"}, quota.upgrades[0])
			assert.Empty(t, quota.credits)
		})
	}
}

func TestTranslatePackCodes(t *testing.T) {
	cases := []struct {
		code    string
		credits int
	}{
		{"pack_20", 20},
		{"pack_40", 40},
		{"pack_90", 90},
		{"additional_pack", 90},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			quota := &quotaStub{}
			svc := newTranslator(quota)

			err := svc.TranslateAndApply(context.Background(), billingdomain.CheckoutEvent{
				UserID:      "user-1",
				ProductCode: tc.code,
				ExternalRef: "pi_1",
			})
			require.NoError(t, err)
			require.Len(t, quota.credits, 1)
			assert.Equal(t, creditsCall{"user-1", "pi_1", tc.credits}, quota.credits[0])
			assert.Empty(t, quota.upgrades)
		})
	}
}

func TestTranslateUnrecognizedProduct(t *testing.T) {
	// trial and admin are catalogue tiers but not purchasable products; a
	// checkout event naming them is as wrong as a made-up code.
	codes := []string{"enterprise_gold", "trial", "admin"}

	for _, code := range codes {
		t.Run(code, func(t *testing.T) {
			quota := &quotaStub{}
			svc := newTranslator(quota)

			err := svc.TranslateAndApply(context.Background(), billingdomain.CheckoutEvent{
				UserID:      "user-1",
				ProductCode: code,
				ExternalRef: "cs_1",
			})
			assert.ErrorIs(t, err, billingdomain.ErrUnrecognizedProduct)
			assert.Empty(t, quota.upgrades)
			assert.Empty(t, quota.credits)
		})
	}
}

func TestTranslateRejectsIncompleteEvents(t *testing.T) {
	quota := &quotaStub{}
	svc := newTranslator(quota)

	events := []billingdomain.CheckoutEvent{
		{ProductCode: "light", ExternalRef: "cs_1"},
		{UserID: "user-1", ExternalRef: "cs_1"},
		{UserID: "user-1", ProductCode: "light"},
	}
	for _, event := range events {
		assert.ErrorIs(t, svc.TranslateAndApply(context.Background(), event), billingdomain.ErrInvalidEvent)
	}
}

func TestTranslatePropagatesLedgerFailure(t *testing.T) {
	ledgerErr := errors.New("ledger down")
	svc := newTranslator(&quotaStub{failWith: ledgerErr})

	err := svc.TranslateAndApply(context.Background(), billingdomain.CheckoutEvent{
		UserID:      "user-1",
		ProductCode: "pack_20",
		ExternalRef: "pi_1",
	})
	assert.ErrorIs(t, err, ledgerErr)
}
