package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPlanConfig(t *testing.T) {
	cfg := DefaultPlanConfig()

	require.NoError(t, validatePlanConfig(cfg))

	trial, ok := cfg.Tiers[TierTrial]
	require.True(t, ok)
	assert.Equal(t, 5, trial.QuestionsLimit)
	assert.False(t, trial.Resets)
	assert.False(t, trial.Purchasable)

	regular, ok := cfg.Tiers[TierRegular]
	require.True(t, ok)
	assert.Equal(t, 50, regular.QuestionsLimit)
	assert.True(t, regular.Resets)
	assert.True(t, regular.Purchasable)

	admin, ok := cfg.Tiers[TierAdmin]
	require.True(t, ok)
	assert.False(t, admin.Purchasable)
}

func TestTierPlanLegacyAlias(t *testing.T) {
	cfg := DefaultPlanConfig()

	tier, plan, ok := cfg.TierPlan("basic")
	require.True(t, ok)
	assert.Equal(t, TierRegular, tier)
	assert.Equal(t, 50, plan.QuestionsLimit)

	_, _, ok = cfg.TierPlan("platinum")
	assert.False(t, ok)
}

func TestPackCreditsLegacyAlias(t *testing.T) {
	cfg := DefaultPlanConfig()

	code, credits, ok := cfg.PackCredits("additional_pack")
	require.True(t, ok)
	assert.Equal(t, "pack_90", code)
	assert.Equal(t, 90, credits)

	_, credits, ok = cfg.PackCredits("pack_20")
	require.True(t, ok)
	assert.Equal(t, 20, credits)

	_, _, ok = cfg.PackCredits("pack_9000")
	assert.False(t, ok)
}

func TestValidatePlanConfig(t *testing.T) {
	cfg := DefaultPlanConfig()
	cfg.Tiers[TierLight] = TierPlan{QuestionsLimit: 0}
	assert.Error(t, validatePlanConfig(cfg))

	cfg = DefaultPlanConfig()
	delete(cfg.Tiers, TierTrial)
	assert.Error(t, validatePlanConfig(cfg))

	cfg = DefaultPlanConfig()
	cfg.BillingPeriodDays = 0
	assert.Error(t, validatePlanConfig(cfg))
}
