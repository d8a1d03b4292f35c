package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Tier is a named subscription plan with a periodic question allowance.
type Tier string

const (
	TierTrial   Tier = "trial"
	TierLight   Tier = "light"
	TierRegular Tier = "regular"
	TierHeavy   Tier = "heavy"
	TierAdmin   Tier = "admin"
)

// Legacy product codes still emitted by older checkout sessions.
const (
	LegacyTierBasic  = "basic"
	LegacyCreditPack = "additional_pack"
)

// TierPlan describes the quota granted when a tier becomes active. Only
// purchasable tiers may be reached through a checkout product code; trial is
// granted at signup and admin is assigned by operators.
type TierPlan struct {
	QuestionsLimit int  `mapstructure:"questionsLimit"`
	Resets         bool `mapstructure:"resets"`
	Purchasable    bool `mapstructure:"purchasable"`
}

// PlanConfig is the static tier and credit-pack catalogue. Changing a plan or
// pack is a config change, not a code change.
type PlanConfig struct {
	Tiers             map[Tier]TierPlan `mapstructure:"tiers"`
	Packs             map[string]int    `mapstructure:"packs"`
	BillingPeriodDays int               `mapstructure:"billingPeriodDays"`
}

func (c PlanConfig) BillingPeriod() time.Duration {
	return time.Duration(c.BillingPeriodDays) * 24 * time.Hour
}

// TierPlan resolves a tier, honouring the legacy basic alias.
func (c PlanConfig) TierPlan(raw string) (Tier, TierPlan, bool) {
	code := strings.ToLower(strings.TrimSpace(raw))
	if code == LegacyTierBasic {
		code = string(TierRegular)
	}
	plan, ok := c.Tiers[Tier(code)]
	return Tier(code), plan, ok
}

// PackCredits resolves a credit-pack code, honouring the legacy pack alias.
func (c PlanConfig) PackCredits(raw string) (string, int, bool) {
	code := strings.ToLower(strings.TrimSpace(raw))
	if code == LegacyCreditPack {
		code = "pack_90"
	}
	credits, ok := c.Packs[code]
	return code, credits, ok
}

func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		Tiers: map[Tier]TierPlan{
			TierTrial:   {QuestionsLimit: 5, Resets: false, Purchasable: false},
			TierLight:   {QuestionsLimit: 20, Resets: true, Purchasable: true},
			TierRegular: {QuestionsLimit: 50, Resets: true, Purchasable: true},
			TierHeavy:   {QuestionsLimit: 100, Resets: true, Purchasable: true},
			TierAdmin:   {QuestionsLimit: 100000, Resets: true, Purchasable: false},
		},
		Packs: map[string]int{
			"pack_20": 20,
			"pack_40": 40,
			"pack_90": 90,
		},
		BillingPeriodDays: 30,
	}
}

type PlanConfigHolder struct {
	current atomic.Value // holds PlanConfig
}

func NewPlanConfigHolder() (*PlanConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("plans")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/rescue/config") // Volume-mounted config
	v.AddConfigPath("/etc/rescue")            // System config
	v.AddConfigPath(".")                      // Current directory (dev mode)

	v.SetEnvPrefix("RESCUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPlanConfig()
		v.SetDefault("plans.tiers", defaults.Tiers)
		v.SetDefault("plans.packs", defaults.Packs)
		v.SetDefault("plans.billingPeriodDays", defaults.BillingPeriodDays)
	}

	var cfg PlanConfig
	if err := v.UnmarshalKey("plans", &cfg); err != nil {
		return nil, err
	}
	if err := validatePlanConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PlanConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PlanConfig
		if err := v.UnmarshalKey("plans", &updated); err != nil {
			log.Printf("[plan-config] reload failed: %v", err)
			return
		}
		if err := validatePlanConfig(updated); err != nil {
			log.Printf("[plan-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[plan-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func NewStaticPlanConfigHolder(cfg PlanConfig) *PlanConfigHolder {
	holder := &PlanConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *PlanConfigHolder) Get() PlanConfig {
	return h.current.Load().(PlanConfig)
}

func validatePlanConfig(cfg PlanConfig) error {
	if len(cfg.Tiers) == 0 {
		return errors.New("plans.tiers cannot be empty")
	}
	if _, ok := cfg.Tiers[TierTrial]; !ok {
		return errors.New("plans.tiers must include trial")
	}
	for tier, plan := range cfg.Tiers {
		if plan.QuestionsLimit <= 0 {
			return errors.New("plans.tiers." + string(tier) + " limit must be positive")
		}
	}
	for code, credits := range cfg.Packs {
		if credits <= 0 {
			return errors.New("plans.packs." + code + " credits must be positive")
		}
	}
	if cfg.BillingPeriodDays <= 0 {
		return errors.New("plans.billingPeriodDays must be positive")
	}
	return nil
}
