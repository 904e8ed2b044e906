package budget

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Canonical category names. The analyzers reference a few of these directly
// (efficiency levers, what-if scenarios, hygiene checks); everything else is
// data-driven through Config.
const (
	CategoryFoodDining     = "Food & Dining"
	CategoryTransportation = "Transportation"
	CategoryShopping       = "Shopping"
	CategoryEntertainment  = "Entertainment"
	CategoryUtilities      = "Utilities"
	CategoryHealthcare     = "Healthcare"
	CategorySubscriptions  = "Subscriptions"
	CategoryMiscellaneous  = "Miscellaneous"
)

// Category couples a budget category with its daily spending limit and the
// keyword list used to classify transactions that arrive uncategorized.
// Order matters: the first category whose keywords match wins.
type Category struct {
	Name       string   `yaml:"name"`
	DailyLimit float64  `yaml:"daily_limit"`
	Keywords   []string `yaml:"keywords"`
}

// Heuristics centralizes the numeric thresholds the detectors use, so tests
// and deployments can override them independently instead of relying on
// literals buried in each check.
type Heuristics struct {
	// TrendDeadband is the slope magnitude (currency units/day) below which a
	// category trend is reported as stable.
	TrendDeadband float64 `yaml:"trend_deadband"`
	// ProfileDeadband is the half-window average difference below which the
	// daily spending profile is reported as stable.
	ProfileDeadband float64 `yaml:"profile_deadband"`
	// TrendAlertSlope is the per-category slope above which an increasing
	// trend counts toward the deterioration risk check.
	TrendAlertSlope float64 `yaml:"trend_alert_slope"`
	// VolatilityLimit is the daily-total standard deviation that triggers the
	// volatility risk check.
	VolatilityLimit float64 `yaml:"volatility_limit"`
	// ConcentrationShare is the single-category share of total expense that
	// triggers the concentration risk check.
	ConcentrationShare float64 `yaml:"concentration_share"`
	// LiquidityRatio is the expense-to-income ratio that triggers the
	// liquidity risk check even when net flow is positive.
	LiquidityRatio float64 `yaml:"liquidity_ratio"`
	// WeekendShare is the weekend share of total spend flagged by the
	// behavioral risk check.
	WeekendShare float64 `yaml:"weekend_share"`
	// LateNightShare is the late-night (22:00-06:00) share of transaction
	// count flagged by the behavioral risk check.
	LateNightShare float64 `yaml:"late_night_share"`
	// BusyDayCount is the per-day transaction count considered impulsive.
	BusyDayCount int `yaml:"busy_day_count"`
	// BusyDayShare is the share of active days with busy-day counts that
	// triggers the behavioral risk check.
	BusyDayShare float64 `yaml:"busy_day_share"`
	// SubscriptionVariation is the stddev-to-mean ratio below which a
	// recurring vendor is treated as a subscription by the growth engine.
	SubscriptionVariation float64 `yaml:"subscription_variation"`
}

// Config is the budget configuration for a run: category limits, the global
// status thresholds, and the detector heuristics. Read-only once loaded.
type Config struct {
	Categories []Category `yaml:"categories"`

	// OverspendingThreshold is the spend/budget ratio (>1.0) at which a
	// category is classified as overspending.
	OverspendingThreshold float64 `yaml:"overspending_threshold"`
	// WarningThreshold is the spend/budget ratio at which a category is
	// classified as a warning. Must be below OverspendingThreshold.
	WarningThreshold float64 `yaml:"warning_threshold"`

	Heuristics Heuristics `yaml:"heuristics"`
}

// DefaultHeuristics returns the stock detector thresholds.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		TrendDeadband:         1.0,
		ProfileDeadband:       5.0,
		TrendAlertSlope:       10.0,
		VolatilityLimit:       100.0,
		ConcentrationShare:    0.4,
		LiquidityRatio:        0.9,
		WeekendShare:          0.4,
		LateNightShare:        0.2,
		BusyDayCount:          5,
		BusyDayShare:          0.3,
		SubscriptionVariation: 0.10,
	}
}

// Default returns the stock budget configuration: the standard category set
// with daily limits and classification keywords.
func Default() Config {
	return Config{
		Categories: []Category{
			{
				Name:       CategoryFoodDining,
				DailyLimit: 50,
				Keywords:   []string{"restaurant", "food", "dining", "uber eats", "doordash", "grubhub", "starbucks", "coffee"},
			},
			{
				Name:       CategoryTransportation,
				DailyLimit: 30,
				Keywords:   []string{"uber", "lyft", "gas", "parking", "metro", "bus", "taxi", "car"},
			},
			{
				Name:       CategoryShopping,
				DailyLimit: 40,
				Keywords:   []string{"amazon", "target", "walmart", "shopping", "retail", "store"},
			},
			{
				Name:       CategoryEntertainment,
				DailyLimit: 25,
				Keywords:   []string{"netflix", "spotify", "movie", "theater", "gaming", "entertainment"},
			},
			{
				Name:       CategoryUtilities,
				DailyLimit: 15,
				Keywords:   []string{"electric", "water", "internet", "phone", "cable", "utility"},
			},
			{
				Name:       CategoryHealthcare,
				DailyLimit: 20,
				Keywords:   []string{"doctor", "pharmacy", "medical", "health", "hospital", "dental"},
			},
			{
				Name:       CategorySubscriptions,
				DailyLimit: 10,
				Keywords:   []string{"subscription", "monthly", "annual", "premium", "plus"},
			},
			{
				Name:       CategoryMiscellaneous,
				DailyLimit: 35,
				// Catch-all for uncategorized transactions, no keywords.
			},
		},
		OverspendingThreshold: 1.2,
		WarningThreshold:      0.8,
		Heuristics:            DefaultHeuristics(),
	}
}

// Load reads a budget configuration from a YAML file. Fields absent from the
// file keep their default values, so a file may override just the category
// list or just the thresholds. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("Load: reading budget file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("Load: parsing budget file %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("Load: budget file %q: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration invariants. A violation is a programmer
// or deployment error, the only hard-failure class in the analysis engine.
func (c Config) Validate() error {
	if c.OverspendingThreshold <= 0 {
		return fmt.Errorf("overspending threshold must be positive, got %.2f", c.OverspendingThreshold)
	}
	if c.WarningThreshold <= 0 {
		return fmt.Errorf("warning threshold must be positive, got %.2f", c.WarningThreshold)
	}
	if c.WarningThreshold >= c.OverspendingThreshold {
		return fmt.Errorf("warning threshold %.2f must be below overspending threshold %.2f",
			c.WarningThreshold, c.OverspendingThreshold)
	}

	seen := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category with empty name")
		}
		if seen[cat.Name] {
			return fmt.Errorf("duplicate category %q", cat.Name)
		}
		seen[cat.Name] = true
		if cat.DailyLimit < 0 {
			return fmt.Errorf("category %q has negative daily limit %.2f", cat.Name, cat.DailyLimit)
		}
	}

	return nil
}

// Limit returns the daily limit for a category, or 0 when the category is
// not configured. A zero limit excludes the category from budget-relative
// computations.
func (c Config) Limit(category string) float64 {
	for _, cat := range c.Categories {
		if cat.Name == category {
			return cat.DailyLimit
		}
	}
	return 0
}

// DailyLimits returns the category → daily limit mapping.
func (c Config) DailyLimits() map[string]float64 {
	limits := make(map[string]float64, len(c.Categories))
	for _, cat := range c.Categories {
		limits[cat.Name] = cat.DailyLimit
	}
	return limits
}

// TotalDailyBudget returns the sum of all configured daily limits.
func (c Config) TotalDailyBudget() float64 {
	var total float64
	for _, cat := range c.Categories {
		total += cat.DailyLimit
	}
	return total
}
