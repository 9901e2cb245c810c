package insight

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spendlens/spendlens/internal/currency"
)

// Config holds the collaborators and tuning for an Engine. Every field
// is optional except Thresholds, which must validate.
type Config struct {
	// Now supplies the current time for window calculations.
	Now func() time.Time
	// Location is the calendar used to normalize months and days.
	Location *time.Location
	// FormatAmount renders currency values inside descriptions.
	FormatAmount func(float64) string
	// NewID mints identifiers for produced insights.
	NewID func() string
	// Thresholds tunes the detectors.
	Thresholds Thresholds
}

// DefaultConfig returns a config with standard thresholds, the local
// calendar, USD formatting, and UUID identifiers.
func DefaultConfig() Config {
	return Config{
		Thresholds:   DefaultThresholds(),
		Now:          time.Now,
		Location:     time.Local,
		FormatAmount: currency.USD,
		NewID:        func() string { return uuid.New().String() },
	}
}

// Engine runs the insight detectors. It holds no mutable state: a
// single Engine is safe for concurrent use, and repeated runs over the
// same inputs produce structurally identical results (fresh IDs aside).
type Engine struct {
	now          func() time.Time
	location     *time.Location
	formatAmount func(float64) string
	newID        func() string
	thresholds   Thresholds
}

// New creates an Engine from the given config, filling unset
// collaborators with the defaults.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}

	defaults := DefaultConfig()
	if cfg.Now == nil {
		cfg.Now = defaults.Now
	}
	if cfg.Location == nil {
		cfg.Location = defaults.Location
	}
	if cfg.FormatAmount == nil {
		cfg.FormatAmount = defaults.FormatAmount
	}
	if cfg.NewID == nil {
		cfg.NewID = defaults.NewID
	}

	return &Engine{
		thresholds:   cfg.Thresholds,
		now:          cfg.Now,
		location:     cfg.Location,
		formatAmount: cfg.FormatAmount,
		newID:        cfg.NewID,
	}, nil
}

// NewDefault creates an Engine with DefaultConfig.
func NewDefault() *Engine {
	engine, err := New(DefaultConfig())
	if err != nil {
		// DefaultConfig always validates
		panic(fmt.Sprintf("insight: default config invalid: %v", err))
	}
	return engine
}

// Thresholds returns the tuning the engine was built with.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}
