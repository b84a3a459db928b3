package domain

import (
	"fmt"
	"strings"
)

// PastWeekDays is the fixed length of a driver's daily hour history.
const PastWeekDays = 7

const (
	fatigueThresholdHours = 8.0
	fatigueMultiplier     = 1.3
)

// Driver is a fleet member available for order assignment.
// PastWeekHours is ordered oldest to newest; the last element is the most recent day.
// Fatigue is derived from it on demand and never stored.
type Driver struct {
	ID            int64
	Name          string
	ShiftHours    float64
	PastWeekHours []float64
}

// FatigueMultiplier returns the factor applied to delivery time estimates.
// A driver whose most recent day exceeded 8 hours is 30% slower.
// A missing history counts as a rested driver.
func (d Driver) FatigueMultiplier() float64 {
	lastDay := 0.0
	if n := len(d.PastWeekHours); n > 0 {
		lastDay = d.PastWeekHours[n-1]
	}

	if lastDay > fatigueThresholdHours {
		return fatigueMultiplier
	}
	return 1.0
}

func (d Driver) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("driver: name must not be empty: %w", ErrValidation)
	}

	if d.ShiftHours < 0 {
		return fmt.Errorf("driver %q: shift_hours must be >= 0: %w", d.Name, ErrValidation)
	}

	if len(d.PastWeekHours) != PastWeekDays {
		return fmt.Errorf(
			"driver %q: past_week_hours must have %d entries, got %d: %w",
			d.Name, PastWeekDays, len(d.PastWeekHours), ErrValidation,
		)
	}

	for i, h := range d.PastWeekHours {
		if h < 0 {
			return fmt.Errorf("driver %q: past_week_hours[%d] must be >= 0: %w", d.Name, i, ErrValidation)
		}
	}

	return nil
}
