package domain

import (
	"fmt"
	"math"
	"time"
)

const (
	RushHourTraffic = 0.8
	OffPeakTraffic  = 0.3
)

// TimeContext is the hour/day/traffic context shared by every edge of one
// sequencing call. Weekday counts from Monday = 0 to Sunday = 6.
type TimeContext struct {
	Hour         int
	Weekday      int
	TrafficLevel float64
}

// IsRushHour reports whether hour falls in 07:00-09:00 or 16:00-19:00, both inclusive.
func IsRushHour(hour int) bool {
	return (hour >= 7 && hour <= 9) || (hour >= 16 && hour <= 19)
}

// TrafficLevelForHour is a two-interval step function on the hour only.
func TrafficLevelForHour(hour int) float64 {
	if IsRushHour(hour) {
		return RushHourTraffic
	}
	return OffPeakTraffic
}

// MondayFirstWeekday converts time.Weekday (Sunday = 0) to Monday = 0.
func MondayFirstWeekday(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// ContextAt derives the time context from a wall-clock instant.
func ContextAt(t time.Time) TimeContext {
	return TimeContext{
		Hour:         t.Hour(),
		Weekday:      MondayFirstWeekday(t.Weekday()),
		TrafficLevel: TrafficLevelForHour(t.Hour()),
	}
}

// WithTraffic returns a copy with the traffic level overridden.
func (tc TimeContext) WithTraffic(level float64) TimeContext {
	tc.TrafficLevel = level
	return tc
}

func (tc TimeContext) Validate() error {
	if tc.Hour < 0 || tc.Hour > 23 {
		return fmt.Errorf("%w: hour_of_day %d not in [0,23]", ErrInvalidFeature, tc.Hour)
	}
	if tc.Weekday < 0 || tc.Weekday > 6 {
		return fmt.Errorf("%w: day_of_week %d not in [0,6]", ErrInvalidFeature, tc.Weekday)
	}
	if math.IsNaN(tc.TrafficLevel) || tc.TrafficLevel < 0 || tc.TrafficLevel > 1 {
		return fmt.Errorf("%w: traffic_level %v not in [0,1]", ErrInvalidFeature, tc.TrafficLevel)
	}
	return nil
}
