package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// AvailabilityWindow is a recurring weekly availability rule, owner-scoped
// and independent of any agent. Start and End are local wall-clock times in
// the window's own timezone.
type AvailabilityWindow struct {
	gorm.Model

	OwnerID   uint   `gorm:"index;not null"`
	DayOfWeek int    `gorm:"not null"` // 0 = Sunday, matching time.Weekday
	StartTime string `gorm:"size:5;not null"` // "HH:MM"
	EndTime   string `gorm:"size:5;not null"`
	Timezone  string `gorm:"size:64;not null"` // IANA name, e.g. "America/New_York"
	Active    bool   `gorm:"default:true"`
}

func (AvailabilityWindow) TableName() string {
	return "availability_windows"
}

// Validate rejects malformed windows at write time.
func (w *AvailabilityWindow) Validate() error {
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return fmt.Errorf("availability window: day of week %d out of range", w.DayOfWeek)
	}
	start, err := ParseClock(w.StartTime)
	if err != nil {
		return fmt.Errorf("availability window: %w", err)
	}
	end, err := ParseClock(w.EndTime)
	if err != nil {
		return fmt.Errorf("availability window: %w", err)
	}
	if !end.After(start) {
		return fmt.Errorf("availability window: end %s not after start %s", w.EndTime, w.StartTime)
	}
	if _, err := time.LoadLocation(w.Timezone); err != nil {
		return fmt.Errorf("availability window: invalid timezone '%s'", w.Timezone)
	}
	return nil
}

// Clock is a wall-clock time of day.
type Clock struct {
	Hour, Minute int
}

func (c Clock) After(o Clock) bool {
	return c.Hour*60+c.Minute > o.Hour*60+o.Minute
}

// ParseClock parses an "HH:MM" string.
func ParseClock(s string) (Clock, error) {
	var c Clock
	if _, err := fmt.Sscanf(s, "%d:%d", &c.Hour, &c.Minute); err != nil {
		return Clock{}, fmt.Errorf("invalid clock time '%s'", s)
	}
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return Clock{}, fmt.Errorf("clock time '%s' out of range", s)
	}
	return c, nil
}

// CalendarConnection stores a user's third-party calendar link, including the
// OAuth tokens needed for free/busy queries. Refreshed access tokens are
// persisted back onto this row.
type CalendarConnection struct {
	gorm.Model

	OwnerID      uint      `gorm:"uniqueIndex;not null"`
	CalendarID   string    `gorm:"size:255;not null;default:'primary'"`
	AccessToken  string    `gorm:"size:2048;not null"`
	RefreshToken string    `gorm:"size:2048"`
	TokenExpiry  time.Time `gorm:""`
	Active       bool      `gorm:"default:true"`
}

func (CalendarConnection) TableName() string {
	return "calendar_connections"
}

// Slot is a candidate bookable interval in UTC. Slots are derived per request
// and never persisted.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BusyPeriod is an externally reported unavailable interval.
type BusyPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
