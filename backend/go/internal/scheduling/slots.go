// Package scheduling derives bookable time slots from recurring weekly
// availability windows and reconciles them against external calendar busy
// periods.
//
// The computation produces two divergent views: the model-visible set,
// derived purely from configured windows, and the UI-visible set, which is
// additionally filtered against calendar data. Calendar data must never
// influence the model-visible set; this is a disclosure boundary, not an
// optimization.
package scheduling

import (
	"sort"
	"time"

	"Aivatar/backend/go/internal/models"
)

const (
	// SlotDuration is the length of one bookable slot.
	SlotDuration = 30 * time.Minute
	// SlotBuffer separates consecutive slots within a window.
	SlotBuffer = 15 * time.Minute
	// AdvanceNotice drops slots starting too soon after "now".
	AdvanceNotice = 24 * time.Hour
	// HorizonDays is how far ahead slots are computed.
	HorizonDays = 7
)

// ComputeSlots tiles candidate slots from the active windows over the next
// HorizonDays, in UTC, honoring the advance-notice rule. Day-of-week is
// evaluated in each window's own timezone, not the server's; a naive UTC
// weekday is wrong near midnight boundaries.
func ComputeSlots(windows []models.AvailabilityWindow, now time.Time) []models.Slot {
	var slots []models.Slot
	earliest := now.Add(AdvanceNotice)

	for _, window := range windows {
		if !window.Active {
			continue
		}
		loc, err := time.LoadLocation(window.Timezone)
		if err != nil {
			continue
		}
		start, err := models.ParseClock(window.StartTime)
		if err != nil {
			continue
		}
		end, err := models.ParseClock(window.EndTime)
		if err != nil {
			continue
		}

		localNow := now.In(loc)
		for day := 0; day < HorizonDays; day++ {
			localDay := localNow.AddDate(0, 0, day)
			if int(localDay.Weekday()) != window.DayOfWeek {
				continue
			}
			windowStart := time.Date(localDay.Year(), localDay.Month(), localDay.Day(),
				start.Hour, start.Minute, 0, 0, loc)
			windowEnd := time.Date(localDay.Year(), localDay.Month(), localDay.Day(),
				end.Hour, end.Minute, 0, 0, loc)

			for cursor := windowStart; !cursor.Add(SlotDuration).After(windowEnd); cursor = cursor.Add(SlotDuration + SlotBuffer) {
				slot := models.Slot{Start: cursor.UTC(), End: cursor.Add(SlotDuration).UTC()}
				if slot.Start.Before(earliest) {
					continue
				}
				slots = append(slots, slot)
			}
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots
}

// FilterBusy returns the slots that do not overlap any busy period. The
// input slice is never mutated: the UI view is a separate collection, so
// calendar data cannot bleed into the model-visible set.
func FilterBusy(slots []models.Slot, busy []models.BusyPeriod) []models.Slot {
	filtered := make([]models.Slot, 0, len(slots))
	for _, slot := range slots {
		blocked := false
		for _, period := range busy {
			if overlaps(slot, period) {
				blocked = true
				break
			}
		}
		if !blocked {
			filtered = append(filtered, slot)
		}
	}
	return filtered
}

// overlaps reports whether the slot intersects the busy period: slot start
// inside, slot end inside, or slot fully containing the period.
func overlaps(slot models.Slot, busy models.BusyPeriod) bool {
	startInside := !slot.Start.Before(busy.Start) && slot.Start.Before(busy.End)
	endInside := slot.End.After(busy.Start) && !slot.End.After(busy.End)
	contains := !slot.Start.After(busy.Start) && !slot.End.Before(busy.End)
	return startInside || endInside || contains
}

// GroupByDate buckets slots by their UTC calendar date for the UI payload.
func GroupByDate(slots []models.Slot) map[string][]models.Slot {
	grouped := make(map[string][]models.Slot)
	for _, slot := range slots {
		key := slot.Start.Format("2006-01-02")
		grouped[key] = append(grouped[key], slot)
	}
	return grouped
}
