package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"Aivatar/backend/go/internal/models"
	"Aivatar/backend/go/internal/scheduling"
)

// schedulingViews computes the two disclosure views of availability. The
// first return value is what the model may see: slots derived from the
// owner's windows alone. The view in the second return value is what the
// caller's UI shows: the same slots minus calendar-busy intervals.
// Calendar data must never flow into the first value.
func (s *Service) schedulingViews(ctx context.Context, agent *models.Agent, now time.Time) ([]models.Slot, *SchedulingView) {
	windows, err := s.agents.Windows(ctx, agent.OwnerID)
	if err != nil {
		s.log.WithError(err).Warn("loading availability windows failed")
		return nil, nil
	}

	modelSlots := scheduling.ComputeSlots(windows, now)
	uiSlots := modelSlots

	if s.calendar != nil {
		conn, err := s.agents.CalendarConnection(ctx, agent.OwnerID)
		if err != nil {
			s.log.WithError(err).Warn("loading calendar connection failed")
		} else if conn != nil {
			horizon := now.Add(scheduling.HorizonDays * 24 * time.Hour)
			busy, err := s.calendar.BusyPeriods(ctx, conn, now, horizon)
			if err != nil {
				s.log.WithError(err).Warn("calendar busy lookup failed, showing unfiltered slots")
			} else {
				uiSlots = scheduling.FilterBusy(modelSlots, busy)
			}
		}
	}

	return modelSlots, &SchedulingView{
		SlotsByDate:     scheduling.GroupByDate(uiSlots),
		WalletAddress:   agent.WalletAddress,
		SessionPriceUSD: agent.SessionPriceUSD,
		FreeSessions:    agent.FreeSessions,
	}
}

// describeAvailability renders the window-derived slots as prose for the
// system instruction.
func describeAvailability(slots []models.Slot) string {
	if len(slots) == 0 {
		return "The owner has no open appointment slots in the next 7 days."
	}
	var sb strings.Builder
	sb.WriteString("The owner's open 30-minute appointment slots over the next 7 days (UTC):\n")
	byDate := scheduling.GroupByDate(slots)
	for _, date := range sortedDates(byDate) {
		sb.WriteString(date)
		sb.WriteString(": ")
		times := make([]string, 0, len(byDate[date]))
		for _, slot := range byDate[date] {
			times = append(times, fmt.Sprintf("%s-%s",
				slot.Start.Format("15:04"), slot.End.Format("15:04")))
		}
		sb.WriteString(strings.Join(times, ", "))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func sortedDates(byDate map[string][]models.Slot) []string {
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
