// Package calendar queries a connected Google calendar for busy periods,
// refreshing expired OAuth access tokens on the way.
package calendar

import (
	"context"
	"fmt"
	"time"

	"Aivatar/backend/go/internal/config"
	"Aivatar/backend/go/internal/models"
	"Aivatar/backend/go/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// TokenStore persists refreshed calendar credentials.
type TokenStore interface {
	SaveCalendarConnection(ctx context.Context, conn *models.CalendarConnection) error
}

// Service wraps the free/busy query plus token refresh handling.
type Service struct {
	oauth *oauth2.Config
	store TokenStore
	log   *logger.Logger
}

// NewService creates a calendar Service from the configured OAuth client.
func NewService(cfg config.CalendarConfig, store TokenStore, log *logger.Logger) *Service {
	return &Service{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{calendarapi.CalendarReadonlyScope},
		},
		store: store,
		log:   log,
	}
}

// BusyPeriods returns the connection's busy intervals between from and to.
// An expired access token is refreshed through the stored refresh token and
// the renewed credentials are persisted before the query runs.
func (s *Service) BusyPeriods(ctx context.Context, conn *models.CalendarConnection, from, to time.Time) ([]models.BusyPeriod, error) {
	token := &oauth2.Token{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		Expiry:       conn.TokenExpiry,
	}

	if !token.Valid() {
		fresh, err := s.oauth.TokenSource(ctx, token).Token()
		if err != nil {
			return nil, fmt.Errorf("unable to refresh calendar token: %w", err)
		}
		conn.AccessToken = fresh.AccessToken
		if fresh.RefreshToken != "" {
			conn.RefreshToken = fresh.RefreshToken
		}
		conn.TokenExpiry = fresh.Expiry
		if err := s.store.SaveCalendarConnection(ctx, conn); err != nil {
			// The query can still proceed on the fresh token.
			s.log.WithError(err).Warn("unable to persist refreshed calendar token")
		}
		token = fresh
	}

	svc, err := calendarapi.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(token)))
	if err != nil {
		return nil, fmt.Errorf("unable to create calendar service: %w", err)
	}

	calendarID := conn.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	resp, err := svc.Freebusy.Query(&calendarapi.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
		Items:   []*calendarapi.FreeBusyRequestItem{{Id: calendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("free/busy query failed: %w", err)
	}

	var periods []models.BusyPeriod
	for _, cal := range resp.Calendars {
		for _, busy := range cal.Busy {
			start, err := time.Parse(time.RFC3339, busy.Start)
			if err != nil {
				continue
			}
			end, err := time.Parse(time.RFC3339, busy.End)
			if err != nil {
				continue
			}
			periods = append(periods, models.BusyPeriod{Start: start.UTC(), End: end.UTC()})
		}
	}
	return periods, nil
}
