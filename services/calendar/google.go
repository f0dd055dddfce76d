package calendar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"styledesk/config"
	"styledesk/models"
	"styledesk/utils"
)

const requestTimeout = 5 * time.Second

// GoogleGateway implements Gateway against the Google Calendar API using a
// pre-issued refresh token. The OAuth consent flow happens out of band; this
// gateway only consumes its result.
type GoogleGateway struct {
	svc        *gcal.Service
	calendarID string
	location   *time.Location
}

// NewGoogleGateway builds a calendar client from the infra config and the
// business timezone.
func NewGoogleGateway(ctx context.Context, cfg *config.Config, timezone string) (*GoogleGateway, error) {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarScope},
	}
	token := &oauth2.Token{
		RefreshToken: cfg.GoogleRefreshToken,
		Expiry:       time.Now(), // Force refresh
	}

	svc, err := gcal.NewService(ctx, option.WithTokenSource(oauthCfg.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.Local
	}

	return &GoogleGateway{svc: svc, calendarID: cfg.GoogleCalendarID, location: loc}, nil
}

// IsAvailable lists events overlapping [time, time+duration) and reports the
// slot free when none exist.
func (g *GoogleGateway) IsAvailable(ctx context.Context, date, timeOfDay string, durationMinutes int) (bool, error) {
	start, err := utils.CombineDateTime(date, timeOfDay, g.location)
	if err != nil {
		return false, err
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	events, err := g.svc.Events.List(g.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		MaxResults(1).
		Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("calendar availability check failed: %w", err)
	}
	return len(events.Items) == 0, nil
}

// CreateEvent pushes a booked appointment as a calendar event.
func (g *GoogleGateway) CreateEvent(ctx context.Context, appt *models.Appointment, durationMinutes int) error {
	start, err := utils.CombineDateTime(appt.Date, appt.Time, g.location)
	if err != nil {
		return err
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	event := &gcal.Event{
		Summary:     fmt.Sprintf("%s - %s", appt.Service, appt.Name),
		Description: fmt.Sprintf("Booked via chat. Appointment ID: %s", appt.ID),
		Start:       &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if _, err := g.svc.Events.Insert(g.calendarID, event).Context(ctx).Do(); err != nil {
		return fmt.Errorf("calendar event creation failed: %w", err)
	}
	utils.GetLogger().Debug("Calendar event created",
		zap.String("appointmentID", appt.ID),
		zap.String("date", appt.Date),
		zap.String("time", appt.Time))
	return nil
}
