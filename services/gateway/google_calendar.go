package gateway

import (
	"context"
	"fmt"

	"github.com/krushndayshmookh/krushn-calendar/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleFactory creates Google Calendar gateways from stored refresh tokens.
type GoogleFactory struct {
	oauthConfig *oauth2.Config
	calendarID  string
	// extra options, used by tests to point the client at a fake server
	options []option.ClientOption
}

func NewGoogleFactory(oauthConfig *oauth2.Config, calendarID string, opts ...option.ClientOption) *GoogleFactory {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleFactory{oauthConfig: oauthConfig, calendarID: calendarID, options: opts}
}

func (f *GoogleFactory) ForUser(ctx context.Context, user *models.User) (Gateway, error) {
	if user == nil || user.RefreshToken == "" {
		return nil, ErrNoCredentials
	}

	tokenSource := f.oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: user.RefreshToken})
	opts := append([]option.ClientOption{option.WithTokenSource(tokenSource)}, f.options...)

	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &GoogleCalendar{
		service:    service,
		calendarID: f.calendarID,
		logger:     logrus.WithFields(logrus.Fields{"calendar": f.calendarID, "user_id": user.ID}),
	}, nil
}

// GoogleCalendar is a Gateway backed by the Calendar v3 API.
type GoogleCalendar struct {
	service    *calendar.Service
	calendarID string
	logger     *logrus.Entry
}

// NewGoogleCalendar wraps an existing service.
func NewGoogleCalendar(service *calendar.Service, calendarID string) *GoogleCalendar {
	return &GoogleCalendar{
		service:    service,
		calendarID: calendarID,
		logger:     logrus.WithField("calendar", calendarID),
	}
}

// ListEvents returns single instances ordered by start time.
func (g *GoogleCalendar) ListEvents(ctx context.Context, window TimeWindow) ([]*calendar.Event, error) {
	call := g.service.Events.List(g.calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(MaxResults).
		Context(ctx)
	if window.TimeMin != "" {
		call = call.TimeMin(window.TimeMin)
	}
	if window.TimeMax != "" {
		call = call.TimeMax(window.TimeMax)
	}

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events: %w", err)
	}

	g.logger.WithField("count", len(events.Items)).Debug("Fetched events from Google Calendar")
	return events.Items, nil
}

func (g *GoogleCalendar) GetEvent(ctx context.Context, eventID string) (*calendar.Event, error) {
	event, err := g.service.Events.Get(g.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", eventID, err)
	}
	return event, nil
}

func (g *GoogleCalendar) InsertEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error) {
	created, err := g.service.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}
	return created, nil
}

func (g *GoogleCalendar) PatchEvent(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	updated, err := g.service.Events.Patch(g.calendarID, eventID, patch).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to patch event %s: %w", eventID, err)
	}
	return updated, nil
}

func (g *GoogleCalendar) DeleteEvent(ctx context.Context, eventID string) error {
	if err := g.service.Events.Delete(g.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return nil
}
