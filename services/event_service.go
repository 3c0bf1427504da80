package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/krushndayshmookh/krushn-calendar/metrics"
	"github.com/krushndayshmookh/krushn-calendar/models"
	"github.com/krushndayshmookh/krushn-calendar/repositories"
	"github.com/krushndayshmookh/krushn-calendar/services/gateway"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/calendar/v3"
)

var rsvpStatuses = map[string]bool{
	"accepted":  true,
	"declined":  true,
	"tentative": true,
}

// EventInput carries the editable remote fields and the local annotation of
// an event. CategoryID is the raw reference; empty means none. A nil
// CustomStatus leaves the stored status alone on update.
type EventInput struct {
	Summary      string
	Description  string
	Location     string
	Start        *calendar.EventDateTime
	End          *calendar.EventDateTime
	Tags         []string
	Notes        string
	CategoryID   string
	CustomStatus *string
}

func (in EventInput) remoteEvent() *calendar.Event {
	return &calendar.Event{
		Summary:     in.Summary,
		Description: in.Description,
		Location:    in.Location,
		Start:       in.Start,
		End:         in.End,
	}
}

func (in EventInput) fields(categoryID *uint) repositories.MetadataFields {
	return repositories.MetadataFields{
		Tags:         in.Tags,
		Notes:        in.Notes,
		CategoryID:   categoryID,
		CustomStatus: in.CustomStatus,
	}
}

// EventService merges remote calendar events with local metadata.
type EventService struct {
	gateways   gateway.Factory
	metadata   repositories.MetadataRepository
	categories repositories.CategoryRepository
	now        func() time.Time
}

func NewEventService(gateways gateway.Factory, metadata repositories.MetadataRepository, categories repositories.CategoryRepository) *EventService {
	return &EventService{
		gateways:   gateways,
		metadata:   metadata,
		categories: categories,
		now:        time.Now,
	}
}

// ListEvents fetches the window's instances and attaches each one's
// metadata, preferring an instance record over its series record.
func (s *EventService) ListEvents(ctx context.Context, user *models.User, window gateway.TimeWindow) ([]models.MergedEvent, error) {
	window, err := s.normaliseWindow(window)
	if err != nil {
		return nil, err
	}

	gw, err := s.gatewayFor(ctx, user)
	if err != nil {
		return nil, err
	}

	events, err := gw.ListEvents(ctx, window)
	metrics.ObserveRemote("list", err)
	if err != nil {
		return nil, remoteErr("list events", err)
	}

	records, err := s.metadata.FindByEventIDs(ctx, user.ID, lookupIDs(events))
	if err != nil {
		return nil, storeErr("load event metadata", err)
	}

	return mergeEvents(events, records), nil
}

// CreateEvent inserts the remote event and, only if any annotation was
// given, a metadata record for it. Nothing is written locally when the
// remote insert fails.
func (s *EventService) CreateEvent(ctx context.Context, user *models.User, input EventInput) (models.MergedEvent, error) {
	categoryID, err := s.resolveCategory(ctx, user, input.CategoryID)
	if err != nil {
		return models.MergedEvent{}, err
	}

	gw, err := s.gatewayFor(ctx, user)
	if err != nil {
		return models.MergedEvent{}, err
	}

	created, err := gw.InsertEvent(ctx, input.remoteEvent())
	metrics.ObserveRemote("insert", err)
	if err != nil {
		return models.MergedEvent{}, remoteErr("create event", err)
	}

	result := models.MergedEvent{Remote: created, OmitEmptyProps: true}
	if len(input.Tags) == 0 && input.Notes == "" && categoryID == nil && (input.CustomStatus == nil || *input.CustomStatus == "") {
		return result, nil
	}

	record, err := s.metadata.Create(ctx, user.ID, created.Id, input.fields(categoryID))
	if err != nil {
		return models.MergedEvent{}, storeErr("create event metadata", err)
	}
	metrics.MetadataWrites.WithLabelValues("create").Inc()

	result.Metadata = record
	return result, nil
}

// UpdateEvent patches the remote event and upserts the metadata. For an
// instance of a recurring event the metadata lives under the series id.
func (s *EventService) UpdateEvent(ctx context.Context, user *models.User, eventID string, input EventInput) (models.MergedEvent, error) {
	categoryID, err := s.resolveCategory(ctx, user, input.CategoryID)
	if err != nil {
		return models.MergedEvent{}, err
	}

	gw, err := s.gatewayFor(ctx, user)
	if err != nil {
		return models.MergedEvent{}, err
	}

	updated, err := gw.PatchEvent(ctx, eventID, input.remoteEvent())
	metrics.ObserveRemote("patch", err)
	if err != nil {
		return models.MergedEvent{}, remoteErr("update event", err)
	}

	target := metadataTarget(updated, eventID)
	record, err := s.metadata.Upsert(ctx, user.ID, target, input.fields(categoryID))
	if err != nil {
		return models.MergedEvent{}, storeErr("upsert event metadata", err)
	}
	metrics.MetadataWrites.WithLabelValues("upsert").Inc()

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"event_id": eventID,
		"target":   target,
	}).Debug("Event metadata upserted")

	return models.MergedEvent{Remote: updated, Metadata: record}, nil
}

// DeleteEvent removes the remote event and the caller's metadata stored
// under exactly eventID. Series metadata is left in place.
func (s *EventService) DeleteEvent(ctx context.Context, user *models.User, eventID string) error {
	gw, err := s.gatewayFor(ctx, user)
	if err != nil {
		return err
	}

	err = gw.DeleteEvent(ctx, eventID)
	metrics.ObserveRemote("delete", err)
	if err != nil {
		return remoteErr("delete event", err)
	}

	if err := s.metadata.DeleteByEventID(ctx, user.ID, eventID); err != nil {
		return storeErr("delete event metadata", err)
	}
	metrics.MetadataWrites.WithLabelValues("delete").Inc()
	return nil
}

// RsvpEvent sets the caller's own attendee response.
func (s *EventService) RsvpEvent(ctx context.Context, user *models.User, eventID, responseStatus string) (*calendar.Event, error) {
	if !rsvpStatuses[responseStatus] {
		return nil, invalid("responseStatus", "must be one of accepted, declined, tentative")
	}

	gw, err := s.gatewayFor(ctx, user)
	if err != nil {
		return nil, err
	}

	event, err := gw.GetEvent(ctx, eventID)
	metrics.ObserveRemote("get", err)
	if err != nil {
		return nil, remoteErr("fetch event", err)
	}

	self := -1
	for i, attendee := range event.Attendees {
		if attendee != nil && attendee.Self {
			self = i
			break
		}
	}
	if self == -1 {
		return nil, ErrNotAttendee
	}

	attendees := event.Attendees
	attendees[self].ResponseStatus = responseStatus

	updated, err := gw.PatchEvent(ctx, eventID, &calendar.Event{Attendees: attendees})
	metrics.ObserveRemote("patch", err)
	if err != nil {
		return nil, remoteErr("send rsvp", err)
	}
	return updated, nil
}

func (s *EventService) gatewayFor(ctx context.Context, user *models.User) (gateway.Gateway, error) {
	gw, err := s.gateways.ForUser(ctx, user)
	if err != nil {
		if errors.Is(err, gateway.ErrNoCredentials) {
			return nil, ErrUnauthorized
		}
		return nil, remoteErr("connect calendar", err)
	}
	return gw, nil
}

// resolveCategory turns a raw reference into the id of a category the user
// owns. Empty means no category.
func (s *EventService) resolveCategory(ctx context.Context, user *models.User, raw string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, invalid("categoryId", "must be a category id")
	}

	category, err := s.categories.FindOwned(ctx, user.ID, uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, invalid("categoryId", "unknown category")
		}
		return nil, storeErr("load category", err)
	}
	return &category.ID, nil
}

func (s *EventService) normaliseWindow(window gateway.TimeWindow) (gateway.TimeWindow, error) {
	if window.TimeMin == "" {
		window.TimeMin = s.now().UTC().Format(time.RFC3339)
	} else if _, err := time.Parse(time.RFC3339, window.TimeMin); err != nil {
		return window, invalid("timeMin", "must be an RFC3339 timestamp")
	}

	if window.TimeMax != "" {
		if _, err := time.Parse(time.RFC3339, window.TimeMax); err != nil {
			return window, invalid("timeMax", "must be an RFC3339 timestamp")
		}
	}
	return window, nil
}
