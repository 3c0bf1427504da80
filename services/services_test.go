package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/krushndayshmookh/krushn-calendar/models"
	"github.com/krushndayshmookh/krushn-calendar/repositories"
	"github.com/krushndayshmookh/krushn-calendar/services/gateway"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"gorm.io/gorm"
)

var errRemoteDown = errors.New("googleapi: Error 503: backend unavailable")

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := repositories.Open("sqlite", filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Category{}, &models.EventMetadata{}))
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{GoogleID: "sub-" + email, Email: email, RefreshToken: "refresh"}
	require.NoError(t, db.Create(user).Error)
	return user
}

// fakeGateway is an in-memory calendar that records every mutation.
type fakeGateway struct {
	mu      sync.Mutex
	events  map[string]*calendar.Event
	order   []string
	nextID  int
	patches []string
	window  gateway.TimeWindow

	listErr   error
	getErr    error
	insertErr error
	patchErr  error
	deleteErr error
}

func newFakeGateway(events ...*calendar.Event) *fakeGateway {
	gw := &fakeGateway{events: map[string]*calendar.Event{}}
	for _, e := range events {
		gw.events[e.Id] = e
		gw.order = append(gw.order, e.Id)
	}
	return gw
}

func (g *fakeGateway) ListEvents(ctx context.Context, window gateway.TimeWindow) ([]*calendar.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.window = window
	if g.listErr != nil {
		return nil, g.listErr
	}
	events := make([]*calendar.Event, 0, len(g.order))
	for _, id := range g.order {
		if e, ok := g.events[id]; ok {
			events = append(events, e)
		}
	}
	return events, nil
}

func (g *fakeGateway) GetEvent(ctx context.Context, eventID string) (*calendar.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.getErr != nil {
		return nil, g.getErr
	}
	e, ok := g.events[eventID]
	if !ok {
		return nil, fmt.Errorf("failed to get event %s: not found", eventID)
	}
	return e, nil
}

func (g *fakeGateway) InsertEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.insertErr != nil {
		return nil, g.insertErr
	}
	g.nextID++
	event.Id = fmt.Sprintf("new-%d", g.nextID)
	g.events[event.Id] = event
	g.order = append(g.order, event.Id)
	return event, nil
}

func (g *fakeGateway) PatchEvent(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.patches = append(g.patches, eventID)
	if g.patchErr != nil {
		return nil, g.patchErr
	}
	e, ok := g.events[eventID]
	if !ok {
		return nil, fmt.Errorf("failed to patch event %s: not found", eventID)
	}
	if patch.Summary != "" {
		e.Summary = patch.Summary
	}
	if patch.Description != "" {
		e.Description = patch.Description
	}
	if patch.Location != "" {
		e.Location = patch.Location
	}
	if patch.Attendees != nil {
		e.Attendees = patch.Attendees
	}
	return e, nil
}

func (g *fakeGateway) DeleteEvent(ctx context.Context, eventID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deleteErr != nil {
		return g.deleteErr
	}
	delete(g.events, eventID)
	return nil
}

type fakeFactory struct {
	gw *fakeGateway
}

func (f fakeFactory) ForUser(ctx context.Context, user *models.User) (gateway.Gateway, error) {
	if user == nil || user.RefreshToken == "" {
		return nil, gateway.ErrNoCredentials
	}
	return f.gw, nil
}
