// Package gateway adapts local event operations to the Google Calendar API.
package gateway

import (
	"context"
	"errors"

	"github.com/krushndayshmookh/krushn-calendar/models"
	"google.golang.org/api/calendar/v3"
)

// MaxResults caps a single listing call.
const MaxResults = 2500

// ErrNoCredentials means the user has no stored refresh token.
var ErrNoCredentials = errors.New("no calendar credentials for user")

// TimeWindow bounds a listing. Values are RFC3339; an empty TimeMax is open.
type TimeWindow struct {
	TimeMin string
	TimeMax string
}

// Gateway is the calendar API scoped to one user and one calendar.
type Gateway interface {
	ListEvents(ctx context.Context, window TimeWindow) ([]*calendar.Event, error)
	GetEvent(ctx context.Context, eventID string) (*calendar.Event, error)
	InsertEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error)
	PatchEvent(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// Factory builds a Gateway authorised with the user's credentials.
type Factory interface {
	ForUser(ctx context.Context, user *models.User) (Gateway, error)
}
