package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/krushndayshmookh/krushn-calendar/middlewares"
	"github.com/krushndayshmookh/krushn-calendar/models"
	"github.com/krushndayshmookh/krushn-calendar/services"
	"github.com/krushndayshmookh/krushn-calendar/services/gateway"
	"github.com/labstack/echo/v4"
	"google.golang.org/api/calendar/v3"
)

type EventService interface {
	ListEvents(ctx context.Context, user *models.User, window gateway.TimeWindow) ([]models.MergedEvent, error)
	CreateEvent(ctx context.Context, user *models.User, input services.EventInput) (models.MergedEvent, error)
	UpdateEvent(ctx context.Context, user *models.User, eventID string, input services.EventInput) (models.MergedEvent, error)
	DeleteEvent(ctx context.Context, user *models.User, eventID string) error
	RsvpEvent(ctx context.Context, user *models.User, eventID, responseStatus string) (*calendar.Event, error)
}

// CategoryRef accepts a category id sent as a string, a number or null.
type CategoryRef string

func (r *CategoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = CategoryRef(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("categoryId must be a string or number")
		}
		*r = CategoryRef(n.String())
	}
	return nil
}

type eventRequest struct {
	Summary      string                  `json:"summary"`
	Description  string                  `json:"description"`
	Location     string                  `json:"location"`
	Start        *calendar.EventDateTime `json:"start"`
	End          *calendar.EventDateTime `json:"end"`
	Tags         []string                `json:"tags"`
	Notes        string                  `json:"notes"`
	CategoryID   CategoryRef             `json:"categoryId"`
	CustomStatus *string                 `json:"customStatus"`
}

func (r eventRequest) input() services.EventInput {
	return services.EventInput{
		Summary:      r.Summary,
		Description:  r.Description,
		Location:     r.Location,
		Start:        r.Start,
		End:          r.End,
		Tags:         r.Tags,
		Notes:        r.Notes,
		CategoryID:   string(r.CategoryID),
		CustomStatus: r.CustomStatus,
	}
}

type rsvpRequest struct {
	ResponseStatus string `json:"responseStatus"`
}

type EventController struct {
	events EventService
}

func NewEventController(events EventService) *EventController {
	return &EventController{events: events}
}

func (ec *EventController) List(c echo.Context) error {
	user, err := middlewares.CurrentUser(c)
	if err != nil {
		return err
	}

	window := gateway.TimeWindow{
		TimeMin: c.QueryParam("timeMin"),
		TimeMax: c.QueryParam("timeMax"),
	}
	events, err := ec.events.ListEvents(c.Request().Context(), user, window)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

func (ec *EventController) Create(c echo.Context) error {
	user, err := middlewares.CurrentUser(c)
	if err != nil {
		return err
	}

	var req eventRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	event, err := ec.events.CreateEvent(c.Request().Context(), user, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, event)
}

func (ec *EventController) Update(c echo.Context) error {
	user, err := middlewares.CurrentUser(c)
	if err != nil {
		return err
	}

	var req eventRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	event, err := ec.events.UpdateEvent(c.Request().Context(), user, c.Param("id"), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

func (ec *EventController) Delete(c echo.Context) error {
	user, err := middlewares.CurrentUser(c)
	if err != nil {
		return err
	}

	if err := ec.events.DeleteEvent(c.Request().Context(), user, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Event deleted"})
}

func (ec *EventController) Rsvp(c echo.Context) error {
	user, err := middlewares.CurrentUser(c)
	if err != nil {
		return err
	}

	var req rsvpRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	event, err := ec.events.RsvpEvent(c.Request().Context(), user, c.Param("id"), req.ResponseStatus)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

// bindJSON decodes the request body only, so path and query values never
// leak into the payload.
func bindJSON(c echo.Context, v interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}
	return nil
}
