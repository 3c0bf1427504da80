package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/krushndayshmookh/krushn-calendar/auth"
	"github.com/krushndayshmookh/krushn-calendar/middlewares"
	"github.com/krushndayshmookh/krushn-calendar/models"
	"github.com/krushndayshmookh/krushn-calendar/services"
	"github.com/krushndayshmookh/krushn-calendar/services/gateway"
	"github.com/krushndayshmookh/krushn-calendar/utils"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
)

var testUser = &models.User{ID: 3, Email: "me@example.com"}

type fixedAuthenticator struct{}

func (fixedAuthenticator) Authenticate(c echo.Context) (*models.User, error) {
	return testUser, nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middlewares.ErrorHandler()
	return e
}

func requireUser() echo.MiddlewareFunc {
	return middlewares.NewAuthMiddleware(fixedAuthenticator{}).RequireAuth()
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type stubEvents struct {
	window  gateway.TimeWindow
	input   services.EventInput
	eventID string
	status  string
	err     error
}

func (s *stubEvents) ListEvents(ctx context.Context, user *models.User, window gateway.TimeWindow) ([]models.MergedEvent, error) {
	s.window = window
	if s.err != nil {
		return nil, s.err
	}
	return []models.MergedEvent{{Remote: &calendar.Event{Id: "a", Summary: "Standup"}}}, nil
}

func (s *stubEvents) CreateEvent(ctx context.Context, user *models.User, input services.EventInput) (models.MergedEvent, error) {
	s.input = input
	return models.MergedEvent{Remote: &calendar.Event{Id: "new"}, OmitEmptyProps: true}, s.err
}

func (s *stubEvents) UpdateEvent(ctx context.Context, user *models.User, eventID string, input services.EventInput) (models.MergedEvent, error) {
	s.eventID, s.input = eventID, input
	return models.MergedEvent{Remote: &calendar.Event{Id: eventID}, Metadata: &models.EventMetadata{Notes: input.Notes}}, s.err
}

func (s *stubEvents) DeleteEvent(ctx context.Context, user *models.User, eventID string) error {
	s.eventID = eventID
	return s.err
}

func (s *stubEvents) RsvpEvent(ctx context.Context, user *models.User, eventID, responseStatus string) (*calendar.Event, error) {
	s.eventID, s.status = eventID, responseStatus
	if s.err != nil {
		return nil, s.err
	}
	return &calendar.Event{Id: eventID}, nil
}

func newEventServer(stub *stubEvents) *echo.Echo {
	e := newTestEcho()
	ec := NewEventController(stub)
	g := e.Group("/api/events", requireUser())
	g.GET("", ec.List)
	g.POST("", ec.Create)
	g.PUT("/:id", ec.Update)
	g.DELETE("/:id", ec.Delete)
	g.POST("/:id/rsvp", ec.Rsvp)
	return e
}

func TestEventListPassesWindow(t *testing.T) {
	stub := &stubEvents{}
	rec := doJSON(newEventServer(stub), http.MethodGet, "/api/events?timeMin=2024-01-01T00:00:00Z&timeMax=2024-02-01T00:00:00Z", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"a","summary":"Standup","extendedProps":{}}]`, rec.Body.String())
	assert.Equal(t, "2024-01-01T00:00:00Z", stub.window.TimeMin)
	assert.Equal(t, "2024-02-01T00:00:00Z", stub.window.TimeMax)
}

func TestEventCreateAcceptsNumericCategory(t *testing.T) {
	stub := &stubEvents{}
	rec := doJSON(newEventServer(stub), http.MethodPost, "/api/events",
		`{"summary":"Lunch","tags":["food"],"categoryId":12,"start":{"dateTime":"2024-01-01T12:00:00Z"}}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":"new"}`, rec.Body.String())
	assert.Equal(t, "Lunch", stub.input.Summary)
	assert.Equal(t, "12", stub.input.CategoryID)
	assert.Equal(t, []string{"food"}, stub.input.Tags)
	require.NotNil(t, stub.input.Start)
	assert.Equal(t, "2024-01-01T12:00:00Z", stub.input.Start.DateTime)
}

func TestCategoryRefForms(t *testing.T) {
	for body, want := range map[string]string{
		`{"categoryId":"7"}`:  "7",
		`{"categoryId":7}`:    "7",
		`{"categoryId":null}`: "",
		`{}`:                  "",
	} {
		stub := &stubEvents{}
		rec := doJSON(newEventServer(stub), http.MethodPut, "/api/events/evt", body)
		assert.Equal(t, http.StatusOK, rec.Code, body)
		assert.Equal(t, want, stub.input.CategoryID, body)
	}

	rec := doJSON(newEventServer(&stubEvents{}), http.MethodPut, "/api/events/evt", `{"categoryId":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventUpdateAndDeleteUsePathID(t *testing.T) {
	stub := &stubEvents{}
	e := newEventServer(stub)

	rec := doJSON(e, http.MethodPut, "/api/events/s_1", `{"notes":"hello"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s_1", stub.eventID)
	assert.Contains(t, rec.Body.String(), `"notes":"hello"`)

	rec = doJSON(e, http.MethodDelete, "/api/events/gone", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Event deleted"}`, rec.Body.String())
	assert.Equal(t, "gone", stub.eventID)
}

func TestEventRsvpNotAttendee(t *testing.T) {
	stub := &stubEvents{err: services.ErrNotAttendee}
	rec := doJSON(newEventServer(stub), http.MethodPost, "/api/events/m/rsvp", `{"responseStatus":"accepted"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"You are not an attendee of this event"}`, rec.Body.String())
	assert.Equal(t, "accepted", stub.status)
}

func TestEventRemoteFailureIs500(t *testing.T) {
	stub := &stubEvents{err: &services.RemoteError{Op: "list events", Err: errors.New("rate limited")}}
	rec := doJSON(newEventServer(stub), http.MethodGet, "/api/events", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"rate limited"}`, rec.Body.String())
}

type stubCategories struct {
	input services.CategoryInput
	id    string
}

func (s *stubCategories) List(ctx context.Context, user *models.User) ([]models.Category, error) {
	return []models.Category{{ID: 1, Name: "Work", Color: "#111111"}}, nil
}

func (s *stubCategories) Create(ctx context.Context, user *models.User, input services.CategoryInput) (*models.Category, error) {
	s.input = input
	if input.Name == "" {
		return nil, &services.ValidationError{Field: "name", Message: "is required"}
	}
	return &models.Category{ID: 2, Name: input.Name, Color: input.Color}, nil
}

func (s *stubCategories) Delete(ctx context.Context, user *models.User, rawID string) error {
	s.id = rawID
	return nil
}

func TestCategoryRoutes(t *testing.T) {
	stub := &stubCategories{}
	e := newTestEcho()
	cc := NewCategoryController(stub)
	g := e.Group("/api/categories", requireUser())
	g.GET("", cc.List)
	g.POST("", cc.Create)
	g.DELETE("/:id", cc.Delete)

	rec := doJSON(e, http.MethodGet, "/api/categories", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Work"`)

	rec = doJSON(e, http.MethodPost, "/api/categories", `{"name":"Gym","color":"#ff0000","isDefault":true}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, stub.input.IsDefault)

	rec = doJSON(e, http.MethodPost, "/api/categories", `{"color":"#ff0000"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"name: is required"}`, rec.Body.String())

	rec = doJSON(e, http.MethodDelete, "/api/categories/9", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Category deleted"}`, rec.Body.String())
	assert.Equal(t, "9", stub.id)
}

type stubExporter struct{}

func (stubExporter) Export(ctx context.Context, user *models.User) (services.ExportResult, error) {
	return services.ExportResult{Key: "exports/3/1.json", Categories: 1, Metadata: 2}, nil
}

func TestExportRoute(t *testing.T) {
	e := newTestEcho()
	e.POST("/api/export", NewExportController(stubExporter{}).Export, requireUser())

	rec := doJSON(e, http.MethodPost, "/api/export", "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"key":"exports/3/1.json","categories":1,"metadata":2}`, rec.Body.String())
}

type failingPinger struct{ err error }

func (p failingPinger) PingContext(ctx context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	e := newTestEcho()
	e.GET("/health", NewHealthController(failingPinger{}).Health)
	e.GET("/down", NewHealthController(failingPinger{err: errors.New("no db")}).Health)

	rec := doJSON(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = doJSON(e, http.MethodGet, "/down", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type stubProvider struct {
	exchangeErr error
}

func (p stubProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (p stubProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &oauth2.Token{AccessToken: "access", RefreshToken: "refresh-" + code}, nil
}

func (p stubProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (services.Profile, error) {
	return services.Profile{Subject: "sub", Email: "me@example.com"}, nil
}

type stubIdentity struct {
	refreshToken string
}

func (s *stubIdentity) CompleteLogin(ctx context.Context, profile services.Profile, refreshToken string) (*models.User, error) {
	s.refreshToken = refreshToken
	return &models.User{ID: 11, Email: profile.Email}, nil
}

func newAuthServer(provider OAuthProvider, identity LoginCompleter) (*echo.Echo, *auth.MemoryStateStore, *utils.SessionSigner) {
	states := auth.NewMemoryStateStore(auth.StateTTL)
	signer := utils.NewSessionSigner("secret")
	ac := NewAuthController(provider, states, identity, signer, "/app", true)

	e := newTestEcho()
	e.GET("/api/auth/google", ac.GoogleLogin)
	e.GET("/api/auth/google/callback", ac.GoogleCallback)
	e.GET("/api/auth/logout", ac.Logout)
	e.GET("/api/auth/me", ac.Me, requireUser())
	return e, states, signer
}

func TestGoogleLoginRedirectsWithState(t *testing.T) {
	e, states, _ := newAuthServer(stubProvider{}, &stubIdentity{})

	rec := doJSON(e, http.MethodGet, "/api/auth/google", "")
	require.Equal(t, http.StatusFound, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	assert.NotEmpty(t, state)
	assert.NoError(t, states.Consume(context.Background(), state))
}

func TestGoogleCallbackSetsSession(t *testing.T) {
	identity := &stubIdentity{}
	e, states, signer := newAuthServer(stubProvider{}, identity)
	state, err := states.Issue(context.Background())
	require.NoError(t, err)

	rec := doJSON(e, http.MethodGet, "/api/auth/google/callback?code=abc&state="+url.QueryEscape(state), "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/app", rec.Header().Get("Location"))
	assert.Equal(t, "refresh-abc", identity.refreshToken)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middlewares.SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	userID, err := signer.Verify(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, uint(11), userID)

	rec = doJSON(e, http.MethodGet, "/api/auth/google/callback?code=abc&state="+url.QueryEscape(state), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "state is single use")
}

func TestGoogleCallbackFailures(t *testing.T) {
	e, states, _ := newAuthServer(stubProvider{exchangeErr: errors.New("bad code")}, &stubIdentity{})
	state, err := states.Issue(context.Background())
	require.NoError(t, err)

	for _, target := range []string{
		"/api/auth/google/callback?code=abc&state=forged",
		"/api/auth/google/callback?error=access_denied",
		"/api/auth/google/callback?code=abc&state=" + url.QueryEscape(state),
	} {
		rec := doJSON(e, http.MethodGet, target, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
		assert.Empty(t, rec.Result().Cookies(), target)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	e, _, _ := newAuthServer(stubProvider{}, &stubIdentity{})

	rec := doJSON(e, http.MethodGet, "/api/auth/logout", "")
	require.Equal(t, http.StatusFound, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestMeReturnsUserWithoutToken(t *testing.T) {
	testUser.RefreshToken = "secret-token"
	e, _, _ := newAuthServer(stubProvider{}, &stubIdentity{})

	rec := doJSON(e, http.MethodGet, "/api/auth/me", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"me@example.com"`)
	assert.NotContains(t, rec.Body.String(), "secret-token")
}
