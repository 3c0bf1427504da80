package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/krushndayshmookh/krushn-calendar/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type recordedRequest struct {
	method string
	path   string
	query  map[string]string
	auth   string
	body   map[string]interface{}
}

func newFakeGoogle(t *testing.T) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []recordedRequest
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"access-123","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/calendars/", func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  map[string]string{},
			auth:   r.Header.Get("Authorization"),
		}
		for k := range r.URL.Query() {
			rec.query[k] = r.URL.Query().Get(k)
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		mu.Lock()
		requests = append(requests, rec)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/calendars/primary/events":
			io.WriteString(w, `{"items":[{"id":"s_1","recurringEventId":"s"},{"id":"solo"}]}`)
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/calendars/primary/events/missing":
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":{"code":404,"message":"Not Found"}}`)
		default:
			io.WriteString(w, `{"id":"evt-1","summary":"ok"}`)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestGateway(t *testing.T) (Gateway, *[]recordedRequest) {
	srv, requests := newFakeGoogle(t)
	factory := NewGoogleFactory(&oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{TokenURL: srv.URL + "/token"},
	}, "", option.WithEndpoint(srv.URL+"/"))

	gw, err := factory.ForUser(context.Background(), &models.User{ID: 1, RefreshToken: "refresh"})
	require.NoError(t, err)
	return gw, requests
}

func TestForUserRequiresRefreshToken(t *testing.T) {
	factory := NewGoogleFactory(&oauth2.Config{}, "primary")

	_, err := factory.ForUser(context.Background(), &models.User{ID: 1})
	assert.ErrorIs(t, err, ErrNoCredentials)

	_, err = factory.ForUser(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestListEventsQueryAndAuth(t *testing.T) {
	gw, requests := newTestGateway(t)

	events, err := gw.ListEvents(context.Background(), TimeWindow{TimeMin: "2024-01-01T00:00:00Z"})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "s", events[0].RecurringEventId)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "Bearer access-123", req.auth)
	assert.Equal(t, "true", req.query["singleEvents"])
	assert.Equal(t, "startTime", req.query["orderBy"])
	assert.Equal(t, "2500", req.query["maxResults"])
	assert.Equal(t, "2024-01-01T00:00:00Z", req.query["timeMin"])
	_, hasMax := req.query["timeMax"]
	assert.False(t, hasMax)
}

func TestMutationsHitEventPaths(t *testing.T) {
	gw, requests := newTestGateway(t)
	ctx := context.Background()

	_, err := gw.PatchEvent(ctx, "evt-1", &calendar.Event{Summary: "renamed"})
	require.NoError(t, err)
	require.NoError(t, gw.DeleteEvent(ctx, "evt-1"))

	require.Len(t, *requests, 2)
	assert.Equal(t, http.MethodPatch, (*requests)[0].method)
	assert.Equal(t, "/calendars/primary/events/evt-1", (*requests)[0].path)
	assert.Equal(t, "renamed", (*requests)[0].body["summary"])
	assert.Equal(t, http.MethodDelete, (*requests)[1].method)
}

func TestRemoteErrorsAreWrapped(t *testing.T) {
	gw, _ := newTestGateway(t)

	_, err := gw.GetEvent(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get event missing")
}
