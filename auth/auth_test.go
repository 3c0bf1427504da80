package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

func TestMemoryStateIsSingleUse(t *testing.T) {
	store := NewMemoryStateStore(StateTTL)
	ctx := context.Background()

	state, err := store.Issue(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, state)

	assert.NoError(t, store.Consume(ctx, state))
	assert.ErrorIs(t, store.Consume(ctx, state), ErrInvalidState)
	assert.ErrorIs(t, store.Consume(ctx, "forged"), ErrInvalidState)
	assert.ErrorIs(t, store.Consume(ctx, ""), ErrInvalidState)
}

func TestMemoryStateExpires(t *testing.T) {
	store := NewMemoryStateStore(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	state, err := store.Issue(context.Background())
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, store.Consume(context.Background(), state), ErrInvalidState)
}

func TestRedisStateStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	store := NewRedisStateStore(client, StateTTL)
	ctx := context.Background()

	state, err := store.Issue(ctx)
	require.NoError(t, err)
	assert.NoError(t, store.Consume(ctx, state))
	assert.ErrorIs(t, store.Consume(ctx, state), ErrInvalidState)
}

func TestAuthCodeURLRequestsOfflineConsent(t *testing.T) {
	provider := NewProvider(NewOAuthConfig("client", "secret", "http://localhost/callback"))

	raw := provider.AuthCodeURL("abc")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "abc", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Contains(t, q.Get("scope"), "https://www.googleapis.com/auth/calendar")
	assert.Contains(t, q.Get("scope"), "openid")
}

func TestFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"sub-9","email":"me@example.com","name":"Me","picture":"https://img"}`)
	}))
	t.Cleanup(srv.Close)

	provider := NewProvider(NewOAuthConfig("client", "secret", ""), option.WithEndpoint(srv.URL+"/"))
	token := &oauth2.Token{AccessToken: "access", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}

	profile, err := provider.FetchProfile(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "sub-9", profile.Subject)
	assert.Equal(t, "me@example.com", profile.Email)
	assert.Equal(t, "Me", profile.Name)
}
