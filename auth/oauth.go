package auth

import (
	"context"
	"fmt"

	"github.com/krushndayshmookh/krushn-calendar/services"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Scopes requested at consent: identity plus full calendar access.
var Scopes = []string{"openid", "email", "profile", calendar.CalendarScope}

func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}
}

// Provider runs the authorization-code flow against Google.
type Provider struct {
	config *oauth2.Config
	opts   []option.ClientOption
}

// NewProvider wraps config. opts are passed to the userinfo client.
func NewProvider(config *oauth2.Config, opts ...option.ClientOption) *Provider {
	return &Provider{config: config, opts: opts}
}

func (p *Provider) Config() *oauth2.Config {
	return p.config
}

// AuthCodeURL asks for offline access and forces the consent screen so a
// refresh token is issued on every login.
func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (p *Provider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

// FetchProfile reads the signed-in user's identity with the fresh token.
func (p *Provider) FetchProfile(ctx context.Context, token *oauth2.Token) (services.Profile, error) {
	opts := append([]option.ClientOption{option.WithTokenSource(p.config.TokenSource(ctx, token))}, p.opts...)
	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return services.Profile{}, fmt.Errorf("failed to create OAuth2 service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return services.Profile{}, fmt.Errorf("failed to fetch user info: %w", err)
	}

	logrus.WithField("email", info.Email).Debug("Fetched Google profile")
	return services.Profile{
		Subject: info.Id,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
