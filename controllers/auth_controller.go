package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/krushndayshmookh/krushn-calendar/auth"
	"github.com/krushndayshmookh/krushn-calendar/middlewares"
	"github.com/krushndayshmookh/krushn-calendar/models"
	"github.com/krushndayshmookh/krushn-calendar/services"
	"github.com/krushndayshmookh/krushn-calendar/utils"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, token *oauth2.Token) (services.Profile, error)
}

type LoginCompleter interface {
	CompleteLogin(ctx context.Context, profile services.Profile, refreshToken string) (*models.User, error)
}

type AuthController struct {
	provider     OAuthProvider
	states       auth.StateStore
	identity     LoginCompleter
	signer       *utils.SessionSigner
	frontendURL  string
	secureCookie bool
}

func NewAuthController(provider OAuthProvider, states auth.StateStore, identity LoginCompleter, signer *utils.SessionSigner, frontendURL string, secureCookie bool) *AuthController {
	return &AuthController{
		provider:     provider,
		states:       states,
		identity:     identity,
		signer:       signer,
		frontendURL:  frontendURL,
		secureCookie: secureCookie,
	}
}

// GoogleLogin redirects to the consent screen.
func (ac *AuthController) GoogleLogin(c echo.Context) error {
	state, err := ac.states.Issue(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, ac.provider.AuthCodeURL(state))
}

// GoogleCallback finishes the login, sets the session cookie and sends the
// browser back to the frontend.
func (ac *AuthController) GoogleCallback(c echo.Context) error {
	ctx := c.Request().Context()

	if reason := c.QueryParam("error"); reason != "" {
		logrus.WithField("reason", reason).Warn("Google consent was not granted")
		return services.ErrUnauthorized
	}

	if err := ac.states.Consume(ctx, c.QueryParam("state")); err != nil {
		if errors.Is(err, auth.ErrInvalidState) {
			return services.ErrUnauthorized
		}
		return err
	}

	code := c.QueryParam("code")
	if code == "" {
		return services.ErrUnauthorized
	}

	token, err := ac.provider.Exchange(ctx, code)
	if err != nil {
		logrus.WithError(err).Warn("OAuth code exchange failed")
		return services.ErrUnauthorized
	}

	profile, err := ac.provider.FetchProfile(ctx, token)
	if err != nil {
		logrus.WithError(err).Warn("Fetching Google profile failed")
		return services.ErrUnauthorized
	}

	user, err := ac.identity.CompleteLogin(ctx, profile, token.RefreshToken)
	if err != nil {
		return err
	}

	session, err := ac.signer.Sign(user.ID)
	if err != nil {
		return err
	}
	c.SetCookie(ac.cookie(session, time.Now().Add(ac.signer.TTL()), int(ac.signer.TTL().Seconds())))

	logrus.WithField("user_id", user.ID).Info("User logged in")
	return c.Redirect(http.StatusFound, ac.frontendURL)
}

func (ac *AuthController) Me(c echo.Context) error {
	user, err := middlewares.CurrentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (ac *AuthController) Logout(c echo.Context) error {
	c.SetCookie(ac.cookie("", time.Unix(0, 0), -1))
	return c.Redirect(http.StatusFound, ac.frontendURL)
}

func (ac *AuthController) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middlewares.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   ac.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
