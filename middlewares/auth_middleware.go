package middlewares

import (
	"context"
	"net/http"

	"github.com/krushndayshmookh/krushn-calendar/models"
	"github.com/krushndayshmookh/krushn-calendar/services"
	"github.com/krushndayshmookh/krushn-calendar/utils"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	SessionCookieName = "calendar_session"
	PassphraseHeader  = "X-App-Password"
	userContextKey    = "user"
)

// Authenticator resolves the user a request acts as. A missing or bad
// credential yields an error that renders as 401.
type Authenticator interface {
	Authenticate(c echo.Context) (*models.User, error)
}

// UserLoader re-reads a session's user on every request.
type UserLoader interface {
	LoadUser(ctx context.Context, id uint) (*models.User, error)
}

// SessionAuthenticator validates the signed session cookie.
type SessionAuthenticator struct {
	signer *utils.SessionSigner
	users  UserLoader
}

func NewSessionAuthenticator(signer *utils.SessionSigner, users UserLoader) *SessionAuthenticator {
	return &SessionAuthenticator{signer: signer, users: users}
}

func (a *SessionAuthenticator) Authenticate(c echo.Context) (*models.User, error) {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, services.ErrUnauthorized
	}

	userID, err := a.signer.Verify(cookie.Value)
	if err != nil {
		logrus.WithError(err).Debug("Rejected session cookie")
		return nil, services.ErrUnauthorized
	}
	return a.users.LoadUser(c.Request().Context(), userID)
}

var errInvalidPassphrase = echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized: Invalid App Password")

// PassphraseAuthenticator admits requests carrying the shared passphrase and
// runs them as the operator user.
type PassphraseAuthenticator struct {
	password string
	hash     string
	operator *models.User
}

// NewPassphraseAuthenticator checks against hash with bcrypt when set, else
// against password in constant time.
func NewPassphraseAuthenticator(password, hash string, operator *models.User) *PassphraseAuthenticator {
	return &PassphraseAuthenticator{password: password, hash: hash, operator: operator}
}

func (a *PassphraseAuthenticator) Authenticate(c echo.Context) (*models.User, error) {
	supplied := c.Request().Header.Get(PassphraseHeader)
	if supplied == "" {
		return nil, errInvalidPassphrase
	}

	var ok bool
	if a.hash != "" {
		ok = utils.ComparePassword(a.hash, supplied) == nil
	} else {
		ok = utils.ConstantTimeEqual(a.password, supplied)
	}
	if !ok {
		return nil, errInvalidPassphrase
	}
	return a.operator, nil
}

type AuthMiddleware struct {
	authenticator Authenticator
}

func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// RequireAuth stops unauthenticated requests with 401 before any handler runs.
func (am *AuthMiddleware) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := am.authenticator.Authenticate(c)
			if err != nil {
				return err
			}
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user set by RequireAuth.
func CurrentUser(c echo.Context) (*models.User, error) {
	user, ok := c.Get(userContextKey).(*models.User)
	if !ok || user == nil {
		return nil, services.ErrUnauthorized
	}
	return user, nil
}
