package middleware

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scentdesk/usage-backend/internal/apperrors"
	"github.com/scentdesk/usage-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// PrincipalContextKey is the key used to store the principal in Gin context
const PrincipalContextKey = "principal"

// LoginPath is where anonymous users are sent by RequireSession
const LoginPath = "/login/"

// Authenticator resolves a session token to its principal
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Principal, error)
}

// SessionCookie describes the cookie carrying the session token
type SessionCookie struct {
	Name   string
	Secure bool
}

// Set writes the session token cookie
func (sc SessionCookie) Set(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, token, int(ttl.Seconds()), "/", "", sc.Secure, true)
}

// Clear expires the session token cookie
func (sc SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, "", -1, "/", "", sc.Secure, true)
}

// Token returns the session token sent by the browser, if any
func (sc SessionCookie) Token(c *gin.Context) string {
	token, err := c.Cookie(sc.Name)
	if err != nil {
		return ""
	}
	return token
}

// LoadSession resolves the session cookie on every request. Requests without
// a valid session continue anonymously; a stale cookie is cleared.
func LoadSession(auth Authenticator, cookie SessionCookie, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookie.Token(c)
		if token == "" {
			c.Next()
			return
		}

		principal, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !apperrors.IsAuthentication(err) {
				logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Session lookup failed")
			}
			cookie.Clear(c)
			c.Next()
			return
		}

		c.Set(PrincipalContextKey, principal)
		c.Next()
	}
}

// RequireSession redirects anonymous requests to the login page, carrying
// the requested path in the next parameter.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetPrincipal(c); ok {
			c.Next()
			return
		}

		c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// GetPrincipal retrieves the authenticated principal from Gin context
func GetPrincipal(c *gin.Context) (*models.Principal, bool) {
	value, exists := c.Get(PrincipalContextKey)
	if !exists {
		return nil, false
	}

	principal, ok := value.(*models.Principal)
	if !ok || principal == nil {
		return nil, false
	}

	return principal, true
}

// MustGetPrincipal retrieves the principal or panics (use only after RequireSession)
func MustGetPrincipal(c *gin.Context) *models.Principal {
	principal, ok := GetPrincipal(c)
	if !ok {
		panic("principal not found - ensure RequireSession is applied")
	}
	return principal
}
