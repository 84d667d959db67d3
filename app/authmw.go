package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"equipment_lending_client/models"
	"equipment_lending_client/session"
	"equipment_lending_client/store"
)

const SessionCookie = "lend_session"

// Context keys set by AuthRequired.
const (
	ctxSessionID = "sessionID"
	ctxUser      = "user"
	ctxActions   = "actions"
)

// AuthRequired resolves the session cookie to its redis session and the
// in-memory store for it.
func (a *App) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(SessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := a.Sessions.Get(c.Request.Context(), ck.Value)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				a.Log.Warn("session lookup failed", zap.Error(err))
			}
			a.Registry.Drop(ck.Value)
			a.ClearSessionCookie(c.Writer)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session", "redirect": "/login"})
			return
		}

		user := as.User()
		c.Set(ctxSessionID, ck.Value)
		c.Set(ctxUser, user)
		c.Set(ctxActions, a.Registry.Get(ck.Value, user, as.Token))
		c.Set("userID", user.ID)
		c.Set("isAdmin", user.IsAdmin)
		c.Next()
	}
}

// AdminOnly must run after AuthRequired.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get("userID"); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if !c.GetBool("isAdmin") {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func ActionsOf(c *gin.Context) *store.Actions {
	v, _ := c.Get(ctxActions)
	acts, _ := v.(*store.Actions)
	return acts
}

func UserOf(c *gin.Context) models.AuthUser {
	v, _ := c.Get(ctxUser)
	u, _ := v.(models.AuthUser)
	return u
}

func SessionIDOf(c *gin.Context) string { return c.GetString(ctxSessionID) }

// ExpireSession ends the current session after the backend rejected its
// token and tells the browser to sign in again.
func (a *App) ExpireSession(c *gin.Context) {
	if id := SessionIDOf(c); id != "" {
		if err := a.Sessions.Delete(c.Request.Context(), id); err != nil {
			a.Log.Warn("deleting expired session failed", zap.Error(err))
		}
		a.Registry.Drop(id)
	}
	a.ClearSessionCookie(c.Writer)
	c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "session expired", "redirect": "/login"})
}

func (a *App) SetSessionCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.SecureCookies(),
		MaxAge:   int(maxAge / time.Second),
	})
}

func (a *App) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.SecureCookies(),
	})
}
