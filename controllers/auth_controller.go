package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"equipment_lending_client/apiclient"
	"equipment_lending_client/app"
	"equipment_lending_client/models"
	"equipment_lending_client/session"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) { ac.login(c, false) }

// POST /api/auth/admin/login
func (ac *AuthController) AdminLogin(c *gin.Context) { ac.login(c, true) }

func (ac *AuthController) login(c *gin.Context, admin bool) {
	var cred models.Credentials
	if err := c.ShouldBindJSON(&cred); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "username and password are required"})
		return
	}

	id := session.NewID()
	acts := ac.Registry.Open(id)
	res, err := acts.Login(c.Request.Context(), cred, admin)
	if err != nil {
		ac.Registry.Drop(id)
		switch {
		case errors.Is(err, apiclient.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, app.H{"error": "invalid username or password"})
		case errors.Is(err, apiclient.ErrNotAdmin):
			c.JSON(http.StatusForbidden, app.H{"error": "this account does not have administrator access"})
		default:
			ac.fail(c, err)
		}
		return
	}

	if err := ac.issueSession(c.Request.Context(), c.Writer, id, res); err != nil {
		ac.Registry.Drop(id)
		if errors.Is(err, session.ErrTokenExpired) {
			c.JSON(http.StatusBadGateway, app.H{"error": "backend issued an expired token"})
			return
		}
		ac.Log.Error("creating session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "could not create session"})
		return
	}

	// Replace whatever session the browser carried before.
	if ck, err := c.Request.Cookie(app.SessionCookie); err == nil && ck.Value != "" && ck.Value != id {
		_ = ac.Sessions.Delete(c.Request.Context(), ck.Value)
		ac.Registry.Drop(ck.Value)
	}

	ac.Log.Info("signed in", zap.String("user", res.Username), zap.String("role", string(res.Role)))
	c.JSON(http.StatusOK, app.H{"ok": true, "user": res.User()})
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.SessionCookie); err == nil && ck.Value != "" {
		_ = ac.Sessions.Delete(c.Request.Context(), ck.Value)
		ac.Registry.Drop(ck.Value)
	}
	ac.App.ClearSessionCookie(c.Writer)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /api/auth/logout-all ends every session of the signed-in user.
func (ac *AuthController) LogoutAll(c *gin.Context) {
	user := app.UserOf(c)
	ids, err := ac.Sessions.RevokeAllForUser(c.Request.Context(), user.ID)
	if err != nil {
		ac.Log.Error("revoking sessions failed", zap.String("user", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "could not sign out everywhere"})
		return
	}
	for _, id := range ids {
		ac.Registry.Drop(id)
	}
	ac.App.ClearSessionCookie(c.Writer)
	c.JSON(http.StatusOK, app.H{"ok": true, "revoked": len(ids)})
}

// GET /api/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	acts := app.ActionsOf(c)
	c.JSON(http.StatusOK, app.H{
		"user":   app.UserOf(c),
		"auth":   acts.Store.Snapshot().Auth,
		"alerts": acts.Store.Alerts.List(),
	})
}
