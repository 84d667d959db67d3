package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"equipment_lending_client/apiclient"
	"equipment_lending_client/app"
	"equipment_lending_client/db"
	"equipment_lending_client/models"
	"equipment_lending_client/rules"
	"equipment_lending_client/session"
	"equipment_lending_client/store"
)

type Srv struct {
	App      *app.App
	Sessions *session.AppSessionStore
	Reads    *session.ReadCache
	Registry *store.Registry
	Audit    db.Recorder
	Log      *zap.Logger
	Now      func() time.Time
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		App:      a,
		Sessions: a.Sessions,
		Reads:    a.Reads,
		Registry: a.Registry,
		Audit:    a.Audit,
		Log:      a.Log,
		Now:      func() time.Time { return time.Now().In(models.Location) },
	}
}

// --- helpers ---

// issueSession stores the login in redis and hands the browser its cookie.
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, sessionID string, res models.LoginResult) error {
	ttl, err := s.Sessions.Create(ctx, sessionID, res.User(), res.Token)
	if err != nil {
		return err
	}
	s.App.SetSessionCookie(w, sessionID, ttl)
	return nil
}

// fail writes err as a JSON error. A rejected backend token ends the session.
func (s *Srv) fail(c *gin.Context, err error) {
	var (
		verr  *models.ValidationError
		inel  *rules.IneligibleError
		apErr *apiclient.APIError
	)
	switch {
	case errors.Is(err, store.ErrSessionExpired):
		s.App.ExpireSession(c)
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, app.H{"error": "validation failed", "fields": verr.Fields})
	case errors.As(err, &inel):
		c.JSON(http.StatusUnprocessableEntity, app.H{
			"error":       inel.Message(),
			"reason":      inel.Reason,
			"outstanding": inel.Outstanding,
		})
	case errors.Is(err, store.ErrNotSignedIn), errors.Is(err, apiclient.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, app.H{"error": err.Error()})
	case errors.Is(err, store.ErrForbidden), errors.Is(err, apiclient.ErrNotAdmin):
		c.JSON(http.StatusForbidden, app.H{"error": err.Error()})
	case errors.Is(err, apiclient.ErrNotFound), errors.Is(err, store.ErrNotificationAbsent):
		c.JSON(http.StatusNotFound, app.H{"error": "not found"})
	case errors.Is(err, store.ErrInvalidTransition):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	case errors.As(err, &apErr):
		status := http.StatusBadGateway
		if apErr.Status >= 400 && apErr.Status < 500 {
			status = apErr.Status
		}
		c.JSON(status, app.H{"error": apErr.Message, "details": apErr.Error()})
	default:
		s.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}

// requests refreshes the request list, keeping the snapshot when a newer
// fetch won.
func (s *Srv) requests(ctx context.Context, acts *store.Actions) ([]models.BorrowRequest, error) {
	items, err := acts.FetchRequests(ctx)
	if errors.Is(err, store.ErrSuperseded) {
		return acts.Store.Snapshot().Requests.Items, nil
	}
	return items, err
}

// audit records an admin action. The audit log never fails the request.
func (s *Srv) audit(c *gin.Context, action, targetType, targetID, detail string) {
	_, err := s.Audit.LogAction(c.Request.Context(), models.ActionLog{
		ActorID:    app.UserOf(c).ID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     detail,
	})
	if err != nil {
		s.Log.Warn("audit log write failed", zap.String("action", action), zap.Error(err))
	}
}
