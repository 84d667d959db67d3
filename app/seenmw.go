package app

import (
	"errors"

	"github.com/gin-gonic/gin"

	"equipment_lending_client/store"
)

// SyncReadState loads the student's read notification ids before the
// handler runs. The read cache throttles how often the backend is asked.
// Other failures are left to the store's alert.
func (a *App) SyncReadState() gin.HandlerFunc {
	return func(c *gin.Context) {
		acts := ActionsOf(c)
		if acts == nil || UserOf(c).IsAdmin {
			c.Next()
			return
		}
		_, err := acts.FetchReadNotifications(c.Request.Context(), a.Reads)
		if errors.Is(err, store.ErrSessionExpired) {
			a.ExpireSession(c)
			return
		}
		c.Next()
	}
}
