package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"equipment_lending_client/app"
	"equipment_lending_client/controllers"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	auth := controllers.NewAuthController(s)
	equipment := controllers.NewEquipmentController(s)
	requests := controllers.NewRequestController(s)
	notifications := controllers.NewNotificationController(s)
	reports := controllers.NewReportController(s)
	audit := controllers.NewAuditController(s)

	authMW := a.AuthRequired()
	adminMW := app.AdminOnly()
	readMW := a.SyncReadState()

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })

	api := r.Group("/api")

	// Sign in / out
	pub := api.Group("/auth")
	{
		pub.POST("/login", auth.Login)
		pub.POST("/admin/login", auth.AdminLogin)
		pub.POST("/logout", auth.Logout)
	}
	me := api.Group("/auth", authMW)
	{
		me.GET("/me", auth.Me)
		me.POST("/logout-all", auth.LogoutAll)
	}

	user := api.Group("", authMW)
	{
		user.GET("/equipment", equipment.List)
		user.GET("/equipment/:id", equipment.Get)

		user.GET("/requests", requests.List)
		user.GET("/requests/:id", requests.Get)
		user.POST("/requests", requests.Create)
		user.POST("/requests/:id/cancel", requests.Cancel)
		user.GET("/eligibility/:equipmentId", requests.Eligibility)

		user.GET("/alerts", notifications.Alerts)
		user.DELETE("/alerts/:id", notifications.DismissAlert)

		user.GET("/calendar.ics", reports.Calendar)
	}

	// Read state is synced before anything that derives notifications.
	withReads := api.Group("", authMW, readMW)
	{
		withReads.GET("/notifications", notifications.List)
		withReads.GET("/notifications/:id", notifications.View)
		withReads.POST("/notifications/read-all", notifications.ReadAll)
		withReads.GET("/dashboard", reports.Dashboard)
	}

	admin := api.Group("", authMW, adminMW)
	{
		admin.POST("/equipment", equipment.Create)
		admin.PUT("/equipment/:id", equipment.Update)
		admin.DELETE("/equipment/:id", equipment.Delete)

		admin.PUT("/requests/:id/status", requests.UpdateStatus)
		admin.DELETE("/requests/:id", requests.Delete)

		admin.GET("/statistics", reports.Statistics)
		admin.GET("/statistics/export", reports.ExportStatistics)
		admin.GET("/audit", audit.List)
	}
}
