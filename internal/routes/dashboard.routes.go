package routes

import (
	"github.com/Huey-Lewy/Cloud-Vitals/internal/controllers"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/telemetry"

	"github.com/gin-gonic/gin"
)

// RegisterDashboardRoutes mounts the dashboard's JSON API, the live
// event stream, and self-telemetry.
func RegisterDashboardRoutes(r *gin.Engine, dashboard *controllers.DashboardController, ws *controllers.WebSocketController) {
	api := r.Group("/api")
	{
		api.GET("/targets", dashboard.GetTargets)
		api.GET("/agents", dashboard.GetAgents)
		api.GET("/agents/:name/history", dashboard.GetAgentHistory)
		api.GET("/alerts", dashboard.GetAlerts)
		api.GET("/events", dashboard.GetEvents)
	}

	r.GET("/healthz", controllers.Healthz)
	r.GET("/ws", ws.Handle)
	r.GET("/prometheus", telemetry.Handler())
}
