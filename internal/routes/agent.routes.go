package routes

import (
	"github.com/Huey-Lewy/Cloud-Vitals/internal/controllers"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/telemetry"

	"github.com/gin-gonic/gin"
)

// RegisterAgentRoutes mounts the agent's HTTP surface: local samples,
// stress job control, the live sample stream, and self-telemetry.
func RegisterAgentRoutes(r *gin.Engine, metrics *controllers.MetricsController, stress *controllers.StressController, ws *controllers.WebSocketController) {
	r.GET("/metrics", metrics.GetMetrics)
	r.GET("/metrics/history", metrics.GetHistory)

	jobs := r.Group("/stress")
	{
		jobs.POST("", stress.StartStress)
		jobs.GET("", stress.GetStress)
		jobs.DELETE("/:class", stress.StopStress)
	}

	r.GET("/healthz", controllers.Healthz)
	r.GET("/ws", ws.Handle)
	r.GET("/prometheus", telemetry.Handler())
}
