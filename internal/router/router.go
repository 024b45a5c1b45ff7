package router

import (
	"github.com/gin-gonic/gin"

	"veridoc/internal/config"
	"veridoc/internal/handler"
	"veridoc/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	verifyH *handler.VerifyHandler,
	caseH *handler.CaseHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(&cfg.CORS))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Synchronous verification routes
	verify := v1.Group("/verify")
	verify.POST("/extract", verifyH.Extract)
	verify.POST("/extract-pair", verifyH.ExtractPair)
	verify.POST("/type", verifyH.CheckType)
	verify.POST("/authenticity", verifyH.CheckAuthenticity)

	// Asynchronous case routes
	cases := v1.Group("/cases")
	cases.POST("", caseH.Create)
	cases.GET("", caseH.List)
	cases.GET("/export", caseH.Export)
	cases.GET("/:id", caseH.GetByID)
	cases.GET("/:id/download-url", caseH.GetDownloadURL)

	return r
}
