package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/odontocare/clinica-server/internal/config"
	"github.com/odontocare/clinica-server/internal/handlers"
	"github.com/odontocare/clinica-server/internal/middleware"
	"github.com/odontocare/clinica-server/internal/scheduling"
	"github.com/odontocare/clinica-server/internal/store"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, st store.Store, service *scheduling.Service, cfg *config.Config) {
	citaHandler := handlers.NewCitaHandler(service)

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg, st))
	{
		citaRoutes := private.Group("/citas")
		{
			// Role checks live in the scheduling service so every denial
			// maps to the same forbidden outcome
			citaRoutes.POST("", citaHandler.AgendarCita)
			citaRoutes.GET("", citaHandler.ListarCitas)
			citaRoutes.PUT("/:id", citaHandler.CancelarCita)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
