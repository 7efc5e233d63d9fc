package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lvji-app/lvji/internal/api/handlers"
	"github.com/lvji-app/lvji/internal/api/middleware"
)

type Deps struct {
	Plan      *handlers.PlanHandler
	Itinerary *handlers.ItineraryHandler
	Expense   *handlers.ExpenseHandler
	Voice     *handlers.VoiceHandler
	VoiceNote *handlers.VoiceNoteHandler
	Profile   *handlers.ProfileHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.POST("/plans", d.Plan.Create)
	auth.GET("/plans", d.Plan.List)
	auth.GET("/plans/:plan_id", d.Plan.Get)
	auth.PUT("/plans/:plan_id", d.Plan.Update)
	auth.DELETE("/plans/:plan_id", d.Plan.Delete)

	auth.POST("/itinerary/generate", d.Itinerary.Generate)

	auth.POST("/plans/:plan_id/expenses", d.Expense.Create)
	auth.GET("/plans/:plan_id/expenses", d.Expense.List)
	auth.GET("/plans/:plan_id/expenses/summary", d.Expense.Summary)
	auth.DELETE("/expenses/:expense_id", d.Expense.Delete)

	auth.POST("/plans/:plan_id/voice/transcribe", d.Voice.Transcribe)

	auth.GET("/plans/:plan_id/voice-notes", d.VoiceNote.List)
	auth.GET("/voice-notes/:note_id/url", d.VoiceNote.SignedURL)
	auth.DELETE("/voice-notes/:note_id", d.VoiceNote.Delete)

	auth.GET("/profile/me", d.Profile.Me)
	auth.PUT("/profile/update", d.Profile.Update)

	// Ops
	admin := auth.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/plans/:plan_id/transcriptions", d.Voice.AuditTrail)
}
