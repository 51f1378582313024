package http

import (
	"net/http"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/auth"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/config"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/feedback"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/goodmore"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/httputil"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/logging"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/retrospective"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/task"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/top"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handlers bundles every feature handler the router mounts.
type Handlers struct {
	Auth          *auth.Handler
	Task          *task.Handler
	Retrospective *retrospective.Handler
	Feedback      *feedback.Handler
	GoodMore      *goodmore.Handler
	Top           *top.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, sessionMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)               // Security headers on all responses
	r.Use(middleware.Recoverer)          // Recover from panics
	r.Use(middleware.RequestID)          // Add request ID
	r.Use(middleware.RealIP)             // Set RemoteAddr to real IP
	r.Use(logging.RequestLogger(logger)) // Structured logging with request context
	r.Use(middleware.Compress(5))        // Compress responses

	// Public routes
	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	// Production builds will not have this route at all
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	// Auth routes. The session-aware endpoints tolerate anonymous callers,
	// so they run behind WithSession alone.
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Post("/verify-email", h.Auth.VerifyEmail)
		r.Post("/resend-verification", h.Auth.ResendVerification)
		r.Post("/forgot-password", h.Auth.ForgotPassword)
		r.Post("/reset-password", h.Auth.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware.WithSession)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/check-session", h.Auth.CheckSession)
			r.Get("/me", h.Auth.CurrentUser)
			r.Get("/users", h.Auth.ListUsers)
		})
	})

	// Feature routes require a live session.
	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware.WithSession)
		r.Use(sessionMiddleware.RequireSession)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/stats", h.Task.Stats)
			r.Get("/tasks", h.Task.ListTasks)
			r.Post("/tasks", h.Task.CreateTask)
			r.Put("/task", h.Task.UpdateTask)
			r.Delete("/task", h.Task.DeleteTask)
			r.Get("/team-members", h.Task.TeamMembers)
		})

		r.Route("/retrospectives", func(r chi.Router) {
			r.Get("/", h.Retrospective.List)
			r.Post("/", h.Retrospective.Create)
			r.Get("/tasks", h.Retrospective.RecentTasks)
			r.Post("/tasks", h.Retrospective.CreateTask)
			r.Get("/detail", h.Retrospective.Detail)
			r.Get("/current-week", h.Retrospective.CurrentWeekRetro)
		})

		r.Route("/feedback", func(r chi.Router) {
			r.Get("/retrospectives", h.Feedback.TeamRetrospectives)
			r.Get("/feedbacks", h.Feedback.List)
			r.Post("/feedbacks", h.Feedback.Create)
			r.Put("/feedback", h.Feedback.Update)
			r.Delete("/feedback", h.Feedback.Delete)
			r.Post("/reply", h.Feedback.Reply)
			r.Post("/reaction", h.Feedback.Reaction)
			r.Put("/mark-read", h.Feedback.MarkRead)
		})

		r.Route("/good-more", func(r chi.Router) {
			r.Post("/send", h.GoodMore.Send)
			r.Get("/sent", h.GoodMore.SentHistory)
			r.Get("/received", h.GoodMore.ReceivedHistory)
			r.Get("/detail", h.GoodMore.Detail)
			r.Get("/notifications", h.GoodMore.Notifications)
			r.Post("/notifications/read", h.GoodMore.MarkNotificationRead)
			r.Post("/reaction", h.GoodMore.AddReaction)
			r.Delete("/reaction", h.GoodMore.RemoveReaction)
		})

		r.Route("/top", func(r chi.Router) {
			r.Get("/dashboard", h.Top.Dashboard)
			r.Post("/team-evaluation", h.Top.TeamEvaluation)
			r.Put("/outlook-check", h.Top.OutlookCheck)
			r.Put("/goal-evaluation", h.Top.GoalEvaluation)
		})
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
