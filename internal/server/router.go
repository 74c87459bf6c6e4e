package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/talk-to-your-terms/tosapi/internal/api"
	"github.com/talk-to-your-terms/tosapi/internal/api/handlers"
	"github.com/talk-to-your-terms/tosapi/internal/api/middleware"
)

type RouterConfig struct {
	TokenVerifier   middleware.TokenVerifier
	AnalysisHandler *handlers.AnalysisHandler
	FeedbackHandler *handlers.FeedbackHandler
	AuthHandler     *handlers.AuthHandler
	CORSOrigins     []string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>Talk to Your Terms API</title></head>
<body>
<h1>Talk to Your Terms API</h1>
<p>The backend is running. Endpoints live under /api.</p>
</body>
</html>
`

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.Attribution)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(indexHTML))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimitMax > 0 {
			limiter := middleware.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
			r.Use(limiter.Middleware)
		}

		r.Route("/analysis", func(r chi.Router) {
			r.Use(middleware.Identity(cfg.TokenVerifier))

			r.Post("/analyze", cfg.AnalysisHandler.Analyze)
			r.Post("/ask", cfg.AnalysisHandler.Ask)
			r.Get("/usage", cfg.AnalysisHandler.Usage)
			r.Post("/feedback", cfg.FeedbackHandler.Submit)
			r.Get("/feedback", cfg.FeedbackHandler.List)
			r.Get("/feedback/stats", cfg.FeedbackHandler.Stats)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Get("/verify", cfg.AuthHandler.Verify)
		})
	})

	return r
}
