package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"quizmaster-service/internal/app"
)

// Version is reported by the index and health endpoints.
const Version = "1.0.0"

type RouterConfig struct {
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter wires the REST API, the websocket channel and the shared middleware.
func NewRouter(service *app.QuizService, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	started := time.Now()

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	r.Use(requestLogger(logger), recoverer(logger), securityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusNotFound, "Endpoint "+r.URL.Path+" not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusMethodNotAllowed, "Method "+r.Method+" not allowed on "+r.URL.Path)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Quiz Management System API",
			"version": Version,
			"endpoints": map[string]string{
				"healthCheck":    "/api/v1/health",
				"quizManagement": "/api/v1/quizzes",
				"websocket":      "/ws?quizId={quizId}",
			},
		})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// one validator caches struct metadata for both transports
	validate := validator.New()
	quizzes := NewQuizHandler(service, validate, logger)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"success":   true,
				"message":   "Quiz API is running",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
				"version":   Version,
				"uptime":    time.Since(started).Seconds(),
			})
		})
		r.Route("/quizzes", quizzes.Mount)
	})

	r.Get("/ws", NewWSHandler(service, validate, logger).ServeWS)
	return r
}
