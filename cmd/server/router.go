package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jurisai/jurisai-api/internal/api"
	apiMiddleware "github.com/jurisai/jurisai-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	taskHandler := api.NewTaskHandler(app.submissionService, app.statusService)
	healthHandler := api.NewHealthHandler(app.config.LLM.GeminiAPIKey != "")

	r.Route("/api", func(r chi.Router) {
		r.Post("/legal-query", taskHandler.LegalQuery)
		r.Post("/analyze-document", taskHandler.AnalyzeDocument)
		r.Post("/upload-document", taskHandler.UploadDocument)
		r.Post("/client-intake", taskHandler.ClientIntake)
		r.Get("/task-status/{id}", taskHandler.Status)
		r.Get("/tasks", taskHandler.List)
	})

	r.Get("/health", healthHandler.Health)

	return r
}
