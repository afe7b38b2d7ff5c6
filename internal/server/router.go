package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/thesisflow/backend/internal/auth"
	"github.com/thesisflow/backend/internal/middleware"
	"github.com/thesisflow/backend/internal/thesis"
)

// New builds the HTTP router: CORS and logging middleware, public auth
// routes, and the protected thesis API.
func New(authHandler *auth.Handler, thesisHandler *thesis.Handler, sessions middleware.SessionResolver) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(preflightNoContent)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Client-Info", "Apikey"},
		MaxAge:         300,
	}))

	r.MethodNotAllowed(methodNotAllowed)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth routes (public)
	r.Route("/api/auth", func(r chi.Router) {
		r.MethodNotAllowed(methodNotAllowed)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.With(middleware.RequireAuth(sessions)).Get("/me", authHandler.Me)
	})

	// Thesis routes (protected)
	r.Route("/api", func(r chi.Router) {
		r.MethodNotAllowed(methodNotAllowed)
		r.Use(middleware.RequireAuth(sessions))

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", thesisHandler.CreateProject)
			r.Get("/", thesisHandler.ListProjects)
			r.Get("/{id}", thesisHandler.GetProject)
			r.Put("/{id}", thesisHandler.UpdateProject)
			r.Delete("/{id}", thesisHandler.DeleteProject)

			r.Get("/{id}/questions", thesisHandler.ListQuestions)
			r.Post("/{id}/questions", thesisHandler.CreateQuestion)
			r.Get("/{id}/answers", thesisHandler.ListAnswers)
			r.Post("/{id}/generate", thesisHandler.Generate)
		})

		r.Route("/questions", func(r chi.Router) {
			r.Put("/{id}", thesisHandler.UpdateQuestion)
			r.Delete("/{id}", thesisHandler.DeleteQuestion)
			r.Put("/{id}/answer", thesisHandler.UpsertAnswer)
		})

		// Body-addressed variant: projectId travels in the JSON body.
		r.Post("/generate-questions", thesisHandler.Generate)
	})

	return r
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	w.Write([]byte(`{"error":"Method not allowed"}`))
}

// preflightNoContent downgrades the 200 the CORS middleware writes for a
// preflight to the 204 no-body response browsers expect.
func preflightNoContent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w = &preflightWriter{ResponseWriter: w}
		}
		next.ServeHTTP(w, r)
	})
}

type preflightWriter struct {
	http.ResponseWriter
}

func (w *preflightWriter) WriteHeader(status int) {
	if status == http.StatusOK {
		status = http.StatusNoContent
	}
	w.ResponseWriter.WriteHeader(status)
}
