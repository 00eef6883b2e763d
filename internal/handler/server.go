// Package handler implements the HTTP handlers for the vacation catalog API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, vacation.go, etc.) but all share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/vacation-catalog/backend/internal/domain"
)

// VacationServicer defines the business operations the vacation handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type VacationServicer interface {
	List(ctx context.Context) ([]domain.Vacation, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Vacation, error)
	Create(ctx context.Context, in domain.VacationInput) (domain.Vacation, error)
	Update(ctx context.Context, id uuid.UUID, in domain.VacationInput) (domain.Vacation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FollowerServicer defines the follow/unfollow operations.
type FollowerServicer interface {
	Follow(ctx context.Context, vacationID uuid.UUID, userID string) error
	Unfollow(ctx context.Context, vacationID uuid.UUID, userID string) error
}

// ReportServicer defines the admin reporting operations.
type ReportServicer interface {
	Followers(ctx context.Context) ([]domain.ReportRow, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	vacations VacationServicer
	followers FollowerServicer
	reports   ReportServicer
	log       *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(vacations VacationServicer, followers FollowerServicer, reports ReportServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{vacations: vacations, followers: followers, reports: reports, log: log}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// RouterConfig carries the route-group middleware and static content wired
// around the handlers. Nil middleware means "no check".
type RouterConfig struct {
	RequireAdmin func(http.Handler) http.Handler
	RequireUser  func(http.Handler) http.Handler
	// FollowLimit throttles follow/unfollow writes.
	FollowLimit func(http.Handler) http.Handler
	// UploadDir is served read-only under /uploads/ when set.
	UploadDir string
	// OpenAPI is served at /openapi.yaml when set.
	OpenAPI []byte
}

// NewRouter registers every route on a fresh chi router.
// This is exactly how main.go wires it in production.
func NewRouter(s *Server, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	if cfg.OpenAPI != nil {
		r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(cfg.OpenAPI)
		})
	}
	if cfg.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", noDirListing(http.FileServer(http.Dir(cfg.UploadDir)))))
	}

	r.Route("/admin", func(r chi.Router) {
		use(r, cfg.RequireAdmin)
		r.Get("/vacations", s.ListVacations)
		r.Get("/singleVacation/{id}", s.GetVacation)
		r.Post("/newVacation", s.CreateVacation)
		r.Put("/updateVacation/{id}", s.UpdateVacation)
		r.Delete("/delete-vacation/{id}", s.DeleteVacation)
		r.Get("/reports", s.GetReports)
	})

	r.Route("/users", func(r chi.Router) {
		use(r, cfg.RequireUser)
		r.Get("/vacations", s.ListVacations)
		r.Group(func(r chi.Router) {
			use(r, cfg.FollowLimit)
			r.Post("/follow-vacation/{id}", s.FollowVacation)
			r.Post("/unfollow-vacation/{id}", s.UnfollowVacation)
		})
	})

	return r
}

func use(r chi.Router, mw func(http.Handler) http.Handler) {
	if mw != nil {
		r.Use(mw)
	}
}

// noDirListing hides directory indexes and in-progress ".upload-*" temp
// files so /uploads/ serves only finished images.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if p == "" || strings.HasSuffix(p, "/") || strings.HasPrefix(path.Base(p), ".") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
