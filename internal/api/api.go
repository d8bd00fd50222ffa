// Package api exposes RNC resolution over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/rnc-cli/internal/company"
	"github.com/sells-group/rnc-cli/internal/resolver"
	"github.com/sells-group/rnc-cli/internal/rnc"
)

// Resolver is the resolution surface the handlers need.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (*rnc.Record, error)
	ResolveWithEntity(ctx context.Context, identifier string) (*resolver.Resolution, error)
}

// Options configures the router.
type Options struct {
	Resolver    Resolver
	CORSOrigins []string

	// Metrics serves /metrics when set.
	Metrics http.Handler

	// Index reports the local dataset in /health. Optional.
	Index IndexStatus

	// Breaker reports the DGII circuit breaker state in /health. Optional.
	Breaker func() string
}

// IndexStatus describes the published local index.
type IndexStatus interface {
	Len() int
	LoadedAt() time.Time
}

// Handler wires the /company routes to a Resolver.
type Handler struct {
	resolver Resolver
}

// NewHandler creates a Handler.
func NewHandler(r Resolver) *Handler {
	return &Handler{resolver: r}
}

// Register mounts the RNC endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/company/rnc/{rnc}", h.HandleResolve)
	r.Get("/company/rnc/{rnc}/entity", h.HandleResolveWithEntity)
}

// HandleResolve handles GET /company/rnc/{rnc}.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "rnc")

	rec, err := h.resolver.Resolve(r.Context(), id)
	if err != nil {
		logFailure(r, id, err)
		writeError(w, err)
		return
	}
	writeData(w, "RNC consultado exitosamente", rec)
}

// entityData flattens a resolution into the record fields plus the company
// cross-reference.
type entityData struct {
	*rnc.Record
	CompanyInDB bool             `json:"company_in_db"`
	CompanyData *company.Company `json:"company_data"`
}

// HandleResolveWithEntity handles GET /company/rnc/{rnc}/entity.
func (h *Handler) HandleResolveWithEntity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "rnc")

	res, err := h.resolver.ResolveWithEntity(r.Context(), id)
	if err != nil {
		logFailure(r, id, err)
		writeError(w, err)
		return
	}
	writeData(w, "RNC consultado exitosamente", entityData{
		Record:      res.Record,
		CompanyInDB: res.EntityLinked,
		CompanyData: res.Entity,
	})
}

func logFailure(r *http.Request, id string, err error) {
	kind := rnc.KindOf(err)
	log := zap.L().With(
		zap.String("request_id", RequestID(r.Context())),
		zap.String("rnc", id),
		zap.String("kind", kind.String()),
	)
	if kind == rnc.KindInternal {
		log.Error("rnc resolution failed", zap.Error(err))
		return
	}
	log.Info("rnc resolution failed", zap.Error(err))
}

// NewRouter builds the HTTP handler tree.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		body := map[string]any{"status": "ok"}
		if opts.Index != nil {
			body["index_records"] = opts.Index.Len()
			if at := opts.Index.LoadedAt(); !at.IsZero() {
				body["index_loaded_at"] = at.UTC().Format(time.RFC3339)
			}
		}
		if opts.Breaker != nil {
			body["dgii_breaker"] = opts.Breaker()
		}
		writeJSON(w, http.StatusOK, body)
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	NewHandler(opts.Resolver).Register(r)
	return r
}
