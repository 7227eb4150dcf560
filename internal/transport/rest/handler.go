package rest

import (
	"context"
	"net/http"
	"time"

	"dails-report/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type ReportGenerator interface {
	Generate(ctx context.Context, declarationID int64, format service.Format) (*service.Report, error)
}

type Exporter interface {
	StartExport(ctx context.Context, declarationID int64, format service.Format) (string, error)
	GetExport(ctx context.Context, exportID string) (*service.ExportView, error)
	GetExports(ctx context.Context, declarationID int64) ([]service.ExportView, error)
}

type Subscriber interface {
	HandleWebSocket(w http.ResponseWriter, r *http.Request, declarationID int64)
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	reports ReportGenerator
	exports Exporter
	ws      Subscriber
	checks  map[string]HealthCheck
	log     *zap.Logger
}

func NewHandler(reports ReportGenerator, exports Exporter, ws Subscriber, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		reports: reports,
		exports: exports,
		ws:      ws,
		checks:  make(map[string]HealthCheck),
		log:     log,
	}
}

// AddHealthCheck registers a dependency checked by GET /health.
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

func (h *Handler) InitRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(h.log),
		middleware.Recoverer,
	)

	r.Get("/health", h.health)
	r.Get("/ws", h.subscribe)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Route("/declarations/{id}", func(r chi.Router) {
			r.Get("/report", h.getReport)
			r.Post("/exports", h.startExport)
			r.Get("/exports", h.listExports)
		})
		r.Get("/exports/{export_id}", h.getExport)
	})

	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn("health check failed", zap.String("check", name), zap.Error(err))
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}

	if !healthy {
		Response(w, "unhealthy", status, 503, "error", http.StatusServiceUnavailable)
		return
	}
	Success(w, "ok", status)
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	if h.ws == nil {
		ErrorNotFound(w, "websocket not available")
		return
	}

	id, err := ParseDeclarationID(r.URL.Query().Get("declaration_id"))
	if err != nil {
		ErrorBadRequest(w, err.Error())
		return
	}

	h.log.Debug("websocket subscribe", zap.Int64("declaration_id", id))
	h.ws.HandleWebSocket(w, r, id)
}
