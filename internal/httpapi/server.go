// Package httpapi serves the bill REST API under /api/v1/bills.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kyawswar87/share-mal/internal/middleware"
	"github.com/kyawswar87/share-mal/pkg/api"
)

// BasePath is the prefix of every bill route.
const BasePath = "/api/v1/bills"

// Bills is the bill service the handlers delegate to.
type Bills interface {
	ListBills(ctx context.Context) ([]api.BillDto, error)
	GetBill(ctx context.Context, id int64) (api.BillDto, error)
	ListBillsByStatus(ctx context.Context, status api.BillStatus) ([]api.BillDto, error)
	SearchBills(ctx context.Context, title string) ([]api.BillDto, error)
	CreateBill(ctx context.Context, req api.BillCreateRequest) (api.BillDto, error)
	UpdateBill(ctx context.Context, id int64, req api.BillUpdateRequest) (api.BillDto, error)
	DeleteBill(ctx context.Context, id int64) error
	TogglePayment(ctx context.Context, billID, personID int64) (api.BillDto, error)
	RefreshStatus(ctx context.Context, billID int64) (api.BillDto, error)
}

// Server is the share-mal HTTP API server.
type Server struct {
	bills          Bills
	metricsEnabled bool
	now            func() time.Time
}

// NewServer creates a new API server.
func NewServer(bills Bills) *Server {
	return &Server{bills: bills, now: time.Now}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, api.CodeNotFound, "No route for "+r.Method+" "+r.URL.Path, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, api.CodeIllegalArgument, "Method "+r.Method+" not allowed", nil)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route(BasePath, func(r chi.Router) {
		r.Get("/", s.listBills)
		r.Post("/", s.createBill)
		r.Get("/status/{status}", s.listBillsByStatus)
		r.Get("/search", s.searchBills)
		r.Get("/{id}", s.getBill)
		r.Put("/{id}", s.updateBill)
		r.Delete("/{id}", s.deleteBill)
		r.Patch("/{id}/pay", s.togglePayment)
		r.Put("/{id}/status", s.refreshStatus)
	})

	return r
}
