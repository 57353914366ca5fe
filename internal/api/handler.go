package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"medstock/m/domain"
	"medstock/m/internal/logging"
	"medstock/m/internal/metrics"
	"medstock/m/internal/store"
)

// Inventory is the stock store the handlers drive.
type Inventory interface {
	AddStock(ctx context.Context, in domain.StockInput) error
	DeleteMedicine(ctx context.Context, id int64) error
	Dispense(ctx context.Context, id, quantity int64, patient string) (domain.DispenseResult, error)
	ListMedicines(ctx context.Context) ([]domain.Medicine, error)
	ListHistory(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
	ListStockIns(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
	GetReport(ctx context.Context) (domain.Report, error)
	ClearHistory(ctx context.Context) error
	Ping(ctx context.Context) error
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	inv            Inventory
	metrics        *metrics.Metrics
	allowedOrigins []string
}

// New constructs a Handler.
func New(inv Inventory, m *metrics.Metrics, allowedOrigins []string) *Handler {
	if m == nil {
		m = metrics.New()
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return &Handler{inv: inv, metrics: m, allowedOrigins: allowedOrigins}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(logging.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", logging.RequestIDHeader},
		ExposedHeaders: []string{logging.RequestIDHeader},
	}))
	r.Use(h.metrics.Middleware)

	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/medicines", func(r chi.Router) {
			r.Get("/", h.listMedicines)
			r.Post("/", h.addMedicine)
			r.Delete("/{id:[0-9]+}", h.deleteMedicine)
		})

		r.Post("/dispense", h.dispense)

		r.Get("/history", h.listHistory)
		r.Post("/history/clear", h.clearHistory)
		r.Get("/stock_in", h.listStockIns)
		r.Get("/report", h.report)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.inv.Ping(ctx); err != nil {
		logging.FromContext(ctx).WithError(err).Error("health check failed")
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Medicine handlers

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.inv.ListMedicines(r.Context())
	if err != nil {
		h.fail(w, r, err, http.StatusInternalServerError, "unable to list medicines")
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

func (h *Handler) addMedicine(w http.ResponseWriter, r *http.Request) {
	var req addMedicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in, err := req.toInput()
	if err != nil {
		h.fail(w, r, err, http.StatusBadRequest, "unable to add medicine")
		return
	}

	if err := h.inv.AddStock(r.Context(), in); err != nil {
		h.fail(w, r, err, http.StatusBadRequest, "unable to add medicine")
		return
	}
	h.metrics.Movement(domain.MovementAdd)

	respondJSON(w, http.StatusCreated, messageResponse{Message: "Medicine added successfully"})
}

func (h *Handler) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, "Medicine not found")
		return
	}

	if err := h.inv.DeleteMedicine(r.Context(), id); err != nil {
		h.fail(w, r, err, http.StatusBadRequest, "unable to delete medicine")
		return
	}
	h.metrics.Movement(domain.MovementDelete)

	respondJSON(w, http.StatusOK, messageResponse{Message: "Medicine deleted successfully"})
}

// Dispense handler

type dispenseResponse struct {
	Message string `json:"message"`
	domain.DispenseResult
}

func (h *Handler) dispense(w http.ResponseWriter, r *http.Request) {
	var req dispenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	cmd, err := req.toCommand()
	if err != nil {
		h.fail(w, r, err, http.StatusBadRequest, "invalid dispense request")
		return
	}

	result, err := h.inv.Dispense(r.Context(), cmd.MedicineID, cmd.Quantity, cmd.Patient)
	if err != nil {
		h.fail(w, r, err, http.StatusInternalServerError, "unable to dispense medicine")
		return
	}
	h.metrics.Movement(domain.MovementDispense)

	respondJSON(w, http.StatusOK, dispenseResponse{
		Message:        "Medicine dispensed successfully",
		DispenseResult: result,
	})
}

// History and reports

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.inv.ListHistory(r.Context(), store.DefaultHistoryLimit)
	if err != nil {
		h.fail(w, r, err, http.StatusInternalServerError, "unable to fetch history")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) listStockIns(w http.ResponseWriter, r *http.Request) {
	entries, err := h.inv.ListStockIns(r.Context(), store.DefaultHistoryLimit)
	if err != nil {
		h.fail(w, r, err, http.StatusInternalServerError, "unable to fetch stock-in history")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	report, err := h.inv.GetReport(r.Context())
	if err != nil {
		h.fail(w, r, err, http.StatusInternalServerError, "unable to build report")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *Handler) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.inv.ClearHistory(r.Context()); err != nil {
		h.fail(w, r, err, http.StatusBadRequest, "unable to clear history")
		return
	}
	logging.FromContext(r.Context()).Warn("history cleared")
	respondJSON(w, http.StatusOK, messageResponse{Message: "History cleared successfully"})
}

// Helpers

type messageResponse struct {
	Message string `json:"message"`
}

// fail maps store errors to responses. Anything outside the domain
// taxonomy is a storage failure, logged and reported with storageStatus.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, storageStatus int, storageMessage string) {
	var (
		invalid      *domain.ValidationError
		insufficient *domain.InsufficientStockError
	)
	switch {
	case errors.As(err, &invalid):
		respondError(w, http.StatusBadRequest, invalid.Message)
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "Medicine not found")
	case errors.As(err, &insufficient):
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Insufficient quantity. Available: %d", insufficient.Available))
	default:
		logging.FromContext(r.Context()).WithError(err).Error(storageMessage)
		respondError(w, storageStatus, storageMessage)
	}
}

func decodeJSON(r *http.Request, dest interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
