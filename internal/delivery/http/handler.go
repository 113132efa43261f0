package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/medaimane/AthleticEdge/internal/entity"
	"github.com/medaimane/AthleticEdge/internal/metrics"
	"github.com/medaimane/AthleticEdge/internal/service"
)

// Handler handles HTTP requests for the application.
type Handler struct {
	catalog *service.CatalogService
	carts   *service.CartService
	orders  *service.OrderService
}

func NewHandler(catalog *service.CatalogService, carts *service.CartService, orders *service.OrderService) *Handler {
	return &Handler{
		catalog: catalog,
		carts:   carts,
		orders:  orders,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.handleGetProducts)
	mux.HandleFunc("GET /api/products/{id}", h.handleGetProduct)
	mux.HandleFunc("GET /api/products/category/{category}", h.handleGetProductsByCategory)
	mux.HandleFunc("GET /api/products/brand/{brand}", h.handleGetProductsByBrand)
	mux.HandleFunc("GET /api/featured-products", h.handleGetFeatured)
	mux.HandleFunc("GET /api/bestsellers", h.handleGetBestSellers)
	mux.HandleFunc("GET /api/search", h.handleSearch)

	mux.HandleFunc("GET /api/cart/{owner}", h.handleGetCart)
	mux.HandleFunc("POST /api/cart/{owner}/items", h.handleAddCartItem)
	mux.HandleFunc("PUT /api/cart/{owner}/items", h.handleSetCartItemQuantity)
	mux.HandleFunc("DELETE /api/cart/{owner}/items", h.handleRemoveCartItem)
	mux.HandleFunc("DELETE /api/cart/{owner}", h.handleClearCart)

	mux.HandleFunc("POST /api/orders", h.handleCreateOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.handleGetOrder)
	mux.HandleFunc("GET /api/orders/user/{userId}", h.handleGetUserOrders)
	mux.HandleFunc("PUT /api/orders/{id}/status", h.handleUpdateOrderStatus)
	// "user/{userId}" and "{id}/events" overlap, so the two-segment form
	// dispatches on the trailing segment.
	mux.HandleFunc("GET /api/orders/{id}/{view}", h.handleGetOrderView)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "err", err)
	}
}

// writeError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *entity.ValidationError
		nf *entity.NotFoundError
		tl *http.MaxBytesError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: ve.Message, Errors: ve.Fields})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: nf.Error()})
	case errors.As(err, &tl):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Message: fmt.Sprintf("request body exceeds %d bytes", tl.Limit)})
	case errors.Is(err, entity.ErrConcurrentUpdate):
		writeJSON(w, http.StatusConflict, errorResponse{Message: "resource was modified concurrently, retry"})
	default:
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return tooLarge
		}
		return &entity.ValidationError{
			Message: "invalid request body",
			Fields:  map[string]string{"body": err.Error()},
		}
	}
	return nil
}

// EnableCORS is a middleware to allow the storefront to connect.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Instrument counts requests by method and status and observes latency.
func Instrument(m *metrics.Registry, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.HTTPRequests.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		m.HTTPLatencySec.Observe(time.Since(start).Seconds())
	})
}
