package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/cartservice/internal/handler/dto"
	"github.com/mtlprog/cartservice/internal/repository"
	"github.com/mtlprog/cartservice/internal/service"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	cartService *service.CartService
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New creates a new Handler instance with all dependencies.
func New(pool *pgxpool.Pool) *Handler {
	cartRepo := repository.NewCartRepository(pool)

	return &Handler{
		cartService: service.NewCartService(pool, cartRepo),
	}
}

// CartRoutes returns the cart router. Paths are relative to its mount point.
func (h *Handler) CartRoutes() http.Handler {
	r := chi.NewRouter()

	r.Get("/{userID}", h.handleGetCart)
	r.Delete("/{userID}", h.handleClearCart)
	r.Post("/{userID}/items", h.handleAddItem)
	r.Patch("/{userID}/items/{productID}", h.handleUpdateItemQuantity)
	r.Delete("/{userID}/items/{productID}", h.handleRemoveItem)

	return r
}

// Healthz returns 200 OK if db is reachable and 503 otherwise.
func Healthz(db Pinger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			slog.Error("database health check failed", "error", err)
			respondError(w, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE", "database unavailable")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps a service error to its HTTP representation.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}
