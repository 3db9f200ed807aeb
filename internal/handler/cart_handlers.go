package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mtlprog/cartservice/internal/handler/dto"
	"github.com/mtlprog/cartservice/internal/middleware"
	"github.com/mtlprog/cartservice/internal/service"
)

// handleGetCart returns the user's cart, empty if it was never created.
func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.GetCart(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToCartResponse(cart))
}

// handleAddItem adds a product line, merging with an existing line for the same product.
func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddItemRequest
	if err := middleware.DecodeBody(r, &req); err != nil {
		slog.Debug("add item body rejected", "error", err)
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if req.UnitPrice == nil {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unit_price is required")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = int(*req.Quantity)
	}

	cart, err := h.cartService.AddItem(r.Context(), service.AddItemParams{
		UserID:    chi.URLParam(r, "userID"),
		ProductID: req.ProductID,
		Name:      req.Name,
		UnitPrice: int64(*req.UnitPrice),
		Quantity:  quantity,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToCartResponse(cart))
}

// handleUpdateItemQuantity sets a line's quantity; zero removes the line.
func (h *Handler) handleUpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateQuantityRequest
	if err := middleware.DecodeBody(r, &req); err != nil {
		slog.Debug("update quantity body rejected", "error", err)
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "quantity is required")
		return
	}

	cart, err := h.cartService.UpdateItemQuantity(r.Context(),
		chi.URLParam(r, "userID"),
		chi.URLParam(r, "productID"),
		int(*req.Quantity),
	)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToCartResponse(cart))
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	err := h.cartService.RemoveItem(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "productID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cartService.ClearCart(r.Context(), chi.URLParam(r, "userID")); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
