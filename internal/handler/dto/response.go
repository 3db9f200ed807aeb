package dto

import (
	"time"

	"github.com/mtlprog/cartservice/internal/domain"
)

// CartResponse represents a cart with computed totals.
// ID and timestamps are null for a cart that has never been written.
type CartResponse struct {
	ID            *string            `json:"id"`
	UserID        string             `json:"user_id"`
	Items         []CartItemResponse `json:"items"`
	TotalQuantity int                `json:"total_quantity"`
	Total         int64              `json:"total"`
	CreatedAt     *time.Time         `json:"created_at"`
	UpdatedAt     *time.Time         `json:"updated_at"`
}

// CartItemResponse represents one cart line.
type CartItemResponse struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice int64     `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	Subtotal  int64     `json:"subtotal"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToCartResponse converts domain.Cart to CartResponse.
func ToCartResponse(cart *domain.Cart) CartResponse {
	resp := CartResponse{
		UserID:        cart.UserID,
		Items:         make([]CartItemResponse, len(cart.Items)),
		TotalQuantity: cart.TotalQuantity(),
		Total:         cart.Total(),
	}

	if cart.ID != "" {
		id := cart.ID
		created, updated := cart.CreatedAt, cart.UpdatedAt
		resp.ID = &id
		resp.CreatedAt = &created
		resp.UpdatedAt = &updated
	}

	for i, item := range cart.Items {
		resp.Items[i] = CartItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		}
	}

	return resp
}
