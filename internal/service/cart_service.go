package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/cartservice/internal/domain"
	"github.com/mtlprog/cartservice/internal/repository"
)

// AddItemParams describes a line to add to a user's cart.
type AddItemParams struct {
	UserID    string
	ProductID string
	Name      string
	UnitPrice int64
	Quantity  int
}

// CartService coordinates cart mutations under a per-cart row lock.
type CartService struct {
	pool     *pgxpool.Pool
	cartRepo *repository.CartRepository
}

// NewCartService creates a new CartService.
func NewCartService(pool *pgxpool.Pool, cartRepo *repository.CartRepository) *CartService {
	return &CartService{
		pool:     pool,
		cartRepo: cartRepo,
	}
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (s *CartService) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetCart returns the user's cart, or an unsaved empty cart when none exists.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return domain.NewEmptyCart(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem adds a product to the cart, creating the cart on first use.
// Adding a product already in the cart increases its quantity and refreshes name and price.
func (s *CartService) AddItem(ctx context.Context, p AddItemParams) (*domain.Cart, error) {
	if err := ValidateNewItem(p); err != nil {
		return nil, err
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		cart, err := s.cartRepo.GetOrCreateForUpdate(ctx, tx, p.UserID)
		if err != nil {
			return err
		}

		if err := CheckCartCapacity(cart, p.ProductID); err != nil {
			return err
		}

		quantity := p.Quantity
		if existing, ok := cart.FindItem(p.ProductID); ok {
			quantity, err = MergeQuantity(existing.Quantity, p.Quantity)
			if err != nil {
				return err
			}
		}

		item := &domain.CartItem{
			ProductID: p.ProductID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
			Quantity:  quantity,
		}
		return s.cartRepo.UpsertItem(ctx, tx, cart.ID, item)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("cart item added",
		"user_id", p.UserID,
		"product_id", p.ProductID,
		"quantity", p.Quantity,
	)

	return s.cartRepo.GetByUserID(ctx, p.UserID)
}

// UpdateItemQuantity sets a line's quantity. A quantity of zero removes the line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	if err := ValidateProductID(productID); err != nil {
		return nil, err
	}
	if err := ValidateQuantityUpdate(quantity); err != nil {
		return nil, err
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		cart, err := s.cartRepo.GetByUserIDForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if quantity == 0 {
			return s.cartRepo.DeleteItem(ctx, tx, cart.ID, productID)
		}
		return s.cartRepo.UpdateItemQuantity(ctx, tx, cart.ID, productID, quantity)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("cart item quantity updated",
		"user_id", userID,
		"product_id", productID,
		"quantity", quantity,
	)

	return s.cartRepo.GetByUserID(ctx, userID)
}

// RemoveItem deletes a product line from the user's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) error {
	if err := ValidateUserID(userID); err != nil {
		return err
	}
	if err := ValidateProductID(productID); err != nil {
		return err
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		cart, err := s.cartRepo.GetByUserIDForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		return s.cartRepo.DeleteItem(ctx, tx, cart.ID, productID)
	})
	if err != nil {
		return err
	}

	slog.Info("cart item removed", "user_id", userID, "product_id", productID)
	return nil
}

// ClearCart removes every line from the user's cart. The cart itself is kept.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := ValidateUserID(userID); err != nil {
		return err
	}

	var removed int64
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		cart, err := s.cartRepo.GetByUserIDForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		removed, err = s.cartRepo.DeleteItems(ctx, tx, cart.ID)
		return err
	})
	if err != nil {
		return err
	}

	slog.Info("cart cleared", "user_id", userID, "removed_items", removed)
	return nil
}
