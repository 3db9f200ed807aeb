package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mtlprog/cartservice/internal/domain"
)

// ValidateUserID checks that a user id is non-empty and bounded.
func ValidateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidUserID)
	}
	if utf8.RuneCountInString(userID) > domain.MaxIDLength {
		return fmt.Errorf("%w: user id must be at most %d characters", domain.ErrInvalidUserID, domain.MaxIDLength)
	}
	return nil
}

// ValidateProductID checks that a product id is non-empty and bounded.
func ValidateProductID(productID string) error {
	if strings.TrimSpace(productID) == "" {
		return fmt.Errorf("%w: product id is required", domain.ErrInvalidProductID)
	}
	if utf8.RuneCountInString(productID) > domain.MaxIDLength {
		return fmt.Errorf("%w: product id must be at most %d characters", domain.ErrInvalidProductID, domain.MaxIDLength)
	}
	return nil
}

// ValidateNewItem checks a line about to be added to a cart.
func ValidateNewItem(p AddItemParams) error {
	if err := ValidateUserID(p.UserID); err != nil {
		return err
	}
	if err := ValidateProductID(p.ProductID); err != nil {
		return err
	}
	if utf8.RuneCountInString(p.Name) > domain.MaxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", domain.ErrInvalidName, domain.MaxNameLength)
	}
	if p.UnitPrice < 0 || p.UnitPrice > domain.MaxUnitPrice {
		return fmt.Errorf("%w: unit price must be between 0 and %d, got %d", domain.ErrInvalidPrice, int64(domain.MaxUnitPrice), p.UnitPrice)
	}
	if p.Quantity < 1 || p.Quantity > domain.MaxItemQuantity {
		return fmt.Errorf("%w: quantity must be between 1 and %d, got %d", domain.ErrInvalidQuantity, domain.MaxItemQuantity, p.Quantity)
	}
	return nil
}

// ValidateQuantityUpdate checks a requested quantity. Zero is allowed and removes the line.
func ValidateQuantityUpdate(quantity int) error {
	if quantity < 0 || quantity > domain.MaxItemQuantity {
		return fmt.Errorf("%w: quantity must be between 0 and %d, got %d", domain.ErrInvalidQuantity, domain.MaxItemQuantity, quantity)
	}
	return nil
}

// MergeQuantity adds delta to an existing quantity, enforcing the per-line cap.
func MergeQuantity(existing, delta int) (int, error) {
	total := existing + delta
	if total > domain.MaxItemQuantity {
		return 0, fmt.Errorf("%w: %d + %d exceeds %d", domain.ErrQuantityLimitExceeded, existing, delta, domain.MaxItemQuantity)
	}
	return total, nil
}

// CheckCartCapacity rejects a new product line once the cart holds MaxCartLines lines.
func CheckCartCapacity(cart *domain.Cart, productID string) error {
	if _, ok := cart.FindItem(productID); ok {
		return nil
	}
	if len(cart.Items) >= domain.MaxCartLines {
		return fmt.Errorf("%w: at most %d products per cart", domain.ErrCartFull, domain.MaxCartLines)
	}
	return nil
}
