package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/cartservice/internal/domain"
)

var (
	cartColumns = []string{"id", "user_id", "created_at", "updated_at"}
	itemColumns = []string{"product_id", "name", "unit_price", "quantity", "created_at", "updated_at"}
)

// CartRepository handles database operations for carts and their items.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository creates a new CartRepository.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var cart domain.Cart
	err := row.Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, fmt.Errorf("scan cart: %w", err)
	}
	cart.Items = []domain.CartItem{}
	return &cart, nil
}

// GetByUserID retrieves a user's cart with its items.
func (r *CartRepository) GetByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	return r.getByUserID(ctx, r.pool, userID, false)
}

// GetByUserIDForUpdate retrieves a user's cart with FOR UPDATE lock (within transaction).
func (r *CartRepository) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Cart, error) {
	return r.getByUserID(ctx, tx, userID, true)
}

func (r *CartRepository) getByUserID(ctx context.Context, q querier, userID string, lock bool) (*domain.Cart, error) {
	builder := psql.
		Select(cartColumns...).
		From("carts").
		Where(sq.Eq{"user_id": userID})
	if lock {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByUserID query for user %s: %w", userID, err)
	}

	cart, err := scanCart(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, q, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items

	return cart, nil
}

// GetOrCreateForUpdate returns the user's cart locked for update, creating it when missing.
func (r *CartRepository) GetOrCreateForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Cart, error) {
	query, args, err := psql.
		Insert("carts").
		Columns("user_id").
		Values(userID).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build cart insert query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	return r.GetByUserIDForUpdate(ctx, tx, userID)
}

func (r *CartRepository) listItems(ctx context.Context, q querier, cartID string) ([]domain.CartItem, error) {
	query, args, err := psql.
		Select(itemColumns...).
		From("cart_items").
		Where(sq.Eq{"cart_id": cartID}).
		OrderBy("created_at ASC", "product_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list items query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ProductID,
			&item.Name,
			&item.UnitPrice,
			&item.Quantity,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return items, nil
}

// UpsertItem inserts a line or overwrites name, price and quantity of an existing one.
func (r *CartRepository) UpsertItem(ctx context.Context, tx pgx.Tx, cartID string, item *domain.CartItem) error {
	query, args, err := psql.
		Insert("cart_items").
		Columns("cart_id", "product_id", "name", "unit_price", "quantity").
		Values(cartID, item.ProductID, item.Name, item.UnitPrice, item.Quantity).
		Suffix(`ON CONFLICT (cart_id, product_id) DO UPDATE SET
			name = EXCLUDED.name,
			unit_price = EXCLUDED.unit_price,
			quantity = EXCLUDED.quantity,
			updated_at = now()
		RETURNING created_at, updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert item query: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&item.CreatedAt, &item.UpdatedAt); err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}

	return r.touch(ctx, tx, cartID)
}

// UpdateItemQuantity sets the quantity of an existing line.
// Returns ErrItemNotFound if the cart has no line for productID.
func (r *CartRepository) UpdateItemQuantity(ctx context.Context, tx pgx.Tx, cartID, productID string, quantity int) error {
	query, args, err := psql.
		Update("cart_items").
		Set("quantity", quantity).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"cart_id": cartID, "product_id": productID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update quantity query: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update item quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}

	return r.touch(ctx, tx, cartID)
}

// DeleteItem removes one line. Returns ErrItemNotFound if it does not exist.
func (r *CartRepository) DeleteItem(ctx context.Context, tx pgx.Tx, cartID, productID string) error {
	query, args, err := psql.
		Delete("cart_items").
		Where(sq.Eq{"cart_id": cartID, "product_id": productID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete item query: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}

	return r.touch(ctx, tx, cartID)
}

// DeleteItems removes every line of a cart and returns how many were removed.
func (r *CartRepository) DeleteItems(ctx context.Context, tx pgx.Tx, cartID string) (int64, error) {
	query, args, err := psql.
		Delete("cart_items").
		Where(sq.Eq{"cart_id": cartID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete items query: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete cart items: %w", err)
	}

	if err := r.touch(ctx, tx, cartID); err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *CartRepository) touch(ctx context.Context, tx pgx.Tx, cartID string) error {
	query, args, err := psql.
		Update("carts").
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": cartID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build touch cart query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}
