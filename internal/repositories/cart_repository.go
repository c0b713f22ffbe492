package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type CartRepository interface {
	// GetOrCreateCart returns the user's cart, creating it when missing. The
	// boolean reports whether this call created it.
	GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, bool, error)
	GetCartByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	ListCarts(ctx context.Context) ([]*models.Cart, error)
	// AddProducts links the given products to the cart. Ids with no matching
	// product and products already in the cart are skipped.
	AddProducts(ctx context.Context, cartID uuid.UUID, productIDs []uuid.UUID) error
	ListCartProducts(ctx context.Context, cartID uuid.UUID) ([]*models.Product, error)
	RemoveProduct(ctx context.Context, cartID, productID uuid.UUID) error
	DeleteAllCarts(ctx context.Context) (int64, error)
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

const cartSelect = `
	SELECT c.id, c.user_id, c.created_at,
		COALESCE(array_agg(cp.product_id::text ORDER BY cp.added_at) FILTER (WHERE cp.product_id IS NOT NULL), '{}')
	FROM carts c
	LEFT JOIN cart_products cp ON cp.cart_id = c.id`

func scanCart(row interface{ Scan(dest ...any) error }) (*models.Cart, error) {
	cart := &models.Cart{}
	var productIDs []string

	if err := row.Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, pq.Array(&productIDs)); err != nil {
		return nil, err
	}

	cart.Products = make([]uuid.UUID, 0, len(productIDs))

	for _, raw := range productIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q in cart %s: %w", raw, cart.ID, err)
		}
		cart.Products = append(cart.Products, id)
	}

	return cart, nil
}

func (r *cartRepository) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, bool, error) {
	dbCtx, cancel := withTimeout(ctx)
	defer cancel()

	// UNIQUE(user_id) makes the insert a no-op for a concurrent loser, which
	// then reads the winner's row.
	query := `
		INSERT INTO carts (id, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id, user_id, created_at
	`

	cart := &models.Cart{Products: []uuid.UUID{}}

	err := r.DB.QueryRowContext(dbCtx, query, uuid.New(), userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if err == nil {
		return cart, true, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, mapError(err)
	}

	existing, err := r.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	return existing, false, nil
}

func (r *cartRepository) GetCartByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	dbCtx, cancel := withTimeout(ctx)
	defer cancel()

	query := cartSelect + ` WHERE c.id = $1 GROUP BY c.id`

	cart, err := scanCart(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		return nil, mapError(err)
	}

	return cart, nil
}

func (r *cartRepository) GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	dbCtx, cancel := withTimeout(ctx)
	defer cancel()

	query := cartSelect + ` WHERE c.user_id = $1 GROUP BY c.id`

	cart, err := scanCart(r.DB.QueryRowContext(dbCtx, query, userID))
	if err != nil {
		return nil, mapError(err)
	}

	return cart, nil
}

func (r *cartRepository) ListCarts(ctx context.Context) ([]*models.Cart, error) {
	dbCtx, cancel := withTimeout(ctx)
	defer cancel()

	query := cartSelect + ` GROUP BY c.id ORDER BY c.created_at`

	rows, err := r.DB.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("querying carts: %w", err)
	}
	defer rows.Close()

	carts := []*models.Cart{}

	for rows.Next() {
		cart, err := scanCart(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning cart: %w", err)
		}
		carts = append(carts, cart)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating carts: %w", err)
	}

	return carts, nil
}

func (r *cartRepository) AddProducts(ctx context.Context, cartID uuid.UUID, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}

	dbCtx, cancel := withTimeout(ctx)
	defer cancel()

	ids := make([]string, len(productIDs))
	for i, id := range productIDs {
		ids[i] = id.String()
	}

	query := `
		INSERT INTO cart_products (cart_id, product_id, added_at)
		SELECT $1, p.id, NOW()
		FROM products p
		WHERE p.id = ANY($2::uuid[])
		ON CONFLICT (cart_id, product_id) DO NOTHING
	`

	if _, err := r.DB.ExecContext(dbCtx, query, cartID, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to add products to cart: %w", mapError(err))
	}

	return nil
}

func (r *cartRepository) ListCartProducts(ctx context.Context, cartID uuid.UUID) ([]*models.Product, error) {
	dbCtx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT p.id, p.name, p.amount_in_stock, p.price, p.in_stock, p.category_id, p.created_at, p.updated_at
		FROM products p
		JOIN cart_products cp ON cp.product_id = p.id
		WHERE cp.cart_id = $1
		ORDER BY cp.added_at
	`

	rows, err := r.DB.QueryContext(dbCtx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("querying cart products: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning cart product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cart products: %w", err)
	}

	return products, nil
}

// RemoveProduct unlinks a product; removing one that is not in the cart is a
// no-op.
func (r *cartRepository) RemoveProduct(ctx context.Context, cartID, productID uuid.UUID) error {
	dbCtx, cancel := withTimeout(ctx)
	defer cancel()

	query := `DELETE FROM cart_products WHERE cart_id = $1 AND product_id = $2`

	if _, err := r.DB.ExecContext(dbCtx, query, cartID, productID); err != nil {
		return fmt.Errorf("failed to remove product from cart: %w", err)
	}

	return nil
}

func (r *cartRepository) DeleteAllCarts(ctx context.Context) (int64, error) {
	dbCtx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM carts`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete carts: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted rows: %w", err)
	}

	return deleted, nil
}
