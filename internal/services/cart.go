package service

import (
	"context"
	goerrors "errors"
	"log/slog"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/google/uuid"
)

type CartService interface {
	// GetOrCreateCart returns the user's only cart, creating it on first use.
	GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, bool, error)
	// CreateCart returns the user's existing cart unchanged, or creates one
	// seeded with productIDs. The boolean reports whether a cart was created.
	CreateCart(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (*models.Cart, bool, error)
	GetCart(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	ListCarts(ctx context.Context) ([]*models.Cart, error)
	AddProducts(ctx context.Context, cartID uuid.UUID, productIDs []uuid.UUID) (*models.Cart, error)
	ListCartProducts(ctx context.Context, cartID uuid.UUID) ([]*models.Product, error)
	RemoveProduct(ctx context.Context, cartID, productID uuid.UUID) error
	ClearAllCarts(ctx context.Context) (int64, error)
}

type cartService struct {
	repo     repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(repo repository.CartRepository, products repository.ProductRepository) CartService {
	return &cartService{repo: repo, products: products}
}

func (s *cartService) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, bool, error) {

	cart, created, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		if goerrors.Is(err, repository.ErrInvalidReference) {
			return nil, false, errors.NotFoundError("User not found").WithError(err)
		}
		return nil, false, errors.DatabaseError("Failed to create cart").WithError(err)
	}

	if created {
		middleware.LoggerFromContext(ctx).Info("Cart created", slog.String("cartId", cart.ID.String()), slog.String("userId", userID.String()))
	}

	return cart, created, nil
}

func (s *cartService) CreateCart(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (*models.Cart, bool, error) {

	cart, created, err := s.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	if !created || len(productIDs) == 0 {
		return cart, created, nil
	}

	cart, err = s.addAndReload(ctx, cart.ID, productIDs)
	if err != nil {
		return nil, false, err
	}

	return cart, true, nil
}

func (s *cartService) GetCart(ctx context.Context, id uuid.UUID) (*models.Cart, error) {

	cart, err := s.repo.GetCartByID(ctx, id)
	if err != nil {
		if goerrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundError("Cart not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to retrieve cart").WithError(err)
	}

	return cart, nil
}

func (s *cartService) ListCarts(ctx context.Context) ([]*models.Cart, error) {

	carts, err := s.repo.ListCarts(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to retrieve carts").WithError(err)
	}

	return carts, nil
}

func (s *cartService) AddProducts(ctx context.Context, cartID uuid.UUID, productIDs []uuid.UUID) (*models.Cart, error) {

	if _, err := s.GetCart(ctx, cartID); err != nil {
		return nil, err
	}

	return s.addAndReload(ctx, cartID, productIDs)
}

func (s *cartService) addAndReload(ctx context.Context, cartID uuid.UUID, productIDs []uuid.UUID) (*models.Cart, error) {

	if err := s.repo.AddProducts(ctx, cartID, productIDs); err != nil {
		return nil, errors.DatabaseError("Failed to update cart").WithError(err)
	}

	return s.GetCart(ctx, cartID)
}

func (s *cartService) ListCartProducts(ctx context.Context, cartID uuid.UUID) ([]*models.Product, error) {

	if _, err := s.GetCart(ctx, cartID); err != nil {
		return nil, err
	}

	products, err := s.repo.ListCartProducts(ctx, cartID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to retrieve cart products").WithError(err)
	}

	return products, nil
}

// RemoveProduct fails only when the cart or the product does not exist.
// Removing a product that is not in the cart succeeds.
func (s *cartService) RemoveProduct(ctx context.Context, cartID, productID uuid.UUID) error {

	if _, err := s.GetCart(ctx, cartID); err != nil {
		return err
	}

	if _, err := s.products.GetProductByID(ctx, productID); err != nil {
		if goerrors.Is(err, repository.ErrNotFound) {
			return errors.NotFoundError("Product not found.").WithError(err)
		}
		return errors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if err := s.repo.RemoveProduct(ctx, cartID, productID); err != nil {
		return errors.DatabaseError("Failed to update cart").WithError(err)
	}

	return nil
}

func (s *cartService) ClearAllCarts(ctx context.Context) (int64, error) {

	deleted, err := s.repo.DeleteAllCarts(ctx)
	if err != nil {
		return 0, errors.DatabaseError("Failed to clear carts").WithError(err)
	}

	middleware.LoggerFromContext(ctx).Warn("All carts cleared", slog.Int64("deleted", deleted))

	return deleted, nil
}
