package service

import (
	"context"
	goerrors "errors"
	"log/slog"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/cache"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils"
	"github.com/google/uuid"
)

const msgUnknownCategory = "Invalid pk - object does not exist."

type ProductService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error)
	// ListProducts returns products with stock on hand, optionally within a
	// single category.
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)
	// DeleteProduct returns the product as it was before deletion.
	DeleteProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type productService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	cache      cache.Cache
}

func NewProductService(repo repository.ProductRepository, categories repository.CategoryRepository, productCache cache.Cache) ProductService {
	return &productService{repo: repo, categories: categories, cache: productCache}
}

func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {

	name := utils.SanitizeText(req.Name)
	if name == "" {
		return nil, errors.AddValidationError("name", "This field may not be blank.")
	}

	if req.AmountInStock == nil {
		return nil, errors.AddValidationError("amount_in_stock", "This field is required.")
	}

	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	amount := *req.AmountInStock

	// in_stock is derived once here and never recomputed
	product := &models.Product{
		ID:            uuid.New(),
		Name:          name,
		AmountInStock: amount,
		Price:         req.Price,
		InStock:       amount > 0,
		CategoryID:    req.CategoryID,
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		if goerrors.Is(err, repository.ErrInvalidReference) {
			return nil, errors.AddValidationError("category_id", msgUnknownCategory).WithError(err)
		}
		return nil, errors.DatabaseError("Failed to create product").WithError(err)
	}

	return product, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {

	logger := middleware.LoggerFromContext(ctx)
	key := cache.Key(cache.ProductKeyPrefix, id.String())

	var cached models.Product
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("Product cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	if found {
		logger.Debug("Product cache hit", slog.String("productId", id.String()))
		return &cached, nil
	}

	product, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, product, 0); err != nil {
		logger.Warn("Product cache write failed", slog.String("key", key), slog.Any("error", err))
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {

	product, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := utils.SanitizeText(*req.Name)
		if name == "" {
			return nil, errors.AddValidationError("name", "This field may not be blank.")
		}
		product.Name = name
	}
	if req.AmountInStock != nil {
		product.AmountInStock = *req.AmountInStock
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *req.CategoryID
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		switch {
		case goerrors.Is(err, repository.ErrNotFound):
			return nil, errors.NotFoundError("Product not found").WithError(err)
		case goerrors.Is(err, repository.ErrInvalidReference):
			return nil, errors.AddValidationError("category_id", msgUnknownCategory).WithError(err)
		default:
			return nil, errors.DatabaseError("Failed to update product").WithError(err)
		}
	}

	s.evict(ctx, id)

	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {

	products, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch products").WithError(err)
	}

	return products, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {

	product, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		if goerrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to delete product").WithError(err)
	}

	s.evict(ctx, id)

	middleware.LoggerFromContext(ctx).Info("Product deleted", slog.String("productId", id.String()))

	return product, nil
}

func (s *productService) fetch(ctx context.Context, id uuid.UUID) (*models.Product, error) {

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if goerrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to fetch product").WithError(err)
	}

	return product, nil
}

func (s *productService) ensureCategory(ctx context.Context, id uuid.UUID) error {

	if _, err := s.categories.GetCategoryByID(ctx, id); err != nil {
		if goerrors.Is(err, repository.ErrNotFound) {
			return errors.AddValidationError("category_id", msgUnknownCategory).WithError(err)
		}
		return errors.DatabaseError("Failed to fetch category").WithError(err)
	}

	return nil
}

func (s *productService) evict(ctx context.Context, id uuid.UUID) {
	key := cache.Key(cache.ProductKeyPrefix, id.String())
	if err := s.cache.Delete(ctx, key); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Cache eviction failed", slog.String("key", key), slog.Any("error", err))
	}
}
