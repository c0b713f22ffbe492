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

type CategoryService interface {
	CreateCategory(ctx context.Context, req *models.CategoryRequest) (*models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *models.CategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo  repository.CategoryRepository
	cache cache.Cache
}

func NewCategoryService(repo repository.CategoryRepository, categoryCache cache.Cache) CategoryService {
	return &categoryService{repo: repo, cache: categoryCache}
}

func (s *categoryService) CreateCategory(ctx context.Context, req *models.CategoryRequest) (*models.Category, error) {

	name := utils.SanitizeText(req.Name)
	if name == "" {
		return nil, errors.AddValidationError("name", "This field may not be blank.")
	}

	category := &models.Category{ID: uuid.New(), Name: name}

	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, errors.DatabaseError("Failed to create category").WithError(err)
	}

	return category, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {

	logger := middleware.LoggerFromContext(ctx)
	key := cache.Key(cache.CategoryKeyPrefix, id.String())

	var cached models.Category
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("Category cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	if found {
		return &cached, nil
	}

	category, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		if goerrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundError("Category not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to fetch category").WithError(err)
	}

	if err := s.cache.Set(ctx, key, category, 0); err != nil {
		logger.Warn("Category cache write failed", slog.String("key", key), slog.Any("error", err))
	}

	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context) ([]*models.Category, error) {

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch categories").WithError(err)
	}

	return categories, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req *models.CategoryRequest) (*models.Category, error) {

	name := utils.SanitizeText(req.Name)
	if name == "" {
		return nil, errors.AddValidationError("name", "This field may not be blank.")
	}

	category := &models.Category{ID: id, Name: name}

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		if goerrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundError("Category not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to update category").WithError(err)
	}

	s.evict(ctx, cache.Key(cache.CategoryKeyPrefix, id.String()))

	return category, nil
}

// DeleteCategory removes the category together with its products.
func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		if goerrors.Is(err, repository.ErrNotFound) {
			return errors.NotFoundError("Category not found").WithError(err)
		}
		return errors.DatabaseError("Failed to delete category").WithError(err)
	}

	s.evict(ctx, cache.Key(cache.CategoryKeyPrefix, id.String()))

	// the cascade may have removed any cached product
	if err := s.cache.DeleteByPrefix(ctx, cache.ProductKeyPrefix); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Product cache purge failed", slog.Any("error", err))
	}

	return nil
}

func (s *categoryService) evict(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Cache eviction failed", slog.String("key", key), slog.Any("error", err))
	}
}
