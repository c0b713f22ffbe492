package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	cacheMocks "github.com/aaravmahajanofficial/ecommerce-backend/internal/cache/mocks"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/ecommerce-backend/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type productFixture struct {
	products   *mocks.ProductRepository
	categories *mocks.CategoryRepository
	cache      *cacheMocks.Cache
	svc        service.ProductService
}

func newProductFixture() *productFixture {
	f := &productFixture{
		products:   new(mocks.ProductRepository),
		categories: new(mocks.CategoryRepository),
		cache:      new(cacheMocks.Cache),
	}
	f.svc = service.NewProductService(f.products, f.categories, f.cache)
	return f
}

func intPtr(v int) *int { return &v }

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	categoryID := uuid.New()

	t.Run("Stocked product is in stock", func(t *testing.T) {
		// Arrange
		f := newProductFixture()
		req := &models.CreateProductRequest{Name: "Lamp", AmountInStock: intPtr(3), Price: 20, CategoryID: categoryID}

		f.categories.On("GetCategoryByID", mock.Anything, categoryID).Return(&models.Category{ID: categoryID}, nil).Once()
		f.products.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p *models.Product) bool {
			return p.Name == "Lamp" && p.AmountInStock == 3 && p.InStock && p.CategoryID == categoryID
		})).Return(nil).Once()

		// Act
		product, err := f.svc.CreateProduct(ctx, req)

		// Assert
		require.NoError(t, err)
		assert.True(t, product.InStock)
		assert.NotEqual(t, uuid.Nil, product.ID)
		f.products.AssertExpectations(t)
	})

	t.Run("Zero stock is out of stock", func(t *testing.T) {
		// Arrange
		f := newProductFixture()
		req := &models.CreateProductRequest{Name: "Lamp", AmountInStock: intPtr(0), CategoryID: categoryID}

		f.categories.On("GetCategoryByID", mock.Anything, categoryID).Return(&models.Category{ID: categoryID}, nil).Once()
		f.products.On("CreateProduct", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()

		// Act
		product, err := f.svc.CreateProduct(ctx, req)

		// Assert
		require.NoError(t, err)
		assert.False(t, product.InStock)
	})

	t.Run("Unknown category", func(t *testing.T) {
		// Arrange
		f := newProductFixture()
		req := &models.CreateProductRequest{Name: "Lamp", AmountInStock: intPtr(1), CategoryID: categoryID}

		f.categories.On("GetCategoryByID", mock.Anything, categoryID).Return(nil, repository.ErrNotFound).Once()

		// Act
		product, err := f.svc.CreateProduct(ctx, req)

		// Assert
		assert.Nil(t, product)
		appErr := requireAppError(t, err, http.StatusBadRequest)
		assert.Contains(t, appErr.Message, "category_id")
		f.products.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	})

	t.Run("Category deleted concurrently", func(t *testing.T) {
		// Arrange
		f := newProductFixture()
		req := &models.CreateProductRequest{Name: "Lamp", AmountInStock: intPtr(1), CategoryID: categoryID}

		f.categories.On("GetCategoryByID", mock.Anything, categoryID).Return(&models.Category{ID: categoryID}, nil).Once()
		f.products.On("CreateProduct", mock.Anything, mock.AnythingOfType("*models.Product")).Return(repository.ErrInvalidReference).Once()

		// Act
		_, err := f.svc.CreateProduct(ctx, req)

		// Assert
		requireAppError(t, err, http.StatusBadRequest)
	})
}

func TestGetProductByID(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	key := "product:" + id.String()
	stored := &models.Product{ID: id, Name: "Desk", AmountInStock: 1, InStock: true}

	t.Run("Cache hit", func(t *testing.T) {
		// Arrange
		f := newProductFixture()

		f.cache.On("Get", mock.Anything, key, mock.AnythingOfType("*models.Product")).
			Run(func(args mock.Arguments) {
				*args.Get(2).(*models.Product) = *stored
			}).
			Return(true, nil).Once()

		// Act
		product, err := f.svc.GetProductByID(ctx, id)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, stored, product)
		f.products.AssertNotCalled(t, "GetProductByID", mock.Anything, mock.Anything)
	})

	t.Run("Cache miss populates cache", func(t *testing.T) {
		// Arrange
		f := newProductFixture()

		f.cache.On("Get", mock.Anything, key, mock.Anything).Return(false, nil).Once()
		f.products.On("GetProductByID", mock.Anything, id).Return(stored, nil).Once()
		f.cache.On("Set", mock.Anything, key, stored, mock.Anything).Return(nil).Once()

		// Act
		product, err := f.svc.GetProductByID(ctx, id)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, stored, product)
		f.cache.AssertExpectations(t)
		f.products.AssertExpectations(t)
	})

	t.Run("Cache failure falls back to store", func(t *testing.T) {
		// Arrange
		f := newProductFixture()

		f.cache.On("Get", mock.Anything, key, mock.Anything).Return(false, errors.New("redis down")).Once()
		f.products.On("GetProductByID", mock.Anything, id).Return(stored, nil).Once()
		f.cache.On("Set", mock.Anything, key, stored, mock.Anything).Return(errors.New("redis down")).Once()

		// Act
		product, err := f.svc.GetProductByID(ctx, id)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, stored, product)
	})

	t.Run("Not found", func(t *testing.T) {
		// Arrange
		f := newProductFixture()

		f.cache.On("Get", mock.Anything, key, mock.Anything).Return(false, nil).Once()
		f.products.On("GetProductByID", mock.Anything, id).Return(nil, repository.ErrNotFound).Once()

		// Act
		product, err := f.svc.GetProductByID(ctx, id)

		// Assert
		assert.Nil(t, product)
		requireAppError(t, err, http.StatusNotFound)
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	categoryID := uuid.New()

	t.Run("Stock change keeps stored in_stock flag", func(t *testing.T) {
		// Arrange
		f := newProductFixture()
		existing := &models.Product{ID: id, Name: "Desk", AmountInStock: 5, InStock: true, CategoryID: categoryID}

		f.products.On("GetProductByID", mock.Anything, id).Return(existing, nil).Once()
		f.products.On("UpdateProduct", mock.Anything, mock.MatchedBy(func(p *models.Product) bool {
			return p.AmountInStock == 0 && p.InStock
		})).Return(nil).Once()
		f.cache.On("Delete", mock.Anything, "product:"+id.String()).Return(nil).Once()

		// Act
		product, err := f.svc.UpdateProduct(ctx, id, &models.UpdateProductRequest{AmountInStock: intPtr(0)})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 0, product.AmountInStock)
		assert.True(t, product.InStock)
		f.products.AssertExpectations(t)
		f.cache.AssertExpectations(t)
	})

	t.Run("Move to unknown category", func(t *testing.T) {
		// Arrange
		f := newProductFixture()
		newCategory := uuid.New()
		existing := &models.Product{ID: id, Name: "Desk", CategoryID: categoryID}

		f.products.On("GetProductByID", mock.Anything, id).Return(existing, nil).Once()
		f.categories.On("GetCategoryByID", mock.Anything, newCategory).Return(nil, repository.ErrNotFound).Once()

		// Act
		_, err := f.svc.UpdateProduct(ctx, id, &models.UpdateProductRequest{CategoryID: &newCategory})

		// Assert
		requireAppError(t, err, http.StatusBadRequest)
		f.products.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything)
	})

	t.Run("Missing product", func(t *testing.T) {
		// Arrange
		f := newProductFixture()

		f.products.On("GetProductByID", mock.Anything, id).Return(nil, repository.ErrNotFound).Once()

		// Act
		_, err := f.svc.UpdateProduct(ctx, id, &models.UpdateProductRequest{})

		// Assert
		requireAppError(t, err, http.StatusNotFound)
	})
}

func TestListProducts(t *testing.T) {
	ctx := context.Background()
	categoryID := uuid.New()

	t.Run("Passes filter through", func(t *testing.T) {
		// Arrange
		f := newProductFixture()
		filter := models.ProductFilter{CategoryID: &categoryID}
		listed := []*models.Product{{ID: uuid.New(), AmountInStock: 2, CategoryID: categoryID}}

		f.products.On("ListProducts", mock.Anything, filter).Return(listed, nil).Once()

		// Act
		products, err := f.svc.ListProducts(ctx, filter)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, listed, products)
		f.products.AssertExpectations(t)
	})

	t.Run("Database error", func(t *testing.T) {
		// Arrange
		f := newProductFixture()

		f.products.On("ListProducts", mock.Anything, models.ProductFilter{}).Return(nil, errors.New("db down")).Once()

		// Act
		_, err := f.svc.ListProducts(ctx, models.ProductFilter{})

		// Assert
		requireAppError(t, err, http.StatusInternalServerError)
	})
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("Returns snapshot", func(t *testing.T) {
		// Arrange
		f := newProductFixture()
		existing := &models.Product{ID: id, Name: "Chair", AmountInStock: 2, InStock: true}

		f.products.On("GetProductByID", mock.Anything, id).Return(existing, nil).Once()
		f.products.On("DeleteProduct", mock.Anything, id).Return(nil).Once()
		f.cache.On("Delete", mock.Anything, "product:"+id.String()).Return(nil).Once()

		// Act
		snapshot, err := f.svc.DeleteProduct(ctx, id)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, existing, snapshot)
		f.products.AssertExpectations(t)
		f.cache.AssertExpectations(t)
	})

	t.Run("Missing product", func(t *testing.T) {
		// Arrange
		f := newProductFixture()

		f.products.On("GetProductByID", mock.Anything, id).Return(nil, repository.ErrNotFound).Once()

		// Act
		_, err := f.svc.DeleteProduct(ctx, id)

		// Assert
		requireAppError(t, err, http.StatusNotFound)
		f.products.AssertNotCalled(t, "DeleteProduct", mock.Anything, mock.Anything)
	})
}
