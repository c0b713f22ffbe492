package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/authz"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	service "github.com/aaravmahajanofficial/ecommerce-backend/internal/services"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RemovedProductHeader echoes the id removed by RemoveFromCart, since a 204
// carries no body.
const RemovedProductHeader = "X-Removed-Product-Id"

type CartHandler struct {
	cartService service.CartService
	guard       *authz.Guard
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartService, guard *authz.Guard) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		guard:       guard,
		validator:   validator.New(),
	}
}

// CreateCart godoc
//	@Summary		Create the caller's cart
//	@Description	user_id must be the caller. If the caller already has a cart it is returned unchanged with 200.
//	@Tags			Carts
//	@Accept			json
//	@Produce		json
//	@Param			cart	body		models.CreateCartRequest	true	"Owner and initial products"
//	@Success		200		{object}	models.Cart					"Existing cart"
//	@Success		201		{object}	models.Cart					"Cart created"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error or owner mismatch"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Failure		404		{object}	response.ErrorResponse		"User not found"
//	@Failure		500		{object}	response.ErrorResponse		"Internal server error"
//	@Security		BearerAuth
//	@Router			/carts [post]
func (h *CartHandler) CreateCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())
		principal := middleware.PrincipalFromContext(r.Context())

		var req models.CreateCartRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid create cart input")
			return
		}

		err := h.guard.Decide(authz.Request{
			Method:    r.Method,
			Principal: principal,
			Resource:  authz.ResourceCart,
			Owner:     &req.UserID,
		})
		if err != nil {
			logger.Warn("Cart owner mismatch", slog.String("declaredOwner", req.UserID.String()))
			response.Error(w, err)
			return
		}

		cart, created, err := h.cartService.CreateCart(r.Context(), req.UserID, req.Products)
		if err != nil {
			logger.Error("Failed to create cart", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		if !created {
			logger.Info("Returning existing cart", slog.String("cartId", cart.ID.String()))
			response.Success(w, http.StatusOK, cart)
			return
		}

		logger.Info("Cart created", slog.String("cartId", cart.ID.String()))
		response.Success(w, http.StatusCreated, cart)
	}
}

// GetCart godoc
//	@Summary	Get a cart by ID
//	@Tags		Carts
//	@Produce	json
//	@Param		id	path		string					true	"Cart ID (UUID)"	Format(uuid)
//	@Success	200	{object}	models.Cart				"Cart"
//	@Failure	400	{object}	response.ErrorResponse	"Invalid cart ID format"
//	@Failure	404	{object}	response.ErrorResponse	"Cart not found"
//	@Router		/carts/{id} [get]
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, ok := h.cartID(w, r, logger)
		if !ok {
			return
		}

		cart, err := h.cartService.GetCart(r.Context(), id)
		if err != nil {
			logger.Warn("Failed to get cart", slog.String("cartId", id.String()), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// ListCarts godoc
//	@Summary	List carts
//	@Tags		Carts
//	@Produce	json
//	@Success	200	{array}		models.Cart				"Carts"
//	@Failure	500	{object}	response.ErrorResponse	"Internal server error"
//	@Router		/carts [get]
func (h *CartHandler) ListCarts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		carts, err := h.cartService.ListCarts(r.Context())
		if err != nil {
			logger.Error("Failed to list carts", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, carts)
	}
}

// ClearAllCarts godoc
//	@Summary		Delete every cart
//	@Description	Irreversible reset of all carts.
//	@Tags			Carts
//	@Produce		json
//	@Success		200	{object}	models.MessageResponse	"All carts cleared"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		403	{object}	response.ErrorResponse	"Admin only"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/carts/clear_all [delete]
func (h *CartHandler) ClearAllCarts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		deleted, err := h.cartService.ClearAllCarts(r.Context())
		if err != nil {
			logger.Error("Failed to clear carts", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Carts cleared", slog.Int64("deleted", deleted))
		response.Success(w, http.StatusOK, models.MessageResponse{Message: "All carts cleared."})
	}
}

// AddToCart godoc
//	@Summary		Add products to a cart
//	@Description	Unknown product ids are skipped. Products already in the cart are left as they are.
//	@Tags			Carts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Cart ID (UUID)"	Format(uuid)
//	@Param			items	body		models.AddToCartRequest	true	"Product ids"
//	@Success		200		{object}	models.Cart				"Updated cart"
//	@Failure		400		{object}	response.ErrorResponse	"Invalid input"
//	@Failure		401		{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404		{object}	response.ErrorResponse	"Cart not found"
//	@Security		BearerAuth
//	@Router			/carts/{id}/add_to_cart [post]
func (h *CartHandler) AddToCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, ok := h.cartID(w, r, logger)
		if !ok {
			return
		}

		var req models.AddToCartRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid add to cart input")
			return
		}

		cart, err := h.cartService.AddProducts(r.Context(), id, req.Products)
		if err != nil {
			logger.Error("Failed to add products to cart", slog.String("cartId", id.String()), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Products added to cart", slog.String("cartId", id.String()), slog.Int("requested", len(req.Products)))
		response.Success(w, http.StatusOK, cart)
	}
}

// CartProducts godoc
//	@Summary	List the products in a cart
//	@Tags		Carts
//	@Produce	json
//	@Param		id	path		string					true	"Cart ID (UUID)"	Format(uuid)
//	@Success	200	{array}		models.Product			"Products"
//	@Failure	400	{object}	response.ErrorResponse	"Invalid cart ID format"
//	@Failure	404	{object}	response.ErrorResponse	"Cart not found"
//	@Router		/carts/{id}/products [get]
func (h *CartHandler) CartProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, ok := h.cartID(w, r, logger)
		if !ok {
			return
		}

		products, err := h.cartService.ListCartProducts(r.Context(), id)
		if err != nil {
			logger.Warn("Failed to list cart products", slog.String("cartId", id.String()), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, products)
	}
}

// RemoveFromCart godoc
//	@Summary		Remove a product from a cart
//	@Description	Responds 204 and echoes the removed id in the X-Removed-Product-Id header.
//	@Tags			Carts
//	@Accept			json
//	@Param			id		path	string							true	"Cart ID (UUID)"	Format(uuid)
//	@Param			item	body	models.RemoveFromCartRequest	true	"Product id"
//	@Success		204		"Product removed"
//	@Header			204		{string}	X-Removed-Product-Id	"Removed product id"
//	@Failure		400		{object}	response.ErrorResponse	"Invalid input"
//	@Failure		401		{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404		{object}	response.ErrorResponse	"Cart or product not found"
//	@Security		BearerAuth
//	@Router			/carts/{id}/remove_from_cart [delete]
func (h *CartHandler) RemoveFromCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, ok := h.cartID(w, r, logger)
		if !ok {
			return
		}

		var req models.RemoveFromCartRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid remove from cart input")
			return
		}

		if err := h.cartService.RemoveProduct(r.Context(), id, req.ProductID); err != nil {
			logger.Warn("Failed to remove product from cart",
				slog.String("cartId", id.String()),
				slog.String("productId", req.ProductID.String()),
				slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Product removed from cart", slog.String("cartId", id.String()), slog.String("productId", req.ProductID.String()))
		w.Header().Set(RemovedProductHeader, req.ProductID.String())
		response.NoContent(w)
	}
}

func (h *CartHandler) cartID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {

	id, err := utils.ParseUUIDParam(r, "id")
	if err != nil {
		logger.Warn("Invalid cart id", slog.String("error", err.Error()))
		response.Error(w, errors.BadRequestError("Invalid cart ID").WithError(err))
		return id, false
	}

	return id, true
}
