// Package api assembles the HTTP surface: routes, per-route authorization and
// the middleware chain shared by every request.
package api

import (
	"net/http"

	_ "github.com/aaravmahajanofficial/ecommerce-backend/docs"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/handlers"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/authz"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/metrics"
	service "github.com/aaravmahajanofficial/ecommerce-backend/internal/services"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const apiPrefix = "/api/v1"

type Dependencies struct {
	Users      service.UserService
	Categories service.CategoryService
	Products   service.ProductService
	Carts      service.CartService
	Guard      *authz.Guard
	JWTKey     []byte
	// Health is mounted at /health when set.
	Health      http.Handler
	ServiceName string
}

// NewRouter returns the fully wrapped handler. Order, outermost first:
// tracing, request logging, metrics, then the mux.
func NewRouter(deps Dependencies) http.Handler {

	mux := http.NewServeMux()
	registerRoutes(mux, deps)

	var handler http.Handler = mux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, deps.ServiceName)

	return handler
}

func registerRoutes(mux *http.ServeMux, deps Dependencies) {

	auth := middleware.NewAuthMiddleware(deps.JWTKey, deps.Users)
	authorizer := middleware.NewAuthorizer(deps.Guard)

	userHandler := handlers.NewUserHandler(deps.Users)
	categoryHandler := handlers.NewCategoryHandler(deps.Categories)
	productHandler := handlers.NewProductHandler(deps.Products)
	cartHandler := handlers.NewCartHandler(deps.Carts, deps.Guard)

	// authenticated routes reject requests without a token before the guard runs
	authenticated := func(resource authz.Resource, h http.HandlerFunc) http.HandlerFunc {
		return auth.Authenticate(authorizer.Require(resource, h))
	}
	// guarded routes accept anonymous requests and leave the decision to the guard
	guarded := func(resource authz.Resource, h http.HandlerFunc) http.HandlerFunc {
		return auth.Identify(authorizer.Require(resource, h))
	}

	// users
	mux.HandleFunc("POST "+apiPrefix+"/users/register", userHandler.Register())
	mux.HandleFunc("POST "+apiPrefix+"/users/login", userHandler.Login())
	mux.HandleFunc("GET "+apiPrefix+"/users", authenticated(authz.ResourceUser, userHandler.ListUsers()))
	mux.HandleFunc("GET "+apiPrefix+"/users/{id}", authenticated(authz.ResourceUser, userHandler.GetUser()))
	mux.HandleFunc("PATCH "+apiPrefix+"/users/{id}/activate_status", authenticated(authz.ResourceUserStatus, userHandler.ActivateStatus()))

	// categories
	mux.HandleFunc("GET "+apiPrefix+"/categories", guarded(authz.ResourceCategory, categoryHandler.ListCategories()))
	mux.HandleFunc("POST "+apiPrefix+"/categories", guarded(authz.ResourceCategory, categoryHandler.CreateCategory()))
	mux.HandleFunc("GET "+apiPrefix+"/categories/{id}", guarded(authz.ResourceCategory, categoryHandler.GetCategory()))
	mux.HandleFunc("PUT "+apiPrefix+"/categories/{id}", guarded(authz.ResourceCategory, categoryHandler.UpdateCategory()))
	mux.HandleFunc("DELETE "+apiPrefix+"/categories/{id}", guarded(authz.ResourceCategory, categoryHandler.DeleteCategory()))

	// products
	mux.HandleFunc("GET "+apiPrefix+"/products", guarded(authz.ResourceProduct, productHandler.ListProducts()))
	mux.HandleFunc("POST "+apiPrefix+"/products", guarded(authz.ResourceProduct, productHandler.CreateProduct()))
	mux.HandleFunc("GET "+apiPrefix+"/products/{id}", guarded(authz.ResourceProduct, productHandler.GetProduct()))
	mux.HandleFunc("PUT "+apiPrefix+"/products/{id}", guarded(authz.ResourceProduct, productHandler.UpdateProduct()))
	mux.HandleFunc("DELETE "+apiPrefix+"/products/{id}", guarded(authz.ResourceProduct, productHandler.DeleteProduct()))

	// carts
	mux.HandleFunc("GET "+apiPrefix+"/carts", guarded(authz.ResourceCart, cartHandler.ListCarts()))
	mux.HandleFunc("POST "+apiPrefix+"/carts", guarded(authz.ResourceCart, cartHandler.CreateCart()))
	mux.HandleFunc("DELETE "+apiPrefix+"/carts/clear_all", guarded(authz.ResourceCartReset, cartHandler.ClearAllCarts()))
	mux.HandleFunc("GET "+apiPrefix+"/carts/{id}", guarded(authz.ResourceCart, cartHandler.GetCart()))
	mux.HandleFunc("POST "+apiPrefix+"/carts/{id}/add_to_cart", guarded(authz.ResourceCart, cartHandler.AddToCart()))
	mux.HandleFunc("GET "+apiPrefix+"/carts/{id}/products", guarded(authz.ResourceCart, cartHandler.CartProducts()))
	mux.HandleFunc("DELETE "+apiPrefix+"/carts/{id}/remove_from_cart", guarded(authz.ResourceCart, cartHandler.RemoveFromCart()))

	// operations
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	if deps.Health != nil {
		mux.Handle("GET /health", deps.Health)
	}
}
