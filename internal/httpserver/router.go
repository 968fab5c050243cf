package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"xoned-commerce/internal/auth"
	"xoned-commerce/internal/domain"
	capsulesvc "xoned-commerce/internal/service/capsule"
	cartsvc "xoned-commerce/internal/service/cart"
	"xoned-commerce/internal/service/dashboard"
	ordersvc "xoned-commerce/internal/service/order"
	productsvc "xoned-commerce/internal/service/product"
)

type SessionService interface {
	Issue(ctx context.Context) (token, sessionID string, err error)
	Lookup(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
	TTLSeconds() int
}

type TokenVerifier interface {
	Verify(raw string) (*auth.Identity, error)
}

type ProductService interface {
	Search(ctx context.Context, q productsvc.Query) ([]domain.Product, error)
	Featured(ctx context.Context) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	GetActive(ctx context.Context, id string) (*domain.Product, error)
	AdminList(ctx context.Context, f productsvc.AdminFilter) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in productsvc.Input) (*domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.Input) (*domain.Product, error)
	SetFeatured(ctx context.Context, id string, featured bool) error
	Delete(ctx context.Context, id string) error
}

type CapsuleService interface {
	List(ctx context.Context) ([]domain.Capsule, error)
	Get(ctx context.Context, id string) (*domain.Capsule, error)
	Create(ctx context.Context, in capsulesvc.Input) (*domain.Capsule, error)
	Update(ctx context.Context, id string, in capsulesvc.Input) (*domain.Capsule, error)
	Delete(ctx context.Context, id string) error
	Duplicate(ctx context.Context, id string) (*domain.Capsule, error)
}

type CartService interface {
	Get(ctx context.Context, sessionID string) (*cartsvc.View, error)
	Add(ctx context.Context, sessionID string, in cartsvc.AddInput) (*cartsvc.View, error)
	Remove(ctx context.Context, sessionID string, key domain.LineKey) (*cartsvc.View, error)
	UpdateQuantity(ctx context.Context, sessionID string, key domain.LineKey, quantity int) (*cartsvc.View, error)
	Clear(ctx context.Context, sessionID string) error
}

type WishlistService interface {
	List(ctx context.Context, sessionID string) ([]domain.WishlistItem, error)
	Add(ctx context.Context, sessionID, productID string) ([]domain.WishlistItem, error)
	Remove(ctx context.Context, sessionID, productID string) ([]domain.WishlistItem, error)
	Toggle(ctx context.Context, sessionID, productID string) (bool, error)
}

type OrderService interface {
	Checkout(ctx context.Context, sessionID string, identity *auth.Identity, in ordersvc.CheckoutInput) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	GetForCustomer(ctx context.Context, identity *auth.Identity, id string) (*domain.Order, error)
	List(ctx context.Context, f ordersvc.ListFilter) ([]domain.Order, error)
	ListForCustomer(ctx context.Context, identity *auth.Identity) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, target domain.OrderStatus) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, target domain.PaymentStatus) (*domain.Order, error)
}

type StatsService interface {
	Stats(ctx context.Context) (*dashboard.Stats, error)
}

// Deps are the services the router dispatches to.
type Deps struct {
	Sessions  SessionService
	Verifier  TokenVerifier
	Products  ProductService
	Capsules  CapsuleService
	Cart      CartService
	Wishlist  WishlistService
	Orders    OrderService
	Dashboard StatsService
}

func (d Deps) validate() error {
	switch {
	case d.Sessions == nil:
		return errors.New("httpserver: session service required")
	case d.Verifier == nil:
		return errors.New("httpserver: token verifier required")
	case d.Products == nil, d.Capsules == nil:
		return errors.New("httpserver: catalog services required")
	case d.Cart == nil, d.Wishlist == nil:
		return errors.New("httpserver: cart and wishlist services required")
	case d.Orders == nil, d.Dashboard == nil:
		return errors.New("httpserver: order services required")
	}
	return nil
}

type handler struct {
	logger *log.Logger
	deps   Deps
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, opts Options) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(opts.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", sessionHeader},
			ExposeHeaders:    []string{"Content-Length", sessionHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handler{logger: logger, deps: deps}

	api := router.Group("/api", identityMiddleware(deps.Verifier, logger))
	api.POST("/session", h.issueSession)

	api.GET("/products", h.searchProducts)
	api.GET("/products/featured", h.featuredProducts)
	api.GET("/products/:id", h.getProduct)
	api.GET("/categories", h.listCategories)
	api.GET("/capsules", h.listCapsules)
	api.GET("/capsules/:id", h.getCapsule)

	shop := api.Group("", sessionMiddleware(deps.Sessions, logger))
	shop.DELETE("/session", h.endSession)
	shop.GET("/cart", h.getCart)
	shop.POST("/cart/items", h.addCartItem)
	shop.PATCH("/cart/items", h.updateCartItem)
	shop.DELETE("/cart/items", h.removeCartItem)
	shop.DELETE("/cart", h.clearCart)
	shop.GET("/wishlist", h.getWishlist)
	shop.POST("/wishlist/items", h.addWishlistItem)
	shop.DELETE("/wishlist/items/:productId", h.removeWishlistItem)
	shop.POST("/wishlist/toggle", h.toggleWishlistItem)
	shop.POST("/checkout", h.checkout)

	account := api.Group("/account", requireUser())
	account.GET("/orders", h.accountOrders)
	account.GET("/orders/:id", h.accountOrder)

	admin := api.Group("/admin", requireAdmin())
	admin.GET("/stats", h.stats)

	admin.GET("/capsules", h.listCapsules)
	admin.POST("/capsules", h.createCapsule)
	admin.GET("/capsules/:id", h.getCapsule)
	admin.PUT("/capsules/:id", h.updateCapsule)
	admin.DELETE("/capsules/:id", h.deleteCapsule)
	admin.POST("/capsules/:id/duplicate", h.duplicateCapsule)

	admin.GET("/products", h.adminListProducts)
	admin.POST("/products", h.createProduct)
	admin.GET("/products/:id", h.adminGetProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.PUT("/products/:id/featured", h.setProductFeatured)

	admin.GET("/orders", h.adminListOrders)
	admin.GET("/orders/:id", h.adminGetOrder)
	admin.PUT("/orders/:id/status", h.updateOrderStatus)
	admin.PUT("/orders/:id/payment-status", h.updatePaymentStatus)

	return router, nil
}
