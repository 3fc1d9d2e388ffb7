package httpapi

import (
	"context"
	"net/http"
	"time"

	"litverse-be/internal/auth"
	"litverse-be/internal/book"
	"litverse-be/internal/cart"
	"litverse-be/internal/middleware"
	"litverse-be/internal/order"
	"litverse-be/internal/payment"
	"litverse-be/internal/review"
	"litverse-be/internal/user"
	"litverse-be/internal/validation"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Pinger reports database reachability for /health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Books    book.Service
	Carts    cart.Service
	Orders   order.Service
	Users    user.Service
	Reviews  review.Service
	Payments payment.Service

	Tokens    *auth.TokenManager
	Validator *validation.Validator
	Limiter   *middleware.RateLimiter
	DB        Pinger

	CORSOrigins  []string
	SecureCookie bool
}

type Handler struct {
	books    book.Service
	carts    cart.Service
	orders   order.Service
	users    user.Service
	reviews  review.Service
	payments payment.Service

	tokens       *auth.TokenManager
	validate     *validation.Validator
	db           Pinger
	secureCookie bool
}

func NewRouter(d Deps) *gin.Engine {
	h := &Handler{
		books:        d.Books,
		carts:        d.Carts,
		orders:       d.Orders,
		users:        d.Users,
		reviews:      d.Reviews,
		payments:     d.Payments,
		tokens:       d.Tokens,
		validate:     d.Validator,
		db:           d.DB,
		secureCookie: d.SecureCookie,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(d.CORSOrigins)))
	r.Use(middleware.Authenticate(d.Tokens))
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware())
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse("route not found", nil))
	})

	h.routes(r)
	return r
}

// corsConfig allows credentials only for an explicit origin list.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Device-ID", "X-Client-Type"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func (h *Handler) routes(r *gin.Engine) {
	requireAuth := middleware.RequireAuth()
	adminOnly := middleware.RequireRole(auth.RoleAdmin)

	r.GET("/health", h.health)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", h.signup)
		authGroup.POST("/login", h.login)
		authGroup.GET("/logout", h.logout)
	}

	books := r.Group("/books")
	{
		books.GET("", h.listBooks)
		books.POST("", adminOnly, h.createBook)
		books.DELETE("", adminOnly, h.deleteAllBooks)
		books.GET("/:id", h.getBook)
		books.PATCH("/:id", adminOnly, h.updateBook)
		books.DELETE("/:id", adminOnly, h.deleteBook)
	}

	carts := r.Group("/cart", requireAuth)
	{
		carts.GET("", h.getCart)
		carts.POST("", h.addToCart)
		carts.PATCH("", h.setCartQuantity)
		carts.DELETE("/:bookId", h.removeFromCart)
	}

	orders := r.Group("/orders")
	{
		orders.POST("", requireAuth, h.placeOrder)
		orders.POST("/direct", requireAuth, h.placeDirectOrder)
		orders.GET("", adminOnly, h.listOrders)
		orders.DELETE("", adminOnly, h.deleteAllOrders)
		orders.GET("/user/:userId", requireAuth, h.listUserOrders)
		orders.GET("/:id", requireAuth, h.getOrder)
		orders.PATCH("/:id", adminOnly, h.updateOrderStatus)
		orders.DELETE("/:id", adminOnly, h.deleteOrder)
	}

	users := r.Group("/users")
	{
		users.GET("", adminOnly, h.listUsers)
		users.GET("/:id", requireAuth, h.getUser)
		users.PATCH("/:id", requireAuth, h.updateUser)
		users.DELETE("/:id", requireAuth, h.deleteUser)
	}

	reviews := r.Group("/reviews")
	{
		reviews.GET("", h.listReviews)
		reviews.POST("", requireAuth, h.createReview)
		reviews.GET("/:id", h.getReview)
		reviews.PUT("/:id", requireAuth, h.updateReview)
		reviews.DELETE("/:id", requireAuth, h.deleteReview)
	}

	payments := r.Group("/payments")
	{
		payments.GET("", adminOnly, h.listPayments)
		payments.POST("", requireAuth, h.createPayment)
		payments.GET("/user/:userId", requireAuth, h.listUserPayments)
	}
}

func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse("database connection failed", nil))
		return
	}
	respond(c, http.StatusOK, gin.H{"status": "OK", "database": "connected"})
}
