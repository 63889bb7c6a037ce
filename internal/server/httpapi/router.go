package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const tracerName = "storefront"

func (s *Server) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(otelgin.Middleware(tracerName), gin.Recovery(), s.requestLogger(), corsMiddleware(s.corsOrigins))

	auth := s.requireAuth()
	admin := s.requireAdmin()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	a := r.Group("/auth")
	a.POST("/register", s.register)
	a.POST("/login", s.login)
	a.POST("/forgot-password", s.forgotPassword)
	a.POST("/reset-password", s.resetPassword)

	for _, prefix := range []string{"/products", "/api/products"} {
		p := r.Group(prefix)
		p.GET("", s.listProducts)
		p.GET("/:id", s.getProduct)
		p.POST("", auth, admin, s.createProduct)
		p.PUT("/:id", auth, admin, s.updateProduct)
		p.DELETE("/:id", auth, admin, s.deleteProduct)
	}

	cat := r.Group("/categories")
	cat.GET("", s.listCategories)
	cat.POST("", auth, admin, s.createCategory)
	cat.PUT("/:id", auth, admin, s.updateCategory)
	cat.DELETE("/:id", auth, admin, s.deleteCategory)

	cart := r.Group("/cart")
	cart.GET("/:userId", s.getCart)
	cart.POST("/add", s.addToCart)
	cart.PUT("/update", s.updateCartItem)
	cart.DELETE("/remove/:itemId", s.removeCartItem)
	cart.DELETE("/clear/:userId", s.clearCart)

	u := r.Group("/user", auth)
	u.GET("/profile", s.getOwnProfile)
	u.PUT("/profile", s.updateProfile)
	u.GET("/profile/:userId", s.getProfile)
	u.GET("/addresses", s.listAddresses)
	u.POST("/addresses", s.createAddress)
	u.PUT("/addresses/:id", s.updateAddress)
	u.DELETE("/addresses/:id", s.deleteAddress)
	u.PATCH("/addresses/:id/default", s.setDefaultAddress)

	o := r.Group("/orders", auth)
	o.POST("", s.createOrder)
	o.GET("", s.listOwnOrders)
	o.GET("/admin/all", admin, s.listAllOrders)
	o.GET("/admin/:id", admin, s.getOrder)
	o.PATCH("/status/:id", admin, s.setOrderStatus)

	return r
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.Validationf("invalid %s %q", name, c.Param(name))
	}
	return id, nil
}
