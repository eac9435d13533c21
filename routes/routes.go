package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"grouporder/aggregator"
	"grouporder/catalog"
	"grouporder/config"
	"grouporder/controllers"
	"grouporder/editor"
	"grouporder/logger"
	"grouporder/metrics"
	"grouporder/middleware"
	"grouporder/store"
)

// Deps is everything the HTTP surface needs. Health may be nil.
type Deps struct {
	Config     config.Config
	Log        *logger.Logger
	Metrics    *metrics.Metrics
	Users      store.UserStore
	Producers  store.ProducerStore
	Orders     store.OrderStore
	Sessions   editor.SessionStore
	Aggregator *aggregator.Aggregator
	Health     func(*gin.Context) error
}

// NewEngine builds the gin engine with the middleware chain and all routes.
func NewEngine(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log))
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}
	if len(d.Config.CORSOrigins) > 0 {
		r.Use(middleware.CORS(d.Config.CORSOrigins))
	}
	_ = r.SetTrustedProxies(nil)
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	timeout := d.Config.StoreTimeout
	loader := catalog.NewLoader(d.Producers, d.Orders)

	auth := controllers.NewAuthController(d.Users, []byte(d.Config.JWTSecret), timeout, d.Log)
	producers := controllers.NewProducerController(d.Producers, loader, timeout, d.Log)
	orders := controllers.NewOrderController(d.Orders, d.Producers, timeout, d.Log)
	sessions := controllers.NewSessionController(d.Sessions, loader, d.Aggregator, d.Config.Currency, timeout, d.Log)
	confirm := controllers.NewConfirmationController(d.Config.Currency)

	r.GET("/healthz", func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health(c); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		api.POST("/register", auth.Register)
		api.POST("/login", auth.Login)
		api.POST("/logout", auth.Logout)

		api.GET("/producers", producers.List)
		api.GET("/producers/:producerId", producers.Details)

		api.GET("/orders/:orderId/summary", orders.Summary)

		api.POST("/order-form/:orderId/sessions", sessions.Create)
		api.GET("/sessions/:sessionId", sessions.Get)
		api.POST("/sessions/:sessionId/entries/:index/increment", sessions.Increment)
		api.POST("/sessions/:sessionId/entries/:index/decrement", sessions.Decrement)
		api.PUT("/sessions/:sessionId/entries/:index/option", sessions.SetOption)
		api.POST("/sessions/:sessionId/entries/:index/duplicate", sessions.Duplicate)
		api.DELETE("/sessions/:sessionId/entries/:index", sessions.Remove)
		api.POST("/sessions/:sessionId/submit", sessions.Submit)

		api.POST("/order-confirmation", confirm.Render)

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware([]byte(d.Config.JWTSecret), d.Users))
		{
			protected.GET("/orders", orders.Mine)
			protected.POST("/orders", orders.Create)
		}
	}
}
