package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"vendibook/internal/infra/config"
	"vendibook/internal/infra/obs"
)

type ListingHTTP interface {
	Get(c *gin.Context)
	Quote(c *gin.Context)
	Calendar(c *gin.Context)
	CheckRange(c *gin.Context)
}

type HostListingHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Publish(c *gin.Context)
	Suspend(c *gin.Context)
	UpdatePricing(c *gin.Context)
	UploadPhoto(c *gin.Context)
}

type CheckoutHTTP interface {
	Start(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Submit(c *gin.Context)
}

type Handlers struct {
	Listing     ListingHTTP
	HostListing HostListingHTTP
	Checkout    CheckoutHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Listing != nil {
		api.GET("/listings/:id", h.Listing.Get)
		api.POST("/listings/:id/quote", h.Listing.Quote)
		api.GET("/listings/:id/calendar", h.Listing.Calendar)
		api.GET("/listings/:id/availability", h.Listing.CheckRange)
	}
	if h.Checkout != nil {
		api.POST("/checkout/sessions", h.Checkout.Start)
		api.GET("/checkout/sessions/:id", h.Checkout.Get)
		api.PATCH("/checkout/sessions/:id", h.Checkout.Update)
		api.POST("/checkout/sessions/:id/submit", h.Checkout.Submit)
	}
	if h.HostListing != nil {
		hostGroup := api.Group("/host/listings")
		hostGroup.GET("", h.HostListing.List)
		hostGroup.POST("", h.HostListing.Create)
		hostGroup.POST("/:id/publish", h.HostListing.Publish)
		hostGroup.POST("/:id/suspend", h.HostListing.Suspend)
		hostGroup.PUT("/:id/pricing", h.HostListing.UpdatePricing)
		hostGroup.POST("/:id/photos", h.HostListing.UploadPhoto)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
