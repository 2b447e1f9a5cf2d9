package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/shift-booking-api/internal/handler"
	"github.com/noah-isme/shift-booking-api/internal/middleware"
	"github.com/noah-isme/shift-booking-api/internal/models"
	"github.com/noah-isme/shift-booking-api/internal/service"
	"github.com/noah-isme/shift-booking-api/pkg/config"
	"github.com/noah-isme/shift-booking-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/shift-booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/shift-booking-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler the API mounts.
type Handlers struct {
	Slots     *handler.SlotHandler
	Bookings  *handler.BookingHandler
	Favorites *handler.FavoriteHandler
	Admin     *handler.AdminHandler
	Metrics   *handler.MetricsHandler
}

// Options configures the engine.
type Options struct {
	Env       string
	APIPrefix string
	CORS      config.CORSConfig
	Logger    *zap.Logger
	Metrics   *service.MetricsService
	Tokens    middleware.TokenValidator
}

// New builds the gin engine with all routes registered.
func New(opts Options, h Handlers) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.CORS))
	r.Use(middleware.Metrics(opts.Metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if opts.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)
	api.Use(middleware.JWT(opts.Tokens))

	slots := api.Group("/slots")
	slots.GET("", h.Slots.List)
	slots.GET("/week", h.Slots.Week)

	bookings := api.Group("/bookings")
	bookings.POST("/validate", h.Bookings.Validate)
	bookings.POST("", h.Bookings.Create)
	bookings.GET("/me", h.Bookings.Mine)
	bookings.DELETE("/:id", h.Bookings.Cancel)
	bookings.POST("/:id/sick", h.Bookings.ReportSick)

	favorites := api.Group("/favorites")
	favorites.GET("", h.Favorites.List)
	favorites.POST("", h.Favorites.Add)
	favorites.DELETE("", h.Favorites.Remove)

	admin := api.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/bookings", h.Admin.ListBookings)
	admin.DELETE("/bookings/:id", h.Admin.Cancel)
	admin.POST("/bookings/:id/reschedule", h.Admin.Reschedule)
	admin.POST("/sweep", h.Admin.Sweep)
	admin.GET("/roster.pdf", h.Admin.Roster)
	admin.GET("/audit", h.Admin.Audit)

	return r
}
