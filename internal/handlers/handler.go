package handlers

import (
	"heater_control/internal/logger"
	"heater_control/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options tune the HTTP layer. The zero value serves no /metrics and does
// not throttle logins.
type Options struct {
	Gatherer   prometheus.Gatherer
	LoginRate  float64 // login attempts per second
	LoginBurst int
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services     *service.Service
	log          *logger.Logger
	gatherer     prometheus.Gatherer
	loginLimiter *rate.Limiter
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	h := &Handler{services: services, log: log, gatherer: opts.Gatherer}
	if opts.LoginRate > 0 {
		burst := opts.LoginBurst
		if burst < 1 {
			burst = 1
		}
		h.loginLimiter = rate.NewLimiter(rate.Limit(opts.LoginRate), burst)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	if h.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	router.POST("/api/login", h.loginRateLimit, h.login)

	h.registerAPIRoutes(router)
	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.sessionMiddleware)
	{
		api.POST("/logout", h.logout)
		api.GET("/state", h.getState)
		api.GET("/telemetry", h.getTelemetry)
		api.GET("/ws", h.wsConnect)
		api.POST("/device/connect", h.connectDevice)

		h.registerProfileRoutes(api)
		h.registerProcessRoutes(api)
		h.registerHistoryRoutes(api)
	}
}

func (h *Handler) registerProfileRoutes(api *gin.RouterGroup) {
	profile := api.Group("/profile")
	{
		profile.GET("", h.getProfile)
		profile.DELETE("", h.clearProfile)
		profile.POST("/steps", h.appendStep)
		// Body example: {"field":"targetTemperature","value":"80"}
		profile.PATCH("/steps/:index", h.updateStep)
	}
}

func (h *Handler) registerProcessRoutes(api *gin.RouterGroup) {
	process := api.Group("/process")
	{
		process.POST("/start", h.startProcess)
		process.POST("/stop", h.stopProcess)
	}
}

func (h *Handler) registerHistoryRoutes(api *gin.RouterGroup) {
	api.GET("/logs", h.getLogs)
	api.GET("/runs", h.getRuns)
}
