package api

import (
	"net/http"
	"time"

	"github.com/Aidin1998/usersapi/common/apiutil"
	_ "github.com/Aidin1998/usersapi/docs"
	"github.com/Aidin1998/usersapi/internal/health"
	"github.com/Aidin1998/usersapi/internal/users"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Options controls the optional parts of the router
type Options struct {
	ServiceName  string
	Swagger      bool
	AllowOrigins []string
	// Checker backs GET /ready. Without one the service always reports ready.
	Checker *health.Checker
}

// Server represents the API server
type Server struct {
	router  *gin.Engine
	logger  *zap.Logger
	users   users.UserService
	checker *health.Checker
}

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// NewServer creates a new API server around the user service
func NewServer(logger *zap.Logger, userService users.UserService, opts Options) *Server {
	if opts.ServiceName == "" {
		opts.ServiceName = "usersapi"
	}
	if len(opts.AllowOrigins) == 0 {
		opts.AllowOrigins = []string{"*"}
	}

	if opts.Checker == nil {
		opts.Checker = health.NewChecker(logger, time.Second, 0)
	}

	server := &Server{
		logger:  logger,
		users:   userService,
		checker: opts.Checker,
	}

	router := gin.New()

	// Add middleware
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(otelgin.Middleware(opts.ServiceName))
	router.Use(apiutil.MetricsMiddleware())

	// Configure CORS
	corsConfig := cors.Config{
		AllowOrigins:  opts.AllowOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(opts.AllowOrigins) == 1 && opts.AllowOrigins[0] == "*" {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	server.router = router
	server.registerRoutes(opts)
	return server
}

// Router returns the internal Gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes(opts Options) {
	s.router.GET("/", s.banner)
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/ready", s.readinessCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.Swagger {
		s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	usersGroup := s.router.Group("/api/users")
	{
		usersGroup.GET("", s.listUsers)
		usersGroup.POST("", s.createUser)
		usersGroup.GET("/:id", s.getUser)
		usersGroup.PUT("/:id", s.updateUser)
		usersGroup.DELETE("/:id", s.deleteUser)
	}
}

func (s *Server) banner(c *gin.Context) {
	c.String(http.StatusOK, "Users API is running")
}

// healthCheck handles health check requests
//
//	@Summary	Health check
//	@Tags		System
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Router		/health [get]
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// readinessCheck reports whether the dependencies of the service are reachable
//
//	@Summary	Readiness check
//	@Tags		System
//	@Produce	json
//	@Success	200	{object}	health.Report
//	@Failure	503	{object}	health.Report
//	@Router		/ready [get]
func (s *Server) readinessCheck(c *gin.Context) {
	report := s.checker.Check(c.Request.Context())
	status := http.StatusOK
	if !report.Ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
