package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/rental-booking-backend/internal/auth"
	"github.com/nekogravitycat/rental-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/rental-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/rental-booking-backend/internal/photo"
	photoHttp "github.com/nekogravitycat/rental-booking-backend/internal/photo/http"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/ratelimit"
	"github.com/nekogravitycat/rental-booking-backend/internal/property"
	propertyHttp "github.com/nekogravitycat/rental-booking-backend/internal/property/http"
	"github.com/nekogravitycat/rental-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/rental-booking-backend/internal/user/http"
)

// Config holds the dependencies required to build the router.
type Config struct {
	IsProduction bool
	ProdOrigins  []string
	Log          *logrus.Logger
	DB           Pinger

	Verifier    auth.Verifier
	AuthLimiter *ratelimit.Limiter

	UserService     user.Service
	PropertyService property.Service
	BookingService  booking.Service
	PhotoService    photo.Service
	MaxUploadBytes  int64
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Structured request log with a request id.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(logger.Middleware(cfg.Log), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = cfg.ProdOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsConfig))

	// authMiddleware: Validates the access token and that the account is still active.
	authMiddleware := auth.AuthRequired(RequireActiveUser(cfg.Verifier, cfg.UserService))
	// limiter: Token bucket per client IP on the credential endpoints.
	limiter := ratelimit.PerClient(cfg.AuthLimiter)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService)
	propertyHandler := propertyHttp.NewHandler(cfg.PropertyService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	photoHandler := photoHttp.NewHandler(cfg.PhotoService, cfg.MaxUploadBytes)

	r.GET("/healthz", Health(cfg.DB))

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, limiter)
		propertyHttp.RegisterRoutes(v1, propertyHandler, authMiddleware)
		photoHttp.RegisterRoutes(v1, photoHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
	}

	return r
}
