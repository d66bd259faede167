package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/rental-booking-backend/internal/api"
	"github.com/nekogravitycat/rental-booking-backend/internal/auth"
	"github.com/nekogravitycat/rental-booking-backend/internal/booking"
	"github.com/nekogravitycat/rental-booking-backend/internal/event"
	"github.com/nekogravitycat/rental-booking-backend/internal/photo"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/ratelimit"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/rental-booking-backend/internal/property"
	"github.com/nekogravitycat/rental-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  []string
	Log          *logrus.Logger
	DBPool       *pgxpool.Pool

	JWTSecret  string
	JWTTTL     time.Duration
	RefreshTTL time.Duration
	BcryptCost int

	// Redis backs token revocation and refresh rotation. In-memory stores are used when nil.
	Redis redis.UniversalClient
	// Events receives domain events. They are only logged when nil.
	Events event.Publisher

	Storage        storage.Storage
	MaxUploadBytes int64

	AuthRateLimitRPS   float64
	AuthRateLimitBurst int
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router      *gin.Engine
	JWTManager  *auth.JWTManager
	AuthLimiter *ratelimit.Limiter
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	var revoker auth.Revoker
	var refreshStore auth.RefreshStore
	if cfg.Redis != nil {
		revoker = auth.NewRedisRevoker(cfg.Redis)
		refreshStore = auth.NewRedisRefreshStore(cfg.Redis)
	} else {
		revoker = auth.NewMemoryRevoker()
		refreshStore = auth.NewMemoryRefreshStore()
	}
	issuer := auth.NewIssuer(jwtManager, refreshStore, revoker, cfg.RefreshTTL)
	verifier := auth.NewAuthenticator(jwtManager, revoker)

	events := cfg.Events
	if events == nil {
		events = event.NewLogPublisher(log.WithField("component", "events"))
	}

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher, issuer, log.WithField("component", "user"))

	// Property Module
	propertyRepo := property.NewPgxRepository(cfg.DBPool)
	propertyService := property.NewService(propertyRepo, events, log.WithField("component", "property"))

	// Photo Module
	photoRepo := photo.NewPgxRepository(cfg.DBPool)
	photoService := photo.NewService(photoRepo, propertyService, cfg.Storage, cfg.MaxUploadBytes, log.WithField("component", "photo"))

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, events, log.WithField("component", "booking"))

	authLimiter := ratelimit.New(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:    cfg.IsProduction,
		ProdOrigins:     cfg.ProdOrigins,
		Log:             log,
		DB:              cfg.DBPool,
		Verifier:        verifier,
		AuthLimiter:     authLimiter,
		UserService:     userService,
		PropertyService: propertyService,
		BookingService:  bookingService,
		PhotoService:    photoService,
		MaxUploadBytes:  cfg.MaxUploadBytes,
	})

	return &Container{
		Router:      router,
		JWTManager:  jwtManager,
		AuthLimiter: authLimiter,
	}
}
