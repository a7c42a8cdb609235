package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/campusbook/classroom-booking-backend/internal/api"
	"github.com/campusbook/classroom-booking-backend/internal/audit"
	"github.com/campusbook/classroom-booking-backend/internal/auth"
	"github.com/campusbook/classroom-booking-backend/internal/booking"
	"github.com/campusbook/classroom-booking-backend/internal/dashboard"
	"github.com/campusbook/classroom-booking-backend/internal/file"
	"github.com/campusbook/classroom-booking-backend/internal/pkg/cache"
	"github.com/campusbook/classroom-booking-backend/internal/pkg/storage"
	"github.com/campusbook/classroom-booking-backend/internal/report"
	"github.com/campusbook/classroom-booking-backend/internal/resource"
	"github.com/campusbook/classroom-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string // comma-separated
	DBPool       *pgxpool.Pool
	Cache        *cache.Client // nil disables caching
	Logger       *zap.Logger
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	UploadDir    string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	passwordHasher := auth.NewBcryptHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	localStorage, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("init upload storage: %w", err)
	}

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Audit Module
	auditRepo := audit.NewPgxRepository(cfg.DBPool)
	auditService := audit.NewService(auditRepo, cfg.Logger)

	// Resource Module
	resRepo := resource.NewPgxRepository(cfg.DBPool)
	resService := resource.NewService(resRepo)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, resService, auditService)

	// Dashboard Module
	dashRepo := dashboard.NewPgxRepository(cfg.DBPool)
	dashService := dashboard.NewService(dashRepo, cfg.Cache, cfg.Logger)

	// Report Module
	reportRepo := report.NewPgxRepository(cfg.DBPool)
	reportService := report.NewService(reportRepo)

	// File Module
	fileRepo := file.NewPgxRepository(cfg.DBPool)
	fileService := file.NewService(fileRepo, localStorage, cfg.Logger)

	router := api.NewRouter(api.RouterConfig{
		IsProduction:     cfg.IsProduction,
		CORSOrigins:      splitOrigins(cfg.ProdOrigins),
		RateLimitRPS:     cfg.RateLimitRPS,
		RateLimitBurst:   cfg.RateLimitBurst,
		Logger:           cfg.Logger,
		DBPool:           cfg.DBPool,
		JWTManager:       jwtManager,
		UserService:      userService,
		ResourceService:  resService,
		BookingService:   bookingService,
		AuditService:     auditService,
		DashboardService: dashService,
		ReportService:    reportService,
		FileService:      fileService,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}, nil
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
