package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/campusbook/classroom-booking-backend/internal/audit"
	auditHttp "github.com/campusbook/classroom-booking-backend/internal/audit/http"
	"github.com/campusbook/classroom-booking-backend/internal/auth"
	"github.com/campusbook/classroom-booking-backend/internal/booking"
	bookingHttp "github.com/campusbook/classroom-booking-backend/internal/booking/http"
	"github.com/campusbook/classroom-booking-backend/internal/dashboard"
	dashboardHttp "github.com/campusbook/classroom-booking-backend/internal/dashboard/http"
	"github.com/campusbook/classroom-booking-backend/internal/file"
	fileHttp "github.com/campusbook/classroom-booking-backend/internal/file/http"
	"github.com/campusbook/classroom-booking-backend/internal/report"
	reportHttp "github.com/campusbook/classroom-booking-backend/internal/report/http"
	"github.com/campusbook/classroom-booking-backend/internal/resource"
	resourceHttp "github.com/campusbook/classroom-booking-backend/internal/resource/http"
	"github.com/campusbook/classroom-booking-backend/internal/user"
	userHttp "github.com/campusbook/classroom-booking-backend/internal/user/http"
)

// RouterConfig carries everything the router assembly needs.
type RouterConfig struct {
	IsProduction bool
	CORSOrigins  []string

	RateLimitRPS   float64
	RateLimitBurst int

	Logger *zap.Logger
	DBPool *pgxpool.Pool

	JWTManager *auth.JWTManager

	UserService      user.Service
	ResourceService  resource.Service
	BookingService   booking.Service
	AuditService     audit.Service
	DashboardService dashboard.Service
	ReportService    report.Service
	FileService      file.Service
}

// NewRouter assembles middleware and registers routes for all modules.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(RequestLogger(cfg.Logger), gin.Recovery(), Metrics())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://localhost:8081"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	if cfg.RateLimitRPS > 0 {
		r.Use(RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	adminMiddleware := RequireAdmin(cfg.UserService)

	authHandler := NewAuthHandler(cfg.UserService, cfg.JWTManager, cfg.AuditService)
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.AuditService)
	resourceHandler := resourceHttp.NewHandler(cfg.ResourceService, cfg.AuditService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, cfg.UserService, cfg.Logger)
	auditHandler := auditHttp.NewHandler(cfg.AuditService)
	dashboardHandler := dashboardHttp.NewHandler(cfg.DashboardService, cfg.UserService)
	reportHandler := reportHttp.NewHandler(cfg.ReportService)
	fileHandler := fileHttp.NewHandler(cfg.FileService, cfg.Logger)

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := cfg.DBPool.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)
		v1.GET("/me", authMiddleware, authHandler.Me)

		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware)
		resourceHttp.RegisterRoutes(v1, resourceHandler, authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		auditHttp.RegisterRoutes(v1, auditHandler, authMiddleware, adminMiddleware)
		dashboardHttp.RegisterRoutes(v1, dashboardHandler, authMiddleware)
		reportHttp.RegisterRoutes(v1, reportHandler, authMiddleware, adminMiddleware)
		fileHttp.RegisterRoutes(v1, fileHandler, authMiddleware)
	}

	return r
}
