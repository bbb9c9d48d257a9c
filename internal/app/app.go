// Package app wires repositories, services and HTTP routes together.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"photosession/internal/domain/booking"
	"photosession/internal/domain/catalog"
	"photosession/internal/domain/payment"
	"photosession/internal/domain/promotion"
	"photosession/internal/domain/schedule"
	"photosession/internal/events"
	"photosession/internal/middleware"
	jwtsvc "photosession/internal/pkg/jwt"
	"photosession/internal/pkg/lock"
)

type Services struct {
	Promotions *promotion.Service
	Catalog    *catalog.Repository
	Schedules  *schedule.Service
	Bookings   *booking.Service
	Payments   *payment.Service
}

// NewServices builds the domain services over one database. Booking and
// payment share the locker so both serialize on the booking key.
func NewServices(db *gorm.DB, locker lock.Locker, publisher events.Publisher) *Services {
	promoRepo := promotion.NewRepository(db)
	promoService := promotion.NewService(promoRepo)
	catalogRepo := catalog.NewRepository(db)

	bookingRepo := booking.NewRepository(db, promoRepo)
	scheduleService := schedule.NewService(schedule.NewRepository(db), bookingRepo)
	paymentService := payment.NewService(payment.NewRepository(db), bookingRepo, locker, publisher)
	bookingService := booking.NewService(bookingRepo, catalogRepo, scheduleService, promoService, paymentService, locker, publisher)

	return &Services{
		Promotions: promoService,
		Catalog:    catalogRepo,
		Schedules:  scheduleService,
		Bookings:   bookingService,
		Payments:   paymentService,
	}
}

type RouterConfig struct {
	RateLimitPerMin int
	RequestTimeout  time.Duration
	CORSOrigins     []string
}

// NewRouter mounts every endpoint under /api/v1 behind JWT auth. ctx bounds
// background work owned by middleware.
func NewRouter(ctx context.Context, svc *Services, j *jwtsvc.Service, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.CORS(cfg.CORSOrigins),
		middleware.Timeout(cfg.RequestTimeout),
	)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	writeLimit := middleware.RateLimit(ctx, cfg.RateLimitPerMin)
	adminOnly := middleware.AdminOnly()

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(j))
	{
		schedule.NewHandler(svc.Schedules).RegisterRoutes(v1)
		catalog.NewHandler(svc.Catalog).RegisterRoutes(v1, adminOnly)
		promotion.NewHandler(svc.Promotions).RegisterRoutes(v1, adminOnly)
		booking.NewHandler(svc.Bookings).RegisterRoutes(v1, writeLimit, adminOnly)
		payment.NewHandler(svc.Payments).RegisterRoutes(v1, writeLimit)
	}
	return r
}
