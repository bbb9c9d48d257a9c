package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"photosession/internal/config"
	"photosession/internal/database"
	"photosession/internal/database/migrations"
	"photosession/internal/domain/audit"
	"photosession/internal/domain/catalog"
	"photosession/internal/domain/promotion"
	"photosession/internal/domain/schedule"
	jwtsvc "photosession/internal/pkg/jwt"
	"photosession/internal/pkg/logger"
	"photosession/internal/pkg/money"
)

const (
	adminID        int64 = 1
	photographerID int64 = 100
	customerID     int64 = 1000
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.AppEnv})

	db, err := database.Connect(cfg.DatabaseURL, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := migrations.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	ctx := context.Background()
	now := time.Now().UTC()

	log.Info().Msg("cleaning old data")
	for _, table := range []string{"transactions", "bookings", "services", "packages", "photographer_schedules", "promotions"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatal().Err(err).Str("table", table).Msg("cleanup")
		}
	}

	log.Info().Msg("creating schedule")
	workday := schedule.DaySchedule{AcceptsBookings: true, Slots: []schedule.TimeSlot{
		{Start: 9 * 60, End: 13 * 60},
		{Start: 14 * 60, End: 18 * 60},
	}}
	weekly := schedule.WeeklySchedule{}
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		weekly[day] = workday
	}
	weekly["saturday"] = schedule.DaySchedule{AcceptsBookings: true, Slots: []schedule.TimeSlot{{Start: 10 * 60, End: 14 * 60}}}

	sched := &schedule.PhotographerSchedule{
		PhotographerID: photographerID,
		Weekly:         weekly,
		Overrides: []schedule.DateOverride{{
			Date:        now.AddDate(0, 0, 14).Format(schedule.DateLayout),
			Unavailable: true,
			Reason:      "vacation",
		}},
	}
	sched.StampCreate(adminID, now)
	must(schedule.NewRepository(db).Upsert(ctx, sched))

	log.Info().Msg("creating catalog")
	catalogRepo := catalog.NewRepository(db)
	hour, half := 60, 30
	packages := []catalog.Package{
		{Name: "Portrait session", Description: "One hour, 20 edited photos", Price: money.FromMajor(15000), DurationMinutes: 60, IsActive: true},
		{Name: "Family session", Description: "Two hours outdoor", Price: money.FromMajor(30000), DurationMinutes: 120, IsActive: true},
	}
	for i := range packages {
		packages[i].StampCreate(adminID, now)
		must(catalogRepo.CreatePackage(ctx, &packages[i]))
	}
	services := []catalog.Service{
		{Name: "Studio hour", PricePerUnit: money.FromMajor(8000), DurationMinutes: &hour, IsActive: true},
		{Name: "Makeup artist", PricePerUnit: money.FromMajor(5000), DurationMinutes: &half, IsActive: true},
		{Name: "Extra retouched photo", PricePerUnit: money.FromMajor(500), IsActive: true},
	}
	for i := range services {
		services[i].StampCreate(adminID, now)
		must(catalogRepo.CreateService(ctx, &services[i]))
	}

	log.Info().Msg("creating promotions")
	promoRepo := promotion.NewRepository(db)
	limit, maxOff := 100, money.FromMajor(5000)
	advance := 7
	promos := []promotion.Promotion{
		{Code: "AUTUMN20", Type: promotion.TypePercentage, DiscountValue: 20, MaxDiscountAmount: &maxOff, UsageLimit: &limit},
		{Code: "EARLYBIRD", Type: promotion.TypeFixedAmount, DiscountValue: int64(money.FromMajor(2000)), MinAdvanceDays: &advance},
	}
	for i := range promos {
		promos[i].ValidFrom = now.AddDate(0, 0, -1)
		promos[i].ValidUntil = now.AddDate(0, 3, 0)
		promos[i].IsActive = true
		promos[i].StampCreate(adminID, now)
		must(promoRepo.Create(ctx, &promos[i]))
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	for _, u := range []struct {
		id   int64
		role audit.Role
	}{{adminID, audit.RoleAdmin}, {photographerID, audit.RolePhotographer}, {customerID, audit.RoleCustomer}} {
		token, err := j.GenerateToken(u.id, string(u.role))
		must(err)
		fmt.Printf("%-12s id=%-5d token=%s\n", u.role, u.id, token)
	}

	log.Info().
		Int64("photographer_id", photographerID).
		Int("packages", len(packages)).
		Int("services", len(services)).
		Int("promotions", len(promos)).
		Msg("seed complete")
}

func must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}
