package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/tripadvisor-api/internal/config"
	"github.com/iliyamo/tripadvisor-api/internal/database"
	"github.com/iliyamo/tripadvisor-api/internal/handler"
	"github.com/iliyamo/tripadvisor-api/internal/logging"
	"github.com/iliyamo/tripadvisor-api/internal/media"
	"github.com/iliyamo/tripadvisor-api/internal/middleware"
	"github.com/iliyamo/tripadvisor-api/internal/queue"
	"github.com/iliyamo/tripadvisor-api/internal/repository"
	"github.com/iliyamo/tripadvisor-api/internal/router"
	"github.com/iliyamo/tripadvisor-api/internal/service"
)

func main() {
	if err := godotenv.Overload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
	}
	cfg := config.Load()

	logFile, logger, err := logging.Setup(cfg.Log.Directory, logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Env != "prod",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass,
		Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		Timeout: cfg.DBTimeout,
	})
	if err != nil {
		logger.Error("database connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	migrateCtx, migrateCancel := context.WithTimeout(ctx, 30*time.Second)
	err = database.Migrate(migrateCtx, db)
	migrateCancel()
	if err != nil {
		logger.Error("schema migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	store, err := media.New(cfg.Media)
	if err != nil {
		logger.Error("media store setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	var events queue.Publisher = queue.Nop{}
	if cfg.AMQP.Enabled {
		pub := queue.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		defer pub.Close()
		events = pub
		go func() {
			if err := queue.StartBookingConsumer(ctx, cfg.AMQP.URL, cfg.AMQP.Queue, cfg.AMQP.LogFile, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("booking consumer stopped", slog.Any("error", err))
			}
		}()
	}

	// Repositories
	users := repository.NewUserRepo(db)
	vendors := repository.NewVendorRepo(db)
	tokens := repository.NewTokenRepo(db)
	hotels := repository.NewHotelRepo(db)
	restaurants := repository.NewRestaurantRepo(db)
	rooms := repository.NewRoomRepo(db)
	bookings := repository.NewBookingRepo(db)
	reservations := repository.NewReservationRepo(db)
	dishes := repository.NewDishRepo(db)

	coordinator := service.NewBookingCoordinator(service.CoordinatorDeps{
		DB:                 db,
		Users:              users.Exists(),
		Restaurants:        restaurants.Exists(),
		Rooms:              rooms,
		Bookings:           bookings,
		Reservations:       reservations,
		Events:             events,
		Logger:             logger,
		DeleteReleasesRoom: cfg.DeleteReleasesRoom,
	})

	resp := handler.NewResponder(logger, cfg.DBTimeout)
	deps := router.Deps{
		DB:           db,
		UserKey:      cfg.JWTUserKey,
		VendorKey:    cfg.JWTVendorKey,
		Users:        handler.NewUserHandler(resp, cfg, users, tokens, store),
		Vendors:      handler.NewVendorHandler(resp, cfg, users, vendors),
		Hotels:       handler.NewHotelHandler(resp, hotels, store),
		Restaurants:  handler.NewRestaurantHandler(resp, restaurants, store),
		Rooms:        handler.NewRoomHandler(resp, rooms),
		Bookings:     handler.NewBookingHandler(resp, bookings, coordinator),
		Dishes:       handler.NewDishHandler(resp, dishes, restaurants.Exists()),
		Reservations: handler.NewReservationHandler(resp, reservations, coordinator),
		HotelReviews: handler.NewHotelReviewHandler(resp, repository.NewHotelReviewRepo(db), hotels.Exists()),
		RestReviews:  handler.NewRestaurantReviewHandler(resp, repository.NewRestaurantReviewRepo(db), restaurants.Exists()),
		Payments:     handler.NewPaymentHandler(resp, repository.NewPaymentRepo(db)),
	}
	if local, ok := store.(*media.LocalStore); ok {
		deps.MediaDir = local.Dir()
	}
	if rdb := config.NewRedisClient(); rdb != nil {
		defer rdb.Close()
		deps.RateLimit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
		deps.Cache = middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	router.RegisterRoutes(e, deps)

	go func() {
		logger.Info("listening", slog.String("port", cfg.Port), slog.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", slog.Any("error", err))
			cancel()
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
}
