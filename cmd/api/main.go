package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studiobook/internal/config"
	"studiobook/internal/database"
	"studiobook/internal/logging"
	"studiobook/internal/metrics"
	"studiobook/internal/middleware"
	"studiobook/internal/modules/auth"
	"studiobook/internal/modules/booking"
	"studiobook/internal/modules/messaging"
	"studiobook/internal/modules/payment"
	"studiobook/internal/modules/schedule"
	"studiobook/internal/notification"
	jwtsvc "studiobook/internal/pkg/jwt"
	"studiobook/internal/repository"
	"studiobook/internal/sweeper"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.AppEnv)

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is empty")
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	metrics.Register()

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	entryRepo := repository.NewOperatingEntryRepository(db)
	ownerRepo := repository.NewOwnerRepository(db)
	chargeRepo := repository.NewChargeRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	notifier := notification.NewLogSender(log)
	gateway := payment.NewHostedLinkGateway(chargeRepo, os.Getenv("PAYMENT_BASE_URL"), cfg.PaymentWebhookSecret, cfg.PaymentLinkTTL)

	authService := auth.NewService(userRepo, tokens)
	authHandler := auth.NewHandler(authService)

	scheduleService := schedule.NewService(entryRepo, bookingRepo, roomRepo, ownerRepo)
	scheduleHandler := schedule.NewHandler(scheduleService)

	bookingService := booking.NewService(
		bookingRepo, roomRepo, entryRepo, ownerRepo, gateway, notifier, log,
		cfg.ServiceFeePercent, cfg.CancellationCutoff, cfg.PaymentLinkTTL,
	)
	bookingHandler := booking.NewHandler(bookingService)

	paymentService := payment.NewService(chargeRepo, gateway, bookingService, log)
	paymentHandler := payment.NewHandler(paymentService)

	hub := messaging.NewHub()
	messagingService := messaging.NewService(messageRepo, bookingRepo, roomRepo, ownerRepo, hub, log)
	messagingHandler := messaging.NewHandler(messagingService, hub, tokens, log)

	sw := sweeper.New(bookingRepo, notifier, log, sweeper.DefaultRetryPolicy(cfg.SweeperMaxAttempts))
	scheduler, err := sweeper.NewScheduler(sw, cfg.SweeperInterval, log)
	if err != nil {
		log.Fatal().Err(err).Msg("sweeper scheduler setup failed")
	}
	scheduler.Start()
	defer scheduler.Stop()
	defer hub.Close()

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)
		scheduleHandler.RegisterRoutes(v1)
		paymentHandler.RegisterRoutes(v1)
		messagingHandler.RegisterWS(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(tokens))
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
			messagingHandler.RegisterRoutes(protected)

			owner := protected.Group("/")
			owner.Use(middleware.OwnerOnly())
			{
				scheduleHandler.RegisterOwnerRoutes(owner)
			}
		}
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
