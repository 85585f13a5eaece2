package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/gymsaathiide/gymaccess/internal/handlers"
	"github.com/gymsaathiide/gymaccess/internal/ratelimit"
	"github.com/gymsaathiide/gymaccess/internal/repository"
	"github.com/gymsaathiide/gymaccess/internal/service"
	"github.com/gymsaathiide/gymaccess/pkg/config"
	"github.com/gymsaathiide/gymaccess/pkg/database"
	"github.com/gymsaathiide/gymaccess/pkg/events"
	"github.com/gymsaathiide/gymaccess/pkg/logger"
	mw "github.com/gymsaathiide/gymaccess/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Connect to database
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Connect to redis (scan rate limiting)
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid redis URL", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	// Connect to event bus
	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Initialize repositories
	sessionRepo := repository.NewSessionRepository(pool)
	secretRepo := repository.NewSecretRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)
	gymRepo := repository.NewGymRepository(pool)

	// Initialize services
	eligibility := service.NewEligibilityChecker(memberRepo)
	attendanceService := service.NewAttendanceService(sessionRepo, memberRepo, gymRepo, secretRepo, eligibility, eventBus, cfg)
	qrConfigService := service.NewQRConfigService(secretRepo, gymRepo, eventBus, cfg)

	// Initialize handlers
	h := handlers.New(attendanceService, qrConfigService, cfg.Auth.JWTSecret)

	// Scan rate limiter: per identity and per client IP
	scanLimiter := ratelimit.NewLimiter(rdb, cfg.Attendance.ScanRateLimit, cfg.Attendance.ScanRateWindow)
	scanKeys := func(r *http.Request) []string {
		keys := []string{"ip:" + ratelimit.ClientIP(r)}
		if identity := h.CallerIdentity(r); identity != "" {
			keys = append(keys, "member:"+identity)
		}
		return keys
	}

	// Setup router
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("gymaccess"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/attendance", func(r chi.Router) {
		r.Use(h.RequireAuth("member"))
		r.With(scanLimiter.Middleware(scanKeys)).Post("/scan", h.Scan)
		r.Post("/checkout", h.Checkout)
		r.Get("/status", h.Status)
	})

	r.Route("/admin/gyms/{gymID}", func(r chi.Router) {
		r.Use(h.RequireAuth("admin"))
		r.Get("/qr", h.GetQRConfig)
		r.Post("/qr/rotate", h.RotateQRSecret)
		r.Put("/qr/enabled", h.SetQREnabled)
		r.Get("/attendance/today", h.ListTodaySessions)
	})

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down gym access service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Gym access service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting gym access service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Gym access service error", "error", err)
		os.Exit(1)
	}
}
