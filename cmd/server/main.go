package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/uniattend/attendance-backend/internal/biometric"
	"github.com/uniattend/attendance-backend/internal/biometric/dlib"
	"github.com/uniattend/attendance-backend/internal/config"
	"github.com/uniattend/attendance-backend/internal/database"
	"github.com/uniattend/attendance-backend/internal/feed"
	"github.com/uniattend/attendance-backend/internal/handler"
	"github.com/uniattend/attendance-backend/internal/logger"
	"github.com/uniattend/attendance-backend/internal/middleware"
	"github.com/uniattend/attendance-backend/internal/ratelimit"
	"github.com/uniattend/attendance-backend/internal/repository"
	"github.com/uniattend/attendance-backend/internal/router"
	"github.com/uniattend/attendance-backend/internal/service"
	"github.com/uniattend/attendance-backend/internal/storage"
	"github.com/uniattend/attendance-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("rate_limit_backend", cfg.RateLimitBackend).
		Msg("Starting attendance backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup(cfg.MaxPhotoBytes)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Rate Limit Stores and Attendance Feed ─────────────────────────
	// Redis backs both when configured so several instances share state.
	var (
		faceStore ratelimit.Store
		ipStore   ratelimit.Store
		broker    feed.Broker
	)
	switch cfg.RateLimitBackend {
	case config.RateLimitBackendRedis:
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		faceStore = ratelimit.NewRedisStore(rdb, config.CacheKey.FaceLoginAttemptsKey, cfg.FaceLoginWindow)
		ipStore = ratelimit.NewRedisStore(rdb, config.CacheKey.AuthIPAttemptsKey, cfg.AuthIPWindow)
		broker = feed.NewRedisBroker(rdb)
	default:
		faceStore = ratelimit.NewMemoryStore()
		ipStore = ratelimit.NewMemoryStore()
		broker = feed.NewMemoryBroker(64)
	}
	faceLimiter := ratelimit.NewLimiter(faceStore, cfg.FaceLoginMaxAttempts, cfg.FaceLoginWindow)
	ipLimiter := ratelimit.NewLimiter(ipStore, cfg.AuthIPMaxRequests, cfg.AuthIPWindow)
	attendanceFeed := feed.New(broker)

	// ─── Load Face Models ──────────────────────────────────────────────
	extractor, err := dlib.NewExtractor(cfg.FaceModelsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load face recognition models")
	}
	defer extractor.Close()

	verifier := biometric.NewVerifier(extractor, biometric.EuclideanComparer{}, log)
	references := storage.NewReferenceStore(cfg.UserDataDir)

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	refreshRepo := repository.NewRefreshTokenRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	tokenService := service.NewTokenService(cfg, refreshRepo)
	authService := service.NewAuthService(cfg, userRepo, tokenService, verifier, references, faceLimiter, log)
	classService := service.NewClassService(classRepo, log)
	enrollmentService := service.NewEnrollmentService(cfg, classRepo, enrollmentRepo, references, tokenService, log)
	attendanceService := service.NewAttendanceService(cfg, classRepo, attendanceRepo, verifier, references, attendanceFeed, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, tokenService, enrollmentService, log),
		Class:      handler.NewClassHandler(classService, attendanceService, log),
		Attendance: handler.NewAttendanceHandler(attendanceService, log),
		Student:    handler.NewStudentHandler(attendanceService, enrollmentService, log),
		Professor:  handler.NewProfessorHandler(classService, log),
		Feed:       handler.NewFeedHandler(attendanceFeed, attendanceService, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(tokenService, middleware.RateLimitByIP(ipLimiter, log), handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// Stop accepting new HTTP requests (5s timeout). Open feed streams end
	// when their subscriptions are closed by the request context.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
