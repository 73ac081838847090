package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dulanjanabandara/job-recommender-system/internal/config"
	domainJob "github.com/dulanjanabandara/job-recommender-system/internal/domain/job"
	domainUser "github.com/dulanjanabandara/job-recommender-system/internal/domain/user"
	"github.com/dulanjanabandara/job-recommender-system/internal/events"
	"github.com/dulanjanabandara/job-recommender-system/internal/infrastructure/database/mongo"
	"github.com/dulanjanabandara/job-recommender-system/internal/infrastructure/database/postgres"
	"github.com/dulanjanabandara/job-recommender-system/internal/infrastructure/mailer"
	"github.com/dulanjanabandara/job-recommender-system/internal/infrastructure/redis"
	"github.com/dulanjanabandara/job-recommender-system/internal/logger"
	"github.com/dulanjanabandara/job-recommender-system/internal/middleware"
	"github.com/dulanjanabandara/job-recommender-system/internal/routes"
	jobUsecase "github.com/dulanjanabandara/job-recommender-system/internal/usecase/job"
	userUsecase "github.com/dulanjanabandara/job-recommender-system/internal/usecase/user"
	"github.com/dulanjanabandara/job-recommender-system/pkg/mqtt"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	if err := run(cfg); err != nil {
		logger.Error("Application stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("Server exited properly")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting application", zap.String("environment", cfg.Server.Environment))

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Server.Environment,
		}); err != nil {
			logger.Warn("Failed to initialize Sentry", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.close(closeCtx); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	limiter, closeLimiter, err := newLimiter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLimiter()

	publisher, closePublisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	userService := userUsecase.NewService(db.users, newMailer(cfg), cfg)
	services := routes.Services{
		Jobs:      jobUsecase.NewService(db.jobs, publisher),
		Users:     userService,
		UserAdmin: userUsecase.NewAdminService(db.users, publisher),
	}

	scheduler := cron.New()
	if _, err := userService.ScheduleTokenCleanup(scheduler, cfg.Jobs.ResetTokenCleanupSchedule); err != nil {
		return fmt.Errorf("failed to schedule reset token cleanup: %w", err)
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	router := routes.SetupRoutes(cfg, services, limiter, db.health)

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server starting", zap.String("address", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

type store struct {
	jobs   domainJob.Repository
	users  domainUser.Repository
	health routes.HealthChecker
	close  func(ctx context.Context) error
}

// openStore connects to the backend named by the DATABASE url scheme.
func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	backend, err := cfg.Database.Backend()
	if err != nil {
		return nil, err
	}

	switch backend {
	case config.BackendPostgres:
		db, err := postgres.NewDB(cfg.Database.DatabaseURL(), cfg.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info("DB connection successful!", zap.String("backend", string(backend)))
		return &store{
			jobs:   postgres.NewJobRepository(db),
			users:  postgres.NewUserRepository(db),
			health: db,
			close:  db.Close,
		}, nil

	default:
		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		db, err := mongo.NewDB(connectCtx, cfg.Database.DatabaseURL(), cfg.Database.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		jobs, err := mongo.NewJobRepository(connectCtx, db)
		if err != nil {
			_ = db.Close(context.Background())
			return nil, err
		}
		users, err := mongo.NewUserRepository(connectCtx, db)
		if err != nil {
			_ = db.Close(context.Background())
			return nil, err
		}

		logger.Info("DB connection successful!", zap.String("backend", string(backend)))
		return &store{jobs: jobs, users: users, health: db, close: db.Close}, nil
	}
}

// newLimiter shares rate limit windows through Redis when REDIS_URL is set and
// keeps them in memory otherwise.
func newLimiter(ctx context.Context, cfg *config.Config) (middleware.Limiter, func(), error) {
	if cfg.Redis.URL == "" {
		limiter := middleware.NewMemoryLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window)
		return limiter, limiter.Close, nil
	}

	client, err := redis.Open(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}
	return middleware.NewRedisLimiter(client, cfg.RateLimit.Max, cfg.RateLimit.Window), closeFn, nil
}

func newPublisher(cfg *config.Config) (events.Publisher, func(), error) {
	if cfg.MQTT.Broker == "" {
		return events.Noop{}, func() {}, nil
	}

	log := logger.Named("mqtt")
	client := mqtt.NewClient(&mqtt.Config{
		Broker:               cfg.MQTT.Broker,
		ClientID:             cfg.MQTT.ClientID,
		Username:             cfg.MQTT.Username,
		Password:             cfg.MQTT.Password,
		CleanSession:         true,
		KeepAlive:            60 * time.Second,
		ConnectTimeout:       10 * time.Second,
		AutoReconnect:        true,
		MaxReconnectInterval: time.Minute,
	}, log)

	if err := client.Connect(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mqtt broker: %w", err)
	}

	return events.NewMQTTPublisher(client, cfg.MQTT.TopicPrefix, log), client.Disconnect, nil
}

func newMailer(cfg *config.Config) mailer.Sender {
	if cfg.SMTP.Host == "" {
		return mailer.NewLogMailer(logger.Named("mailer"))
	}

	return mailer.NewSMTPMailer(mailer.Config{
		Host:         cfg.SMTP.Host,
		Port:         cfg.SMTP.Port,
		Username:     cfg.SMTP.User,
		Password:     cfg.SMTP.Password,
		From:         cfg.SMTP.From,
		MaxPerSecond: cfg.SMTP.MaxPerSecond,
	})
}
