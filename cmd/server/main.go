package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/taskhive/task-api/internal/api"
	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
	"github.com/taskhive/task-api/internal/core/security"
	"github.com/taskhive/task-api/internal/core/service"
	"github.com/taskhive/task-api/internal/core/token"
	mongodb "github.com/taskhive/task-api/internal/infrastructure/db/mongo"
	redisdb "github.com/taskhive/task-api/internal/infrastructure/db/redis"
	"github.com/taskhive/task-api/internal/infrastructure/queue"
	"github.com/taskhive/task-api/internal/pkg/config"
	"github.com/taskhive/task-api/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- External stores ---
	mongoClient, db, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Repositories ---
	users := mongodb.NewUserRepository(db)
	tasks := mongodb.NewTaskRepository(db)
	audit := mongodb.NewAuditRepository(db)

	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}
	if err := tasks.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("task index creation failed")
	}

	// --- Audit pipeline ---
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, audit, log)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	dispatcher.Start(workerCtx)

	// --- Core components, wired once, explicitly ---
	hasher := security.NewPasswordHasher(cfg.BcryptCost)
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	throttle := redisdb.NewLoginThrottle(rdb)

	authService := service.NewAuthService(users, hasher, issuer, throttle, dispatcher, log)
	taskService := service.NewTaskService(tasks, dispatcher)

	if err := seedAdmin(ctx, cfg, users, hasher); err != nil {
		log.Fatal().Err(err).Msg("admin seeding failed")
	}

	e := api.NewRouter(api.Deps{
		Logger:      log,
		Issuer:      issuer,
		AuthService: authService,
		TaskService: taskService,
		Users:       users,
		AuditStore:  audit,
		Mongo:       db,
		Redis:       rdb,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-stop
	log.Info().Msg("shutting down")

	// Stop accepting requests first; in-flight handlers may still record
	// audit events, so the workers are cancelled only once the server has
	// drained. Cancelled workers flush their buffered events before exiting.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	stopWorkers()
	dispatcher.Wait()
	log.Info().Msg("server stopped")
}

// seedAdmin creates the bootstrap ADMIN account when one is configured and
// does not exist yet. Registration through the API only ever creates USER
// accounts, so this is the single path to an administrator.
func seedAdmin(ctx context.Context, cfg *config.Config, users ports.UserRepository, hasher security.PasswordHasher) error {
	if cfg.Admin.Username == "" {
		return nil
	}

	_, err := users.FindByUsername(ctx, cfg.Admin.Username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := hasher.Hash(cfg.Admin.Password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = users.Create(ctx, &domain.User{
		Username:     cfg.Admin.Username,
		Email:        cfg.Admin.Email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	return err
}
