package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/MrSnakeDoc/socialhub/internal/auth"
	"github.com/MrSnakeDoc/socialhub/internal/config"
	"github.com/MrSnakeDoc/socialhub/internal/connect"
	"github.com/MrSnakeDoc/socialhub/internal/httpserver"
	"github.com/MrSnakeDoc/socialhub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/socialhub/internal/logger"
	"github.com/MrSnakeDoc/socialhub/internal/metrics"
	"github.com/MrSnakeDoc/socialhub/internal/redis"
	"github.com/MrSnakeDoc/socialhub/internal/scheduler"
	"github.com/MrSnakeDoc/socialhub/internal/service"
	"github.com/MrSnakeDoc/socialhub/internal/sources/seed"
	redisstore "github.com/MrSnakeDoc/socialhub/internal/store/redis"
	"github.com/MrSnakeDoc/socialhub/internal/store/sqlstore"
	"github.com/MrSnakeDoc/socialhub/internal/utils"
	"github.com/MrSnakeDoc/socialhub/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	db          *gorm.DB
	redisClient *goredis.Client
	pruner      *scheduler.NotificationPruner
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	ctx := context.Background()

	retry := connect.Options{
		ConnectTimeout: cfg.ConnectTimeout,
		RetryInterval:  cfg.RetryInterval,
		MaxWait:        cfg.MaxWait,
		PingTimeout:    cfg.PingTimeout,
		WarnThreshold:  cfg.WarnThreshold,
	}

	// Database is required - fail fast if unavailable
	loggerClient.Infof("Connecting to %s database", cfg.DBDriver)
	db, err := sqlstore.Open(ctx, sqlstore.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DBDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		Retry:           retry,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	if cfg.DBAutoMigrate {
		if err := sqlstore.Migrate(db); err != nil {
			loggerClient.Errorf("Failed to migrate database: %v", err)
			os.Exit(1)
		}
		loggerClient.Info("database schema migrated")
	}

	probes := []deps.Probe{{
		Name:     "database",
		Required: true,
		Check:    func(ctx context.Context) error { return sqlstore.Ping(ctx, db) },
	}}

	// Redis is optional and only backs the profile/search cache
	var cache service.ProfileCache = service.NoopCache{}
	var redisClient *goredis.Client
	if cfg.CacheEnabled() {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		redisClient, err = redis.New(ctx, redis.ConnectOptions{
			Addr:         cfg.RedisAddr,
			User:         cfg.RedisUser,
			Password:     cfg.RedisPassword,
			RedisDB:      cfg.RedisDB,
			DialTimeout:  cfg.RedisDT,
			ReadTimeout:  cfg.RedisRT,
			WriteTimeout: cfg.RedisWT,
			PoolSize:     cfg.RedisPoolSize,
			Retry:        retry,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		store := redisstore.NewStore(redisClient, cfg.ProfileCacheTTL, cfg.SearchCacheTTL)
		cache = store
		probes = append(probes, deps.Probe{Name: "redis", Check: store.Ping})
		loggerClient.Info("Redis cache initialized successfully")
	} else {
		loggerClient.Info("redis address not configured, profile cache disabled")
	}

	codec, err := auth.NewCodec([]byte(cfg.TokenSecret), cfg.TokenTTL)
	if err != nil {
		loggerClient.Errorf("Failed to create token codec: %v", err)
		os.Exit(1)
	}

	m := metrics.New()

	profileRepo := sqlstore.NewProfileRepository(db)
	postRepo := sqlstore.NewPostRepository(db)

	profiles := service.NewProfileService(profileRepo, codec, cache, m, loggerClient, service.ProfileOptions{
		BcryptCost:  cfg.BcryptCost,
		PageSize:    cfg.PageSize,
		SearchLimit: cfg.SearchLimit,
	})
	bookmarks := service.NewBookmarkService(sqlstore.NewBookmarkRepository(db), profileRepo, postRepo, m, loggerClient)
	notifications := service.NewNotificationService(sqlstore.NewNotificationRepository(db), profileRepo, m, loggerClient)

	if cfg.SeedFile != "" {
		seeder := seed.NewSeeder(profileRepo, postRepo, cfg.BcryptCost, loggerClient)
		if _, err := seeder.LoadAndApply(ctx, cfg.SeedFile); err != nil {
			loggerClient.Errorf("Failed to apply seed file %s: %v", cfg.SeedFile, err)
			os.Exit(1)
		}
		if err := cache.FlushSearch(ctx); err != nil {
			loggerClient.Warn("failed to flush search cache after seeding", logger.Error(err))
		}
	}

	pruneTrigger := make(chan struct{}, 1)
	pruner := scheduler.NewNotificationPruner(
		notifications,
		loggerClient,
		cfg.PruneInterval,
		cfg.NotificationRetention,
		pruneTrigger,
	)

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		Codec:           codec,
		Profiles:        profiles,
		Bookmarks:       bookmarks,
		Notifications:   notifications,
		Metrics:         m,
		Probes:          probes,
		PruneTrigger:    pruneTrigger,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		db:          db,
		redisClient: redisClient,
		pruner:      pruner,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting SocialHub v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("SocialHub %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.pruner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start notification pruner: %w", err)
	}
	a.logger.Info("notification pruner started",
		logger.Duration("interval", a.cfg.PruneInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.pruner.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		utils.MustClose(a.redisClient, "redis", a.logger)
	}
	if err := sqlstore.Close(a.db); err != nil {
		a.logger.Warnf("failed to close database: %v", err)
	} else {
		a.logger.Info("✅ Database closed cleanly")
	}

	a.logger.Info("✅ SocialHub stopped cleanly")
	return nil
}
