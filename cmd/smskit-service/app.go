package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	_ "github.com/lib/pq" // PostgreSQL driver

	"smskit/internal/api"
	"smskit/internal/config"
	"smskit/internal/constants"
	"smskit/internal/export"
	"smskit/internal/logger"
	"smskit/internal/permission"
	"smskit/internal/plugin"
	"smskit/internal/sms"
	"smskit/internal/source"
	"smskit/pkg/bootstrap"
	"smskit/pkg/health"
	"smskit/pkg/logging"
	"smskit/pkg/metrics"
	"smskit/pkg/middleware"
	"smskit/pkg/migrations"
	"smskit/pkg/ratelimit"
	"smskit/pkg/tracing"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	mongoClient    *mongo.Client
	redis          *redis.Client
	source         sms.Source
	messages       *sms.Service
	binding        *permission.Binding
	flow           *permission.Flow
	plugin         *plugin.Plugin
	healthRegistry *health.CheckerRegistry
	router         *gin.Engine
	server         *http.Server
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(constants.ServiceName)
	}
	return &App{
		Base:           bootstrap.NewBase(cfg, log),
		dbConnector:    bootstrap.NewDatabaseConnector(cfg, log),
		healthRegistry: health.NewCheckerRegistry(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	ctx = logging.WithServiceName(ctx, constants.ServiceName)

	serviceName := a.Config.Tracing.ServiceName
	if serviceName == "" {
		serviceName = constants.ServiceName
	}
	tp, err := tracing.Init(a.Config.Tracing, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.Register()

	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.initSource(ctx); err != nil {
		return fmt.Errorf("failed to initialize message source: %w", err)
	}

	if err := a.InitBroker(); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	if err := a.initPlugin(ctx); err != nil {
		return fmt.Errorf("failed to initialize plugin: %w", err)
	}

	a.initRouter()
	a.initServer()

	return nil
}

// initDatabases connects only the backends the configuration uses.
func (a *App) initDatabases(ctx context.Context) error {
	if a.Config.Source.Type == constants.SourceTypePostgres {
		db, err := a.dbConnector.InitPostgreSQL(ctx)
		if err != nil {
			return err
		}
		a.db = db
		a.healthRegistry.Register(health.NewPostgreSQLChecker(db))

		if a.Config.Database.RunMigrations {
			if err := migrations.MigratePostgres(db); err != nil {
				return err
			}
		}
	}

	if a.Config.Source.Type == constants.SourceTypeMongoDB {
		client, err := a.dbConnector.InitMongoDB(ctx)
		if err != nil {
			return err
		}
		a.mongoClient = client
		a.healthRegistry.Register(health.NewMongoDBChecker(client))

		if a.Config.Database.RunMigrations {
			if err := migrations.EnsureInboxCollection(ctx, a.mongoDatabase(), a.Config.Source.Collection); err != nil {
				return err
			}
		}
	}

	if a.Config.Permission.Store == constants.PermissionStoreRedis {
		rdb, err := a.dbConnector.InitRedis(ctx)
		if err != nil {
			return err
		}
		a.redis = rdb
		a.healthRegistry.Register(health.NewRedisChecker(rdb))
	}

	return nil
}

func (a *App) mongoDatabase() *mongo.Database {
	if a.mongoClient == nil {
		return nil
	}
	name := a.Config.Database.MongoDB.Database
	if name == "" {
		name = constants.DefaultMongoDBName
	}
	return a.mongoClient.Database(name)
}

func (a *App) initSource(ctx context.Context) error {
	src, err := source.New(a.Config, source.Dependencies{
		Postgres: a.db,
		Mongo:    a.mongoDatabase(),
	})
	if err != nil {
		return err
	}
	a.source = src

	if breaker, ok := src.(*source.BreakerSource); ok {
		a.healthRegistry.Register(health.NewBreakerChecker("source_circuit_breaker", breaker.State))
		a.Logger.InfowCtx(ctx, "Circuit breaker enabled for message source", "source", src.Name())
	}

	a.Logger.InfowCtx(ctx, "Message source ready", "source", src.Name())
	return nil
}

func (a *App) permissionStore() permission.Store {
	if a.redis != nil {
		return permission.NewRedisStore(a.redis)
	}
	return permission.NewMemoryStore()
}

func (a *App) initPlugin(ctx context.Context) error {
	permCfg := a.Config.Permission
	store := a.permissionStore()

	if permCfg.InitialGranted {
		if err := store.Set(ctx, permCfg.Name, permission.Grant{Granted: true}); err != nil {
			return fmt.Errorf("failed to seed permission state: %w", err)
		}
	}

	platform := plugin.PlatformVersion(a.Config.Platform.Name, a.Config.Platform.Release)
	host := permission.NewStoreHost(store, permission.StoreHostOptions{
		Permission:         permCfg.Name,
		Platform:           platform,
		RuntimePermissions: a.Config.Platform.RuntimePermissions,
		AutoDecision:       permCfg.AutoDecision,
	}, a.Logger)

	a.binding = permission.NewBinding(host)
	a.flow = permission.NewFlow(a.binding, permCfg.Name, permCfg.RequestTimeout, a.Logger)

	opts := []sms.Option{
		sms.WithMaxLimit(a.Config.Query.MaxLimit),
		sms.WithExportTimeout(a.Config.Export.Timeout),
	}
	if a.Producer != nil {
		opts = append(opts, sms.WithExporter(export.NewTransactionExporter(a.Producer, a.Config.Export.Topic, a.Logger)))
		a.Logger.InfowCtx(ctx, "Transaction export enabled", "topic", a.Config.Export.Topic)
	}

	svc, err := sms.NewService(a.source, a.Logger, opts...)
	if err != nil {
		return err
	}
	a.messages = svc

	a.plugin = plugin.New(svc, permission.NewGate(a.binding), a.flow, platform, a.Logger)
	return nil
}

func (a *App) initRouter() {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(constants.ServiceName))
		router.Use(tracing.ContextMiddleware())
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())

	if a.Config.RateLimit.Enabled {
		rateLimitConfig := ratelimit.FromConfig(a.Config.RateLimit)
		router.Use(ratelimit.RateLimitMiddleware(rateLimitConfig))
		a.Logger.InfowCtx(context.Background(), "Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	api.NewHandler(a.plugin, a.flow, a.Logger).RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		h := a.healthRegistry.Check(c.Request.Context())
		c.JSON(health.HTTPStatus(h.Status), h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
}

func (a *App) initServer() {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.Config.Server.ReadTimeoutSeconds,
		WriteTimeout: a.Config.Server.WriteTimeoutSeconds,
	}
}

// Run serves until ctx is done or the server fails, then releases every
// resource.
func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		return a.stopServer()
	})

	runErr := g.Wait()
	if err := a.Shutdown(context.Background()); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// stopServer drains in-flight requests, then closes whatever is still open so
// blocked permission requests see their context cancelled.
func (a *App) stopServer() error {
	a.binding.Detach()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.Logger.WarnwCtx(shutdownCtx, "Graceful shutdown timed out, closing connections", "error", err)
		return a.server.Close()
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	ctx = logging.WithServiceName(ctx, constants.ServiceName)

	// Pending exports need the producer, which Base.Shutdown closes first.
	if a.messages != nil {
		drainCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
		if err := a.messages.Close(drainCtx); err != nil {
			a.Logger.WarnwCtx(ctx, "Pending transaction exports abandoned", "error", err)
		}
		cancel()
	}

	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redis, a.db, a.mongoClient)...)
		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
