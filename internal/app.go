package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	assistant_adapter "homiio/internal/adapters/assistant"
	geocoding_adapter "homiio/internal/adapters/geocoding"
	logger_adapter "homiio/internal/adapters/logger"
	"homiio/internal/adapters/metrics"
	"homiio/internal/adapters/notifier"
	oxy_adapter "homiio/internal/adapters/oxy"
	postgres_adapter "homiio/internal/adapters/postgres"
	rabbitmq_adapter "homiio/internal/adapters/rabbitmq"
	"homiio/internal/adapters/ratelimit"
	redis_adapter "homiio/internal/adapters/redis"
	"homiio/internal/adapters/rest"
	scheduler_adapter "homiio/internal/adapters/scheduler"
	stripe_adapter "homiio/internal/adapters/stripe"
	"homiio/internal/configs"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"
	"homiio/internal/core/usecase"
	fluentlogger "homiio/pkg/fluent_logger"
	"homiio/pkg/postgres"
	"homiio/pkg/rabbitmq/rabbitmq_common"
	"homiio/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	rateLimiterSweepInterval = time.Minute
	rateLimiterIdleTTL       = 10 * time.Minute
)

// Options - флаги запуска, которые приходят из CLI.
type Options struct {
	MigrateOnStart bool
}

type App struct {
	config    *configs.AppConfig
	dbPool    *pgxpool.Pool
	apiServer *rest.Server

	redisClient  *redis.Client
	rmqConn      *rabbitmq_common.ConnectionManager
	producer     *rabbitmq_producer.Publisher
	consumer     *rabbitmq_adapter.NotificationsConsumerAdapter
	notifier     *notifier.SSENotifier
	scheduler    *scheduler_adapter.Scheduler
	limiters     []*ratelimit.KeyedLimiter
	fluentClient *fluent.Fluent
	logger       port.LoggerPort
}

// NewLogger собирает stdout и (если включен) Fluent Bit логгер в один.
// Возвращенный fluent-клиент закрывает вызывающий.
func NewLogger(appConfig *configs.AppConfig) (port.LoggerPort, *fluent.Fluent, error) {
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   appConfig.StdoutLogger.IsJSON,
		UseColor: !appConfig.StdoutLogger.IsJSON,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		var err error
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		if fluentClient != nil {
			fluentClient.Close()
		}
		return nil, nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	baseLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})
	return baseLogger, fluentClient, nil
}

func NewApp(appConfig *configs.AppConfig, opts Options) (*App, error) {
	baseLogger, fluentClient, err := NewLogger(appConfig)
	if err != nil {
		return nil, err
	}
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})

	a := &App{config: appConfig, fluentClient: fluentClient, logger: appLogger}
	if err := a.init(baseLogger, opts); err != nil {
		a.closeResources()
		return nil, err
	}
	return a, nil
}

// init поднимает зависимости по порядку. При ошибке уже открытое
// закрывает NewApp через closeResources.
func (a *App) init(baseLogger port.LoggerPort, opts Options) error {
	cfg := a.config
	appLogger := a.logger
	ctx := context.Background()

	// --- 1. ХРАНИЛИЩА ---
	if opts.MigrateOnStart {
		if err := RunMigrations(cfg.Database.URL, appLogger); err != nil {
			return err
		}
	}

	dbPool, err := postgres.NewClient(ctx, postgres.Config{
		DatabaseURL:     cfg.Database.URL,
		MaxConns:        int32(cfg.Database.MaxConns),
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", err, nil)
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	a.dbPool = dbPool
	appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

	profileRepo, err := postgres_adapter.NewProfileRepository(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create profile repository: %w", err)
	}
	propertyRepo, err := postgres_adapter.NewPropertyRepository(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create property repository: %w", err)
	}
	roomRepo, err := postgres_adapter.NewRoomRepository(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create room repository: %w", err)
	}
	leaseRepo, err := postgres_adapter.NewLeaseRepository(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create lease repository: %w", err)
	}
	viewingRepo, err := postgres_adapter.NewViewingRepository(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create viewing repository: %w", err)
	}
	notificationRepo, err := postgres_adapter.NewNotificationRepository(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create notification repository: %w", err)
	}
	billingRepo, err := postgres_adapter.NewBillingRepository(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create billing repository: %w", err)
	}
	chatRepo, err := postgres_adapter.NewChatRepository(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create chat repository: %w", err)
	}
	savedRepo, err := postgres_adapter.NewSavedPropertyRepository(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create saved property repository: %w", err)
	}
	appLogger.Info("All persistence adapters initialized.", nil)

	// Redis необязателен: без него нет кэша сессий и идемпотентности.
	var sessionCache port.SessionCachePort
	var idempotency port.IdempotencyPort
	if cfg.Redis.Enabled {
		redisClient, err := redis_adapter.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			appLogger.Warn("Redis unavailable, continuing without session cache", port.Fields{"error": err.Error()})
		} else {
			a.redisClient = redisClient
			sessionCache = redis_adapter.NewSessionCache(redisClient)
			idempotency = redis_adapter.NewIdempotencyStore(redisClient)
			appLogger.Info("Connected to Redis.", nil)
		}
	}

	appMetrics := metrics.New()

	// --- 2. БРОКЕР ---
	a.notifier = notifier.NewSSENotifier(baseLogger)

	var publisher port.EventPublisherPort
	if cfg.RabbitMQ.Enabled {
		rmqLogger := logger_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_connection"}))
		rmqConn, err := rabbitmq_common.NewConnectionManager(rabbitmq_common.Config{URL: cfg.RabbitMQ.URL}, rmqLogger)
		if err != nil {
			appLogger.Error("Failed to connect to RabbitMQ", err, nil)
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		a.rmqConn = rmqConn

		pubCfg := rabbitmq_adapter.EventsPublisherConfig(cfg.RabbitMQ.URL)
		pubCfg.Logger = logger_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_publisher"}))
		producer, err := rabbitmq_producer.NewPublisher(pubCfg, rmqConn)
		if err != nil {
			return fmt.Errorf("failed to create events publisher: %w", err)
		}
		a.producer = producer

		eventPublisher, err := rabbitmq_adapter.NewEventPublisherAdapter(producer, appMetrics)
		if err != nil {
			return fmt.Errorf("failed to create event publisher adapter: %w", err)
		}
		publisher = eventPublisher
	} else {
		appLogger.Warn("RabbitMQ disabled: domain events and notifications will not be produced", nil)
	}

	// --- 3. ВНЕШНИЕ СЕРВИСЫ ---
	var verifier *oxy_adapter.TokenVerifier
	if cfg.Oxy.JWTSecret != "" {
		verifier, err = oxy_adapter.NewTokenVerifier(cfg.Oxy.JWTSecret)
		if err != nil {
			return fmt.Errorf("failed to create token verifier: %w", err)
		}
	}
	identityProvider := oxy_adapter.NewClient(cfg.Oxy.APIURL, cfg.Oxy.Timeout, verifier)

	geocoder := geocoding_adapter.NewNominatimClient(cfg.Geocoder.URL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout)

	var paymentProvider port.PaymentProviderPort = stripe_adapter.DisabledProvider{}
	if cfg.StripeEnabled() {
		provider, err := stripe_adapter.NewProvider(stripe_adapter.Config{
			SecretKey:     cfg.Stripe.SecretKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
			Prices: map[domain.BillingProduct]string{
				domain.ProductPlus:        cfg.Stripe.PricePlus,
				domain.ProductFileCredits: cfg.Stripe.PriceFileCredits,
				domain.ProductFounder:     cfg.Stripe.PriceFounder,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create stripe provider: %w", err)
		}
		paymentProvider = provider
	} else {
		appLogger.Warn("STRIPE_SECRET_KEY is not set, billing is disabled", nil)
	}

	var assistant port.AssistantPort = assistant_adapter.DisabledAssistant{}
	if cfg.Assistant.APIKey != "" {
		openaiAssistant, err := assistant_adapter.NewOpenAIAssistant(assistant_adapter.Config{
			APIKey:  cfg.Assistant.APIKey,
			BaseURL: cfg.Assistant.BaseURL,
			Model:   cfg.Assistant.Model,
			Timeout: cfg.Assistant.Timeout,
		})
		if err != nil {
			return fmt.Errorf("failed to create assistant: %w", err)
		}
		assistant = openaiAssistant
	} else {
		appLogger.Warn("AI_API_KEY is not set, assistant is disabled", nil)
	}

	apiLimiter := ratelimit.NewKeyedLimiter(rate.Limit(cfg.Rest.RatePerSecond), cfg.Rest.RateBurst)
	chatLimiter := ratelimit.PerMinute(cfg.Assistant.RatePerMinute)
	a.limiters = []*ratelimit.KeyedLimiter{apiLimiter, chatLimiter}
	appLogger.Info("All service adapters initialized.", nil)

	// --- 4. USE CASES ---
	authenticateUC := usecase.NewAuthenticateUseCase(identityProvider, sessionCache, cfg.Oxy.SessionCacheTTL)
	resolveProfileUC := usecase.NewResolveProfileUseCase(profileRepo)

	handleEventUC := usecase.NewHandleDomainEventUseCase(notificationRepo, a.notifier)

	refreshLeasesUC := usecase.NewRefreshLeaseStatusesUseCase(leaseRepo, propertyRepo, publisher)
	expireViewingsUC := usecase.NewExpireStaleViewingsUseCase(viewingRepo, propertyRepo, publisher, appMetrics)

	handlers := rest.Handlers{
		Health: rest.NewHealthHandler(a.healthChecks()),
		Properties: rest.NewPropertyHandler(
			usecase.NewCreatePropertyUseCase(propertyRepo, geocoder),
			usecase.NewGetPropertyUseCase(propertyRepo),
			usecase.NewListPropertiesUseCase(propertyRepo),
			usecase.NewListOwnerPropertiesUseCase(propertyRepo),
			usecase.NewUpdatePropertyUseCase(propertyRepo, geocoder),
			usecase.NewDeletePropertyUseCase(propertyRepo, leaseRepo),
			usecase.NewGetPropertyPricingUseCase(propertyRepo),
			usecase.NewRecordPropertyViewUseCase(savedRepo, propertyRepo),
		),
		Rooms: rest.NewRoomHandler(
			usecase.NewCreateRoomUseCase(roomRepo, propertyRepo),
			usecase.NewListRoomsUseCase(roomRepo, propertyRepo),
			usecase.NewGetRoomUseCase(roomRepo),
			usecase.NewUpdateRoomUseCase(roomRepo, propertyRepo),
			usecase.NewDeleteRoomUseCase(roomRepo, propertyRepo),
		),
		Leases: rest.NewLeaseHandler(
			usecase.NewCreateLeaseUseCase(leaseRepo, propertyRepo, roomRepo, profileRepo),
			usecase.NewGetLeaseUseCase(leaseRepo),
			usecase.NewListLeasesUseCase(leaseRepo),
			usecase.NewUpdateLeaseUseCase(leaseRepo),
			usecase.NewSubmitLeaseUseCase(leaseRepo, publisher),
			usecase.NewSignLeaseUseCase(leaseRepo, propertyRepo, publisher),
			usecase.NewTerminateLeaseUseCase(leaseRepo, propertyRepo, publisher),
		),
		Profiles: rest.NewProfileHandler(
			usecase.NewListProfilesUseCase(profileRepo),
			usecase.NewGetProfileUseCase(profileRepo),
			usecase.NewCreateProfileUseCase(profileRepo),
			usecase.NewUpdateProfileUseCase(profileRepo),
			usecase.NewActivateProfileUseCase(profileRepo),
			usecase.NewDeleteProfileUseCase(profileRepo),
			usecase.NewSavePropertyUseCase(savedRepo, propertyRepo),
			usecase.NewUnsavePropertyUseCase(savedRepo),
			usecase.NewListSavedPropertiesUseCase(savedRepo, propertyRepo),
			usecase.NewListRecentlyViewedUseCase(savedRepo, propertyRepo),
		),
		Viewings: rest.NewViewingHandler(
			usecase.NewCreateViewingRequestUseCase(viewingRepo, propertyRepo, publisher, appMetrics),
			usecase.NewListMyViewingRequestsUseCase(viewingRepo),
			usecase.NewListPropertyViewingRequestsUseCase(viewingRepo, propertyRepo),
			usecase.NewGetViewingRequestUseCase(viewingRepo),
			usecase.NewApproveViewingRequestUseCase(viewingRepo, propertyRepo, publisher, appMetrics),
			usecase.NewDeclineViewingRequestUseCase(viewingRepo, propertyRepo, publisher, appMetrics),
			usecase.NewCancelViewingRequestUseCase(viewingRepo, propertyRepo, publisher, appMetrics),
		),
		Notifications: rest.NewNotificationHandler(
			usecase.NewListNotificationsUseCase(notificationRepo),
			usecase.NewMarkNotificationReadUseCase(notificationRepo),
			usecase.NewMarkAllNotificationsReadUseCase(notificationRepo),
			usecase.NewDeleteNotificationUseCase(notificationRepo),
			a.notifier,
		),
		Billing: rest.NewBillingHandler(
			usecase.NewCreateCheckoutSessionUseCase(billingRepo, paymentProvider, usecase.BillingURLs{
				SuccessURL: cfg.Stripe.SuccessURL,
				CancelURL:  cfg.Stripe.CancelURL,
			}),
			usecase.NewConfirmCheckoutSessionUseCase(billingRepo, paymentProvider, idempotency, publisher),
			usecase.NewHandleBillingWebhookUseCase(billingRepo, paymentProvider, idempotency, publisher),
			usecase.NewGetBillingStatusUseCase(billingRepo),
		),
		Chat: rest.NewChatHandler(
			usecase.NewSendChatMessageUseCase(chatRepo, assistant, chatLimiter),
			usecase.NewListConversationsUseCase(chatRepo),
			usecase.NewGetConversationUseCase(chatRepo),
			usecase.NewDeleteConversationUseCase(chatRepo),
		),
	}
	appLogger.Info("Use cases initialized.", nil)

	// --- 5. ФОНОВЫЕ ЗАДАЧИ И ПОТРЕБИТЕЛИ ---
	if a.rmqConn != nil {
		consumer, err := rabbitmq_adapter.NewNotificationsConsumerAdapter(
			rabbitmq_adapter.NotificationsConsumerConfig(cfg.RabbitMQ.URL),
			handleEventUC,
			baseLogger.WithFields(port.Fields{"component": "NotificationsConsumer"}),
			appMetrics,
			a.rmqConn,
		)
		if err != nil {
			return fmt.Errorf("failed to create notifications consumer: %w", err)
		}
		a.consumer = consumer
	}

	a.scheduler = scheduler_adapter.New(baseLogger)
	jobs := []scheduler_adapter.Job{
		{Name: "refresh_lease_statuses", Spec: cfg.Scheduler.LeaseRefreshCron, Run: refreshLeasesUC.Execute},
		{Name: "expire_stale_viewings", Spec: cfg.Scheduler.ViewingExpiryCron, Run: expireViewingsUC.Execute},
	}
	for _, job := range jobs {
		if err := a.scheduler.Add(job); err != nil {
			return err
		}
	}

	// --- 6. HTTP ---
	a.apiServer = rest.NewServer(handlers, rest.ServerOptions{
		Port:           cfg.Rest.PORT,
		AllowedOrigins: cfg.Rest.CORSAllowedOrigins,
		Auth:           rest.NewAuthMiddleware(authenticateUC, resolveProfileUC),
		Limiter:        apiLimiter,
		Metrics:        appMetrics,
		MetricsHandler: appMetrics.Handler(),
	}, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	return nil
}

func (a *App) healthChecks() map[string]rest.HealthCheck {
	checks := map[string]rest.HealthCheck{
		"postgres": func(ctx context.Context) error { return a.dbPool.Ping(ctx) },
	}
	if a.redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redisClient.Ping(ctx).Err() }
	}
	return checks
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	defer a.shutdown()

	a.logger.Info("Application is starting...", nil)

	for _, l := range a.limiters {
		go l.RunSweeper(appCtx, rateLimiterSweepInterval, rateLimiterIdleTTL)
	}

	consumerErrors := make(chan error, 1)
	if a.consumer != nil {
		go func() {
			a.logger.Info("Starting notifications consumer...", nil)
			if err := a.consumer.Start(appCtx); err != nil && appCtx.Err() == nil {
				consumerErrors <- err
			}
		}()
	}

	a.scheduler.Start(a.config.Scheduler.RunOnStart)

	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.Rest.PORT})
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-serverErrors:
		a.logger.Error("Server failed to start, shutting down", err, nil)
		runErr = err
	case err := <-consumerErrors:
		a.logger.Error("Notifications consumer stopped, shutting down", err, nil)
		runErr = err
	}

	return runErr
}

// shutdown: сначала HTTP, потом расписание и потребитель, затем пулы.
func (a *App) shutdown() {
	a.logger.Info("Shutdown sequence initiated...", nil)

	if a.apiServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.config.Rest.ShutdownTimeout)
		if err := a.apiServer.Stop(ctx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}
		cancel()
	}

	if a.scheduler != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.config.Rest.ShutdownTimeout)
		if err := a.scheduler.Stop(ctx); err != nil {
			a.logger.Error("Error during scheduler shutdown", err, nil)
		}
		cancel()
	}

	a.closeResources()
	a.logger.Info("Application shut down gracefully.", nil)

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			// fluent может быть уже недоступен
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
		a.fluentClient = nil
	}
}

func (a *App) closeResources() {
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("Error closing notifications consumer", err, nil)
		}
		a.consumer = nil
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("Error closing events publisher", err, nil)
		}
		a.producer = nil
	}
	if a.rmqConn != nil {
		if err := a.rmqConn.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
		a.rmqConn = nil
	}
	if a.notifier != nil {
		a.notifier.Close()
		a.notifier = nil
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("Error closing Redis client", err, nil)
		}
		a.redisClient = nil
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
		a.dbPool = nil
	}
}

// RunMigrations применяет встроенные миграции до последней версии.
func RunMigrations(databaseURL string, logger port.LoggerPort) error {
	migrator, err := postgres_adapter.NewMigrator(databaseURL)
	if err != nil {
		logger.Error("Failed to init migrator", err, nil)
		return err
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		logger.Error("Failed to apply migrations", err, nil)
		return err
	}
	version, dirty, err := migrator.Version()
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	logger.Info("Database migrations applied.", port.Fields{"version": version, "dirty": dirty})
	return nil
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
