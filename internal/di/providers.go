package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Raghvendrath3/conceptForge/internal/config"
	"github.com/Raghvendrath3/conceptForge/internal/events"
	"github.com/Raghvendrath3/conceptForge/internal/handlers"
	"github.com/Raghvendrath3/conceptForge/internal/middleware"
	"github.com/Raghvendrath3/conceptForge/internal/observability"
	"github.com/Raghvendrath3/conceptForge/internal/repository"
	badgerstore "github.com/Raghvendrath3/conceptForge/internal/repository/badger"
	"github.com/Raghvendrath3/conceptForge/internal/repository/ddb"
	"github.com/Raghvendrath3/conceptForge/internal/repository/memory"
	"github.com/Raghvendrath3/conceptForge/internal/service/knowledge"
	"github.com/Raghvendrath3/conceptForge/internal/service/llm"
	"github.com/Raghvendrath3/conceptForge/internal/service/study"
	"github.com/Raghvendrath3/conceptForge/pkg/auth"
)

// ============================================================================
// CONFIG PROVIDERS
// ============================================================================

func provideLogLevel(cfg *config.Config) zap.AtomicLevel {
	return zap.NewAtomicLevelAt(cfg.Logging.ZapLevel())
}

// provideLogger creates a structured logger. JSON format uses the
// production encoder, console the development one. The level is shared so
// it can be changed at runtime.
func provideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, func(), error) {
	var zc zap.Config
	if cfg.Logging.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level

	logger, err := zc.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger = logger.With(zap.String("environment", string(cfg.Environment)))
	return logger, func() { _ = logger.Sync() }, nil
}

func provideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return observability.NewCollector(cfg.Metrics.Namespace)
}

func provideTracer(ctx context.Context, cfg *config.Config, version Version) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: string(cfg.Environment),
		Version:     string(version),
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}
	return tp, cleanup, nil
}

// ============================================================================
// INFRASTRUCTURE PROVIDERS
// ============================================================================

func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(loadCtx, awsconfig.WithRegion(cfg.Database.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

func newDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		timeout := 15 * time.Second
		if cfg.Environment == config.Development {
			timeout = 30 * time.Second
		}
		o.HTTPClient = &http.Client{Timeout: timeout}
		if cfg.Database.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Database.Endpoint)
		}
	})
}

// provideStore opens the storage backend named by database.provider.
func provideStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Repository, func(), error) {
	var store repository.Repository
	switch cfg.Database.Provider {
	case config.ProviderBadger:
		s, err := badgerstore.Open(badgerstore.Options{
			DataDir:    cfg.Database.BadgerDir,
			SyncWrites: cfg.Environment == config.Production,
			Logger:     logger.Named("badger"),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		store = s
	case config.ProviderDynamoDB:
		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store = ddb.New(newDynamoDBClient(awsCfg, cfg), cfg.Database.TableName)
	default:
		store = memory.New()
	}

	logger.Info("storage initialized", zap.String("provider", cfg.Database.Provider))
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close store", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

// providePublisher builds the event sink named by events.provider.
func providePublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (events.Publisher, func(), error) {
	var pub events.Publisher
	switch cfg.Events.Provider {
	case config.EventsEventBridge:
		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		client := awseventbridge.NewFromConfig(awsCfg, func(o *awseventbridge.Options) {
			o.HTTPClient = &http.Client{Timeout: 10 * time.Second}
		})
		pub = events.NewEventBridgePublisher(client, cfg.Events.EventBusName, logger.Named("eventbridge"))
	case config.EventsKafka:
		writer := events.NewKafkaWriter(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic)
		pub = events.NewKafkaPublisher(writer, logger.Named("kafka"))
	default:
		pub = events.NewLogPublisher(logger.Named("events"))
	}

	cleanup := func() {
		if err := pub.Close(); err != nil {
			logger.Error("failed to close event publisher", zap.Error(err))
		}
	}
	return pub, cleanup, nil
}

// provideSuggester picks the model provider. Gemini without an API key
// falls back to the mock so development works offline.
func provideSuggester(cfg *config.Config, logger *zap.Logger) *llm.Suggester {
	var provider llm.Provider = llm.NewMockProvider()
	if cfg.AI.Provider == config.AIProviderGemini {
		if cfg.AI.GeminiAPIKey == "" {
			logger.Warn("gemini selected without an API key, using the mock provider")
		} else {
			provider = llm.NewGeminiProvider(llm.GeminiConfig{
				APIKey:  cfg.AI.GeminiAPIKey,
				Model:   cfg.AI.Model,
				Timeout: cfg.AI.Timeout,
			}, logger.Named("gemini"))
		}
	}
	return llm.NewSuggester(provider, logger.Named("llm"))
}

// provideJWTValidator returns nil when no secret is configured.
func provideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if cfg.Security.JWTSecret == "" {
		return nil, nil
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     cfg.Security.JWTSecret,
		Issuer:        cfg.Security.JWTIssuer,
		Audience:      cfg.Security.JWTAudience,
	})
}

// ============================================================================
// APPLICATION PROVIDERS
// ============================================================================

func provideKnowledgeService(
	cfg *config.Config,
	repo repository.Repository,
	suggester *llm.Suggester,
	pub events.Publisher,
	metrics *observability.Collector,
	logger *zap.Logger,
) *knowledge.Service {
	return knowledge.NewService(repo, suggester, pub, metrics, logger,
		knowledge.WithMaxCandidates(cfg.AI.MaxCandidates))
}

func provideStudyService(
	repo repository.Repository,
	suggester *llm.Suggester,
	pub events.Publisher,
	metrics *observability.Collector,
	logger *zap.Logger,
) *study.Service {
	return study.NewService(repo, suggester, pub, metrics, logger)
}

// ============================================================================
// INTERFACE PROVIDERS
// ============================================================================

func provideRouter(
	cfg *config.Config,
	version Version,
	logger *zap.Logger,
	metrics *observability.Collector,
	store repository.Repository,
	validator *auth.JWTValidator,
	knowledgeSvc *knowledge.Service,
	studySvc *study.Service,
) *chi.Mux {
	httpLogger := logger.Named("http")
	return handlers.NewRouter(handlers.RouterConfig{
		Nodes:      handlers.NewNodeHandler(knowledgeSvc, httpLogger),
		Edges:      handlers.NewEdgeHandler(knowledgeSvc, httpLogger),
		Flashcards: handlers.NewFlashcardHandler(studySvc, httpLogger),
		AI:         handlers.NewAIHandler(knowledgeSvc, httpLogger),
		Health:     handlers.NewHealthHandler(store, string(version), httpLogger),
		Auth: middleware.AuthConfig{
			Enabled:   cfg.Security.EnableAuth,
			Validator: validator,
			DevUserID: cfg.Security.DevUserID,
			Logger:    httpLogger,
		},
		Metrics:        metrics,
		Logger:         httpLogger,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		CORSMaxAge:     cfg.CORS.MaxAge,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
}

// NewTokenGenerator mints development tokens accepted by the validator
// built from the same configuration.
func NewTokenGenerator(cfg *config.Config) (*auth.JWTGenerator, error) {
	return auth.NewJWTGenerator(auth.JWTGeneratorConfig{
		SecretKey:  cfg.Security.JWTSecret,
		Issuer:     cfg.Security.JWTIssuer,
		Audience:   cfg.Security.JWTAudience,
		ExpiryTime: cfg.Security.TokenExpiry,
	})
}
