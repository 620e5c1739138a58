package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/journey-app/server/cmd/server/docs" // swagger docs
	"github.com/journey-app/server/internal/module/ai"
	"github.com/journey-app/server/internal/module/auth"
	"github.com/journey-app/server/internal/module/auth/oauth"
	"github.com/journey-app/server/internal/module/challenge"
	"github.com/journey-app/server/internal/module/crew"
	"github.com/journey-app/server/internal/module/notification"
	"github.com/journey-app/server/internal/module/ownership"
	"github.com/journey-app/server/internal/module/retrospect"
	"github.com/journey-app/server/internal/module/template"
	"github.com/journey-app/server/internal/module/user"
	"github.com/journey-app/server/internal/shared/cache"
	"github.com/journey-app/server/internal/shared/config"
	"github.com/journey-app/server/internal/shared/database"
	"github.com/journey-app/server/internal/shared/events"
	"github.com/journey-app/server/internal/shared/logger"
	"github.com/journey-app/server/internal/shared/metrics"
	"github.com/journey-app/server/internal/shared/middleware"
	"github.com/journey-app/server/internal/shared/storage"
)

// App wires configuration, infrastructure and modules into an HTTP server.
type App struct {
	config    *config.Config
	db        *gorm.DB
	redis     redis.UniversalClient
	router    *gin.Engine
	logger    *logger.Logger
	zapLogger *zap.Logger
	metrics   *metrics.Metrics
	eventBus  *events.Bus

	jwtManager *auth.JWTManager

	userHandler         *user.Handler
	crewHandler         *crew.Handler
	templateHandler     *template.Handler
	challengeHandler    *challenge.Handler
	retrospectHandler   *retrospect.Handler
	notificationHandler *notification.Handler
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	zapLog, err := logger.NewZap(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init zap logger: %w", err)
	}

	app := &App{
		config:    cfg,
		logger:    log,
		zapLogger: zapLog,
		metrics:   metrics.New("journey"),
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.db = db

	if err := app.migrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	if cfg.Redis.Address != "" {
		client, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		app.redis = client
	}

	app.eventBus = events.NewBus(zapLog)

	if err := app.initModules(); err != nil {
		return nil, err
	}

	app.router = app.setupRouter()
	app.registerRoutes()

	return app, nil
}

func (a *App) migrate() error {
	return a.db.AutoMigrate(
		&user.User{},
		&auth.RefreshToken{},
		&crew.Crew{},
		&crew.Membership{},
		&template.Template{},
		&challenge.Plan{},
		&challenge.Challenge{},
		&challenge.UserChallengeStatus{},
		&retrospect.Retrospect{},
		&retrospect.WeeklyAnalysis{},
		&notification.Notification{},
	)
}

func (a *App) initModules() error {
	cfg := a.config

	a.jwtManager = auth.NewJWTManager(&auth.JWTConfig{
		Secret:             cfg.Auth.JWTSecret,
		AccessTokenExpiry:  cfg.Auth.AccessTokenExpiry,
		RefreshTokenExpiry: cfg.Auth.RefreshTokenExpiry,
		Issuer:             "journey",
	})

	// Crew module is the membership ledger every other module leans on.
	crewService := crew.NewService(crew.NewRepository(a.db), a.eventBus, a.metrics, a.zapLogger)
	a.crewHandler = crew.NewHandler(crewService)

	resolver := ownership.NewResolver(crewService)

	templateService := template.NewService(template.NewRepository(a.db), resolver, a.zapLogger)
	a.templateHandler = template.NewHandler(templateService)

	llm := a.initLLMClient()

	challengeService := challenge.NewService(challenge.NewRepository(a.db), resolver, llm, a.zapLogger)
	a.challengeHandler = challenge.NewHandler(challengeService)

	retrospectService := retrospect.NewService(
		retrospect.NewRepository(a.db),
		resolver,
		crewService,
		llm,
		a.eventBus,
		a.zapLogger,
	)
	a.retrospectHandler = retrospect.NewHandler(retrospectService)

	notificationService := notification.NewService(notification.NewRepository(a.db), a.zapLogger)
	a.notificationHandler = notification.NewHandler(notificationService)
	a.eventBus.Register(notification.NewEventHandler(notificationService, a.zapLogger))

	if err := a.initUserModule(); err != nil {
		return err
	}
	return nil
}

// initLLMClient builds the LLM collaborator. Without an API key the
// client is disabled and callers skip enrichment.
func (a *App) initLLMClient() ai.Client {
	if a.config.LLM.APIKey == "" {
		a.zapLogger.Info("LLM collaborator disabled, no API key configured")
		return ai.Disabled()
	}

	inner := ai.NewHTTPClient(&a.config.LLM, a.zapLogger)
	return ai.NewBreakerClient(inner, &ai.BreakerConfig{
		FailureThreshold: a.config.LLM.FailureThreshold,
		Timeout:          a.config.LLM.BreakerTimeout,
	}, a.metrics)
}

func (a *App) initUserModule() error {
	cfg := a.config

	registry := oauth.NewRegistry()
	if cfg.OAuth.Kakao.ClientID != "" {
		registry.Register(oauth.NewKakaoProvider(&oauth.Config{
			ClientID:     cfg.OAuth.Kakao.ClientID,
			ClientSecret: cfg.OAuth.Kakao.ClientSecret,
			RedirectURL:  cfg.OAuth.Kakao.RedirectURL,
		}))
	}
	if cfg.OAuth.Naver.ClientID != "" {
		registry.Register(oauth.NewNaverProvider(&oauth.Config{
			ClientID:     cfg.OAuth.Naver.ClientID,
			ClientSecret: cfg.OAuth.Naver.ClientSecret,
			RedirectURL:  cfg.OAuth.Naver.RedirectURL,
		}))
	}

	var stateStore auth.StateStore
	if a.redis != nil {
		stateStore = auth.NewRedisStateStore(a.redis, cfg.OAuth.StateTTL)
	} else {
		stateStore = auth.NewMemoryStateStore(cfg.OAuth.StateTTL)
	}

	images, err := storage.NewImageStore(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("init image store: %w", err)
	}

	userService := user.NewService(
		user.NewRepository(a.db),
		auth.NewRefreshTokenRepository(a.db),
		a.jwtManager,
		registry,
		stateStore,
		images,
		a.metrics,
		a.zapLogger,
	)
	a.userHandler = user.NewHandler(userService)
	return nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.CORS(nil))
	r.Use(middleware.Metrics(a.metrics))

	r.GET("/health", func(c *gin.Context) {
		if err := database.Ping(c.Request.Context(), a.db); err != nil {
			c.JSON(503, gin.H{"status": "degraded"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	return r
}

func (a *App) registerRoutes() {
	v1 := a.router.Group("/api/v1")

	// Public routes resolve the caller when a token is present so
	// visibility filters can widen beyond PUBLIC.
	publicRouter := v1.Group("")
	publicRouter.Use(middleware.OptionalAuth(a.jwtManager))

	protectedRouter := v1.Group("")
	protectedRouter.Use(middleware.RequireAuth(a.jwtManager))

	// Credential endpoints are throttled per client IP when Redis is up.
	authRouter := publicRouter.Group("")
	if a.redis != nil {
		limiter := auth.NewRedisRateLimiter(a.redis)
		authRouter.Use(middleware.RateLimitByIP(limiter, a.config.Auth.LoginRateLimit, a.config.Auth.LoginRateWindow))
	}

	a.userHandler.RegisterRoutes(authRouter)
	a.userHandler.RegisterProtectedRoutes(protectedRouter)

	a.crewHandler.RegisterRoutes(protectedRouter)

	a.templateHandler.RegisterRoutes(publicRouter)
	a.templateHandler.RegisterProtectedRoutes(protectedRouter)

	a.challengeHandler.RegisterRoutes(protectedRouter)

	a.retrospectHandler.RegisterRoutes(publicRouter)
	a.retrospectHandler.RegisterProtectedRoutes(protectedRouter)

	a.notificationHandler.RegisterRoutes(protectedRouter)
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases infrastructure resources.
func (a *App) Stop() {
	if a.redis != nil {
		if err := cache.Close(a.redis); err != nil {
			a.zapLogger.Warn("close redis", zap.Error(err))
		}
	}
	if err := database.Close(a.db); err != nil {
		a.zapLogger.Warn("close database", zap.Error(err))
	}
	_ = a.zapLogger.Sync()
}
