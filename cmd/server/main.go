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
	"go.uber.org/zap"

	_ "github.com/invoicer/backend/docs"
	app "github.com/invoicer/backend/internal/application/invoice"
	"github.com/invoicer/backend/internal/infrastructure/config"
	"github.com/invoicer/backend/internal/infrastructure/logger"
	"github.com/invoicer/backend/internal/infrastructure/printing"
	"github.com/invoicer/backend/internal/infrastructure/telemetry"
	"github.com/invoicer/backend/internal/interfaces/http/handler"
	"github.com/invoicer/backend/internal/interfaces/http/middleware"
	"github.com/invoicer/backend/internal/interfaces/http/router"
)

//	@title			Invoicer API
//	@version		1.0
//	@description	Invoice builder backend: edit one invoice per owner, preview it and export it as PDF, JPG or CSV.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const (
	serviceVersion  = "1.0.0"
	shutdownTimeout = 30 * time.Second
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize OTEL logs", zap.Error(err))
	}
	if logsProvider.IsEnabled() {
		log, err = logger.New(logCfg, logsProvider.Core(logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Invoicer Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("store", cfg.Store.Driver),
		zap.String("assets", cfg.Asset.Backend),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	meter := meterProvider.Meter(telemetry.TracerName)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeURL,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	// Snapshot store
	backend, err := openSnapshotStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open snapshot store", zap.Error(err))
	}
	store := telemetry.NewTracedSnapshotStore(backend.store, cfg.Store.Driver)

	assets, err := openAssetStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open asset store", zap.Error(err))
	}
	logos := app.NewLogoPolicy(cfg.Asset.InlineLimitBytes, cfg.Asset.MaxUploadBytes, assets.store, log)

	invoiceMetrics, err := telemetry.NewInvoiceMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create invoice metrics", zap.Error(err))
	}

	// Rendering and export
	paper, _ := printing.ParsePaperSize(cfg.Export.PaperSize)
	engine := printing.NewTemplateEngine(printing.WithPaperSize(paper))
	preview := printing.NewPreviewRenderer(engine, cfg.Autosave.SessionIdleTTL, log)

	browser, err := printing.NewChromedpExporter(engine, &printing.ChromedpConfig{
		DefaultTimeout: cfg.Export.Timeout,
		ExecPath:       cfg.Export.ChromePath,
		DisableGPU:     cfg.Export.DisableGPU,
		NoSandbox:      cfg.Export.NoSandbox,
		DeviceScale:    cfg.Export.DeviceScale,
		JPEGQuality:    cfg.Export.JPEGQuality,
		MaxConcurrent:  cfg.Export.MaxConcurrent,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to create browser exporter", zap.Error(err))
	}
	exporter := telemetry.NewMeteredExporter(
		printing.NewExporter(browser, printing.NewSpreadsheetExporter(), log),
		invoiceMetrics,
	)

	// Editing sessions
	sessions := app.NewSessionManager(func(ownerID string) *app.Session {
		return app.NewSession(ownerID, app.SessionDeps{
			Store:    store,
			Renderer: preview,
			Logos:    logos,
			Listener: invoiceMetrics,
			Autosave: app.AutosaverConfig{
				Debounce:    cfg.Autosave.Debounce,
				SaveTimeout: cfg.Autosave.SaveTimeout,
			},
			Logger: log,
		})
	}, app.SessionManagerConfig{
		IdleTTL:         cfg.Autosave.SessionIdleTTL,
		CleanupInterval: cfg.Autosave.CleanupInterval,
		FlushTimeout:    cfg.Autosave.SaveTimeout,
	}, log)
	if err := invoiceMetrics.ObserveSessions(meter, sessions.Len); err != nil {
		log.Warn("Failed to observe session count", zap.Error(err))
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpEngine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := httpEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	} else {
		_ = httpEngine.SetTrustedProxies(nil)
	}

	httpEngine.Use(middleware.RequestID())
	httpEngine.Use(logger.Recovery(log))
	httpEngine.Use(logger.GinMiddleware(log))
	httpEngine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	secureConfig := middleware.DefaultSecurityConfig()
	secureConfig.FrameAncestors = cfg.HTTP.CORSAllowOrigins
	secureConfig.HSTSEnabled = cfg.HTTP.HSTSEnabled
	httpEngine.Use(middleware.SecureWithConfig(secureConfig))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	httpEngine.Use(middleware.CORSWithConfig(corsConfig))
	httpEngine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	httpEngine.Use(middleware.HTTPMetrics(meter))

	httpEngine.GET("/health", healthHandler(backend.ping))

	r := router.NewRouter(httpEngine,
		router.WithAPIVersion("v1"),
		router.WithSwagger(cfg.HTTP.SwaggerEnabled),
		router.WithAssets(cfg.Asset.BaseURL, assets.dir),
	)

	invoiceHandler := handler.NewInvoiceHandler(handler.InvoiceHandlerConfig{
		Sessions:      sessions,
		Preview:       preview,
		Exporter:      exporter,
		MaxLogoUpload: int64(cfg.Asset.MaxUploadBytes),
	})
	ownerConfig := middleware.DefaultOwnerConfig(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	ownerConfig.Logger = log
	if cfg.Auth.JWTSecret == "" {
		log.Warn("auth.jwt_secret is empty; owners are identified by the X-User-ID header")
	}
	profilingConfig := middleware.DefaultProfilingConfig()
	profilingConfig.Enabled = profiler.IsEnabled()

	r.Register(router.InvoiceRoutes(invoiceHandler,
		middleware.Owner(ownerConfig),
		middleware.TracingAttributeInjector(),
		middleware.Profiling(profilingConfig),
	))
	r.Register(router.SystemRoutes(handler.NewSystemHandler(cfg.App.Name, serviceVersion, sessions.Len)))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        httpEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Pending saves are written before the stores go away
	if err := sessions.CloseAll(shutdownCtx); err != nil {
		log.Error("Failed to flush sessions", zap.Error(err))
	}
	if err := browser.Close(); err != nil {
		log.Error("Error closing browser", zap.Error(err))
	}
	if backend.close != nil {
		if err := backend.close(); err != nil {
			log.Error("Error closing snapshot store", zap.Error(err))
		}
	}

	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	_ = meterProvider.Shutdown(shutdownCtx)
	_ = tracerProvider.Shutdown(shutdownCtx)
	_ = logsProvider.Shutdown(shutdownCtx)

	log.Info("Server exited gracefully")
}

// healthHandler reports whether the snapshot store is reachable
func healthHandler(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "healthy", "time": time.Now().Format(time.RFC3339), "store": "ok"}
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
				status["status"] = "unhealthy"
				status["store"] = "error"
				c.JSON(http.StatusServiceUnavailable, status)
				return
			}
		}
		c.JSON(http.StatusOK, status)
	}
}
