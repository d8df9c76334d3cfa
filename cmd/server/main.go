package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Skufu/heartcheck/internal/artifacts"
	"github.com/Skufu/heartcheck/internal/logger"
	"github.com/Skufu/heartcheck/internal/metrics"
	"github.com/Skufu/heartcheck/internal/store"
)

type Config struct {
	Port          string
	GinMode       string
	Artifacts     artifacts.Paths
	LogLevel      string
	LogFormat     string
	LogFile       string
	EnableMetrics bool
	EnableDB      bool
	DatabaseURL   string
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	bundle, err := artifacts.Load(cfg.Artifacts)
	if err != nil {
		zl.Fatal("artifact load failed", zap.Error(err))
	}
	if err := bundle.Check(); err != nil {
		zl.Warn("artifact widths disagree, predictions will fail", zap.Error(err))
	}
	predictor, err := bundle.Predictor()
	if err != nil {
		zl.Fatal("predictor setup failed", zap.Error(err))
	}
	zl.Info("artifacts loaded",
		zap.String("model", bundle.ModelKind),
		zap.Int("columns", bundle.Schema.Len()),
		zap.String("model_path", cfg.Artifacts.Model),
	)

	ctx := context.Background()
	var audit AssessmentLog
	if cfg.EnableDB {
		st, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			zl.Fatal("database connection failed", zap.Error(err))
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			zl.Fatal("database migration failed", zap.Error(err))
		}
		audit = st
	}

	var m *metrics.Metrics
	if cfg.EnableMetrics {
		m = metrics.New()
		m.SchemaColumns.Set(float64(bundle.Schema.Len()))
	}

	router := setupRouter(routerDeps{
		predictor:  predictor,
		modelKind:  bundle.ModelKind,
		log:        zl,
		metrics:    m,
		audit:      audit,
		staticRoot: detectStaticRoot(),
	})
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	zl.Info("server listening", zap.String("port", cfg.Port), zap.Bool("db", cfg.EnableDB))
	waitForShutdown(server, zl)
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "release"),
		Artifacts: artifacts.Paths{
			Model:   getEnv("MODEL_PATH", "artifacts/knn_heart_model.json"),
			Scaler:  getEnv("SCALER_PATH", "artifacts/heart_scaler.json"),
			Columns: getEnv("COLUMNS_PATH", "artifacts/heart_columns.json"),
		},
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		LogFile:       os.Getenv("LOG_FILE"),
		EnableMetrics: strings.EqualFold(getEnv("ENABLE_METRICS", "true"), "true"),
		EnableDB:      strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

func waitForShutdown(server *http.Server, zl *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zl.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
