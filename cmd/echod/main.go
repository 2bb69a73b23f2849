package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/natefinch/lumberjack.v2"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	echo "github.com/lifeos/echo"
	"github.com/lifeos/echo/core"
	"github.com/lifeos/echo/executor"
	anthropicexec "github.com/lifeos/echo/executor/anthropic"
	openaiexec "github.com/lifeos/echo/executor/openai"
	remoteexec "github.com/lifeos/echo/executor/remote"
	"github.com/lifeos/echo/history"
	mongostore "github.com/lifeos/echo/history/mongo"
	mysqlstore "github.com/lifeos/echo/history/mysql"
	redisstore "github.com/lifeos/echo/history/redis"
	"github.com/lifeos/echo/logging"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := loadConfig()
	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	backend, err := newBackend(ctx, cfg)
	cancel()
	if err != nil {
		logger.Error("history backend init failed", "backend", cfg.Backend, "error", err)
		os.Exit(1)
	}

	ex, err := newExecutor(cfg)
	if err != nil {
		logger.Error("executor init failed", "executor", cfg.Executor, "error", err)
		os.Exit(1)
	}

	e := echo.New(func(o *echo.Options) {
		o.DefaultAgent = cfg.DefaultAgent
		o.HistoryLimit = cfg.HistoryLimit
		o.WorkingMemoryTurns = cfg.WorkingMemoryTurns
		o.Store = backend
		o.Logger = logger
	})
	e.RegisterAgent(cfg.DefaultAgent, ex)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           e.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("echod listening", "addr", cfg.Addr, "backend", cfg.Backend, "executor", ex.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("echod stopped")
}

func newLogger(cfg *config) logging.Logger {
	out := io.Writer(os.Stdout)
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Output:    out,
		Component: "echod",
	})
}

func newBackend(ctx context.Context, cfg *config) (core.HistoryStore, error) {
	switch cfg.Backend {
	case "mongo":
		client, err := mongodriver.Connect(ctx, mongooptions.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect to MongoDB: %w", err)
		}

		store, err := mongostore.New(mongostore.Options{
			Client:   client,
			Database: cfg.MongoDatabase,
		})
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			return nil, err
		}

		return store, nil

	case "redis":
		store, err := redisstore.New(redisstore.Options{
			Client: redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
			}),
		})
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			return nil, err
		}

		return store, nil

	case "mysql":
		if cfg.MySQLDSN == "" {
			return nil, errors.New("ECHO_MYSQL_DSN is required for the mysql backend")
		}

		db, err := gorm.Open(gormmysql.Open(cfg.MySQLDSN), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open MySQL connection: %w", err)
		}

		store, err := mysqlstore.New(mysqlstore.Options{DB: db})
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			return nil, err
		}

		return store, nil

	case "memory":
		return history.NewInMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func newExecutor(cfg *config) (executor.Executor, error) {
	switch cfg.Executor {
	case "anthropic":
		return anthropicexec.NewExecutor(), nil

	case "openai":
		return openaiexec.NewExecutor(), nil

	case "remote":
		if cfg.RemoteBaseURL == "" {
			return nil, errors.New("ECHO_REMOTE_URL is required for the remote executor")
		}

		return remoteexec.NewExecutor(cfg.RemoteBaseURL), nil

	case "mock":
		return executor.NewMockExecutor(cfg.DefaultAgent), nil

	default:
		return nil, fmt.Errorf("unknown executor %q", cfg.Executor)
	}
}
