package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
	memoryrepo "github.com/hijjiri/todo-api/internal/infrastructure/memory"
	mongorepo "github.com/hijjiri/todo-api/internal/infrastructure/mongo"
	mysqlrepo "github.com/hijjiri/todo-api/internal/infrastructure/mysql"
	httpadapter "github.com/hijjiri/todo-api/internal/interface/http"
	"github.com/hijjiri/todo-api/internal/observability"
	todo_usecase "github.com/hijjiri/todo-api/internal/usecase/todo"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

//----------------------
// 共通: getenv ヘルパ
//----------------------

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

//----------------------
// Config struct
//----------------------

type MongoConfig struct {
	URI      string
	Database string
}

type MySQLConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Config struct {
	HTTPAddr    string
	MetricsAddr string
	StoreDriver string
	Mongo       MongoConfig
	MySQL       MySQLConfig

	// 各リクエストに付与する deadline
	RequestTimeout time.Duration
}

// env から Config を読み込む。
// HTTP_ADDR が無ければ PORT（デフォルト 3000）から組み立てる。
func loadConfig(logger *zap.Logger) Config {
	// timeout は parse が必要なので、まず文字列で読む
	rawTimeout := getenv("REQUEST_TIMEOUT", "3s")
	timeout, err := time.ParseDuration(rawTimeout)
	if err != nil {
		// 起動失敗にはせず、warn して安全なデフォルトに落とす
		logger.Warn("invalid REQUEST_TIMEOUT, fallback to 3s",
			zap.String("raw", rawTimeout),
			zap.Error(err),
		)
		timeout = 3 * time.Second
	}

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":" + getenv("PORT", "3000")
	}

	return Config{
		HTTPAddr:    httpAddr,
		MetricsAddr: getenv("METRICS_ADDR", ":9464"),
		StoreDriver: getenv("STORE_DRIVER", "mongo"),
		Mongo: MongoConfig{
			URI:      getenv("MONGO_URI", "mongodb://127.0.0.1:27017"),
			Database: getenv("MONGO_DB", "todolist"),
		},
		MySQL: MySQLConfig{
			Host:     getenv("DB_HOST", "127.0.0.1"),
			Port:     getenv("DB_PORT", "3306"),
			User:     getenv("DB_USER", "root"),
			Password: getenv("DB_PASSWORD", "root"),
			Name:     getenv("DB_NAME", "todolist"),
		},
		RequestTimeout: timeout,
	}
}

//----------------------
// ストア接続 & ヘルスチェック
//----------------------

func buildMySQLDSN(cfg MySQLConfig) string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&timeout=5s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)
}

// 起動時は fail-fast：一定回数 ping が通らなければプロセスを終える。
// リクエスト処理中のストア障害は 500 で返すだけで、ここには来ない。
func pingStoreWithRetry(ctx context.Context, ping func(context.Context) error, logger *zap.Logger, maxAttempts int, interval time.Duration) error {
	for i := 1; i <= maxAttempts; i++ {
		if err := ping(ctx); err != nil {
			logger.Warn("failed to ping store",
				zap.Int("attempt", i),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
				continue
			}
		} else {
			return nil
		}
	}
	return fmt.Errorf("failed to ping store after %d attempts", maxAttempts)
}

//----------------------
// main
//----------------------

func main() {
	// ---- Logger ----
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}
	defer logger.Sync()

	// ---- Config 読み込み ----
	cfg := loadConfig(logger)
	logger.Info("loaded config",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("metrics_addr", cfg.MetricsAddr),
		zap.String("store_driver", cfg.StoreDriver),
		zap.Duration("request_timeout", cfg.RequestTimeout),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Tracing ----
	shutdownTracing, err := observability.SetupTracing("todo-api")
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("failed to shutdown tracing", zap.Error(err))
		}
	}()

	// ---- ストア接続 ----
	// 接続ハンドルはここで1回だけ作り、Repository に注入して全リクエストで共有する
	var (
		repo  domain_todo.Repository
		store httpadapter.Pinger
	)

	switch cfg.StoreDriver {
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().
			ApplyURI(cfg.Mongo.URI).
			SetServerSelectionTimeout(5*time.Second),
		)
		if err != nil {
			logger.Fatal("failed to create mongo client", zap.Error(err))
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.Error("failed to disconnect mongo", zap.Error(err))
			}
		}()

		pingFn := func(ctx context.Context) error { return client.Ping(ctx, nil) }
		if err := pingStoreWithRetry(ctx, pingFn, logger, 20, 3*time.Second); err != nil {
			logger.Fatal("failed to connect store", zap.Error(err))
		}

		logger.Info("connected to MongoDB",
			zap.String("uri", cfg.Mongo.URI),
			zap.String("db", cfg.Mongo.Database),
		)

		r := mongorepo.NewTodoRepository(client.Database(cfg.Mongo.Database), logger)
		repo, store = r, r

	case "mysql":
		db, err := sql.Open("mysql", buildMySQLDSN(cfg.MySQL))
		if err != nil {
			logger.Fatal("failed to open db", zap.Error(err))
		}
		defer db.Close()

		if err := pingStoreWithRetry(ctx, db.PingContext, logger, 20, 3*time.Second); err != nil {
			logger.Fatal("failed to connect store", zap.Error(err))
		}

		logger.Info("connected to MySQL",
			zap.String("host", cfg.MySQL.Host),
			zap.String("port", cfg.MySQL.Port),
			zap.String("db", cfg.MySQL.Name),
		)

		r := mysqlrepo.NewTodoRepository(db)
		repo, store = r, r

	case "memory":
		logger.Info("using in-memory store")
		r := memoryrepo.NewTodoRepository()
		repo, store = r, r

	default:
		logger.Fatal("unknown STORE_DRIVER", zap.String("store_driver", cfg.StoreDriver))
	}

	// ---- Usecase & Handler ----
	uc := todo_usecase.New(repo, logger)
	handler := httpadapter.NewTodoHandler(uc, store, logger)

	// ---- Metrics ----
	metrics := observability.NewHTTPMetrics(prometheus.DefaultRegisterer)

	// ---- Middleware chain（内 → 外の順） ----
	var h http.Handler = handler.Routes()
	h = httpadapter.WithTracing()(h)
	h = httpadapter.WithTimeout(cfg.RequestTimeout)(h)
	h = httpadapter.WithMetrics(metrics)(h)
	h = httpadapter.WithLogging(logger)(h)
	h = httpadapter.WithCORS(h)
	h = httpadapter.WithRecovery(logger)(h)

	// ---- metrics HTTP サーバ (/metrics) ----
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		logger.Info("metrics server started", zap.String("addr", cfg.MetricsAddr))

		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()

	// ---- API サーバ ----
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server is starting", zap.String("addr", cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server exited with error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", zap.Error(err))
	}

	logger.Info("server stopped")
}
