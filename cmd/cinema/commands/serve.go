package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qs-lzh/cinema-booking/internal/app"
	"github.com/qs-lzh/cinema-booking/internal/cache"
	"github.com/qs-lzh/cinema-booking/internal/database"
	"github.com/qs-lzh/cinema-booking/internal/handler"
	"github.com/qs-lzh/cinema-booking/internal/mq"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg, logger, db, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := database.Migrate(db); err != nil {
		closeDB(db)
		return err
	}

	var redisCache *cache.RedisCache
	if cfg.CacheURL != "" {
		if redisCache, err = cache.NewRedisCache(cfg.CacheURL); err != nil {
			closeDB(db)
			return err
		}
	}
	var mqConn *amqp.Connection
	if cfg.MQURL != "" {
		if mqConn, err = mq.NewMQConn(cfg.MQURL); err != nil {
			if redisCache != nil {
				redisCache.Close()
			}
			closeDB(db)
			return err
		}
	}

	a := app.New(cfg, db, redisCache, mqConn, logger)
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close app", zap.Error(err))
		}
	}()
	if err := a.Init(); err != nil {
		return err
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := handler.NewRouter(a)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Addr),
			zap.Bool("cache", redisCache != nil), zap.Bool("mq", mqConn != nil))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
