// Command metricsd serves POST /metrics/session from the on-device pipeline.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/daniellalimbag/dory-app-sub000/internal/config"
	"github.com/daniellalimbag/dory-app-sub000/internal/server"
)

func main() {
	cfg := config.LoadDaemon()
	rdb := server.ConnectRedis(cfg)
	if rdb == nil {
		log.Printf("metricsd: REDIS_ADDR not set, response cache disabled")
	}
	if cfg.APIKeyHash == "" {
		log.Printf("metricsd: API_KEY_HASH not set, endpoint is unauthenticated")
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := Run(context.Background(), cfg, rdb, signals, nil); err != nil {
		log.Fatalf("metricsd: %v", err)
	}
}

// ListenFunc starts serving app on addr
type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	log.Printf("metricsd: listening on %s", addr)
	return app.Listen(addr)
}

// Run starts the HTTP server and waits for a signal, ctx or a listen error
func Run(ctx context.Context, cfg config.DaemonConfig, rdb *redis.Client, signals <-chan os.Signal, listen ListenFunc) error {
	srv := server.NewServer(cfg, rdb)

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.App.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	return nil
}
