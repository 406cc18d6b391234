package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/daniellalimbag/dory-app-sub000/internal/analysis"
	"github.com/daniellalimbag/dory-app-sub000/internal/config"
)

// Server serves the metrics endpoint from the on-device pipeline
type Server struct {
	App    *fiber.App
	Cfg    config.DaemonConfig
	Params analysis.Params
	Cache  *Cache
}

// NewServer builds the fiber app. A nil redis client disables caching.
func NewServer(cfg config.DaemonConfig, rdb *redis.Client) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 64 * 1024 * 1024, // long sessions at 50 Hz
	})
	app.Use(recover.New())
	app.Use(logger.New())

	params := analysis.DefaultParams()
	if cfg.PoolLengthMeters > 0 {
		params.PoolLengthMeters = cfg.PoolLengthMeters
	}

	s := &Server{
		App:    app,
		Cfg:    cfg,
		Params: params,
		Cache:  NewCache(rdb, time.Duration(cfg.CacheTTLSeconds)*time.Second),
	}

	registerRoutes(s)
	return s
}

// ConnectRedis returns nil when no address is configured
func ConnectRedis(cfg config.DaemonConfig) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	metrics := s.App.Group("/metrics", APIKeyMiddleware(s.Cfg.APIKeyHash))
	metrics.Post("/session", s.handleSession)
}
