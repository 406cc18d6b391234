package server

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/daniellalimbag/dory-app-sub000/internal/analysis"
	"github.com/daniellalimbag/dory-app-sub000/internal/metricsapi"
)

func (s *Server) handleSession(c *fiber.Ctx) error {
	var req metricsapi.SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.PoolLengthMeters < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "pool_length_m must be positive")
	}
	params := s.Params
	if req.PoolLengthMeters > 0 {
		params.PoolLengthMeters = req.PoolLengthMeters
	}

	// the key covers everything that changes the answer
	req.PoolLengthMeters = params.PoolLengthMeters
	normalized, err := json.Marshal(req)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	key := Key(normalized)

	ctx := c.UserContext()
	if cached, ok, err := s.Cache.Get(ctx, key); err != nil {
		log.Printf("server: cache get: %v", err)
	} else if ok {
		c.Set("X-Cache", "HIT")
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(cached)
	}

	res := analysis.Analyze(metricsapi.AnalysisSamples(req.Samples), params)
	body, err := json.Marshal(metricsapi.NewSessionResponse(&req, res))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if err := s.Cache.Set(ctx, key, body); err != nil {
		log.Printf("server: cache set: %v", err)
	}

	c.Set("X-Cache", "MISS")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}
