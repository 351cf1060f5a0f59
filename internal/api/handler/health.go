package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campusware/rollcall/internal/domain"
	"github.com/campusware/rollcall/internal/face"
	"github.com/campusware/rollcall/internal/store"
)

type HealthHandler struct {
	store   store.Store
	matcher face.Matcher
}

func NewHealthHandler(st store.Store, matcher face.Matcher) *HealthHandler {
	return &HealthHandler{store: st, matcher: matcher}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type ReadyResponse struct {
	Status string              `json:"status"`
	Store  string              `json:"store"`
	Engine domain.EngineStatus `json:"engine"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: "0.1.0",
	})
}

// Ready reports whether the store answers and what state the face engine
// is in. An unreachable store fails readiness; a cold face index does
// not, since the engine lazily builds it on first verification.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	resp := ReadyResponse{
		Status: "ready",
		Store:  "ok",
		Engine: h.matcher.Status(c.Context()),
	}

	if err := h.store.Ping(c.Context()); err != nil {
		resp.Status = "degraded"
		resp.Store = "unreachable"
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}

	return c.JSON(resp)
}
