package api

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bilgisen/weeklyissue/internal/config"
	"github.com/bilgisen/weeklyissue/internal/generator"
	"github.com/bilgisen/weeklyissue/internal/logger"
	"github.com/bilgisen/weeklyissue/internal/middleware"
	"github.com/bilgisen/weeklyissue/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// RunFunc executes one generation with the given config
type RunFunc func(ctx context.Context, cfg *config.Config) generator.Result

// GenerateRequest overrides parts of the configuration for one run
type GenerateRequest struct {
	Mode   string `json:"mode" validate:"omitempty,oneof=combined per_section"`
	Search *bool  `json:"search"`
	Format string `json:"format" validate:"omitempty,oneof=html json both"`
}

type Handlers struct {
	config     *config.Config
	storage    *storage.Storage
	run        RunFunc
	runTimeout time.Duration

	running atomic.Bool
	wg      sync.WaitGroup

	mu   sync.RWMutex
	last *generator.Result
}

func NewHandlers(cfg *config.Config, store *storage.Storage, run RunFunc) *Handlers {
	return &Handlers{
		config:     cfg,
		storage:    store,
		run:        run,
		runTimeout: 30 * time.Minute,
	}
}

// Wait blocks until a background run, if any, has finished
func (h *Handlers) Wait() {
	h.wg.Wait()
}

// LastResult returns the result of the most recent finished run
func (h *Handlers) LastResult() (generator.Result, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.last == nil {
		return generator.Result{}, false
	}
	return *h.last, true
}

// HealthCheck handles the /health endpoint
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	resp := fiber.Map{
		"status":  "ok",
		"version": Version,
		"time":    time.Now().Format(time.RFC3339),
		"running": h.running.Load(),
	}
	if last, ok := h.LastResult(); ok {
		resp["last_run"] = last
	}
	return c.JSON(resp)
}

// GetIssue handles GET /api/v1/issue
func (h *Handlers) GetIssue(c *fiber.Ctx) error {
	data, err := h.storage.ReadJSON(c.Context())
	if err != nil {
		if errors.Is(err, storage.ErrArtifactMissing) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Issue not generated yet",
			})
		}
		logger.Get().Error().Err(err).Msg("Error reading issue")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read issue",
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(data)
}

// Generate handles POST /api/v1/admin/generate
func (h *Handlers) Generate(c *fiber.Ctx) error {
	log := logger.Get()

	req, _ := c.Locals(middleware.ValidatedKey).(*GenerateRequest)
	if req == nil {
		req = &GenerateRequest{}
	}

	if !h.running.CompareAndSwap(false, true) {
		log.Warn().Str("ip", c.IP()).Msg("Generation already running")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "A generation run is already in progress",
		})
	}

	cfg := *h.config
	if req.Mode != "" {
		cfg.Mode = req.Mode
	}
	if req.Search != nil {
		cfg.EnableSearch = *req.Search
	}
	if req.Format != "" {
		cfg.OutputFormat = req.Format
	}

	log.Info().
		Str("ip", c.IP()).
		Str("mode", cfg.Mode).
		Bool("search", cfg.EnableSearch).
		Str("format", cfg.OutputFormat).
		Msg("Starting background generation")

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.running.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), h.runTimeout)
		defer cancel()

		res := h.run(ctx, &cfg)

		h.mu.Lock()
		h.last = &res
		h.mu.Unlock()

		log.Info().
			Str("run_id", res.RunID).
			Str("outcome", res.Outcome.String()).
			Msg("Background generation finished")
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":  "started",
		"message": "Generation started in the background",
		"mode":    cfg.Mode,
		"search":  cfg.EnableSearch,
		"format":  cfg.OutputFormat,
	})
}
