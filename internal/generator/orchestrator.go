package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bilgisen/weeklyissue/internal/ai"
	"github.com/bilgisen/weeklyissue/internal/cache"
	"github.com/bilgisen/weeklyissue/internal/config"
	"github.com/bilgisen/weeklyissue/internal/issue"
	"github.com/bilgisen/weeklyissue/internal/logger"
	"github.com/bilgisen/weeklyissue/internal/models"
	"github.com/bilgisen/weeklyissue/internal/render"
	"github.com/bilgisen/weeklyissue/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrAttemptsExhausted wraps the last failure of a call that never
	// produced usable output
	ErrAttemptsExhausted = errors.New("attempts exhausted")
	// ErrMissingAPIKey is returned when no Gemini credential is configured
	ErrMissingAPIKey = &config.ConfigError{Field: "GEMINI_API_KEY", Message: "is not set"}

	errShortSection = errors.New("section under-delivered")
)

// Mirror receives a copy of the JSON artifact after publishing
type Mirror interface {
	Put(ctx context.Context, data []byte) error
	Location() string
}

// ImageChecker clears unreachable image links
type ImageChecker interface {
	Filter(ctx context.Context, items []models.NewsItem) []models.NewsItem
}

// Deps are the collaborators of a run. History, Mirror and Checker are
// optional.
type Deps struct {
	Client  ai.Client
	Storage *storage.Storage
	History cache.History
	Mirror  Mirror
	Checker ImageChecker
}

// Orchestrator drives one generation run from prompt to published artifact
type Orchestrator struct {
	cfg  config.Config
	deps Deps
	pp   *ai.PostProcessor

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an orchestrator. The config is copied; later changes to cfg do
// not affect it.
func New(cfg *config.Config, deps Deps) *Orchestrator {
	c := *cfg
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	return &Orchestrator{
		cfg:   c,
		deps:  deps,
		pp:    ai.NewPostProcessor(c.BrandName),
		now:   time.Now,
		sleep: sleepContext,
	}
}

// Run executes one generation. It never panics on model output and always
// returns a Result whose Outcome says what happened.
func (o *Orchestrator) Run(ctx context.Context) Result {
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: o.now(),
	}
	log := logger.WithRun(res.RunID)
	ctx = log.WithContext(ctx)
	res.Week = models.NewWeekInfo(res.StartedAt)

	log.Info().
		Str("mode", o.cfg.Mode).
		Bool("search", o.cfg.EnableSearch).
		Str("format", o.cfg.OutputFormat).
		Str("vol", res.Week.Vol).
		Msg("Starting generation run")

	if !o.cfg.HasAPIKey() {
		log.Error().Err(ErrMissingAPIKey).Msg("Missing API credential, aborting")
		return res.finish(FatalConfig, ErrMissingAPIKey)
	}
	if o.deps.Client == nil || o.deps.Storage == nil {
		err := errors.New("generator is missing its client or storage")
		log.Error().Err(err).Msg("Generator not wired")
		return res.finish(FatalConfig, err)
	}

	raw, err := o.generate(ctx, res)
	if err != nil {
		switch {
		case ai.IsQuotaError(err):
			log.Warn().Err(err).Int("calls", res.Calls).Msg("Quota exhausted, skipping this run")
			return res.finish(SkippedQuota, err)
		default:
			log.Error().Err(err).Int("calls", res.Calls).Msg("No usable model output, aborting")
			return res.finish(AbortedIncomplete, err)
		}
	}

	raw = o.dropPublished(ctx, raw)
	if o.cfg.CheckImages && o.deps.Checker != nil {
		for id, items := range raw {
			raw[id] = o.deps.Checker.Filter(ctx, items)
		}
	}

	sections, err := issue.NewAssembler(o.pp.Placeholder, o.cfg.PadMissing).Assemble(raw)
	if err != nil {
		log.Error().Err(err).Msg("Issue incomplete, aborting")
		return res.finish(AbortedIncomplete, err)
	}
	res.Items, res.Placeholders = issue.Count(sections)
	if res.Placeholders > 0 {
		log.Warn().Int("placeholders", res.Placeholders).Msg("Padded under-delivered sections")
	}

	artifact, err := o.publish(ctx, res.Week, sections)
	if err != nil {
		log.Error().Err(err).Msg("Failed to write artifact")
		return res.finish(FailedArtifact, err)
	}

	o.mirror(ctx, artifact)
	o.record(ctx, sections)

	log.Info().
		Int("items", res.Items).
		Int("placeholders", res.Placeholders).
		Int("calls", res.Calls).
		Dur("duration", time.Since(res.StartedAt)).
		Msg("Issue published")
	return res.finish(Published, nil)
}

// generate asks the model for every section, per the configured mode
func (o *Orchestrator) generate(ctx context.Context, res *Result) (map[string][]models.NewsItem, error) {
	if o.cfg.Mode == config.ModePerSection {
		return o.generatePerSection(ctx, res)
	}

	var sections map[string][]models.NewsItem
	req := ai.Request{Prompt: ai.BuildCombinedPrompt(res.Week), Search: o.cfg.EnableSearch}
	err := o.call(ctx, res, "combined", req, func(v any) error {
		split, err := o.pp.SplitSections(v)
		if err != nil {
			return err
		}
		if !o.cfg.PadMissing {
			for _, id := range models.SectionIDs() {
				if n := len(split[id]); n < models.ItemsPerSection {
					return fmt.Errorf("%w: %s has %d items", errShortSection, id, n)
				}
			}
		}
		sections = split
		return nil
	})
	return sections, err
}

// generatePerSection calls the model once per section, sequentially. A
// section that exhausts its attempts stays empty; the run only fails when
// every section did.
func (o *Orchestrator) generatePerSection(ctx context.Context, res *Result) (map[string][]models.NewsItem, error) {
	log := zerolog.Ctx(ctx)
	sections := make(map[string][]models.NewsItem)
	var lastErr error

	for i, meta := range models.SectionCatalog {
		if i > 0 {
			if err := o.sleep(ctx, o.cfg.SectionDelay); err != nil {
				return nil, err
			}
		}

		req := ai.Request{Prompt: ai.BuildSectionPrompt(res.Week, meta), Search: o.cfg.EnableSearch}
		err := o.call(ctx, res, meta.ID, req, func(v any) error {
			items, err := o.pp.ProcessItems(v)
			if err != nil {
				return err
			}
			if !o.cfg.PadMissing && len(items) < models.ItemsPerSection {
				return fmt.Errorf("%w: %s has %d items", errShortSection, meta.ID, len(items))
			}
			sections[meta.ID] = items
			return nil
		})
		switch {
		case err == nil:
			log.Info().Str("section", meta.ID).Int("items", len(sections[meta.ID])).Msg("Section generated")
		case ai.IsQuotaError(err), ctx.Err() != nil:
			return nil, err
		default:
			log.Warn().Err(err).Str("section", meta.ID).Msg("Section failed, leaving it empty")
			lastErr = err
		}
	}

	if len(sections) == 0 {
		return nil, lastErr
	}
	return sections, nil
}

// call performs one model request with bounded retries. Quota errors end
// the call at once; transport and parse failures are retried after
// RetryDelay.
func (o *Orchestrator) call(ctx context.Context, res *Result, label string, req ai.Request, decode func(any) error) error {
	log := zerolog.Ctx(ctx).With().Str("call", label).Logger()
	var lastErr error

	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := o.sleep(ctx, o.cfg.RetryDelay); err != nil {
				return err
			}
		}

		res.Calls++
		text, err := o.deps.Client.Generate(ctx, req)
		if err != nil {
			if ai.IsQuotaError(err) {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			lastErr = err
			log.Warn().Err(err).Int("attempt", attempt).Msg("Gemini call failed")
			continue
		}

		v, err := ai.ExtractJSON(text)
		if err != nil {
			lastErr = err
			log.Warn().Err(err).Int("attempt", attempt).Int("response_len", len(text)).Msg("No JSON in response")
			continue
		}

		if err := decode(v); err != nil {
			lastErr = err
			log.Warn().Err(err).Int("attempt", attempt).Msg("Unusable response shape")
			continue
		}
		return nil
	}

	return fmt.Errorf("%s: %w after %d attempts: %w", label, ErrAttemptsExhausted, o.cfg.MaxAttempts, lastErr)
}

// dropPublished removes stories whose link already appeared in an earlier
// issue. History failures are logged and the stories kept.
func (o *Orchestrator) dropPublished(ctx context.Context, raw map[string][]models.NewsItem) map[string][]models.NewsItem {
	if o.deps.History == nil {
		return raw
	}
	log := zerolog.Ctx(ctx)

	dropped := 0
	out := make(map[string][]models.NewsItem, len(raw))
	for id, items := range raw {
		kept := make([]models.NewsItem, 0, len(items))
		for _, item := range items {
			if item.HasLink() {
				published, err := o.deps.History.IsPublished(ctx, item.URL)
				if err != nil {
					log.Warn().Err(err).Msg("History lookup failed, keeping stories")
					return raw
				}
				if published {
					dropped++
					continue
				}
			}
			kept = append(kept, item)
		}
		out[id] = kept
	}

	if dropped > 0 {
		log.Info().Int("dropped", dropped).Msg("Dropped already published stories")
	}
	return out
}

// publish renders and writes the configured artifacts. The page is patched
// before the JSON file is written.
func (o *Orchestrator) publish(ctx context.Context, week models.WeekInfo, sections []models.Section) (*storage.Artifact, error) {
	log := zerolog.Ctx(ctx)
	generatedAt := o.now()

	if o.cfg.WritesHTML() {
		configBlock := render.ConfigBlock(week, generatedAt)
		sectionsBlock := render.SectionsBlock(sections)
		if err := o.deps.Storage.PatchPage(ctx, configBlock, sectionsBlock); err != nil {
			return nil, err
		}
		log.Info().Str("path", o.deps.Storage.PagePath()).Msg("Page patched")
	}

	artifact := storage.NewArtifact(week, sections, generatedAt)
	if o.cfg.WritesJSON() {
		if err := o.deps.Storage.WriteJSON(ctx, artifact); err != nil {
			return nil, err
		}
		log.Info().Str("path", o.deps.Storage.JSONPath()).Msg("JSON artifact written")
	}
	return artifact, nil
}

// mirror uploads the JSON artifact. Upload failures do not change the outcome.
func (o *Orchestrator) mirror(ctx context.Context, artifact *storage.Artifact) {
	if o.deps.Mirror == nil {
		return
	}
	log := zerolog.Ctx(ctx)

	data, err := artifact.Marshal()
	if err == nil {
		err = o.deps.Mirror.Put(ctx, data)
	}
	if err != nil {
		log.Error().Err(err).Str("target", o.deps.Mirror.Location()).Msg("Failed to mirror artifact")
		return
	}
	log.Info().Str("target", o.deps.Mirror.Location()).Msg("Artifact mirrored")
}

// record marks the published story links in the history
func (o *Orchestrator) record(ctx context.Context, sections []models.Section) {
	if o.deps.History == nil {
		return
	}

	var published []string
	for _, s := range sections {
		for _, item := range s.Items {
			if item.HasLink() && !item.IsPlaceholder() {
				published = append(published, item.URL)
			}
		}
	}
	if err := o.deps.History.MarkPublished(ctx, published); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Failed to record published stories")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
