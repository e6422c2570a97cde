package links

import (
	"context"
	"net/http"
	"time"

	"github.com/bilgisen/weeklyissue/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Options tunes the link checker
type Options struct {
	Timeout     time.Duration
	RetryCount  int
	RetryWait   time.Duration
	Concurrency int
}

// DefaultOptions are used for zero fields
var DefaultOptions = Options{
	Timeout:     10 * time.Second,
	RetryCount:  2,
	RetryWait:   time.Second,
	Concurrency: 6,
}

// Checker probes image links and clears the ones that do not resolve
type Checker struct {
	client      *resty.Client
	concurrency int
}

func NewChecker(opts Options) *Checker {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions.Timeout
	}
	if opts.RetryCount < 0 {
		opts.RetryCount = 0
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = DefaultOptions.RetryWait
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultOptions.Concurrency
	}

	return &Checker{
		client: resty.New().
			SetTimeout(opts.Timeout).
			SetRetryCount(opts.RetryCount).
			SetRetryWaitTime(opts.RetryWait).
			SetRetryMaxWaitTime(4 * opts.RetryWait).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() >= http.StatusInternalServerError
			}),
		concurrency: opts.Concurrency,
	}
}

// Alive reports whether link answers a HEAD request with a non-error status.
// Servers rejecting HEAD get one GET.
func (c *Checker) Alive(ctx context.Context, link string) bool {
	resp, err := c.client.R().SetContext(ctx).Head(link)
	if err == nil && resp.StatusCode() == http.StatusMethodNotAllowed {
		resp, err = c.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(link)
		if err == nil {
			resp.RawBody().Close()
		}
	}
	if err != nil {
		return false
	}
	return resp.StatusCode() < http.StatusBadRequest
}

// Filter returns a copy of items with dead image links cleared. Items are
// probed concurrently; order is preserved.
func (c *Checker) Filter(ctx context.Context, items []models.NewsItem) []models.NewsItem {
	out := make([]models.NewsItem, len(items))
	copy(out, items)

	log := zerolog.Ctx(ctx)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.concurrency)

	for i := range out {
		if out[i].Image == "" {
			continue
		}
		eg.Go(func() error {
			if !c.Alive(egCtx, out[i].Image) {
				log.Debug().
					Str("image", out[i].Image).
					Str("title", out[i].Title).
					Msg("Dropping unreachable image")
				out[i].Image = ""
			}
			return nil
		})
	}
	_ = eg.Wait()

	return out
}
