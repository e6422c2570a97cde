package cache

import "context"

// History remembers which story links were already published so the next
// issue does not repeat them
type History interface {
	IsPublished(ctx context.Context, link string) (bool, error)
	MarkPublished(ctx context.Context, links []string) error
	Close() error
}
