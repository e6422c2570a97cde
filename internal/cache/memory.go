package cache

import (
	"context"
	"sync"
	"time"

	"github.com/bilgisen/weeklyissue/internal/utils"
)

// MemoryHistory is an in-process History, used when Redis is not configured
// and in tests
type MemoryHistory struct {
	mu   sync.Mutex
	data map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryHistory(ttl time.Duration) *MemoryHistory {
	return &MemoryHistory{
		data: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (m *MemoryHistory) Close() error {
	return nil
}

func (m *MemoryHistory) IsPublished(ctx context.Context, link string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := utils.URLKey(link)
	expires, ok := m.data[key]
	if !ok {
		return false, nil
	}
	if m.ttl > 0 && !m.now().Before(expires) {
		delete(m.data, key)
		return false, nil
	}
	return true, nil
}

func (m *MemoryHistory) MarkPublished(ctx context.Context, links []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	expires := m.now().Add(m.ttl)
	for _, link := range links {
		m.data[utils.URLKey(link)] = expires
	}
	return nil
}

// Len returns the number of remembered links
func (m *MemoryHistory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
