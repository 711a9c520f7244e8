// Package about provides the lawyer's marketing description shown by /about.
package about

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// DefaultDescription is shown when the description could not be fetched.
const DefaultDescription = "⚖️ Адвокат по уголовным делам.\n\n" +
	"Защита на стадии проверки и следствия, участие в допросах и обысках, " +
	"представительство в суде. Консультации очно и онлайн.\n\n" +
	"Чтобы связаться с адвокатом, выберите «Экстренный вызов» или «Записаться на консультацию»."

// Fetcher loads the description from its source.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// Cache is a single-slot, process-wide cache. The first call to GetOrFetch
// performs the only fetch; later calls return the cached result. A failed
// fetch leaves the default in place until the process restarts.
type Cache struct {
	fetcher Fetcher
	log     *zap.Logger

	once  sync.Once
	value string
}

func NewCache(f Fetcher, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{fetcher: f, log: log}
}

func (c *Cache) GetOrFetch(ctx context.Context) string {
	c.once.Do(func() {
		c.value = DefaultDescription
		if c.fetcher == nil {
			return
		}
		text, err := c.fetcher.Fetch(ctx)
		if err != nil {
			c.log.Warn("description fetch failed, using default", zap.Error(err))
			return
		}
		if text == "" {
			c.log.Warn("description source is empty, using default")
			return
		}
		c.value = text
		c.log.Info("description cached", zap.Int("len", len(text)))
	})
	return c.value
}
