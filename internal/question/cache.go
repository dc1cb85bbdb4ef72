package question

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Questions issued within this window will not be handed out again (best
// effort; generation gives up after a few attempts).
const recentTTL = 2 * time.Minute

// recentCache remembers recently issued short questions per category so
// back-to-back rounds don't repeat a prompt.
type recentCache struct {
	cacheInstance *gocache.Cache
}

func newRecentCache() *recentCache {
	return &recentCache{cacheInstance: gocache.New(recentTTL, 2*recentTTL)}
}

func (r *recentCache) seen(category, short string) bool {
	_, found := r.cacheInstance.Get(category + "|" + short)
	return found
}

func (r *recentCache) remember(category, short string) {
	r.cacheInstance.Set(category+"|"+short, struct{}{}, 0)
}
