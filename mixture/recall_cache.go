package mixture

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/YuminosukeSato/igmn/pkg/errors"
)

// recallCache keeps the per-component conditional factors for the most
// recently used observed-prefix lengths. It is safe for concurrent readers;
// the model purges it on every mutation while holding the write lock.
type recallCache struct {
	entries *lru.Cache[int, []conditional]
}

// newRecallCache returns a cache holding up to size prefix lengths. A size
// of 0 yields a cache that stores nothing.
func newRecallCache(size int) (*recallCache, error) {
	if size == 0 {
		return &recallCache{}, nil
	}
	entries, err := lru.New[int, []conditional](size)
	if err != nil {
		return nil, errors.Wrap(err, "recall cache")
	}
	return &recallCache{entries: entries}, nil
}

func (c *recallCache) get(alpha int) ([]conditional, bool) {
	if c.entries == nil {
		return nil, false
	}
	return c.entries.Get(alpha)
}

func (c *recallCache) add(alpha int, factors []conditional) {
	if c.entries == nil {
		return
	}
	c.entries.Add(alpha, factors)
}

func (c *recallCache) purge() {
	if c.entries == nil {
		return
	}
	c.entries.Purge()
}

func (c *recallCache) len() int {
	if c.entries == nil {
		return 0
	}
	return c.entries.Len()
}
