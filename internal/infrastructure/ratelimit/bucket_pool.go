package ratelimit

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// bucket is a single token bucket. Capacity and rate come from the rule of
// the operation it backs.
type bucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	rate       float64
	lastRefill time.Time
}

func newBucket(max int, window time.Duration) *bucket {
	capacity := float64(max)
	return &bucket{
		capacity:   capacity,
		tokens:     capacity,
		rate:       capacity / window.Seconds(),
		lastRefill: time.Now(),
	}
}

func (b *bucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// BucketPool holds per-key fallback buckets. Idle buckets age out of the
// cache so an outage does not leak memory across many identifiers.
type BucketPool struct {
	buckets *gocache.Cache
}

// NewBucketPool creates the pool. Buckets unused for idleTTL are evicted.
func NewBucketPool(idleTTL time.Duration) *BucketPool {
	return &BucketPool{
		buckets: gocache.New(idleTTL, 2*idleTTL),
	}
}

// Allow consumes one token from the bucket for key, creating it on first use.
func (p *BucketPool) Allow(key string, max int, window time.Duration) bool {
	if cached, ok := p.buckets.Get(key); ok {
		p.buckets.SetDefault(key, cached)
		return cached.(*bucket).allow()
	}

	fresh := newBucket(max, window)
	if err := p.buckets.Add(key, fresh, gocache.DefaultExpiration); err != nil {
		// Lost the creation race; use the winner's bucket.
		if cached, ok := p.buckets.Get(key); ok {
			return cached.(*bucket).allow()
		}
	}
	return fresh.allow()
}

// Size reports the number of live buckets.
func (p *BucketPool) Size() int {
	return p.buckets.ItemCount()
}
