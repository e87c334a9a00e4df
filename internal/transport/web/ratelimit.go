package web

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL      = 30 * time.Minute
	limiterCleanupEvery = 5 * time.Minute
)

type clientLimiter struct {
	limiter *rate.Limiter
	last    time.Time
}

// limiterSet hands out one token bucket per client address.
type limiterSet struct {
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
	limiters map[string]*clientLimiter
}

func newLimiterSet(ctx context.Context, rps float64, burst int) *limiterSet {
	ls := &limiterSet{
		rps:      rate.Limit(rps),
		burst:    burst,
		limiters: make(map[string]*clientLimiter),
	}

	go ls.cleanup(ctx)

	return ls
}

func (ls *limiterSet) allow(client string) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	cl, ok := ls.limiters[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(ls.rps, ls.burst)}
		ls.limiters[client] = cl
	}

	cl.last = time.Now()

	return cl.limiter.Allow()
}

func (ls *limiterSet) cleanup(ctx context.Context) {
	t := time.NewTicker(limiterCleanupEvery)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			ls.mu.Lock()

			for client, cl := range ls.limiters {
				if now.Sub(cl.last) > limiterIdleTTL {
					delete(ls.limiters, client)
				}
			}

			ls.mu.Unlock()
		}
	}
}
