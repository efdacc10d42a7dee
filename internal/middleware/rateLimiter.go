package middleware

import (
	"sync"
	"time"

	"github.com/akolanti/CommunityRAG/internal/config"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

var limiterInstance = NewIPRateLimiter(
	rate.Limit(config.EnvFloat("RATE_LIMIT_PER_SECOND", config.RATE_LIMIT_PER_SECOND)),
	config.EnvInt("BURST_RATE_LIMIT_PER_SECOND", config.BURST_RATE_LIMIT_PER_SECOND),
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client ip. Buckets idle for longer than
// limiterIdleTTL are swept at most once per TTL.
type IPRateLimiter struct {
	ips       map[string]*visitor
	mu        sync.Mutex
	rateLimit rate.Limit
	burstRate int
	lastSweep time.Time
	now       func() time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{ips: make(map[string]*visitor), rateLimit: r, burstRate: b, now: time.Now}
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if now.Sub(i.lastSweep) >= limiterIdleTTL {
		for key, v := range i.ips {
			if now.Sub(v.lastSeen) >= limiterIdleTTL {
				delete(i.ips, key)
			}
		}
		i.lastSweep = now
	}

	v, exists := i.ips[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(i.rateLimit, i.burstRate)}
		i.ips[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (i *IPRateLimiter) size() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.ips)
}
