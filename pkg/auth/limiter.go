package auth

import (
	"sync"

	"golang.org/x/time/rate"
)

// LimiterConfig tunes the per-key token buckets. Zero values fall back to
// 5 rps with a burst of 10.
type LimiterConfig struct {
	RPS   float64
	Burst int
}

type LimiterPool struct {
	mu  sync.Mutex
	m   map[string]*rate.Limiter
	cfg LimiterConfig
}

// NewLimiterPool returns a pool of per-key limiters.
func NewLimiterPool(cfg LimiterConfig) *LimiterPool {
	return &LimiterPool{cfg: cfg}
}

func (p *LimiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.m == nil {
		p.m = make(map[string]*rate.Limiter)
	}
	if l, ok := p.m[key]; ok {
		return l
	}
	rps := p.cfg.RPS
	if rps <= 0 {
		rps = 5
	}
	burst := p.cfg.Burst
	if burst <= 0 {
		burst = 10
	}
	l := rate.NewLimiter(rate.Limit(rps), burst)
	p.m[key] = l
	return l
}

func (p *LimiterPool) Allow(key string) bool {
	return p.get(key).Allow()
}
