package http

import "golang.org/x/time/rate"

// frameLimiter is a per-connection token bucket. A nil limiter allows everything.
type frameLimiter struct {
	limiter *rate.Limiter
}

func newFrameLimiter(perSecond float64, burst int) *frameLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &frameLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (f *frameLimiter) allow() bool {
	if f == nil {
		return true
	}
	return f.limiter.Allow()
}
