// Package ratelimiter provides a token bucket limiter used to shed load
// at the API edge.
package ratelimiter

// RateLimiter reports whether a request may proceed.
type RateLimiter interface {
	Allow() bool
}
