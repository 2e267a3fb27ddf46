package models

import "time"

// EndpointClass groups endpoints that share one limit.
type EndpointClass string

const (
	// ClassAuth covers wallet login, keyed by client IP.
	ClassAuth EndpointClass = "auth"
	// ClassRead covers authenticated reads, keyed by user.
	ClassRead EndpointClass = "read"
	// ClassWrite covers authenticated mutations, including the verification
	// and mint requests that reach paid upstream services.
	ClassWrite EndpointClass = "write"
)

func (c EndpointClass) IsValid() bool {
	switch c {
	case ClassAuth, ClassRead, ClassWrite:
		return true
	}
	return false
}

// Limit is the number of requests allowed per sliding window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// RateLimitResult is the outcome of one admission check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is how long a rejected caller should wait, rounded up to a
// whole second.
func (r *RateLimitResult) RetryAfter(now time.Time) time.Duration {
	d := r.ResetAt.Sub(now)
	if d <= 0 {
		return time.Second
	}
	return d.Truncate(time.Second) + time.Second
}

// Key builds the bucket key for a class and subject (IP or user ID).
func Key(class EndpointClass, subject string) string {
	return "rl:" + string(class) + ":" + subject
}
