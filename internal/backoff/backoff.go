// Package backoff computes retry delays for failed page retrievals.
package backoff

import (
	"math"
	"net/http"
	"time"

	"github.com/mshears713/Research-Body/internal/fetch"
)

// Class describes the failure category a delay is computed for.
type Class string

const (
	// ClassStandard covers timeouts, connection failures, and any other
	// retryable failure without a more specific rule.
	ClassStandard Class = "standard"
	// ClassRateLimited is an HTTP 429 response.
	ClassRateLimited Class = "rate_limited"
	// ClassServerError is any HTTP 5xx response.
	ClassServerError Class = "server_error"
	// ClassNotFound is an HTTP 404 response. Not found pages are never
	// retried.
	ClassNotFound Class = "not_found"
)

// DefaultBase is the exponential base used when a Policy does not set one.
const DefaultBase = 2.0

// Multipliers applied on top of the exponential base delay.
const (
	rateLimitedMultiplier = 3.0
	serverErrorMultiplier = 1.5
)

// Policy computes exponential retry delays. The zero value uses DefaultBase.
// A Policy holds no state and is safe for concurrent use.
type Policy struct {
	// Base is the exponent base in seconds. Attempt n waits Base^n seconds
	// before the class multiplier is applied.
	Base float64
}

// NewPolicy returns a Policy with the given base, falling back to
// DefaultBase when base is not positive.
func NewPolicy(base float64) Policy {
	if base <= 0 {
		base = DefaultBase
	}
	return Policy{Base: base}
}

// ClassifyStatus maps a fetch error class and HTTP status to a backoff class.
// Non-HTTP failures (timeouts, connection errors) are ClassStandard.
func ClassifyStatus(errClass fetch.ErrorClass, status int) Class {
	if errClass != fetch.ClassHTTPError {
		return ClassStandard
	}
	switch {
	case status == http.StatusTooManyRequests:
		return ClassRateLimited
	case status == http.StatusNotFound:
		return ClassNotFound
	case status >= 500 && status < 600:
		return ClassServerError
	default:
		return ClassStandard
	}
}

// NextDelay returns how long to wait before retry number attempt (0-based)
// and whether a retry should happen at all. ClassNotFound never retries.
func (p Policy) NextDelay(attempt int, class Class) (time.Duration, bool) {
	if class == ClassNotFound {
		return 0, false
	}

	base := p.Base
	if base <= 0 {
		base = DefaultBase
	}

	seconds := math.Pow(base, float64(attempt))
	switch class {
	case ClassRateLimited:
		seconds *= rateLimitedMultiplier
	case ClassServerError:
		seconds *= serverErrorMultiplier
	}

	return time.Duration(seconds * float64(time.Second)), true
}
