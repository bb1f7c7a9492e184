// Package fetch provides single bounded URL retrieval with failure
// classification. It performs exactly one network call per request: retry
// decisions belong to the caller, which branches on the outcome class.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ResearchAgent/1.0)"

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes = 10 << 20

// DefaultMaxRedirects is how many redirects are followed before the fetch is
// classified as a redirect loop.
const DefaultMaxRedirects = 10

// ErrorClass identifies the failure family of a fetch. The retry policy
// branches on this classification, so it is the load-bearing part of the
// contract.
type ErrorClass string

const (
	// ClassNone means the fetch succeeded.
	ClassNone ErrorClass = "none"
	// ClassTimeout means the request exceeded its deadline.
	ClassTimeout ErrorClass = "timeout"
	// ClassConnection means the connection could not be established or was reset.
	ClassConnection ErrorClass = "connection"
	// ClassTooManyRedirects means the redirect limit was exceeded.
	ClassTooManyRedirects ErrorClass = "too_many_redirects"
	// ClassHTTPError means the server answered with status >= 400.
	ClassHTTPError ErrorClass = "http_error"
	// ClassOther is any failure that fits no other class.
	ClassOther ErrorClass = "other"
)

// errRedirectLimit is the sentinel returned by the redirect hook.
var errRedirectLimit = errors.New("redirect limit reached")

// Outcome holds everything observed during one fetch. It is never mutated
// after creation.
type Outcome struct {
	URL        string        `json:"url"`
	FinalURL   string        `json:"final_url"`
	Content    string        `json:"content,omitempty"`
	HTTPStatus int           `json:"http_status,omitempty"`
	Class      ErrorClass    `json:"error_class"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// OK reports whether the fetch produced usable content.
func (o *Outcome) OK() bool {
	return o != nil && o.Class == ClassNone
}

// Error represents a classified error during URL fetching.
type Error struct {
	URL     string
	Class   ErrorClass
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable reports whether a retry could plausibly change the result.
// A definitive absence (404) is the only class that never warrants a retry.
func (e *Error) Retryable() bool {
	return !(e.Class == ClassHTTPError && e.Status == http.StatusNotFound)
}

// Options configures the fetch behavior.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	Headers      map[string]string
	MaxBodyBytes int64
	MaxRedirects int
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodyBytes: DefaultMaxBodyBytes,
		MaxRedirects: DefaultMaxRedirects,
	}
}

// Client performs single bounded retrievals with a shared HTTP client.
type Client struct {
	opts *Options
	http *http.Client
}

// NewClient creates a fetch client. A nil opts uses DefaultOptions.
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}

	maxRedirects := opts.MaxRedirects
	return &Client{
		opts: opts,
		http: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errRedirectLimit
				}
				return nil
			},
		},
	}
}

// Fetch retrieves one URL. It returns a non-nil Outcome for every attempted
// request, including failures: on HTTP errors the body and status are still
// populated so callers can inspect them. The returned error, when non-nil,
// is always a *Error carrying the same classification as the Outcome.
func (c *Client) Fetch(ctx context.Context, urlStr string) (*Outcome, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Class:   ClassOther,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Class:   ClassOther,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	req.Header.Set("User-Agent", c.opts.UserAgent)
	for key, value := range c.opts.Headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		class := classifyTransportError(err)
		return &Outcome{
				URL:     urlStr,
				Class:   class,
				Elapsed: elapsed,
			}, &Error{
				URL:     urlStr,
				Class:   class,
				Message: "HTTP request failed",
				Cause:   err,
			}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBodyBytes))
	elapsed = time.Since(start)
	if err != nil {
		class := classifyTransportError(err)
		return &Outcome{
				URL:        urlStr,
				HTTPStatus: resp.StatusCode,
				Class:      class,
				Elapsed:    elapsed,
			}, &Error{
				URL:     urlStr,
				Class:   class,
				Status:  resp.StatusCode,
				Message: "failed to read response body",
				Cause:   err,
			}
	}

	outcome := &Outcome{
		URL:        urlStr,
		FinalURL:   resp.Request.URL.String(),
		Content:    string(bodyBytes),
		HTTPStatus: resp.StatusCode,
		Class:      ClassNone,
		Elapsed:    elapsed,
	}

	if resp.StatusCode >= 400 {
		outcome.Class = ClassHTTPError
		return outcome, &Error{
			URL:     urlStr,
			Class:   ClassHTTPError,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	return outcome, nil
}

// classifyTransportError maps a transport-level error to its class.
func classifyTransportError(err error) ErrorClass {
	if err == nil {
		return ClassNone
	}
	if errors.Is(err, errRedirectLimit) {
		return ClassTooManyRedirects
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ClassConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ClassConnection
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return ClassConnection
	}
	return ClassOther
}
