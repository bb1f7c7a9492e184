package crawl

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mshears713/Research-Body/internal/backoff"
	"github.com/mshears713/Research-Body/internal/fetch"
	"github.com/mshears713/Research-Body/internal/relevance"
)

// Default crawl parameters.
const (
	DefaultMaxRetries      = 3
	DefaultRetryBackoff    = 2.0
	DefaultMaxLinksPerPage = 5
	DefaultMaxDepth        = 2
	DefaultPolitenessDelay = 1 * time.Second
)

// Fetcher retrieves a single URL. *fetch.Client satisfies this.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Outcome, error)
}

// Config controls the crawler's decision-making.
type Config struct {
	// MaxRetries is how many extra attempts a failed fetch gets.
	// Zero disables retries.
	MaxRetries int
	// RetryBackoff is the exponential base for retry delays, in seconds.
	RetryBackoff float64
	// MaxLinksPerPage caps how many links from one page enter the queue.
	MaxLinksPerPage int
	// RelevanceThreshold is the score a link must exceed to be followed.
	// Zero means the default threshold.
	RelevanceThreshold float64
	// FetchWorkers is how many fetches run at once. One means strictly
	// sequential fetching.
	FetchWorkers int
	// PolitenessDelay spaces fetches against the same domain.
	// Zero disables the per-domain limiter.
	PolitenessDelay time.Duration
}

// DefaultConfig returns the standard crawl parameters.
func DefaultConfig() Config {
	return Config{
		MaxRetries:         DefaultMaxRetries,
		RetryBackoff:       DefaultRetryBackoff,
		MaxLinksPerPage:    DefaultMaxLinksPerPage,
		RelevanceThreshold: relevance.DefaultThreshold,
		FetchWorkers:       1,
		PolitenessDelay:    DefaultPolitenessDelay,
	}
}

// Crawler explores the web from seed URLs, skipping pages not worth fetching
// and learning which domains deliver. A Crawler may serve several Crawl
// calls: the visited set resets per call, domain reputation carries over.
type Crawler struct {
	fetcher    Fetcher
	cfg        Config
	policy     backoff.Policy
	scorer     *relevance.Scorer
	reputation *reputationTable
	limiter    *domainLimiter
	sleep      func(ctx context.Context, d time.Duration) error

	mu             sync.Mutex
	fetchedTotal   int
	failedTotal    int
	decisionCounts map[string]int
}

// NewCrawler builds a crawler around a fetcher. Non-positive config values
// fall back to the defaults.
func NewCrawler(fetcher Fetcher, cfg Config) *Crawler {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultRetryBackoff
	}
	if cfg.MaxLinksPerPage <= 0 {
		cfg.MaxLinksPerPage = DefaultMaxLinksPerPage
	}
	if cfg.RelevanceThreshold <= 0 {
		cfg.RelevanceThreshold = relevance.DefaultThreshold
	}
	if cfg.FetchWorkers <= 0 {
		cfg.FetchWorkers = 1
	}
	if cfg.PolitenessDelay < 0 {
		cfg.PolitenessDelay = 0
	}

	reputation := newReputationTable()
	return &Crawler{
		fetcher:        fetcher,
		cfg:            cfg,
		policy:         backoff.NewPolicy(cfg.RetryBackoff),
		scorer:         relevance.NewScorer(reputation),
		reputation:     reputation,
		limiter:        newDomainLimiter(cfg.PolitenessDelay),
		sleep:          sleepContext,
		decisionCounts: make(map[string]int),
	}
}

type queueItem struct {
	url   string
	depth int
}

// fetchTask carries one URL through a fetch wave. Workers fill in the
// outcome fields; the coordinator commits them in wave order.
type fetchTask struct {
	url       string
	depth     int
	relevance float64

	content   string
	success   bool
	canceled  bool
	decisions []Decision
}

// Crawl walks the web from the seed URLs until the page budget is spent or
// the queue drains. Seeds are always eligible; discovered links must clear
// the relevance threshold. Individual fetch failures never abort the crawl,
// and an empty result is a valid outcome.
func (c *Crawler) Crawl(ctx context.Context, seeds []string, keywords []string, maxPages, maxDepth int) *Session {
	session := &Session{
		Pages:     make([]Page, 0),
		Decisions: make([]Decision, 0),
	}

	queue := make([]queueItem, 0, len(seeds))
	pending := make(map[string]bool)
	for _, seed := range seeds {
		queue = append(queue, queueItem{url: seed, depth: 0})
		pending[seed] = true
	}

	visited := make(map[string]bool)
	var fetched atomic.Int64

	for len(queue) > 0 && int(fetched.Load()) < maxPages {
		if ctx.Err() != nil {
			break
		}

		// Assemble the next wave, never larger than the remaining budget.
		remaining := maxPages - int(fetched.Load())
		waveSize := c.cfg.FetchWorkers
		if waveSize > remaining {
			waveSize = remaining
		}

		wave := make([]*fetchTask, 0, waveSize)
		for len(wave) < waveSize && len(queue) > 0 {
			item := queue[0]
			queue = queue[1:]
			delete(pending, item.url)

			if visited[item.url] {
				c.record(session, Decision{
					URL:       item.url,
					Action:    ActionSkip,
					Reason:    "already visited, avoiding duplicate fetch",
					Timestamp: now(),
				})
				continue
			}
			if item.depth > maxDepth {
				c.record(session, Decision{
					URL:       item.url,
					Action:    ActionSkip,
					Reason:    fmt.Sprintf("depth %d exceeds max depth %d", item.depth, maxDepth),
					Timestamp: now(),
				})
				continue
			}
			visited[item.url] = true

			score := c.scorer.ScoreURL(item.url, keywords)
			if item.depth > 0 && len(keywords) > 0 && score < c.cfg.RelevanceThreshold {
				c.record(session, Decision{
					URL:       item.url,
					Action:    ActionSkip,
					Reason:    fmt.Sprintf("low relevance score (%.2f), not worth fetching", score),
					Relevance: score,
					Timestamp: now(),
				})
				continue
			}

			wave = append(wave, &fetchTask{url: item.url, depth: item.depth, relevance: score})
		}

		if len(wave) == 0 {
			continue
		}

		// Workers sleep through their own backoff without holding up
		// fetches against other domains.
		var g errgroup.Group
		g.SetLimit(c.cfg.FetchWorkers)
		for _, task := range wave {
			g.Go(func() error {
				c.fetchWithRetry(ctx, task, &fetched)
				return nil
			})
		}
		_ = g.Wait()

		// Commit in wave order so the decision sequence is deterministic.
		for _, task := range wave {
			for _, d := range task.decisions {
				c.record(session, d)
			}

			domain := relevance.Domain(task.url)
			switch {
			case task.success:
				c.reputation.RecordSuccess(domain)
				c.mu.Lock()
				c.fetchedTotal++
				c.mu.Unlock()
				session.Pages = append(session.Pages, Page{URL: task.url, Content: task.content})

				if task.depth < maxDepth {
					enqueued := 0
					for _, link := range c.selectLinks(task.url, task.content, keywords) {
						if visited[link.url] || pending[link.url] {
							continue
						}
						queue = append(queue, queueItem{url: link.url, depth: task.depth + 1})
						pending[link.url] = true
						enqueued++
					}
					if enqueued > 0 {
						c.record(session, Decision{
							URL:       task.url,
							Action:    ActionFollowLinks,
							Reason:    fmt.Sprintf("following %d relevant links", enqueued),
							Relevance: task.relevance,
							Timestamp: now(),
						})
					}
				}
			case task.canceled:
				// Cancellation says nothing about the domain.
			default:
				c.reputation.RecordFailure(domain)
				c.mu.Lock()
				c.failedTotal++
				c.mu.Unlock()
			}
		}
	}

	return session
}

// fetchWithRetry runs the bounded retry loop for one URL, recording each
// attempt as a decision on the task.
func (c *Crawler) fetchWithRetry(ctx context.Context, task *fetchTask, budget *atomic.Int64) {
	domain := relevance.Domain(task.url)

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx, domain); err != nil {
			task.canceled = true
			task.decisions = append(task.decisions, Decision{
				URL:       task.url,
				Action:    ActionGiveUp,
				Reason:    "crawl canceled",
				Relevance: task.relevance,
				Attempt:   attempt + 1,
				Timestamp: now(),
			})
			return
		}

		outcome, err := c.fetcher.Fetch(ctx, task.url)
		if err == nil && outcome != nil && outcome.OK() {
			task.content = outcome.Content
			task.success = true
			budget.Add(1)
			task.decisions = append(task.decisions, Decision{
				URL:       task.url,
				Action:    ActionFetch,
				Reason:    fmt.Sprintf("fetched successfully on attempt %d", attempt+1),
				Relevance: task.relevance,
				Attempt:   attempt + 1,
				Timestamp: now(),
			})
			return
		}

		class, cause := classifyFailure(outcome, err)
		delay, retry := c.policy.NextDelay(attempt, class)
		if !retry {
			task.decisions = append(task.decisions, Decision{
				URL:       task.url,
				Action:    ActionGiveUp,
				Reason:    fmt.Sprintf("%s, not worth retrying", cause),
				Relevance: task.relevance,
				Attempt:   attempt + 1,
				Timestamp: now(),
			})
			return
		}
		if attempt == c.cfg.MaxRetries {
			task.decisions = append(task.decisions, Decision{
				URL:       task.url,
				Action:    ActionGiveUp,
				Reason:    fmt.Sprintf("failed after %d attempts (%s)", attempt+1, cause),
				Relevance: task.relevance,
				Attempt:   attempt + 1,
				Timestamp: now(),
			})
			return
		}

		task.decisions = append(task.decisions, Decision{
			URL:       task.url,
			Action:    ActionRetry,
			Reason:    fmt.Sprintf("attempt %d failed (%s), retrying in %.1fs", attempt+1, cause, delay.Seconds()),
			Relevance: task.relevance,
			Attempt:   attempt + 1,
			Timestamp: now(),
		})
		if err := c.sleep(ctx, delay); err != nil {
			task.canceled = true
			task.decisions = append(task.decisions, Decision{
				URL:       task.url,
				Action:    ActionGiveUp,
				Reason:    "crawl canceled",
				Relevance: task.relevance,
				Attempt:   attempt + 1,
				Timestamp: now(),
			})
			return
		}
	}
}

type scoredLink struct {
	url   string
	score float64
}

// selectLinks extracts links from a fetched page, scores them with their
// anchor text, and keeps the best ones above the follow threshold.
func (c *Crawler) selectLinks(pageURL, html string, keywords []string) []scoredLink {
	links, err := ExtractLinks(html, pageURL)
	if err != nil {
		return nil
	}

	scored := make([]scoredLink, 0, len(links))
	for _, link := range links {
		score := c.scorer.ScoreLink(link.URL, link.Anchor, keywords)
		if score > c.cfg.RelevanceThreshold {
			scored = append(scored, scoredLink{url: link.URL, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > c.cfg.MaxLinksPerPage {
		scored = scored[:c.cfg.MaxLinksPerPage]
	}
	return scored
}

func (c *Crawler) record(session *Session, d Decision) {
	session.Decisions = append(session.Decisions, d)
	c.mu.Lock()
	c.decisionCounts[string(d.Action)]++
	c.mu.Unlock()
}

// classifyFailure maps a failed fetch to its backoff class and a short
// human-readable cause.
func classifyFailure(outcome *fetch.Outcome, err error) (backoff.Class, string) {
	if outcome != nil {
		return backoff.ClassifyStatus(outcome.Class, outcome.HTTPStatus), describeFailure(outcome.Class, outcome.HTTPStatus)
	}
	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		return backoff.ClassifyStatus(fetchErr.Class, fetchErr.Status), describeFailure(fetchErr.Class, fetchErr.Status)
	}
	return backoff.ClassStandard, "fetch failed"
}

func describeFailure(class fetch.ErrorClass, status int) string {
	switch class {
	case fetch.ClassHTTPError:
		return fmt.Sprintf("status %d", status)
	case fetch.ClassTimeout:
		return "timeout"
	case fetch.ClassConnection:
		return "connection error"
	case fetch.ClassTooManyRedirects:
		return "redirect loop"
	default:
		return "fetch failed"
	}
}

// Metrics is a point-in-time view of a crawler's lifetime activity.
type Metrics struct {
	Fetched    int                    `json:"fetched"`
	Failed     int                    `json:"failed"`
	Reputation map[string]DomainStats `json:"reputation"`
	Decisions  map[string]int         `json:"decisions"`
}

// Metrics reports counts accumulated across all Crawl calls on this crawler.
func (c *Crawler) Metrics() Metrics {
	c.mu.Lock()
	m := Metrics{
		Fetched:   c.fetchedTotal,
		Failed:    c.failedTotal,
		Decisions: make(map[string]int, len(c.decisionCounts)),
	}
	for action, count := range c.decisionCounts {
		m.Decisions[action] = count
	}
	c.mu.Unlock()

	m.Reputation = c.reputation.Snapshot()
	return m
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func now() time.Time {
	return time.Now().UTC()
}
