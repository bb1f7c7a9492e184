// Package pipeline orchestrates research missions, sequencing the planning,
// fetching, cleaning, scoring, summarizing, storing, and logging stages. The
// orchestrator coordinates collaborators and owns no domain logic of its own.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mshears713/Research-Body/internal/cleaning"
	"github.com/mshears713/Research-Body/internal/crawl"
	"github.com/mshears713/Research-Body/internal/db"
	"github.com/mshears713/Research-Body/internal/fetch"
	"github.com/mshears713/Research-Body/internal/logging"
	"github.com/mshears713/Research-Body/internal/mission"
	"github.com/mshears713/Research-Body/internal/observability"
	"github.com/mshears713/Research-Body/internal/plan"
	"github.com/mshears713/Research-Body/internal/scoring"
	"github.com/mshears713/Research-Body/internal/store"
	"github.com/mshears713/Research-Body/internal/summarize"
)

// Retry configuration defaults.
const (
	DefaultMaxRetries    = 3
	DefaultRetryDelay    = 2 * time.Second
	DefaultTimeoutPerURL = 30 * time.Second
	DefaultFetchWorkers  = 1
)

// ProgressFunc receives checkpoint updates as a mission moves through its
// stages. percent runs 0 to 100.
type ProgressFunc func(stage mission.Stage, message string, percent float64)

// Planner creates the mission plan. *plan.Planner satisfies this.
type Planner interface {
	CreatePlan(ctx context.Context, req *mission.Request) *mission.Plan
}

// Fetcher retrieves URLs one at a time or as a bounded concurrent batch.
// *fetch.Client satisfies this.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Outcome, error)
	Many(ctx context.Context, urls []string, concurrency int) ([]*fetch.Outcome, []error)
}

// Crawler gathers sources by exploring from seed URLs. *crawl.Crawler
// satisfies this.
type Crawler interface {
	Crawl(ctx context.Context, seeds, keywords []string, maxPages, maxDepth int) *crawl.Session
}

// Summarizer generates one summary per document. *summarize.Summarizer
// satisfies this.
type Summarizer interface {
	Summarize(cleanText, title string, style summarize.Style, maxLength int) *summarize.Summary
}

// Store persists finished missions to the knowledge base. *store.Client
// satisfies this.
type Store interface {
	WriteMission(ctx context.Context, result *mission.Result) (*store.WriteResult, error)
}

// History records missions in the relational store. *db.DB satisfies this.
type History interface {
	CreateMission(ctx context.Context, input *db.MissionInput) (*db.Mission, error)
	CompleteMission(ctx context.Context, missionID, status, errorMessage string) error
	SaveMissionResult(ctx context.Context, missionID string, result any) error
}

// Options configures an Orchestrator. Collaborators left nil are replaced
// with default implementations; zero-valued knobs fall back to the package
// defaults.
type Options struct {
	Planner    Planner
	Fetcher    Fetcher
	Crawler    Crawler
	Cleaner    func(rawHTML, url string) (*cleaning.Document, error)
	Summarizer Summarizer
	Store      Store
	Logger     logging.Logger
	History    History

	// Mode selects simple (fetch exactly the planned URLs) or intelligent
	// (delegate to the adaptive crawler) source gathering.
	Mode mission.FetchMode

	MaxRetries    int
	RetryDelay    time.Duration
	TimeoutPerURL time.Duration
	FetchWorkers  int
	CrawlDepth    int

	Verbose    bool
	Out        io.Writer
	OnProgress ProgressFunc
}

// Orchestrator drives missions through the pipeline.
type Orchestrator struct {
	planner    Planner
	fetcher    Fetcher
	crawler    Crawler
	cleaner    func(rawHTML, url string) (*cleaning.Document, error)
	summarizer Summarizer
	store      Store
	logger     logging.Logger
	history    History

	mode         mission.FetchMode
	maxRetries   int
	retryDelay   time.Duration
	fetchWorkers int
	crawlDepth   int

	verbose  bool
	out      io.Writer
	printer  *observability.Printer
	progress ProgressFunc
	sleep    func(ctx context.Context, d time.Duration) error
}

// New builds an Orchestrator, filling in defaults for anything unset.
func New(opts Options) *Orchestrator {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.TimeoutPerURL <= 0 {
		opts.TimeoutPerURL = DefaultTimeoutPerURL
	}
	if opts.FetchWorkers <= 0 {
		opts.FetchWorkers = DefaultFetchWorkers
	}
	if opts.CrawlDepth <= 0 {
		opts.CrawlDepth = crawl.DefaultMaxDepth
	}
	if !opts.Mode.Valid() {
		opts.Mode = mission.ModeSimple
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetchOpts := fetch.DefaultOptions()
		fetchOpts.Timeout = opts.TimeoutPerURL
		fetcher = fetch.NewClient(fetchOpts)
	}
	crawler := opts.Crawler
	if crawler == nil {
		cfg := crawl.DefaultConfig()
		cfg.MaxRetries = opts.MaxRetries - 1
		cfg.FetchWorkers = opts.FetchWorkers
		crawler = crawl.NewCrawler(fetcher, cfg)
	}
	planner := opts.Planner
	if planner == nil {
		planner = plan.NewPlanner(nil)
	}
	cleaner := opts.Cleaner
	if cleaner == nil {
		cleaner = cleaning.Clean
	}
	summarizer := opts.Summarizer
	if summarizer == nil {
		summarizer = summarize.NewSummarizer(summarize.StyleTechnical)
	}
	st := opts.Store
	if st == nil {
		st = store.NewClient(&store.Options{})
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewMemoryLogger(logging.DefaultMaxEntries)
	}

	return &Orchestrator{
		planner:      planner,
		fetcher:      fetcher,
		crawler:      crawler,
		cleaner:      cleaner,
		summarizer:   summarizer,
		store:        st,
		logger:       logger,
		history:      opts.History,
		mode:         opts.Mode,
		maxRetries:   opts.MaxRetries,
		retryDelay:   opts.RetryDelay,
		fetchWorkers: opts.FetchWorkers,
		crawlDepth:   opts.CrawlDepth,
		verbose:      opts.Verbose,
		out:          opts.Out,
		printer:      observability.NewPrinter(opts.Out),
		progress:     opts.OnProgress,
		sleep:        sleepContext,
	}
}

// ExecuteMission runs one research mission from request to result. A Result
// is always returned. Expected pipeline failures (no usable sources, no
// clean content, no summaries) surface as Status Failed with ErrorMessage
// set and a nil error; the error return is reserved for invalid requests
// and context cancellation.
func (o *Orchestrator) ExecuteMission(ctx context.Context, req *mission.Request) (*mission.Result, error) {
	result := mission.NewResult("", req.Topic, o.mode)

	if err := req.Validate(); err != nil {
		result.ErrorMessage = fmt.Sprintf("invalid request: %v", err)
		result.Complete(mission.StatusFailed)
		return result, fmt.Errorf("invalid request: %w", err)
	}

	o.emit(mission.StagePlanning, "Starting mission", 0)

	o.beginStage(result, mission.StagePlanning, fmt.Sprintf("Planning mission for topic: %s", req.Topic))
	missionPlan := o.planner.CreatePlan(ctx, req)
	result.MissionID = missionPlan.MissionID
	result.Plan = missionPlan
	if o.verbose {
		o.printer.PrintPlan(missionPlan)
	}
	o.logEvent(ctx, logging.MissionStart(result.MissionID, req.Topic))
	o.recordMissionStart(ctx, req, result)

	if err := ctx.Err(); err != nil {
		return o.abortMission(ctx, result, err)
	}

	o.beginStage(result, mission.StageFetching,
		fmt.Sprintf("Fetching %d sources (%s mode)", len(missionPlan.TargetURLs), o.mode))
	if o.mode == mission.ModeIntelligent {
		o.fetchIntelligent(ctx, missionPlan, result)
	} else {
		o.fetchSimple(ctx, missionPlan, result)
	}
	if err := ctx.Err(); err != nil {
		return o.abortMission(ctx, result, err)
	}
	if o.verbose {
		o.printer.PrintFetchErrors(result.FetchErrors)
	}
	if len(result.Pages) == 0 {
		return o.failMission(ctx, result, "Failed to fetch any sources")
	}
	o.logEvent(ctx, logging.StageEvent(result.MissionID, string(mission.StageFetching),
		fmt.Sprintf("Fetched %d of %d sources", len(result.Pages), len(missionPlan.TargetURLs)), nil))

	o.beginStage(result, mission.StageCleaning, fmt.Sprintf("Cleaning %d pages", len(result.Pages)))
	o.cleanPages(result)
	if len(result.Documents) == 0 {
		return o.failMission(ctx, result, "Failed to clean any content")
	}

	o.beginStage(result, mission.StageScoring, "")
	composites := o.scoreDocuments(req, result)
	if o.verbose {
		o.printer.PrintScores(&result.Scores)
	}

	o.beginStage(result, mission.StageSummarizing,
		fmt.Sprintf("Summarizing %d documents", len(result.Documents)))
	o.summarizeDocuments(req, result, composites)
	if len(result.Summaries) == 0 {
		return o.failMission(ctx, result, "Failed to generate any summaries")
	}
	if o.verbose {
		o.printer.PrintSummaries(result.Summaries)
	}
	o.logEvent(ctx, logging.StageEvent(result.MissionID, string(mission.StageSummarizing),
		fmt.Sprintf("Generated %d summaries", len(result.Summaries)), nil))

	if err := ctx.Err(); err != nil {
		return o.abortMission(ctx, result, err)
	}

	o.beginStage(result, mission.StageStoring, "")
	o.storeResult(ctx, result)

	o.beginStage(result, mission.StageLogging, "")
	result.Complete(mission.StatusCompleted)
	o.logEvent(ctx, logging.MissionComplete(result.MissionID, result.Duration))
	o.recordMissionEnd(ctx, result)

	o.emit(mission.StageLogging, "Mission completed", 100)
	if o.verbose {
		o.printer.PrintResult(result)
	}
	return result, nil
}

// failMission finalizes an expected pipeline failure. The result carries
// the failure; the error return stays nil so callers branch on Status.
func (o *Orchestrator) failMission(ctx context.Context, result *mission.Result, message string) (*mission.Result, error) {
	result.ErrorMessage = message
	result.Complete(mission.StatusFailed)
	o.logEvent(ctx, logging.MissionFailed(result.MissionID, message))
	o.recordMissionEnd(ctx, result)
	o.emit(result.Stage, "Mission failed: "+message, 100)
	if o.verbose {
		o.printer.PrintResult(result)
	}
	return result, nil
}

// abortMission finalizes an unexpected failure and returns its cause.
// Logging and history writes stay best-effort so they cannot mask the
// original error.
func (o *Orchestrator) abortMission(ctx context.Context, result *mission.Result, cause error) (*mission.Result, error) {
	result.ErrorMessage = cause.Error()
	result.Complete(mission.StatusFailed)
	o.logEvent(ctx, logging.MissionFailed(result.MissionID, result.ErrorMessage))
	o.recordMissionEnd(ctx, result)
	o.emit(result.Stage, "Mission failed: "+result.ErrorMessage, 100)
	return result, cause
}

// fetchSimple retrieves exactly the planned URLs through a bounded worker
// pool. Failed URLs are retried in waves with exponentially growing delays;
// a URL that fails for good keeps its last failure reason in FetchErrors.
func (o *Orchestrator) fetchSimple(ctx context.Context, missionPlan *mission.Plan, result *mission.Result) {
	urls := missionPlan.TargetURLs
	content := make(map[string]string, len(urls))
	failures := make(map[string]string, len(urls))

	pending := make([]string, len(urls))
	copy(pending, urls)

	for attempt := 0; attempt < o.maxRetries && len(pending) > 0; attempt++ {
		if attempt > 0 {
			delay := o.retryDelay * time.Duration(1<<(attempt-1))
			if err := o.sleep(ctx, delay); err != nil {
				break
			}
		}

		outcomes, errs := o.fetcher.Many(ctx, pending, o.fetchWorkers)

		var retry []string
		for i, u := range pending {
			if outcomes[i].OK() {
				content[u] = outcomes[i].Content
				continue
			}
			failures[u] = fetchFailureReason(errs[i])
			if isRetryable(errs[i]) {
				retry = append(retry, u)
			}
		}
		pending = retry
	}

	// Commit in plan order.
	for _, u := range urls {
		if html, ok := content[u]; ok {
			result.Pages = append(result.Pages, mission.Page{URL: u, Content: html})
		} else if reason, ok := failures[u]; ok {
			result.FetchErrors[u] = reason
		}
	}
}

// fetchIntelligent delegates source gathering to the adaptive crawler,
// seeding it with the planned URLs and budgeting twice the planned count.
func (o *Orchestrator) fetchIntelligent(ctx context.Context, missionPlan *mission.Plan, result *mission.Result) {
	keywords := strings.Fields(strings.ToLower(missionPlan.Topic))
	budget := len(missionPlan.TargetURLs) * 2

	session := o.crawler.Crawl(ctx, missionPlan.TargetURLs, keywords, budget, o.crawlDepth)
	if session == nil {
		return
	}

	for _, page := range session.Pages {
		result.Pages = append(result.Pages, mission.Page{URL: page.URL, Content: page.Content})
	}
	for _, d := range session.Decisions {
		if d.Action == crawl.ActionGiveUp {
			result.FetchErrors[d.URL] = d.Reason
		}
	}

	counts := session.DecisionCounts()
	result.CrawlStats = &mission.CrawlStats{
		PagesFetched: len(session.Pages),
		PagesFailed:  counts[string(crawl.ActionGiveUp)],
		Decisions:    counts,
	}

	if o.verbose {
		o.printer.PrintCrawlSession(session)
	}
}

// cleanPages extracts readable documents from the fetched pages. Pages that
// fail to clean are dropped and recorded, never fatal on their own.
func (o *Orchestrator) cleanPages(result *mission.Result) {
	for _, page := range result.Pages {
		doc, err := o.cleaner(page.Content, page.URL)
		if err != nil {
			if result.CleaningErrors == nil {
				result.CleaningErrors = make(map[string]string)
			}
			result.CleaningErrors[page.URL] = err.Error()
			continue
		}
		result.Documents = append(result.Documents, mission.CleanDoc{
			URL:       page.URL,
			Title:     doc.Title,
			Text:      doc.Text,
			WordCount: doc.WordCount,
			Metadata:  metadataMap(doc.Metadata),
		})
	}
}

// scoreDocuments computes per-document breakdowns and the mission-level
// aggregate. Scoring always succeeds; missing data scores zero.
func (o *Orchestrator) scoreDocuments(req *mission.Request, result *mission.Result) map[string]float64 {
	keywords := strings.Fields(strings.ToLower(req.Topic))

	composites := make(map[string]float64, len(result.Documents))
	texts := make([]string, 0, len(result.Documents))
	var relevanceSum, qualitySum, compositeSum float64

	for _, doc := range result.Documents {
		breakdown := scoring.ScoreContent(doc.Text, keywords)
		composites[doc.URL] = breakdown.Composite
		texts = append(texts, doc.Text)
		relevanceSum += breakdown.Relevance
		qualitySum += breakdown.Quality
		compositeSum += breakdown.Composite
	}

	if n := float64(len(result.Documents)); n > 0 {
		result.Scores = mission.Scores{
			KeywordRelevance: relevanceSum / n,
			AvgQuality:       qualitySum / n,
			Diversity:        scoring.Diversity(texts),
			Composite:        compositeSum / n,
		}
	}
	return composites
}

// summarizeDocuments generates summaries in descending composite order so
// the strongest sources lead the digest. Per-document failures are skipped.
func (o *Orchestrator) summarizeDocuments(req *mission.Request, result *mission.Result, composites map[string]float64) {
	docs := make([]mission.CleanDoc, len(result.Documents))
	copy(docs, result.Documents)
	sort.SliceStable(docs, func(i, j int) bool {
		si, sj := composites[docs[i].URL], composites[docs[j].URL]
		if si != sj {
			return si > sj
		}
		return docs[i].URL < docs[j].URL
	})

	for _, doc := range docs {
		summary := o.summarizer.Summarize(doc.Text, doc.Title, summarize.Style(req.Style), 0)
		if summary == nil || summary.Text == "" {
			continue
		}
		result.Summaries = append(result.Summaries, mission.Summary{
			SourceURL:     doc.URL,
			Title:         doc.Title,
			Text:          summary.Text,
			KeyPoints:     summary.KeyPoints,
			SentenceCount: summary.Metadata.SummarySentences,
			WordCount:     summary.WordCount,
			Style:         mission.Style(summary.Style),
			Score:         summary.Score,
		})
	}
}

// storeResult writes the mission to the knowledge store. Failures are
// recorded, never fatal.
func (o *Orchestrator) storeResult(ctx context.Context, result *mission.Result) {
	if o.store == nil {
		return
	}

	written, err := o.store.WriteMission(ctx, result)
	switch {
	case errors.Is(err, store.ErrNotConfigured):
		if o.verbose {
			fmt.Fprintf(o.out, "Knowledge store write skipped: not configured\n")
		}
	case err != nil:
		fmt.Fprintf(o.out, "Warning: Failed to store mission: %v\n", err)
		o.logEvent(ctx, logging.ErrorEvent(result.MissionID, err))
	default:
		result.StorageSuccess = true
		if o.verbose && written != nil {
			fmt.Fprintf(o.out, "Stored mission page %s\n", written.PageID)
		}
	}
}

func (o *Orchestrator) recordMissionStart(ctx context.Context, req *mission.Request, result *mission.Result) {
	if o.history == nil {
		return
	}
	_, err := o.history.CreateMission(ctx, &db.MissionInput{
		MissionID: result.MissionID,
		Topic:     req.Topic,
		Style:     string(req.Style),
		Mode:      string(o.mode),
	})
	if err != nil {
		fmt.Fprintf(o.out, "Warning: Failed to record mission start: %v\n", err)
	}
}

func (o *Orchestrator) recordMissionEnd(ctx context.Context, result *mission.Result) {
	if o.history == nil {
		return
	}
	if err := o.history.SaveMissionResult(ctx, result.MissionID, result); err != nil {
		fmt.Fprintf(o.out, "Warning: Failed to save mission result: %v\n", err)
	}
	if err := o.history.CompleteMission(ctx, result.MissionID, string(result.Status), result.ErrorMessage); err != nil {
		fmt.Fprintf(o.out, "Warning: Failed to record mission completion: %v\n", err)
	}
}

func (o *Orchestrator) logEvent(ctx context.Context, entry logging.Entry) {
	if o.logger == nil {
		return
	}
	o.logger.Log(ctx, entry)
}

func (o *Orchestrator) emit(stage mission.Stage, message string, percent float64) {
	if o.progress != nil {
		o.progress(stage, message, percent)
	}
}

// metadataMap flattens cleaning metadata into the result's string map,
// keeping only populated fields.
func metadataMap(meta cleaning.Metadata) map[string]string {
	m := make(map[string]string)
	if meta.Author != "" {
		m["author"] = meta.Author
	}
	if meta.DatePublished != "" {
		m["date_published"] = meta.DatePublished
	}
	if meta.Description != "" {
		m["description"] = meta.Description
	}
	if len(meta.Keywords) > 0 {
		m["keywords"] = strings.Join(meta.Keywords, ", ")
	}
	if meta.Image != "" {
		m["image"] = meta.Image
	}
	if meta.SiteName != "" {
		m["site_name"] = meta.SiteName
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// fetchFailureReason produces the FetchErrors description for a failed URL.
func fetchFailureReason(err error) string {
	if err == nil {
		return "fetch failed"
	}
	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		if fetchErr.Status != 0 {
			return fmt.Sprintf("HTTP status %d", fetchErr.Status)
		}
		return fetchErr.Message
	}
	return err.Error()
}

// isRetryable reports whether another attempt could change the result.
func isRetryable(err error) bool {
	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		return fetchErr.Retryable()
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
