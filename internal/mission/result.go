package mission

import "time"

// Page is one successfully fetched raw page.
type Page struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// CleanDoc is the cleaned form of a fetched page.
type CleanDoc struct {
	URL       string            `json:"url"`
	Title     string            `json:"title"`
	Text      string            `json:"text"`
	WordCount int               `json:"word_count"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Scores aggregates the content-quality signals computed by the scoring stage.
type Scores struct {
	KeywordRelevance float64 `json:"keyword_relevance"`
	AvgQuality       float64 `json:"avg_quality"`
	Diversity        float64 `json:"diversity"`
	Composite        float64 `json:"composite"`
}

// Summary is one generated per-source summary.
type Summary struct {
	SourceURL     string   `json:"source_url"`
	Title         string   `json:"title"`
	Text          string   `json:"text"`
	KeyPoints     []string `json:"key_points"`
	SentenceCount int      `json:"sentence_count"`
	WordCount     int      `json:"word_count"`
	Style         Style    `json:"style"`
	Score         float64  `json:"score"`
}

// CrawlStats is the crawler's per-mission transparency snapshot, recorded in
// intelligent mode only.
type CrawlStats struct {
	PagesFetched int            `json:"pages_fetched"`
	PagesFailed  int            `json:"pages_failed"`
	Decisions    map[string]int `json:"decisions"`
}

// Result is the mission record built incrementally across stages. It is
// mutated only by the orchestrator and published read-only once Status is
// terminal.
type Result struct {
	MissionID string    `json:"mission_id"`
	Topic     string    `json:"topic"`
	Status    Status    `json:"status"`
	Stage     Stage     `json:"stage"`
	Mode      FetchMode `json:"mode"`

	Plan      *Plan      `json:"plan,omitempty"`
	Pages     []Page     `json:"pages,omitempty"`
	Documents []CleanDoc `json:"documents,omitempty"`
	Scores    Scores     `json:"scores"`
	Summaries []Summary  `json:"summaries,omitempty"`

	FetchErrors    map[string]string `json:"fetch_errors,omitempty"`
	CleaningErrors map[string]string `json:"cleaning_errors,omitempty"`
	ErrorMessage   string            `json:"error_message,omitempty"`

	StorageSuccess bool        `json:"storage_success"`
	CrawlStats     *CrawlStats `json:"crawl_stats,omitempty"`

	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
}

// NewResult initializes a running Result for a request.
func NewResult(missionID, topic string, mode FetchMode) *Result {
	return &Result{
		MissionID:   missionID,
		Topic:       topic,
		Status:      StatusRunning,
		Stage:       StagePlanning,
		Mode:        mode,
		FetchErrors: make(map[string]string),
		StartedAt:   time.Now().UTC(),
	}
}

// Complete marks the result terminal with the given status.
func (r *Result) Complete(status Status) {
	r.Status = status
	r.CompletedAt = time.Now().UTC()
	r.Duration = r.CompletedAt.Sub(r.StartedAt)
}
