package trends

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestAnalyzer(missions []Mission) *Analyzer {
	a := NewAnalyzer(missions)
	a.now = func() time.Time { return testNow }
	return a
}

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func TestKeywordTrends_ClassifiesMovement(t *testing.T) {
	a := newTestAnalyzer([]Mission{
		{MissionID: "m1", Topic: "quantum computing advances", CompletedAt: daysAgo(5)},
		{MissionID: "m2", Topic: "quantum error correction", CompletedAt: daysAgo(10)},
		{MissionID: "m3", Topic: "wildfire detection systems", CompletedAt: daysAgo(15)},
		{MissionID: "m4", Topic: "quantum computing basics", CompletedAt: daysAgo(35)},
		{MissionID: "m5", Topic: "solar panel efficiency", CompletedAt: daysAgo(45)},
	})

	trends := a.KeywordTrends(30)

	// quantum: 2/3 recent vs 1/2 previous, a +33% change
	require.Len(t, trends.TrendingUp, 1)
	assert.Equal(t, "quantum", trends.TrendingUp[0].Keyword)
	assert.InDelta(t, 1.0/3.0, trends.TrendingUp[0].Value, 1e-9)

	// keywords that vanished drop 100% and sort before the mild decline
	require.Len(t, trends.TrendingDown, 5)
	assert.Equal(t, "basics", trends.TrendingDown[0].Keyword)
	assert.InDelta(t, -1.0, trends.TrendingDown[0].Value, 1e-9)
	assert.Equal(t, "computing", trends.TrendingDown[4].Keyword)
	assert.InDelta(t, -1.0/3.0, trends.TrendingDown[4].Value, 1e-9)

	newKeywords := make([]string, len(trends.New))
	for i, kt := range trends.New {
		newKeywords[i] = kt.Keyword
	}
	assert.Equal(t, []string{"advances", "correction", "detection", "error", "systems", "wildfire"}, newKeywords)

	assert.Empty(t, trends.Stable)
}

func TestKeywordTrends_StableBand(t *testing.T) {
	// same per-mission frequency in both windows
	a := newTestAnalyzer([]Mission{
		{MissionID: "m1", Topic: "quantum computing", CompletedAt: daysAgo(5)},
		{MissionID: "m2", Topic: "quantum physics", CompletedAt: daysAgo(40)},
	})

	trends := a.KeywordTrends(30)

	require.Len(t, trends.Stable, 1)
	assert.Equal(t, "quantum", trends.Stable[0].Keyword)
	assert.InDelta(t, 1.0, trends.Stable[0].Value, 1e-9)
}

func TestKeywordTrends_IgnoresMissionsOutsideBothWindows(t *testing.T) {
	a := newTestAnalyzer([]Mission{
		{MissionID: "m1", Topic: "ancient history research", CompletedAt: daysAgo(120)},
		{MissionID: "m2", Topic: "ancient greek philosophy"},
	})

	trends := a.KeywordTrends(30)

	assert.Empty(t, trends.TrendingUp)
	assert.Empty(t, trends.TrendingDown)
	assert.Empty(t, trends.Stable)
	assert.Empty(t, trends.New)
}

func TestQualityTrends_GroupsByMonth(t *testing.T) {
	a := newTestAnalyzer([]Mission{
		{MissionID: "m1", Scores: map[string]float64{"relevance": 0.8, "quality": 0.6},
			CompletedAt: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)},
		{MissionID: "m2", Scores: map[string]float64{"relevance": 0.9, "quality": 0.7},
			CompletedAt: time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)},
		{MissionID: "m3", Scores: map[string]float64{"quality": 0.5},
			CompletedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{MissionID: "m4", CompletedAt: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)},
		{MissionID: "m5", Scores: map[string]float64{"quality": 0.9}},
	})

	stats := a.QualityTrends()

	require.Len(t, stats, 2)

	may := stats["2024-05"]
	assert.Equal(t, 2, may.MissionCount)
	assert.InDelta(t, 0.75, may.AvgQuality, 1e-9)
	assert.InDelta(t, 0.7, may.MinQuality, 1e-9)
	assert.InDelta(t, 0.8, may.MaxQuality, 1e-9)

	june := stats["2024-06"]
	assert.Equal(t, 1, june.MissionCount)
	assert.InDelta(t, 0.5, june.AvgQuality, 1e-9)
}

func TestSimilarMissions_RanksByJaccard(t *testing.T) {
	a := newTestAnalyzer([]Mission{
		{MissionID: "m1", Topic: "quantum computing advances", Status: "completed", CompletedAt: daysAgo(5)},
		{MissionID: "m2", Topic: "quantum error correction", Status: "completed", CompletedAt: daysAgo(10)},
		{MissionID: "m3", Topic: "solar panel efficiency", Status: "failed", CompletedAt: daysAgo(15)},
	})

	similar := a.SimilarMissions("quantum computing", 5)

	require.Len(t, similar, 2)
	assert.Equal(t, "m1", similar[0].MissionID)
	assert.InDelta(t, 2.0/3.0, similar[0].Similarity, 1e-9)
	assert.Equal(t, "m2", similar[1].MissionID)
	assert.InDelta(t, 0.25, similar[1].Similarity, 1e-9)
}

func TestSimilarMissions_TopK(t *testing.T) {
	a := newTestAnalyzer([]Mission{
		{MissionID: "m1", Topic: "quantum computing advances"},
		{MissionID: "m2", Topic: "quantum error correction"},
	})

	similar := a.SimilarMissions("quantum computing", 1)

	require.Len(t, similar, 1)
	assert.Equal(t, "m1", similar[0].MissionID)
}

func TestSimilarMissions_EmptyTopic(t *testing.T) {
	a := newTestAnalyzer([]Mission{{MissionID: "m1", Topic: "quantum computing"}})

	assert.Nil(t, a.SimilarMissions("", 5))
}

func TestDomainPatterns(t *testing.T) {
	a := newTestAnalyzer([]Mission{
		{MissionID: "m1", Topic: "quantum computing", Status: "completed",
			Scores: map[string]float64{"quality": 0.7}},
		{MissionID: "m2", Topic: "quantum basics", Status: "failed"},
		{MissionID: "m3", Topic: "machine learning theory", Status: "completed",
			Domain: "academic", Scores: map[string]float64{"quality": 0.9}},
	})

	stats := a.DomainPatterns()

	require.Len(t, stats, 2)

	general := stats["general"]
	assert.Equal(t, 2, general.MissionCount)
	assert.InDelta(t, 0.35, general.AvgQuality, 1e-9)
	assert.InDelta(t, 0.5, general.SuccessRate, 1e-9)
	require.NotEmpty(t, general.TopKeywords)
	assert.Equal(t, KeywordCount{Keyword: "quantum", Count: 2}, general.TopKeywords[0])

	academic := stats["academic"]
	assert.Equal(t, 1, academic.MissionCount)
	assert.InDelta(t, 0.9, academic.AvgQuality, 1e-9)
	assert.InDelta(t, 1.0, academic.SuccessRate, 1e-9)
}

func TestEmergingTopics(t *testing.T) {
	missions := []Mission{
		{MissionID: "m1", Topic: "data pipelines", CompletedAt: daysAgo(3)},
		{MissionID: "m2", Topic: "data lakes", CompletedAt: daysAgo(7)},
		{MissionID: "m3", Topic: "data mesh", CompletedAt: daysAgo(9)},
		{MissionID: "m4", Topic: "data basics", CompletedAt: daysAgo(40)},
		{MissionID: "m5", Topic: "cloud computing", CompletedAt: daysAgo(45)},
		{MissionID: "m6", Topic: "cloud storage", CompletedAt: daysAgo(50)},
		{MissionID: "m7", Topic: "cloud security", CompletedAt: daysAgo(55)},
	}

	t.Run("threshold filters and ratio rule", func(t *testing.T) {
		a := newTestAnalyzer(missions)

		// data: 3 recent mentions vs 1 in 4 historical missions,
		// so 1.0 recent rate beats 3x the 0.25 historical rate
		emerging := a.EmergingTopics(3)
		require.Len(t, emerging, 1)
		assert.Equal(t, KeywordCount{Keyword: "data", Count: 3}, emerging[0])
	})

	t.Run("brand new keywords count from one mention", func(t *testing.T) {
		a := newTestAnalyzer(missions)

		emerging := a.EmergingTopics(1)
		require.Len(t, emerging, 4)
		assert.Equal(t, KeywordCount{Keyword: "data", Count: 3}, emerging[0])
		assert.Equal(t, "lakes", emerging[1].Keyword)
		assert.Equal(t, "mesh", emerging[2].Keyword)
		assert.Equal(t, "pipelines", emerging[3].Keyword)
	})
}

func TestEmergingTopics_RatioNotMet(t *testing.T) {
	// data appears in 1 of 3 historical missions: 3x that rate equals the
	// recent rate exactly, and the comparison is strict
	a := newTestAnalyzer([]Mission{
		{MissionID: "m1", Topic: "data pipelines", CompletedAt: daysAgo(3)},
		{MissionID: "m2", Topic: "data lakes", CompletedAt: daysAgo(7)},
		{MissionID: "m3", Topic: "data mesh", CompletedAt: daysAgo(9)},
		{MissionID: "m4", Topic: "data basics", CompletedAt: daysAgo(40)},
		{MissionID: "m5", Topic: "cloud computing", CompletedAt: daysAgo(45)},
		{MissionID: "m6", Topic: "cloud storage", CompletedAt: daysAgo(50)},
	})

	emerging := a.EmergingTopics(3)
	assert.Empty(t, emerging)
}

func TestKeywordCounter_StopwordsAndLength(t *testing.T) {
	counter := newKeywordCounter()
	counter.addTopic("The quantum leap from this into that area")

	// "the", "from", "this", "into", "that" are stopwords; "leap" and
	// "area" pass; 3-letter words never count
	assert.Equal(t, map[string]int{"quantum": 1, "leap": 1, "area": 1}, counter.counts)
}

func TestReport(t *testing.T) {
	a := newTestAnalyzer([]Mission{
		{MissionID: "m1", Topic: "quantum computing advances", Status: "completed",
			Scores: map[string]float64{"quality": 0.8}, CompletedAt: daysAgo(5)},
		{MissionID: "m2", Topic: "quantum error correction", Status: "completed",
			Scores: map[string]float64{"quality": 0.7}, CompletedAt: daysAgo(10)},
		{MissionID: "m3", Topic: "solar panel efficiency", Status: "failed",
			CompletedAt: daysAgo(40)},
	})

	report := a.Report()

	assert.Contains(t, report, "# Cross-Mission Trend Analysis Report")
	assert.Contains(t, report, "**Generated**: 2024-06-15 12:00")
	assert.Contains(t, report, "**Missions Analyzed**: 3")
	assert.Contains(t, report, "### Trending Up")
	assert.Contains(t, report, "### New Topics")
	assert.Contains(t, report, "## Emerging Topics")
	assert.Contains(t, report, "### General")
	assert.Contains(t, report, "- Missions: 3")
	assert.Contains(t, report, "- Success Rate: 66.7%")
	assert.Contains(t, report, "## Quality Trends")
	assert.Contains(t, report, "- **2024-")
}

func TestReport_EmptyHistory(t *testing.T) {
	a := newTestAnalyzer(nil)

	report := a.Report()

	assert.Contains(t, report, "**Missions Analyzed**: 0")
	assert.Contains(t, report, "## Domain Analysis")
}
