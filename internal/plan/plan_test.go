package plan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mshears713/Research-Body/internal/mission"
)

type stubDiscoverer struct {
	urls     []string
	err      error
	gotTopic string
	gotLimit int
}

func (d *stubDiscoverer) Discover(_ context.Context, topic string, _ []string, limit int) ([]string, error) {
	d.gotTopic = topic
	d.gotLimit = limit
	return d.urls, d.err
}

func TestNewMissionID(t *testing.T) {
	id := NewMissionID()

	assert.True(t, strings.HasPrefix(id, "mission_"))
	assert.Len(t, id, len("mission_")+12)
	assert.NotEqual(t, id, NewMissionID())
}

func TestTopicKeywords(t *testing.T) {
	got := TopicKeywords("The latest developments in AI for quantum computing research today")

	// "ai" is too short, stopwords are dropped, and the list caps at five.
	assert.Equal(t, []string{"latest", "developments", "quantum", "computing", "research"}, got)
}

func TestTopicType(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"quantum computing research", "academic"},
		{"latest gpu prices", "news"},
		{"rest api design", "technical"},
		{"cooking pasta at home", "general"},
		{"latest research on llms", "academic"},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			assert.Equal(t, tt.want, TopicType(tt.topic))
		})
	}
}

func TestScoreSourceQuality(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want float64
	}{
		{name: "plain http", url: "http://blog.example.com/post", want: 0.5},
		{name: "https", url: "https://example.com/page", want: 0.7},
		{name: "https reliable domain", url: "https://arxiv.org/abs/2401.00001", want: 1.0},
		{name: "org domain", url: "https://example.org/essay", want: 1.0},
		{name: "very long url", url: "http://example.com/" + strings.Repeat("a", 200), want: 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScoreSourceQuality(tt.url), 1e-9)
		})
	}
}

func TestCreatePlan_PrioritizesUserSources(t *testing.T) {
	req := &mission.Request{
		Topic: "quantum error correction",
		Sources: []string{
			"http://blog.example.com/post",
			"https://arxiv.org/abs/2401.00001",
			"https://example.com/page",
			"http://blog.example.com/post",
		},
		MaxSources: 5,
		Style:      mission.StyleTechnical,
	}

	plan := NewPlanner(nil).CreatePlan(context.Background(), req)

	assert.Equal(t, []string{
		"https://arxiv.org/abs/2401.00001",
		"https://example.com/page",
		"http://blog.example.com/post",
	}, plan.TargetURLs)
	assert.Equal(t, "User provided 4 source(s). Selected top 3 after quality scoring and deduplication.", plan.Rationale)
	assert.True(t, strings.HasPrefix(plan.MissionID, "mission_"))
	assert.Equal(t, "quantum error correction", plan.Topic)
	assert.False(t, plan.CreatedAt.IsZero())
}

func TestCreatePlan_CapsUserSources(t *testing.T) {
	req := &mission.Request{
		Topic: "anything interesting",
		Sources: []string{
			"https://a.example.com/1",
			"https://b.example.com/2",
			"https://c.example.com/3",
			"https://d.example.com/4",
		},
		MaxSources: 2,
		Style:      mission.StyleTechnical,
	}

	plan := NewPlanner(nil).CreatePlan(context.Background(), req)

	// Equal scores keep the user's order.
	assert.Equal(t, []string{"https://a.example.com/1", "https://b.example.com/2"}, plan.TargetURLs)
}

func TestCreatePlan_DropsNonHTTPSources(t *testing.T) {
	req := &mission.Request{
		Topic:      "archive formats",
		Sources:    []string{"ftp://files.example.com/x", "https://ok.example.com/y"},
		MaxSources: 5,
		Style:      mission.StyleTechnical,
	}

	plan := NewPlanner(nil).CreatePlan(context.Background(), req)

	assert.Equal(t, []string{"https://ok.example.com/y"}, plan.TargetURLs)
}

func TestCreatePlan_DiscoversAcademicSources(t *testing.T) {
	req := &mission.Request{
		Topic:      "research on quantum error correction",
		MaxSources: 5,
		Style:      mission.StyleTechnical,
	}

	plan := NewPlanner(nil).CreatePlan(context.Background(), req)

	query := "research+quantum+error+correction"
	assert.Equal(t, []string{
		"https://scholar.google.com/scholar?q=" + query,
		"https://arxiv.org/search/?query=" + query,
		"https://www.google.com/search?q=" + query,
		"https://duckduckgo.com/?q=" + query,
		"https://en.wikipedia.org/wiki/Special:Search?search=" + query,
	}, plan.TargetURLs)
	assert.Equal(t, []string{"research", "quantum", "error", "correction"}, plan.Keywords)
	assert.Contains(t, plan.Rationale, "academic research")
	assert.Contains(t, plan.Rationale, `"research on quantum error correction"`)
}

func TestCreatePlan_MultiStrategyTopic(t *testing.T) {
	req := &mission.Request{
		Topic:      "latest api research",
		MaxSources: 4,
		Style:      mission.StyleTechnical,
	}

	plan := NewPlanner(nil).CreatePlan(context.Background(), req)

	query := "latest+api+research"
	assert.Equal(t, []string{
		"https://scholar.google.com/scholar?q=" + query,
		"https://arxiv.org/search/?query=" + query,
		"https://news.google.com/search?q=" + query,
		"https://www.reuters.com/site-search/?query=" + query,
	}, plan.TargetURLs)
	assert.Contains(t, plan.Rationale, "academic research, news/current events, technical documentation")
}

func TestCreatePlan_GeneralFallback(t *testing.T) {
	req := &mission.Request{
		Topic:      "butterfly migration patterns",
		MaxSources: 3,
		Style:      mission.StyleCasual,
	}

	plan := NewPlanner(nil).CreatePlan(context.Background(), req)

	query := "butterfly+migration+patterns"
	assert.Equal(t, []string{
		"https://www.google.com/search?q=" + query,
		"https://duckduckgo.com/?q=" + query,
		"https://en.wikipedia.org/wiki/Special:Search?search=" + query,
	}, plan.TargetURLs)
	assert.Contains(t, plan.Rationale, "general web search")
}

func TestCreatePlan_UsesDiscovererWhenConfigured(t *testing.T) {
	discoverer := &stubDiscoverer{
		urls: []string{"https://a.test/1", "https://a.test/1", "https://b.test/2"},
	}
	req := &mission.Request{
		Topic:      "fusion energy milestones",
		MaxSources: 5,
		Style:      mission.StyleTechnical,
	}

	plan := NewPlanner(discoverer).CreatePlan(context.Background(), req)

	assert.Equal(t, []string{"https://a.test/1", "https://b.test/2"}, plan.TargetURLs)
	assert.Equal(t, "fusion energy milestones", discoverer.gotTopic)
	assert.Equal(t, 5, discoverer.gotLimit)
}

func TestCreatePlan_DiscovererFailureFallsBackToTemplates(t *testing.T) {
	tests := []struct {
		name       string
		discoverer *stubDiscoverer
	}{
		{name: "error", discoverer: &stubDiscoverer{err: errors.New("quota exhausted")}},
		{name: "no results", discoverer: &stubDiscoverer{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &mission.Request{
				Topic:      "butterfly migration patterns",
				MaxSources: 3,
				Style:      mission.StyleCasual,
			}

			plan := NewPlanner(tt.discoverer).CreatePlan(context.Background(), req)

			require.Len(t, plan.TargetURLs, 3)
			assert.Contains(t, plan.TargetURLs[0], "google.com/search")
		})
	}
}

func TestCreatePlan_DefaultMaxSources(t *testing.T) {
	req := &mission.Request{
		Topic: "research methodology surveys",
		Style: mission.StyleExecutive,
	}

	plan := NewPlanner(nil).CreatePlan(context.Background(), req)

	assert.Len(t, plan.TargetURLs, DefaultMaxSources)
}
