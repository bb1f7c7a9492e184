package trends

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Report renders every analysis as one markdown document
func (a *Analyzer) Report() string {
	var b strings.Builder

	b.WriteString("# Cross-Mission Trend Analysis Report\n\n")
	fmt.Fprintf(&b, "**Generated**: %s\n", a.now().Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "**Missions Analyzed**: %d\n", len(a.missions))

	b.WriteString("\n## Keyword Trends (Last 30 Days)\n")
	keywordTrends := a.KeywordTrends(DefaultWindowDays)

	b.WriteString("\n### Trending Up\n")
	for i, kt := range keywordTrends.TrendingUp {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "- **%s**: +%.1f%%\n", kt.Keyword, kt.Value*100)
	}

	b.WriteString("\n### New Topics\n")
	for i, kt := range keywordTrends.New {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "- %s\n", kt.Keyword)
	}

	b.WriteString("\n## Emerging Topics\n")
	for i, kc := range a.EmergingTopics(DefaultMinMentions) {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&b, "- %s (%d mentions)\n", kc.Keyword, kc.Count)
	}

	b.WriteString("\n## Domain Analysis\n")
	domains := a.DomainPatterns()
	for _, domain := range domainsByMissionCount(domains) {
		stat := domains[domain]
		fmt.Fprintf(&b, "\n### %s\n", titleCase(domain))
		fmt.Fprintf(&b, "- Missions: %d\n", stat.MissionCount)
		fmt.Fprintf(&b, "- Avg Quality: %.2f/1.0\n", stat.AvgQuality)
		fmt.Fprintf(&b, "- Success Rate: %.1f%%\n", stat.SuccessRate*100)
		fmt.Fprintf(&b, "- Top Keywords: %s\n", joinKeywords(stat.TopKeywords, 5))
	}

	b.WriteString("\n## Quality Trends\n")
	quality := a.QualityTrends()
	for _, month := range lastMonths(quality, 6) {
		stat := quality[month]
		fmt.Fprintf(&b, "- **%s**: %.2f avg (%d missions)\n", month, stat.AvgQuality, stat.MissionCount)
	}

	return b.String()
}

// domainsByMissionCount orders domain names by mission count, busiest first
func domainsByMissionCount(domains map[string]DomainStat) []string {
	names := make([]string, 0, len(domains))
	for name := range domains {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := domains[names[i]].MissionCount, domains[names[j]].MissionCount
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})
	return names
}

// lastMonths returns the most recent n month keys in ascending order
func lastMonths(quality map[string]QualityStat, n int) []string {
	months := make([]string, 0, len(quality))
	for month := range quality {
		months = append(months, month)
	}
	sort.Strings(months)
	if len(months) > n {
		months = months[len(months)-n:]
	}
	return months
}

func joinKeywords(keywords []KeywordCount, n int) string {
	if len(keywords) > n {
		keywords = keywords[:n]
	}
	parts := make([]string, len(keywords))
	for i, kc := range keywords {
		parts[i] = kc.Keyword
	}
	return strings.Join(parts, ", ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
