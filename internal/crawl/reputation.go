package crawl

import "sync"

// DomainStats counts terminal fetch outcomes for one domain.
type DomainStats struct {
	Successes int `json:"successes"`
	Failures  int `json:"failures"`
}

// reputationTable tracks how domains have behaved across a crawler's
// lifetime. It satisfies relevance.ReputationLookup so scores can reward
// domains that delivered and penalize domains that kept failing.
type reputationTable struct {
	mu    sync.RWMutex
	stats map[string]DomainStats
}

func newReputationTable() *reputationTable {
	return &reputationTable{stats: make(map[string]DomainStats)}
}

// Delta returns successes minus failures for a domain, zero when unknown.
func (t *reputationTable) Delta(domain string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.stats[domain]
	return s.Successes - s.Failures
}

func (t *reputationTable) RecordSuccess(domain string) {
	if domain == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.stats[domain]
	s.Successes++
	t.stats[domain] = s
}

func (t *reputationTable) RecordFailure(domain string) {
	if domain == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.stats[domain]
	s.Failures++
	t.stats[domain] = s
}

// Snapshot copies the table for callers that outlive the lock.
func (t *reputationTable) Snapshot() map[string]DomainStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]DomainStats, len(t.stats))
	for domain, s := range t.stats {
		out[domain] = s
	}
	return out
}
