// Package logging records structured mission events.
//
// Every mission emits a stream of events (start, per-stage progress,
// errors, completion). Sinks are injected into the pipeline rather than
// reached through a global, so a CLI run can log to memory only while a
// persistent setup fans out to Postgres as well. Logging is best-effort:
// a sink that cannot persist an entry drops it, and Log never returns an
// error to the caller.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Log levels
const (
	LevelInfo  = "INFO"
	LevelError = "ERROR"
)

// Event types emitted over a mission's lifetime
const (
	EventMissionStart    = "mission_start"
	EventMissionComplete = "mission_complete"
	EventMissionFailed   = "mission_failed"
	EventStage           = "stage"
	EventError           = "error"
)

// DefaultMaxEntries bounds a MemoryLogger when no capacity is given
const DefaultMaxEntries = 1000

// Entry is a single mission event
type Entry struct {
	MissionID string         `json:"mission_id"`
	EventType string         `json:"event_type"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
	Level     string         `json:"level"`
}

// Logger is a sink for mission events. Implementations must be safe for
// concurrent use and must not fail the mission: entries that cannot be
// recorded are dropped.
type Logger interface {
	Log(ctx context.Context, entry Entry)
}

// NewEntry builds an INFO entry stamped with the current UTC time
func NewEntry(missionID, eventType, message string, data map[string]any) Entry {
	return Entry{
		MissionID: missionID,
		EventType: eventType,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Data:      data,
		Level:     LevelInfo,
	}
}

// MissionStart builds the event recorded when a mission begins
func MissionStart(missionID, topic string) Entry {
	return NewEntry(missionID, EventMissionStart, fmt.Sprintf("Mission started: %s", topic),
		map[string]any{"topic": topic})
}

// MissionComplete builds the event recorded when a mission finishes successfully
func MissionComplete(missionID string, duration time.Duration) Entry {
	return NewEntry(missionID, EventMissionComplete,
		fmt.Sprintf("Mission completed in %.2fs", duration.Seconds()),
		map[string]any{"duration_seconds": duration.Seconds()})
}

// MissionFailed builds the event recorded when a mission ends in failure
func MissionFailed(missionID, reason string) Entry {
	entry := NewEntry(missionID, EventMissionFailed, fmt.Sprintf("Mission failed: %s", reason),
		map[string]any{"reason": reason})
	entry.Level = LevelError
	return entry
}

// StageEvent builds a progress event for a pipeline stage
func StageEvent(missionID, stage, message string, data map[string]any) Entry {
	if data == nil {
		data = map[string]any{}
	}
	data["stage"] = stage
	return NewEntry(missionID, EventStage, message, data)
}

// ErrorEvent builds an ERROR-level entry for a non-fatal error
func ErrorEvent(missionID string, err error) Entry {
	entry := NewEntry(missionID, EventError, fmt.Sprintf("Error: %v", err), nil)
	entry.Level = LevelError
	return entry
}

// MemoryLogger keeps entries in a bounded in-memory buffer. When the
// buffer is full the oldest entries are discarded.
type MemoryLogger struct {
	mu      sync.Mutex
	entries []Entry
	max     int
}

// NewMemoryLogger creates a MemoryLogger holding at most maxEntries.
// A non-positive capacity falls back to DefaultMaxEntries.
func NewMemoryLogger(maxEntries int) *MemoryLogger {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryLogger{max: maxEntries}
}

// Log records the entry, evicting the oldest entry when full
func (l *MemoryLogger) Log(_ context.Context, entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= l.max {
		drop := len(l.entries) - l.max + 1
		l.entries = append(l.entries[:0], l.entries[drop:]...)
	}
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of all recorded entries in order
func (l *MemoryLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// MissionEntries returns the recorded entries for one mission in order
func (l *MemoryLogger) MissionEntries(missionID string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Entry
	for _, entry := range l.entries {
		if entry.MissionID == missionID {
			out = append(out, entry)
		}
	}
	return out
}

// EntryStore persists log entries. *db.DB implements this.
type EntryStore interface {
	InsertMissionLog(ctx context.Context, entry Entry) error
}

// DatabaseLogger writes entries through an EntryStore. Persistence
// failures are counted and the entry is dropped.
type DatabaseLogger struct {
	store   EntryStore
	mu      sync.Mutex
	dropped int
}

// NewDatabaseLogger creates a DatabaseLogger backed by store
func NewDatabaseLogger(store EntryStore) *DatabaseLogger {
	return &DatabaseLogger{store: store}
}

// Log persists the entry, dropping it if the store fails
func (l *DatabaseLogger) Log(ctx context.Context, entry Entry) {
	if l.store == nil {
		return
	}
	if err := l.store.InsertMissionLog(ctx, entry); err != nil {
		l.mu.Lock()
		l.dropped++
		l.mu.Unlock()
	}
}

// Dropped reports how many entries failed to persist
func (l *DatabaseLogger) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// MultiLogger fans each entry out to every sink
type MultiLogger struct {
	sinks []Logger
}

// NewMultiLogger combines sinks into one Logger, skipping nil sinks
func NewMultiLogger(sinks ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Log forwards the entry to every sink
func (l *MultiLogger) Log(ctx context.Context, entry Entry) {
	for _, s := range l.sinks {
		s.Log(ctx, entry)
	}
}

// ExportJSON writes entries to path as an indented JSON array, creating
// parent directories as needed
func ExportJSON(path string, entries []Entry) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log export directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal log entries: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write log export: %w", err)
	}
	return nil
}
