// Package mission provides type definitions for research missions: the
// request, the plan, and the result record built up across pipeline stages.
package mission

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Status is the terminal-or-running state of a mission.
type Status string

const (
	// StatusRunning means the mission is still executing stages.
	StatusRunning Status = "running"
	// StatusCompleted means the mission produced usable output.
	StatusCompleted Status = "completed"
	// StatusFailed means a mandatory stage was exhausted or an unexpected error occurred.
	StatusFailed Status = "failed"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Stage identifies a pipeline stage. Stages run strictly in this order.
type Stage string

const (
	StagePlanning    Stage = "planning"
	StageFetching    Stage = "fetching"
	StageCleaning    Stage = "cleaning"
	StageScoring     Stage = "scoring"
	StageSummarizing Stage = "summarizing"
	StageStoring     Stage = "storing"
	StageLogging     Stage = "logging"
)

// Stages returns all stages in execution order.
func Stages() []Stage {
	return []Stage{
		StagePlanning,
		StageFetching,
		StageCleaning,
		StageScoring,
		StageSummarizing,
		StageStoring,
		StageLogging,
	}
}

// Style selects the summary voice.
type Style string

const (
	// StyleTechnical produces a formal, detail-heavy summary.
	StyleTechnical Style = "technical"
	// StyleExecutive produces a short, decision-oriented summary.
	StyleExecutive Style = "executive"
	// StyleCasual produces a conversational summary without bullets.
	StyleCasual Style = "casual"
)

// Valid reports whether the style is one of the known styles.
func (s Style) Valid() bool {
	switch s {
	case StyleTechnical, StyleExecutive, StyleCasual:
		return true
	}
	return false
}

// FetchMode selects how the fetching stage acquires pages.
type FetchMode string

const (
	// ModeSimple fetches exactly the planned URLs, no link following.
	ModeSimple FetchMode = "simple"
	// ModeIntelligent delegates to the adaptive crawler with the planned
	// URLs as seeds.
	ModeIntelligent FetchMode = "intelligent"
)

// Valid reports whether the mode is one of the known fetch modes.
func (m FetchMode) Valid() bool {
	return m == ModeSimple || m == ModeIntelligent
}

// Request is the immutable input that starts a mission.
type Request struct {
	Topic      string   `json:"topic" validate:"required,min=3"`
	Sources    []string `json:"sources,omitempty" validate:"omitempty,dive,url"`
	MaxSources int      `json:"max_sources" validate:"min=1,max=20"`
	Style      Style    `json:"style" validate:"required,oneof=technical executive casual"`
}

// Validate validates the Request using the validator.
func (r *Request) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Plan is produced once by the planner and consumed read-only downstream.
type Plan struct {
	MissionID  string    `json:"mission_id"`
	Topic      string    `json:"topic"`
	TargetURLs []string  `json:"target_urls"`
	Keywords   []string  `json:"keywords"`
	Rationale  string    `json:"rationale"`
	CreatedAt  time.Time `json:"created_at"`
}
