package db

import "time"

// DefaultListLimit caps mission listings when no limit is given
const DefaultListLimit = 50

// Mission is a row in the missions table
type Mission struct {
	MissionID    string     `json:"mission_id"`
	Topic        string     `json:"topic"`
	Status       string     `json:"status"`
	Style        string     `json:"style"`
	Mode         string     `json:"mode"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// MissionInput is used when recording a new mission
type MissionInput struct {
	MissionID string
	Topic     string
	Style     string
	Mode      string
}

// MissionLog is a row in the mission_logs table
type MissionLog struct {
	ID        int64          `json:"id"`
	MissionID string         `json:"mission_id"`
	Timestamp time.Time      `json:"timestamp"`
	EventType string         `json:"event_type"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Level     string         `json:"level"`
}
