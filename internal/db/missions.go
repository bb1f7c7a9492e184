package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mshears713/Research-Body/internal/logging"
)

// CreateMission records a new mission in running state
func (db *DB) CreateMission(ctx context.Context, input *MissionInput) (*Mission, error) {
	m := &Mission{
		MissionID: input.MissionID,
		Topic:     input.Topic,
		Status:    "running",
		Style:     input.Style,
		Mode:      input.Mode,
	}

	err := db.pool.QueryRow(ctx,
		`INSERT INTO missions (mission_id, topic, status, style, mode)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING started_at`,
		m.MissionID, m.Topic, m.Status, m.Style, m.Mode,
	).Scan(&m.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create mission: %w", err)
	}

	return m, nil
}

// CompleteMission marks a mission as completed or failed
func (db *DB) CompleteMission(ctx context.Context, missionID, status, errorMessage string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE missions
		 SET status = $1, error_message = $2, completed_at = NOW()
		 WHERE mission_id = $3`,
		status, nullIfEmpty(errorMessage), missionID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete mission: %w", err)
	}
	return nil
}

// GetMission retrieves a mission by ID. Returns nil if not found.
func (db *DB) GetMission(ctx context.Context, missionID string) (*Mission, error) {
	var m Mission
	err := db.pool.QueryRow(ctx,
		`SELECT mission_id, topic, status, style, mode, error_message, started_at, completed_at
		 FROM missions
		 WHERE mission_id = $1`,
		missionID,
	).Scan(&m.MissionID, &m.Topic, &m.Status, &m.Style, &m.Mode,
		&m.ErrorMessage, &m.StartedAt, &m.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}
	return &m, nil
}

// ListMissions retrieves the most recent missions, newest first
func (db *DB) ListMissions(ctx context.Context, limit int) ([]Mission, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT mission_id, topic, status, style, mode, error_message, started_at, completed_at
		 FROM missions
		 ORDER BY started_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}
	defer rows.Close()

	return scanMissions(rows)
}

// ListMissionsByStatus retrieves missions with the given status, newest first
func (db *DB) ListMissionsByStatus(ctx context.Context, status string, limit int) ([]Mission, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT mission_id, topic, status, style, mode, error_message, started_at, completed_at
		 FROM missions
		 WHERE status = $1
		 ORDER BY started_at DESC
		 LIMIT $2`,
		status, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list missions by status: %w", err)
	}
	defer rows.Close()

	return scanMissions(rows)
}

func scanMissions(rows pgx.Rows) ([]Mission, error) {
	var missions []Mission
	for rows.Next() {
		var m Mission
		if err := rows.Scan(&m.MissionID, &m.Topic, &m.Status, &m.Style, &m.Mode,
			&m.ErrorMessage, &m.StartedAt, &m.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mission: %w", err)
		}
		missions = append(missions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate missions: %w", err)
	}
	return missions, nil
}

// CountMissionsByStatus returns mission counts grouped by status
func (db *DB) CountMissionsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM missions GROUP BY status`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count missions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan mission count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mission counts: %w", err)
	}
	return counts, nil
}

// SaveMissionResult stores the full mission result as a JSON artifact
func (db *DB) SaveMissionResult(ctx context.Context, missionID string, result any) error {
	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal mission result: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO mission_results (mission_id, content)
		 VALUES ($1, $2)
		 ON CONFLICT (mission_id) DO UPDATE SET content = $2, created_at = NOW()`,
		missionID, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save mission result: %w", err)
	}
	return nil
}

// GetMissionResult retrieves the stored result JSON for a mission.
// Returns nil if no result was stored.
func (db *DB) GetMissionResult(ctx context.Context, missionID string) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM mission_results WHERE mission_id = $1`,
		missionID,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get mission result: %w", err)
	}
	return content, nil
}

// InsertMissionLog persists a log entry. Implements logging.EntryStore.
func (db *DB) InsertMissionLog(ctx context.Context, entry logging.Entry) error {
	var dataJSON []byte
	if entry.Data != nil {
		var err error
		dataJSON, err = json.Marshal(entry.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal log data: %w", err)
		}
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO mission_logs (mission_id, timestamp, event_type, message, data, level)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.MissionID, entry.Timestamp, entry.EventType, entry.Message, dataJSON, entry.Level,
	)
	if err != nil {
		return fmt.Errorf("failed to insert mission log: %w", err)
	}
	return nil
}

// GetMissionLogs retrieves all log entries for a mission in order
func (db *DB) GetMissionLogs(ctx context.Context, missionID string) ([]MissionLog, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, mission_id, timestamp, event_type, message, data, level
		 FROM mission_logs
		 WHERE mission_id = $1
		 ORDER BY timestamp ASC, id ASC`,
		missionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get mission logs: %w", err)
	}
	defer rows.Close()

	var logs []MissionLog
	for rows.Next() {
		var l MissionLog
		var dataJSON []byte
		if err := rows.Scan(&l.ID, &l.MissionID, &l.Timestamp, &l.EventType,
			&l.Message, &dataJSON, &l.Level); err != nil {
			return nil, fmt.Errorf("failed to scan mission log: %w", err)
		}
		if len(dataJSON) > 0 {
			if err := json.Unmarshal(dataJSON, &l.Data); err != nil {
				return nil, fmt.Errorf("failed to unmarshal log data: %w", err)
			}
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mission logs: %w", err)
	}
	return logs, nil
}

// DeleteMission removes a mission and its logs and stored result
func (db *DB) DeleteMission(ctx context.Context, missionID string) error {
	if _, err := db.pool.Exec(ctx,
		`DELETE FROM mission_logs WHERE mission_id = $1`, missionID); err != nil {
		return fmt.Errorf("failed to delete mission logs: %w", err)
	}
	if _, err := db.pool.Exec(ctx,
		`DELETE FROM missions WHERE mission_id = $1`, missionID); err != nil {
		return fmt.Errorf("failed to delete mission: %w", err)
	}
	return nil
}
