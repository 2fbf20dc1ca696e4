package models

import "time"

// LogEntry is one captured log line as served by /api/logs.
type LogEntry struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
