package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	MinIntervalMinutes = 1
	MaxIntervalMinutes = 1440
	MinBatchSize       = 1
	MaxBatchSize       = 100
)

var ErrOutOfRange = errors.New("value out of range")

// RunConfig is the cadence of one dispatch run.
type RunConfig struct {
	IntervalMinutes int `json:"interval"`
	BatchSize       int `json:"batch_size"`
}

// LoopConfig controls replaying the original rows once the queue drains.
type LoopConfig struct {
	Enabled             bool      `json:"enabled"`
	IntervalMinutes     int       `json:"interval_minutes"`
	MessagesPerCycle    int       `json:"messages_per_cycle"`
	TemplateName        string    `json:"template_name"`
	RestartWhenFinished bool      `json:"restart_when_finished"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Restarts reports whether a drained queue should be refilled.
func (c LoopConfig) Restarts() bool { return c.Enabled && c.RestartWhenFinished }

// Snapshot is the single-slot checkpoint of an in-progress run.
type Snapshot struct {
	OwnerUserID      int64     `json:"owner_user_id"`
	Queue            []Row     `json:"messages_queue"`
	Processed        []Row     `json:"processed_messages"`
	Config           RunConfig `json:"current_config"`
	Timestamp        time.Time `json:"timestamp"`
	SelectedTemplate string    `json:"selected_template,omitempty"`
	Original         []Row     `json:"original_messages,omitempty"`
}

// ParseBounded parses an integer and checks min <= n <= max.
func ParseBounded(raw string, min, max int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("not a number: %w", err)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, n, min, max)
	}
	return n, nil
}

func ParseInterval(raw string) (int, error) {
	return ParseBounded(raw, MinIntervalMinutes, MaxIntervalMinutes)
}

func ParseBatchSize(raw string) (int, error) {
	return ParseBounded(raw, MinBatchSize, MaxBatchSize)
}
