package recorder

import (
	"time"

	"AdapterScout/internal/model"
)

// CycleRecord is the aggregate outcome of one committed fetch cycle.
type CycleRecord struct {
	CycleID      string
	FetchedAt    time.Time
	Protocols    int // enriched, after category exclusion
	Pools        int
	AdapterSlugs int
	Stats        model.Stats
	Degraded     bool // repository listing failed
	Truncated    bool // repository listing was truncated
}

// FailureRecord is a fetch cycle that ended in an error.
type FailureRecord struct {
	At     time.Time
	Source string // "protocols", "pools" or "" when unknown
	Error  string
}

// Recorder persists coverage history for analysis.
type Recorder interface {
	RecordCycle(rec *CycleRecord) error
	RecordFailure(rec *FailureRecord) error
	RecentCycles(limit int) ([]CycleRecord, error)
	Close() error
}
