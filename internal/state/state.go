package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/go-scripts/extract/internal/types"
)

// logTailLimit bounds the in-memory log tail; oldest entries drop first.
const logTailLimit = 200

// RunState is the shared mutable status of one extraction run. Every worker
// writes to it and the status endpoint reads it continuously, so all access
// goes through one mutex. Snapshots are deep copies.
type RunState struct {
	mu sync.Mutex

	runID           string
	running         bool
	paused          bool
	processedJobs   int
	totalJobs       int
	currentCategory string
	totalRecords    int
	logs            []string
	files           []string
	outputDir       string
	startedAt       time.Time
	endedAt         time.Time
	lastError       string
}

// New creates an idle RunState.
func New() *RunState {
	return &RunState{}
}

// BeginRun resets all fields for a fresh run and marks it running.
// It returns the new run id.
func (s *RunState) BeginRun(totalJobs int, outputDir string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runID = uuid.NewString()
	s.running = true
	s.paused = false
	s.processedJobs = 0
	s.totalJobs = totalJobs
	s.currentCategory = ""
	s.totalRecords = 0
	s.logs = nil
	s.files = nil
	s.outputDir = outputDir
	s.startedAt = time.Now()
	s.endedAt = time.Time{}
	s.lastError = ""

	return s.runID
}

// EndRun marks the run finished and records the end time.
func (s *RunState) EndRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.endedAt = time.Now()
}

// Running reports whether a run is in flight.
func (s *RunState) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SetPaused toggles the paused flag. Idempotent.
func (s *RunState) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

// Paused reports whether the run is paused.
func (s *RunState) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// SetCurrentCategory records the category a worker just picked up.
func (s *RunState) SetCurrentCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentCategory = category
}

// JobDone accounts for one completed job and its accepted records.
func (s *RunState) JobDone(recordCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processedJobs++
	s.totalRecords += recordCount
}

// AddFile appends a produced output file name.
func (s *RunState) AddFile(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, name)
}

// SetLastError records the most recent run-level error string.
func (s *RunState) SetLastError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = msg
}

// AppendLog adds a timestamped line to the log tail, dropping the oldest
// entry once the tail is full. Truncation and append happen under one lock.
func (s *RunState) AppendLog(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append(s.logs, fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), line))
	if len(s.logs) > logTailLimit {
		s.logs = s.logs[len(s.logs)-logTailLimit:]
	}
}

// Snapshot returns a copy of the current state for the control surface.
func (s *RunState) Snapshot() types.RunSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := types.RunSnapshot{
		RunID:            s.runID,
		Running:          s.running,
		Paused:           s.paused,
		ProcessedJobs:    s.processedJobs,
		TotalJobs:        s.totalJobs,
		CurrentCategory:  s.currentCategory,
		TotalRecordCount: s.totalRecords,
		Logs:             append([]string(nil), s.logs...),
		Files:            append([]string(nil), s.files...),
		OutputDir:        s.outputDir,
		LastError:        s.lastError,
	}
	if s.totalJobs > 0 {
		snap.Progress = s.processedJobs * 100 / s.totalJobs
	}
	if !s.startedAt.IsZero() {
		snap.StartTime = s.startedAt.Format(time.RFC3339)
	}
	if !s.endedAt.IsZero() {
		snap.EndTime = s.endedAt.Format(time.RFC3339)
	}

	return snap
}
