// Package telemetrytest provides a telemetry.API that remembers what it was
// told so tests can assert on reports.
package telemetrytest

import (
	"strings"
	"sync"
)

type Level int

const (
	LEVEL_BROKEN Level = iota
	LEVEL_WARNING
	LEVEL_DEBUG
	LEVEL_COUNT
)

type Report struct {
	Level  Level
	Id     string
	Params []any
	Count  int64
}

// Recorder implements telemetry.API, it is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) push(report Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.push(Report{Level: LEVEL_BROKEN, Id: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.push(Report{Level: LEVEL_WARNING, Id: id, Params: params})
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.push(Report{Level: LEVEL_DEBUG, Id: msg, Params: params})
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.push(Report{Level: LEVEL_COUNT, Id: id, Count: count})
}

// Reports returns a copy of every report of the given level.
func (r *Recorder) Reports(level Level) []Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Report
	for _, report := range r.reports {
		if report.Level == level {
			out = append(out, report)
		}
	}
	return out
}

// Has returns true if a report of the given level has an id ending in `suffix`,
// scoped namespaces are ignored that way.
func (r *Recorder) Has(level Level, suffix string) bool {
	for _, report := range r.Reports(level) {
		if strings.HasSuffix(report.Id, suffix) {
			return true
		}
	}
	return false
}
