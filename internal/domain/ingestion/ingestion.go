// Package ingestion holds the per-source outcome and run report types.
package ingestion

import (
	"encoding/json"
	"time"

	"github.com/kailas-cloud/propsync/internal/domain/source"
)

// SkipReasonUnchanged marks a source whose feed validator did not change.
const SkipReasonUnchanged = "unchanged"

// Status classifies an outcome for metrics and health.
type Status string

// Outcome statuses.
const (
	StatusSuccess   Status = "success"
	StatusUnchanged Status = "unchanged"
	StatusFailure   Status = "failure"
)

// Outcome is the result of ingesting one source.
type Outcome struct {
	Source           string
	Name             string
	Success          bool
	RecordsProcessed int
	RecordsSkipped   int
	SkippedReason    string
	Error            string
	Duration         time.Duration
}

// Succeeded builds a successful outcome.
func Succeeded(d source.Descriptor, processed, skipped int, dur time.Duration) Outcome {
	return Outcome{
		Source:           d.ID,
		Name:             d.Name,
		Success:          true,
		RecordsProcessed: processed,
		RecordsSkipped:   skipped,
		Duration:         dur,
	}
}

// Unchanged builds the no-op outcome for a source whose feed did not change.
func Unchanged(d source.Descriptor, dur time.Duration) Outcome {
	return Outcome{
		Source:        d.ID,
		Name:          d.Name,
		Success:       true,
		SkippedReason: SkipReasonUnchanged,
		Duration:      dur,
	}
}

// Failed builds a failure outcome. Counts are reported as zero.
func Failed(d source.Descriptor, err error, dur time.Duration) Outcome {
	return Outcome{
		Source:   d.ID,
		Name:     d.Name,
		Error:    err.Error(),
		Duration: dur,
	}
}

// Status returns the outcome classification.
func (o Outcome) Status() Status {
	switch {
	case !o.Success:
		return StatusFailure
	case o.SkippedReason == SkipReasonUnchanged:
		return StatusUnchanged
	default:
		return StatusSuccess
	}
}

type outcomeJSON struct {
	Source           string `json:"source"`
	Name             string `json:"name"`
	Success          bool   `json:"success"`
	RecordsProcessed int    `json:"recordsProcessed"`
	RecordsSkipped   int    `json:"recordsSkipped"`
	SkippedReason    string `json:"skippedReason,omitempty"`
	Error            string `json:"error,omitempty"`
	DurationMs       int64  `json:"durationMs"`
}

// MarshalJSON implements json.Marshaler.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(outcomeJSON{ //nolint:wrapcheck // plain struct
		Source:           o.Source,
		Name:             o.Name,
		Success:          o.Success,
		RecordsProcessed: o.RecordsProcessed,
		RecordsSkipped:   o.RecordsSkipped,
		SkippedReason:    o.SkippedReason,
		Error:            o.Error,
		DurationMs:       o.Duration.Milliseconds(),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var w outcomeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err //nolint:wrapcheck // plain struct
	}
	*o = Outcome{
		Source:           w.Source,
		Name:             w.Name,
		Success:          w.Success,
		RecordsProcessed: w.RecordsProcessed,
		RecordsSkipped:   w.RecordsSkipped,
		SkippedReason:    w.SkippedReason,
		Error:            w.Error,
		Duration:         time.Duration(w.DurationMs) * time.Millisecond,
	}
	return nil
}

// Report aggregates one ingestion run. Sources keep registry order.
type Report struct {
	RunID       string
	StartedAt   time.Time
	CompletedAt time.Time
	Sources     []Outcome
}

// TotalDuration is the wall-clock span of the run.
func (r Report) TotalDuration() time.Duration { return r.CompletedAt.Sub(r.StartedAt) }

// TotalRecords sums processed records across sources.
func (r Report) TotalRecords() int {
	n := 0
	for _, o := range r.Sources {
		n += o.RecordsProcessed
	}
	return n
}

// SourcesProcessed counts successful sources, unchanged ones included.
func (r Report) SourcesProcessed() int {
	n := 0
	for _, o := range r.Sources {
		if o.Success {
			n++
		}
	}
	return n
}

// Failures returns the failed outcomes.
func (r Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Sources {
		if !o.Success {
			out = append(out, o)
		}
	}
	return out
}

type reportJSON struct {
	RunID            string    `json:"runId,omitempty"`
	StartedAt        time.Time `json:"startedAt"`
	CompletedAt      time.Time `json:"completedAt"`
	TotalDurationMs  int64     `json:"totalDurationMs"`
	TotalSources     int       `json:"totalSources"`
	SourcesProcessed int       `json:"sourcesProcessed"`
	TotalRecords     int       `json:"totalRecords"`
	Sources          []Outcome `json:"sources"`
}

// MarshalJSON implements json.Marshaler with the derived totals included.
func (r Report) MarshalJSON() ([]byte, error) {
	sources := r.Sources
	if sources == nil {
		sources = []Outcome{}
	}
	return json.Marshal(reportJSON{ //nolint:wrapcheck // plain struct
		RunID:            r.RunID,
		StartedAt:        r.StartedAt,
		CompletedAt:      r.CompletedAt,
		TotalDurationMs:  r.TotalDuration().Milliseconds(),
		TotalSources:     len(r.Sources),
		SourcesProcessed: r.SourcesProcessed(),
		TotalRecords:     r.TotalRecords(),
		Sources:          sources,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Derived totals are recomputed.
func (r *Report) UnmarshalJSON(data []byte) error {
	var w reportJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err //nolint:wrapcheck // plain struct
	}
	*r = Report{
		RunID:       w.RunID,
		StartedAt:   w.StartedAt,
		CompletedAt: w.CompletedAt,
		Sources:     w.Sources,
	}
	return nil
}
