package propsync

import "time"

// Query is a property search. Zero values leave a filter unset.
type Query struct {
	City        string
	IsAvailable *bool
	PriceMin    *float64
	PriceMax    *float64
	// Extra filters match extra.<field> by case-insensitive substring.
	Extra  map[string]string
	Limit  int
	Offset int
}

// Property is one search hit.
type Property struct {
	Source        string         `json:"source"`
	ExternalID    string         `json:"externalId"`
	City          *string        `json:"city,omitempty"`
	IsAvailable   *bool          `json:"isAvailable,omitempty"`
	PricePerNight *float64       `json:"pricePerNight,omitempty"`
	Extra         map[string]any `json:"extra,omitempty"`
}

// SourceOutcome is the ingestion result of one source.
type SourceOutcome struct {
	Source           string `json:"source"`
	Name             string `json:"name"`
	Success          bool   `json:"success"`
	RecordsProcessed int    `json:"recordsProcessed"`
	RecordsSkipped   int    `json:"recordsSkipped"`
	SkippedReason    string `json:"skippedReason,omitempty"`
	Error            string `json:"error,omitempty"`
	DurationMs       int64  `json:"durationMs"`
}

// Report is the result of one ingestion run.
type Report struct {
	RunID            string          `json:"runId,omitempty"`
	StartedAt        time.Time       `json:"startedAt"`
	CompletedAt      time.Time       `json:"completedAt"`
	TotalDurationMs  int64           `json:"totalDurationMs"`
	TotalSources     int             `json:"totalSources"`
	SourcesProcessed int             `json:"sourcesProcessed"`
	TotalRecords     int             `json:"totalRecords"`
	Sources          []SourceOutcome `json:"sources"`
}

// HealthStatus represents the aggregated service health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded"
	Checks map[string]string `json:"checks"` // component → "ok"/"error"
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }
