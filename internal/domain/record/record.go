// Package record defines the canonical property record shared by every feed.
package record

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/propsync/internal/domain/extra"
)

// Record is the unified property representation. (Source, ExternalID) is
// the natural key; canonical attributes are nil when the feed has no
// equivalent field.
type Record struct {
	Source        string
	ExternalID    string
	City          *string
	IsAvailable   *bool
	PricePerNight *float64
	Extra         *extra.Object
}

// Key is the natural key of a record.
type Key struct {
	Source     string
	ExternalID string
}

// Key returns the record's natural key.
func (r *Record) Key() Key { return Key{Source: r.Source, ExternalID: r.ExternalID} }

// String renders the key as "source:externalId".
func (k Key) String() string { return k.Source + ":" + k.ExternalID }

// Valid reports whether the record can be persisted: both natural key parts
// must be non-empty.
func (r *Record) Valid() bool {
	return r != nil && r.Source != "" && r.ExternalID != ""
}

// wire is the JSON shape of a record, shared by the HTTP API and the Redis
// document layout.
type wire struct {
	Source        string        `json:"source"`
	ExternalID    string        `json:"externalId"`
	City          *string       `json:"city,omitempty"`
	IsAvailable   *bool         `json:"isAvailable,omitempty"`
	PricePerNight *float64      `json:"pricePerNight,omitempty"`
	Extra         *extra.Object `json:"extra,omitempty"`
}

// MarshalJSON implements json.Marshaler. An empty Extra is omitted.
func (r Record) MarshalJSON() ([]byte, error) {
	w := wire{
		Source:        r.Source,
		ExternalID:    r.ExternalID,
		City:          r.City,
		IsAvailable:   r.IsAvailable,
		PricePerNight: r.PricePerNight,
	}
	if r.Extra.Len() > 0 {
		w.Extra = r.Extra
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("marshal record %s: %w", r.Key(), err)
	}
	return b, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	*r = Record{
		Source:        w.Source,
		ExternalID:    w.ExternalID,
		City:          w.City,
		IsAvailable:   w.IsAvailable,
		PricePerNight: w.PricePerNight,
		Extra:         w.Extra,
	}
	return nil
}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string { return &s }

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 { return &f }
