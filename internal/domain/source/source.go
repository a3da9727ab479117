// Package source describes the external feeds that are ingested.
package source

import "fmt"

// Well-known source identifiers. The set is extensible: a new feed needs a
// descriptor in config and a mapper registered under the same id.
const (
	Source1 = "source1"
	Source2 = "source2"
)

// Descriptor is the immutable configuration of one feed.
type Descriptor struct {
	ID      string
	Name    string
	URL     string
	Enabled bool
}

// Registry is the static, ordered list of feeds loaded at process start.
type Registry struct {
	descriptors []Descriptor
}

// NewRegistry validates ids and keeps registration order.
func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	seen := make(map[string]struct{}, len(descriptors))
	out := make([]Descriptor, 0, len(descriptors))
	for i, d := range descriptors {
		if d.ID == "" {
			return nil, fmt.Errorf("source #%d: id is required", i)
		}
		if _, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("duplicate source id %q", d.ID)
		}
		seen[d.ID] = struct{}{}
		if d.Name == "" {
			d.Name = d.ID
		}
		out = append(out, d)
	}
	return &Registry{descriptors: out}, nil
}

// Enabled returns the enabled descriptors in registration order.
func (r *Registry) Enabled() []Descriptor {
	out := make([]Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		if d.Enabled {
			out = append(out, d)
		}
	}
	return out
}

// Fingerprint is the freshness metadata of a feed as seen by a metadata probe.
// Validator is the strong validator (ETag); LastModified is informational.
type Fingerprint struct {
	Validator    string
	LastModified string
}

// IsZero reports whether the probe yielded no validator.
func (f Fingerprint) IsZero() bool { return f.Validator == "" }
