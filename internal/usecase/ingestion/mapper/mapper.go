// Package mapper converts raw feed elements into canonical records, one
// variant per source.
package mapper

import (
	"github.com/kailas-cloud/propsync/internal/domain"
	"github.com/kailas-cloud/propsync/internal/domain/extra"
	"github.com/kailas-cloud/propsync/internal/domain/record"
	"github.com/kailas-cloud/propsync/internal/domain/source"
)

// Mapper converts one raw element. ok is false when the element is rejected.
type Mapper interface {
	Map(raw extra.Value) (rec record.Record, ok bool)
}

// Registry dispatches by source id.
type Registry map[string]Mapper

// Default returns the registry with every built-in variant.
func Default() Registry {
	return Registry{
		source.Source1: Source1(),
		source.Source2: Source2(),
	}
}

// Get returns the mapper for a source id or a *domain.MapperMissingError.
func (r Registry) Get(sourceID string) (Mapper, error) {
	m, ok := r[sourceID]
	if !ok || m == nil {
		return nil, &domain.MapperMissingError{Source: sourceID}
	}
	return m, nil
}

// idRule decides whether an identifier value is usable.
type idRule uint8

const (
	// idPresent rejects only null or absent identifiers.
	idPresent idRule = iota
	// idTruthy also rejects "", 0 and false.
	idTruthy
)

// promotion copies a nested value into extra under key.
type promotion struct {
	path []string
	key  string
}

// schema is a field-name mapping table for one source shape.
type schema struct {
	source    string
	idField   string
	idRule    idRule
	city      []string
	available []string
	price     []string
	consumed  map[string]struct{}
	promote   []promotion
}

// Source1 maps feeds that nest location under "address" and name the
// nightly price "priceForNight". address.country is kept in extra.
func Source1() Mapper {
	return &schema{
		source:    source.Source1,
		idField:   "id",
		idRule:    idPresent,
		city:      []string{"address", "city"},
		available: []string{"isAvailable"},
		price:     []string{"priceForNight"},
		consumed:  set("id", "address", "isAvailable", "priceForNight"),
		promote:   []promotion{{path: []string{"address", "country"}, key: "country"}},
	}
}

// Source2 maps flat feeds that call availability "availability".
func Source2() Mapper {
	return &schema{
		source:    source.Source2,
		idField:   "id",
		idRule:    idTruthy,
		city:      []string{"city"},
		available: []string{"availability"},
		price:     []string{"pricePerNight"},
		consumed:  set("id", "city", "availability", "pricePerNight"),
	}
}

func set(keys ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

// Map implements Mapper.
func (s *schema) Map(raw extra.Value) (record.Record, bool) {
	obj, ok := raw.Object()
	if !ok {
		return record.Record{}, false
	}
	id, ok := s.externalID(obj)
	if !ok {
		return record.Record{}, false
	}

	rec := record.Record{Source: s.source, ExternalID: id}
	if v, found := obj.Lookup(s.city...); found {
		if str, isStr := v.Str(); isStr {
			rec.City = &str
		}
	}
	if v, found := obj.Lookup(s.available...); found {
		if b, isBool := v.Bool(); isBool {
			rec.IsAvailable = &b
		}
	}
	if v, found := obj.Lookup(s.price...); found {
		if f, isNum := v.Float(); isNum {
			rec.PricePerNight = &f
		}
	}

	ex := extra.NewObject()
	for k, v := range obj.All() {
		if _, skip := s.consumed[k]; skip || v.IsNull() {
			continue
		}
		ex.Set(k, v)
	}
	for _, p := range s.promote {
		if v, found := obj.Lookup(p.path...); found && !v.IsNull() {
			ex.Set(p.key, v)
		}
	}
	if ex.Len() > 0 {
		rec.Extra = ex
	}
	return rec, true
}

// externalID renders the identifier as text. Only strings and numbers are
// accepted.
func (s *schema) externalID(obj *extra.Object) (string, bool) {
	v, found := obj.Get(s.idField)
	if !found || v.IsNull() {
		return "", false
	}
	if s.idRule == idTruthy && !truthy(v) {
		return "", false
	}
	return v.Scalar()
}

func truthy(v extra.Value) bool {
	switch v.Kind() {
	case extra.KindNull:
		return false
	case extra.KindString:
		str, _ := v.Str()
		return str != ""
	case extra.KindNumber:
		f, ok := v.Float()
		return ok && f != 0
	case extra.KindBool:
		b, _ := v.Bool()
		return b
	default:
		return true
	}
}
