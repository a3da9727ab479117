package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/propsync/internal/domain/extra"
	"github.com/kailas-cloud/propsync/internal/domain/record"
)

// Canonical field names and the prefix that addresses extra fields.
const (
	FieldCity          = "city"
	FieldIsAvailable   = "isAvailable"
	FieldPricePerNight = "pricePerNight"
	ExtraPrefix        = "extra."
)

// Op is the predicate kind of a condition.
type Op uint8

// Condition operators.
const (
	OpContains Op = iota + 1 // case-insensitive substring
	OpEquals                 // exact equality
	OpRange                  // numeric bounds
)

func (o Op) String() string {
	switch o {
	case OpContains:
		return "contains"
	case OpEquals:
		return "equals"
	case OpRange:
		return "range"
	default:
		return "unknown"
	}
}

// Expression is a conjunction of conditions.
type Expression struct {
	conditions []Condition
}

// NewExpression creates the conjunction of conditions. The number of
// conditions is bounded only by the request size the HTTP server accepts.
func NewExpression(conditions ...Condition) Expression {
	return Expression{conditions: conditions}
}

// Conditions returns every condition in insertion order.
func (e Expression) Conditions() []Condition { return e.conditions }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.conditions) == 0 }

// Split separates canonical conditions from extra-field conditions.
func (e Expression) Split() (canonical, extras []Condition) {
	for _, c := range e.conditions {
		if c.IsExtra() {
			extras = append(extras, c)
		} else {
			canonical = append(canonical, c)
		}
	}
	return canonical, extras
}

// Matches evaluates the whole conjunction against a record.
func (e Expression) Matches(r *record.Record) bool {
	return MatchAll(e.conditions, r)
}

// MatchAll reports whether every condition holds for r.
func MatchAll(conditions []Condition, r *record.Record) bool {
	for _, c := range conditions {
		if !c.Matches(r) {
			return false
		}
	}
	return true
}

// Condition is a single predicate on a canonical field or an extra key.
type Condition struct {
	field     string
	op        Op
	text      string
	value     extra.Value
	rangeExpr *Range
}

// NewContains creates a case-insensitive substring condition.
func NewContains(field, text string) (Condition, error) {
	if err := validateField(field); err != nil {
		return Condition{}, err
	}
	if text == "" {
		return Condition{}, fmt.Errorf("match value is required for field %q", field)
	}
	return Condition{field: field, op: OpContains, text: text}, nil
}

// NewEquals creates an exact equality condition.
func NewEquals(field string, v extra.Value) (Condition, error) {
	if err := validateField(field); err != nil {
		return Condition{}, err
	}
	if v.IsNull() {
		return Condition{}, fmt.Errorf("match value is required for field %q", field)
	}
	return Condition{field: field, op: OpEquals, value: v}, nil
}

// NewRange creates a numeric range condition.
func NewRange(field string, r Range) (Condition, error) {
	if err := validateField(field); err != nil {
		return Condition{}, err
	}
	return Condition{field: field, op: OpRange, rangeExpr: &r}, nil
}

func validateField(field string) error {
	if field == "" {
		return fmt.Errorf("filter field is required")
	}
	if strings.HasPrefix(field, ExtraPrefix) && len(field) == len(ExtraPrefix) {
		return fmt.Errorf("extra filter key is required")
	}
	return nil
}

// Field returns the filtered field (canonical name or "extra.<key>").
func (c Condition) Field() string { return c.field }

// Op returns the predicate kind.
func (c Condition) Op() Op { return c.op }

// Text returns the substring of a contains condition.
func (c Condition) Text() string { return c.text }

// Value returns the operand of an equals condition.
func (c Condition) Value() extra.Value { return c.value }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// ExtraKey returns the key inside extra for extra-field conditions.
func (c Condition) ExtraKey() (string, bool) {
	if !strings.HasPrefix(c.field, ExtraPrefix) {
		return "", false
	}
	return c.field[len(ExtraPrefix):], true
}

// IsExtra reports whether the condition targets an extra field.
func (c Condition) IsExtra() bool {
	_, ok := c.ExtraKey()
	return ok
}

// Matches evaluates the condition against a record.
func (c Condition) Matches(r *record.Record) bool {
	if r == nil {
		return false
	}
	v, ok := fieldValue(r, c.field)
	if !ok {
		return false
	}
	switch c.op {
	case OpContains:
		return containsFold(v, c.text)
	case OpEquals:
		return equalsOrHas(v, c.value)
	case OpRange:
		return inRange(v, *c.rangeExpr)
	default:
		return false
	}
}

func fieldValue(r *record.Record, field string) (extra.Value, bool) {
	switch field {
	case FieldCity:
		if r.City == nil {
			return extra.Value{}, false
		}
		return extra.String(*r.City), true
	case FieldIsAvailable:
		if r.IsAvailable == nil {
			return extra.Value{}, false
		}
		return extra.Bool(*r.IsAvailable), true
	case FieldPricePerNight:
		if r.PricePerNight == nil {
			return extra.Value{}, false
		}
		return extra.Float(*r.PricePerNight), true
	}
	key, ok := strings.CutPrefix(field, ExtraPrefix)
	if !ok {
		return extra.Value{}, false
	}
	return r.Extra.Get(key)
}

// containsFold matches strings, or any string element of an array.
func containsFold(v extra.Value, sub string) bool {
	if s, ok := v.Str(); ok {
		return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
	}
	if items, ok := v.Array(); ok {
		for _, it := range items {
			if s, isStr := it.Str(); isStr && strings.Contains(strings.ToLower(s), strings.ToLower(sub)) {
				return true
			}
		}
	}
	return false
}

// equalsOrHas matches an equal value, or an array holding an equal element.
func equalsOrHas(v, want extra.Value) bool {
	if v.Equal(want) {
		return true
	}
	if items, ok := v.Array(); ok {
		for _, it := range items {
			if it.Equal(want) {
				return true
			}
		}
	}
	return false
}

func inRange(v extra.Value, r Range) bool {
	f, ok := v.Float()
	if !ok {
		return false
	}
	return r.Contains(f)
}

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }

// Contains reports whether f satisfies every boundary.
func (r Range) Contains(f float64) bool {
	if r.gt != nil && f <= *r.gt {
		return false
	}
	if r.gte != nil && f < *r.gte {
		return false
	}
	if r.lt != nil && f >= *r.lt {
		return false
	}
	if r.lte != nil && f > *r.lte {
		return false
	}
	return true
}
