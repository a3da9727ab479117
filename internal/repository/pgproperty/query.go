package pgproperty

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/propsync/internal/db"
	"github.com/kailas-cloud/propsync/internal/domain"
	"github.com/kailas-cloud/propsync/internal/domain/extra"
	"github.com/kailas-cloud/propsync/internal/domain/search/filter"
)

const selectColumns = `source, external_id, city, is_available, price_per_night, extra::text`

var canonicalColumns = map[string]string{
	filter.FieldCity:          "city",
	filter.FieldIsAvailable:   "is_available",
	filter.FieldPricePerNight: "price_per_night",
}

// likeEscaper neutralizes LIKE metacharacters so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// queryBuilder accumulates WHERE clauses with positional arguments.
type queryBuilder struct {
	where []string
	args  []any
}

func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func buildSelect(expr filter.Expression, limit, offset int) (db.Statement, error) {
	b := &queryBuilder{}
	for _, c := range expr.Conditions() {
		clause, err := b.condition(c)
		if err != nil {
			return db.Statement{}, err
		}
		b.where = append(b.where, clause)
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + selectColumns + " FROM " + table)
	if len(b.where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(b.where, " AND "))
	}
	sb.WriteString(" ORDER BY source, external_id")
	sb.WriteString(" LIMIT " + b.arg(limit) + " OFFSET " + b.arg(offset))

	return db.Statement{SQL: sb.String(), Args: b.args}, nil
}

func (b *queryBuilder) condition(c filter.Condition) (string, error) {
	if key, ok := c.ExtraKey(); ok {
		return b.extraCondition(key, c)
	}
	col, ok := canonicalColumns[c.Field()]
	if !ok {
		return "", domain.NewInvalidQuery("unknown filter field %q", c.Field())
	}

	switch c.Op() {
	case filter.OpContains:
		return col + " ILIKE " + b.arg(likePattern(c.Text())), nil
	case filter.OpEquals:
		v, err := nativeValue(c.Value())
		if err != nil {
			return "", err
		}
		return col + " = " + b.arg(v), nil
	case filter.OpRange:
		return b.rangeClause(col, *c.Range()), nil
	default:
		return "", fmt.Errorf("unsupported operator %s", c.Op())
	}
}

func (b *queryBuilder) extraCondition(key string, c filter.Condition) (string, error) {
	k := b.arg(key)
	switch c.Op() {
	case filter.OpContains:
		// Only strings, or string elements of arrays, match; numbers,
		// booleans and objects never do.
		p := b.arg(likePattern(c.Text()))
		return fmt.Sprintf("(CASE jsonb_typeof(extra->%[1]s)"+
			" WHEN 'string' THEN extra->>%[1]s ILIKE %[2]s"+
			" WHEN 'array' THEN EXISTS (SELECT 1 FROM jsonb_array_elements(extra->%[1]s) AS e(v)"+
			" WHERE jsonb_typeof(e.v) = 'string' AND e.v #>> '{}' ILIKE %[2]s)"+
			" ELSE false END)", k, p), nil
	case filter.OpEquals:
		raw, err := json.Marshal(c.Value())
		if err != nil {
			return "", fmt.Errorf("marshal filter value: %w", err)
		}
		v := b.arg(string(raw))
		// Arrays match when they hold an equal element.
		return fmt.Sprintf("(extra->%[1]s = %[2]s::jsonb OR (jsonb_typeof(extra->%[1]s) = 'array' AND extra->%[1]s @> jsonb_build_array(%[2]s::jsonb)))", k, v), nil
	case filter.OpRange:
		col := fmt.Sprintf("(CASE WHEN jsonb_typeof(extra->%[1]s) = 'number' THEN (extra->>%[1]s)::double precision END)", k)
		return b.rangeClause(col, *c.Range()), nil
	default:
		return "", fmt.Errorf("unsupported operator %s", c.Op())
	}
}

func (b *queryBuilder) rangeClause(col string, r filter.Range) string {
	var parts []string
	if r.GT() != nil {
		parts = append(parts, col+" > "+b.arg(*r.GT()))
	}
	if r.GTE() != nil {
		parts = append(parts, col+" >= "+b.arg(*r.GTE()))
	}
	if r.LT() != nil {
		parts = append(parts, col+" < "+b.arg(*r.LT()))
	}
	if r.LTE() != nil {
		parts = append(parts, col+" <= "+b.arg(*r.LTE()))
	}
	return strings.Join(parts, " AND ")
}

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func nativeValue(v extra.Value) (any, error) {
	switch v.Kind() {
	case extra.KindString:
		s, _ := v.Str()
		return s, nil
	case extra.KindBool:
		bv, _ := v.Bool()
		return bv, nil
	case extra.KindNumber:
		f, _ := v.Float()
		return f, nil
	default:
		return nil, domain.NewInvalidQuery("cannot compare canonical field with %s", v.Kind())
	}
}
