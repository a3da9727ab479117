package search

import (
	"github.com/kailas-cloud/propsync/internal/domain"
	"github.com/kailas-cloud/propsync/internal/domain/extra"
	"github.com/kailas-cloud/propsync/internal/domain/search/filter"
)

// Params are the canonical search parameters. Nil fields are absent.
type Params struct {
	City        *string
	IsAvailable *bool
	PriceMin    *float64
	PriceMax    *float64
	Limit       int
	Offset      int
}

// BuildFilters merges canonical parameters and extra-field parameters into
// one conjunction. Text extras match by case-insensitive substring, other
// kinds by equality. Null and empty-string extras are ignored.
func BuildFilters(p Params, extras *extra.Object) (filter.Expression, error) {
	var conds []filter.Condition
	add := func(c filter.Condition, err error) error {
		if err != nil {
			return domain.NewInvalidQuery("%v", err)
		}
		conds = append(conds, c)
		return nil
	}

	if p.City != nil && *p.City != "" {
		if err := add(filter.NewContains(filter.FieldCity, *p.City)); err != nil {
			return filter.Expression{}, err
		}
	}
	if p.IsAvailable != nil {
		if err := add(filter.NewEquals(filter.FieldIsAvailable, extra.Bool(*p.IsAvailable))); err != nil {
			return filter.Expression{}, err
		}
	}
	if p.PriceMin != nil || p.PriceMax != nil {
		if (p.PriceMin != nil && *p.PriceMin < 0) || (p.PriceMax != nil && *p.PriceMax < 0) {
			return filter.Expression{}, domain.NewInvalidQuery("priceMin and priceMax must be >= 0")
		}
		r, err := filter.NewRangeFilter(nil, p.PriceMin, nil, p.PriceMax)
		if err != nil {
			return filter.Expression{}, domain.NewInvalidQuery("%v", err)
		}
		if err := add(filter.NewRange(filter.FieldPricePerNight, r)); err != nil {
			return filter.Expression{}, err
		}
	}

	for key, v := range extras.All() {
		if s, ok := v.Str(); (ok && s == "") || v.IsNull() {
			continue
		}
		if key == "" {
			return filter.Expression{}, domain.NewInvalidQuery("extra filter key is required")
		}
		field := filter.ExtraPrefix + key
		if s, ok := v.Str(); ok {
			if err := add(filter.NewContains(field, s)); err != nil {
				return filter.Expression{}, err
			}
			continue
		}
		if err := add(filter.NewEquals(field, v)); err != nil {
			return filter.Expression{}, err
		}
	}

	return filter.NewExpression(conds...), nil
}
