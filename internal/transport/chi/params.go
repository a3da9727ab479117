package chi

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/propsync/internal/domain/extra"
	"github.com/kailas-cloud/propsync/internal/domain/search/filter"
	"github.com/kailas-cloud/propsync/internal/domain/search/request"
)

// EmbeddedExtraKey carries a list of extra filters inside one parameter,
// e.g. extra.*=extra.country=Japan&extra.name=Loft (value URL-encoded).
const EmbeddedExtraKey = "extra.*"

// bindSearchParams decodes and validates the canonical query parameters.
func bindSearchParams(r *http.Request, maxLimit int) (SearchPropertiesParams, error) {
	var params SearchPropertiesParams
	q := r.URL.Query()

	bindings := []struct {
		name string
		dest any
	}{
		{"city", &params.City},
		{"isAvailable", &params.IsAvailable},
		{"priceMin", &params.PriceMin},
		{"priceMax", &params.PriceMax},
		{"limit", &params.Limit},
		{"offset", &params.Offset},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return params, fmt.Errorf("invalid format for parameter %s: %w", b.name, err)
		}
	}

	if maxLimit <= 0 {
		maxLimit = request.MaxLimit
	}
	if params.Limit != nil && (*params.Limit < 1 || *params.Limit > maxLimit) {
		return params, fmt.Errorf("limit must be between 1 and %d", maxLimit)
	}
	if params.Offset != nil && *params.Offset < 0 {
		return params, fmt.Errorf("offset must be >= 0")
	}
	if params.PriceMin != nil && *params.PriceMin < 0 {
		return params, fmt.Errorf("priceMin must be >= 0")
	}
	if params.PriceMax != nil && *params.PriceMax < 0 {
		return params, fmt.Errorf("priceMax must be >= 0")
	}
	return params, nil
}

// ParseExtraFilters collects extra.<field> parameters from a query string.
// Both the repeated form (extra.country=Japan) and the embedded form
// (extra.*=extra.country=Japan&extra.name=Loft) produce the same mapping.
// Keys are visited in sorted order, so a direct parameter overrides the
// same field from the embedded form. Repeated keys keep the first value.
func ParseExtraFilters(q url.Values) *extra.Object {
	out := extra.NewObject()

	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		values := q[key]
		if len(values) == 0 {
			continue
		}
		switch {
		case key == EmbeddedExtraKey:
			for _, v := range values {
				parseEmbedded(v, out)
			}
		case strings.HasPrefix(key, filter.ExtraPrefix):
			out.Set(key[len(filter.ExtraPrefix):], extra.String(values[0]))
		}
	}
	return out
}

// parseEmbedded reads "extra.a=1&extra.b=x=y" pairs. Values keep any
// further '=' characters.
func parseEmbedded(raw string, out *extra.Object) {
	for _, pair := range strings.Split(raw, "&") {
		rest, ok := strings.CutPrefix(pair, filter.ExtraPrefix)
		if !ok {
			continue
		}
		field, value, ok := strings.Cut(rest, "=")
		if !ok {
			continue
		}
		out.Set(field, extra.String(value))
	}
}
