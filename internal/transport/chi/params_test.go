package chi

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/kailas-cloud/propsync/internal/domain/extra"
)

func TestParseExtraFilters_EncodingsAgree(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"repeated form", "extra.country=Japan&extra.name=Loft"},
		{"embedded form", "extra.*=" + url.QueryEscape("extra.country=Japan&extra.name=Loft")},
		{"embedded single", "extra.*=" + url.QueryEscape("extra.country=Japan") + "&extra.name=Loft"},
		{"embedded unescaped", "extra.*=extra.country=Japan&extra.name=Loft"},
	}

	want := extra.NewObject()
	want.Set("country", extra.String("Japan"))
	want.Set("name", extra.String("Loft"))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("ParseQuery: %v", err)
			}
			got := ParseExtraFilters(q)
			if !got.Equal(want) {
				t.Errorf("got keys %v", got.Keys())
			}
		})
	}
}

func TestParseExtraFilters_EdgeCases(t *testing.T) {
	q := url.Values{
		"city":             {"Berlin"},
		"extra.formula":    {"a=b"},
		EmbeddedExtraKey:   {"extra.expr=x=y=z&junk&name=skip&extra.noequals"},
		"extra.country":    {"Japan", "France"},
		"extranotprefixed": {"x"},
	}
	got := ParseExtraFilters(q)

	checks := map[string]string{
		"formula": "a=b",
		"expr":    "x=y=z",
		"country": "Japan",
	}
	for k, want := range checks {
		v, ok := got.Get(k)
		if s, _ := v.Str(); !ok || s != want {
			t.Errorf("%s = %v, want %q", k, v, want)
		}
	}
	for _, k := range []string{"city", "name", "noequals", "extranotprefixed"} {
		if _, ok := got.Get(k); ok {
			t.Errorf("unexpected key %q", k)
		}
	}
}

func TestBindSearchParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/properties?city=Ber&isAvailable=true&priceMin=100&priceMax=200.5&limit=20&offset=5", nil)
	p, err := bindSearchParams(r, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *p.City != "Ber" || !*p.IsAvailable || *p.PriceMin != 100 || *p.PriceMax != 200.5 || *p.Limit != 20 || *p.Offset != 5 {
		t.Errorf("unexpected params: %+v", p)
	}

	r = httptest.NewRequest("GET", "/properties", nil)
	p, err = bindSearchParams(r, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.City != nil || p.IsAvailable != nil || p.Limit != nil {
		t.Errorf("absent params must stay nil: %+v", p)
	}
}

func TestBindSearchParams_Invalid(t *testing.T) {
	tests := []struct {
		query   string
		wantErr string
	}{
		{"limit=0", "limit must be between 1 and 1000"},
		{"limit=1001", "limit must be between 1 and 1000"},
		{"limit=abc", "limit"},
		{"offset=-1", "offset must be >= 0"},
		{"priceMin=-5", "priceMin must be >= 0"},
		{"priceMax=-0.1", "priceMax must be >= 0"},
		{"isAvailable=maybe", "isAvailable"},
		{"priceMin=cheap", "priceMin"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/properties?"+tt.query, nil)
			_, err := bindSearchParams(r, 1000)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
