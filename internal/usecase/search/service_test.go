package search

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/kailas-cloud/propsync/internal/domain"
	"github.com/kailas-cloud/propsync/internal/domain/extra"
	"github.com/kailas-cloud/propsync/internal/domain/record"
	"github.com/kailas-cloud/propsync/internal/domain/search/filter"
	"github.com/kailas-cloud/propsync/internal/domain/search/request"
)

// --- Mocks ---

// mockRepo evaluates requests in memory over a fixed record set.
type mockRepo struct {
	records []record.Record
	err     error
	lastReq request.Request
}

func (m *mockRepo) Find(_ context.Context, req request.Request) ([]record.Record, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	var matched []record.Record
	for i := range m.records {
		if req.Filters().Matches(&m.records[i]) {
			matched = append(matched, m.records[i])
		}
	}
	if req.Offset() >= len(matched) {
		return nil, nil
	}
	matched = matched[req.Offset():]
	if len(matched) > req.Limit() {
		matched = matched[:req.Limit()]
	}
	return matched, nil
}

// --- Helpers ---

func strPtr(s string) *string     { return &s }
func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

func listing(id string, price float64, country string) record.Record {
	r := record.Record{
		Source:        "source1",
		ExternalID:    id,
		City:          strPtr("Berlin"),
		IsAvailable:   boolPtr(true),
		PricePerNight: floatPtr(price),
	}
	if country != "" {
		r.Extra = extra.NewObject()
		r.Extra.Set("country", extra.String(country))
	}
	return r
}

func extras(kv ...string) *extra.Object {
	o := extra.NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		o.Set(kv[i], extra.String(kv[i+1]))
	}
	return o
}

// --- BuildFilters ---

func TestBuildFilters_Canonical(t *testing.T) {
	expr, err := BuildFilters(Params{
		City:        strPtr("ber"),
		IsAvailable: boolPtr(false),
		PriceMin:    floatPtr(100),
		PriceMax:    floatPtr(200),
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conds := expr.Conditions()
	if len(conds) != 3 {
		t.Fatalf("conditions = %d, want 3", len(conds))
	}
	if conds[0].Field() != filter.FieldCity || conds[0].Op() != filter.OpContains {
		t.Errorf("city condition = %s %s", conds[0].Field(), conds[0].Op())
	}
	if b, _ := conds[1].Value().Bool(); conds[1].Op() != filter.OpEquals || b {
		t.Errorf("availability condition = %v", conds[1].Value())
	}
	r := conds[2].Range()
	if r == nil || *r.GTE() != 100 || *r.LTE() != 200 || r.GT() != nil || r.LT() != nil {
		t.Errorf("price range = %+v", r)
	}
}

func TestBuildFilters_SkipsAbsentAndEmpty(t *testing.T) {
	ex := extra.NewObject()
	ex.Set("empty", extra.String(""))
	ex.Set("nothing", extra.Null())
	ex.Set("", extra.String("")) // "extra.=" with no value
	expr, err := BuildFilters(Params{City: strPtr("")}, ex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !expr.IsEmpty() {
		t.Errorf("expected empty expression, got %d conditions", len(expr.Conditions()))
	}
}

func TestBuildFilters_Extras(t *testing.T) {
	ex := extras("country", "Japan")
	ex.Set("rooms", extra.Number("3"))
	ex.Set("pets", extra.Bool(true))

	expr, err := BuildFilters(Params{}, ex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conds := expr.Conditions()
	want := []struct {
		field string
		op    filter.Op
	}{
		{"extra.country", filter.OpContains},
		{"extra.rooms", filter.OpEquals},
		{"extra.pets", filter.OpEquals},
	}
	if len(conds) != len(want) {
		t.Fatalf("conditions = %d", len(conds))
	}
	for i, w := range want {
		if conds[i].Field() != w.field || conds[i].Op() != w.op {
			t.Errorf("condition %d = %s %s, want %s %s", i, conds[i].Field(), conds[i].Op(), w.field, w.op)
		}
	}
}

func TestBuildFilters_ManyExtras(t *testing.T) {
	ex := extra.NewObject()
	for i := range 100 {
		ex.Set("k"+strconv.Itoa(i), extra.String("v"))
	}
	expr, err := BuildFilters(Params{City: strPtr("Berlin")}, ex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(expr.Conditions()); got != 101 {
		t.Errorf("conditions = %d, want 101", got)
	}
}

func TestBuildFilters_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		p      Params
		extras *extra.Object
	}{
		{"negative min", Params{PriceMin: floatPtr(-1)}, nil},
		{"negative max", Params{PriceMax: floatPtr(-0.5)}, nil},
		{"empty extra key", Params{}, extras("", "x")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildFilters(tt.p, tt.extras)
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Errorf("expected ErrInvalidQuery, got %v", err)
			}
		})
	}
}

// --- Search ---

func TestSearch_PriceRangeInclusive(t *testing.T) {
	repo := &mockRepo{records: []record.Record{
		listing("a", 99.99, ""),
		listing("b", 100, ""),
		listing("c", 150, ""),
		listing("d", 200, ""),
		listing("e", 200.01, ""),
	}}
	svc := New(repo)

	got, err := svc.Search(context.Background(), Params{PriceMin: floatPtr(100), PriceMax: floatPtr(200)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ExternalID
	}
	if len(ids) != 3 || ids[0] != "b" || ids[1] != "c" || ids[2] != "d" {
		t.Errorf("ids = %v, want [b c d]", ids)
	}
}

func TestSearch_ExtraSubstring(t *testing.T) {
	repo := &mockRepo{records: []record.Record{
		listing("1", 120, "Japan"),
		listing("2", 120, "France"),
	}}
	svc := New(repo)

	got, err := svc.Search(context.Background(), Params{}, extras("country", "jap"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ExternalID != "1" {
		t.Errorf("got %+v", got)
	}
}

func TestSearch_Pagination(t *testing.T) {
	var recs []record.Record
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		recs = append(recs, listing(id, 100, ""))
	}
	repo := &mockRepo{records: recs}
	svc := New(repo).WithBounds(request.Bounds{DefaultLimit: 2, MaxLimit: 3})

	got, err := svc.Search(context.Background(), Params{Offset: 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ExternalID != "2" {
		t.Errorf("default page = %+v", got)
	}

	got, _ = svc.Search(context.Background(), Params{Limit: 50}, nil)
	if len(got) != 3 || repo.lastReq.Limit() != 3 {
		t.Errorf("limit must be capped: %d results, limit %d", len(got), repo.lastReq.Limit())
	}

	got, _ = svc.Search(context.Background(), Params{Offset: 10}, nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSearch_Errors(t *testing.T) {
	svc := New(&mockRepo{})
	if _, err := svc.Search(context.Background(), Params{Offset: -1}, nil); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("negative offset: %v", err)
	}

	boom := errors.New("pool closed")
	svc = New(&mockRepo{err: boom})
	if _, err := svc.Search(context.Background(), Params{}, nil); !errors.Is(err, boom) {
		t.Errorf("repository error not propagated: %v", err)
	}
}
