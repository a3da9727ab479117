package db

import (
	"errors"
	"strings"
	"testing"
)

func mustBuild(t *testing.T, b *IndexBuilder) *RecordIndex {
	t.Helper()
	idx, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func TestIndexBuilder_RecordSchema(t *testing.T) {
	idx := mustBuild(t, NewIndex("test:records:idx", "test:record:").
		ExactTag("$.source", "source").
		Tag("$.isAvailable", "isAvailable").
		Numeric("$.pricePerNight", "pricePerNight"))

	if idx.Name != "test:records:idx" || idx.KeyPrefix != "test:record:" {
		t.Errorf("unexpected index %s", idx)
	}
	if len(idx.Attrs) != 3 {
		t.Fatalf("attrs = %d, want 3", len(idx.Attrs))
	}
	src, ok := idx.Attr("source")
	if !ok || src.Kind != AttrTag || !src.CaseSensitive {
		t.Errorf("source = %+v, want case-sensitive TAG", src)
	}
	avail, _ := idx.Attr("isAvailable")
	if avail.CaseSensitive {
		t.Error("isAvailable must fold case")
	}
	if _, ok := idx.Attr("city"); ok {
		t.Error("city is matched in process and must not be indexed")
	}
}

func TestIndexBuilder_BuildCopiesAttrs(t *testing.T) {
	b := NewIndex("idx", "p:").Tag("$.a", "a")
	first := mustBuild(t, b)
	b.Numeric("$.b", "b")
	if len(first.Attrs) != 1 {
		t.Errorf("built index changed after further builder calls: %+v", first.Attrs)
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder *IndexBuilder
		wantErr string
	}{
		{"empty name", NewIndex("", "p:").Tag("$.x", "x"), "index name is required"},
		{"invalid name", NewIndex("idx with spaces", "p:").Tag("$.x", "x"), "invalid characters"},
		{"no prefix", NewIndex("idx", "").Tag("$.x", "x"), "key prefix"},
		{"no attrs", NewIndex("idx", "p:"), "at least one attribute"},
		{"empty path", NewIndex("idx", "p:").Tag("", "x"), "path and name"},
		{"invalid attr name", NewIndex("idx", "p:").Tag("$.x", "extra.x"), "invalid characters"},
		{"duplicate name", NewIndex("idx", "p:").Tag("$.a", "x").Numeric("$.b", "x"), "duplicate attribute"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRecordIndex_UnknownKind(t *testing.T) {
	idx := &RecordIndex{Name: "idx", KeyPrefix: "p:", Attrs: []IndexedAttr{{Path: "$.a", Name: "a"}}}
	if err := idx.Validate(); err == nil || !strings.Contains(err.Error(), "unsupported kind") {
		t.Errorf("expected kind error, got %v", err)
	}
}

func TestRecordIndex_String(t *testing.T) {
	idx := mustBuild(t, NewIndex("idx", "rec:").
		ExactTag("$.externalId", "externalId").
		Numeric("$.pricePerNight", "pricePerNight"))

	want := "FT.CREATE idx ON JSON PREFIX 1 rec: SCHEMA $.externalId AS externalId TAG CASESENSITIVE $.pricePerNight AS pricePerNight NUMERIC"
	if got := idx.String(); got != want {
		t.Errorf("String() =\n%q\nwant\n%q", got, want)
	}
}

func TestIsValidIdentifier(t *testing.T) {
	for s, want := range map[string]bool{
		"propsync:records:idx": true,
		"price_per-night":      true,
		"":                     false,
		"extra.country":        false,
		"a b":                  false,
	} {
		if got := IsValidIdentifier(s); got != want {
			t.Errorf("IsValidIdentifier(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	e := &Error{Op: OpJSONSet, Err: cause}
	if e.Error() != "JSON.SET: connection refused" {
		t.Errorf("Error() = %q", e.Error())
	}
	if !errors.Is(e, cause) {
		t.Error("Unwrap() mismatch")
	}
}
