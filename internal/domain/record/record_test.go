package record

import (
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/propsync/internal/domain/extra"
)

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		rec  *Record
		want bool
	}{
		{"nil", nil, false},
		{"empty source", &Record{ExternalID: "1"}, false},
		{"empty id", &Record{Source: "source1"}, false},
		{"key only", &Record{Source: "source1", ExternalID: "1"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rec.Valid(); got != tc.want {
				t.Errorf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMarshalJSON_OmitsAbsentFields(t *testing.T) {
	r := Record{Source: "source2", ExternalID: "7", Extra: extra.NewObject()}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != `{"source":"source2","externalId":"7"}` {
		t.Errorf("unexpected JSON: %s", b)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	ex := extra.NewObject()
	ex.Set("name", extra.String("Loft"))
	ex.Set("country", extra.String("DE"))
	in := Record{
		Source:        "source1",
		ExternalID:    "1",
		City:          StrPtr("Berlin"),
		IsAvailable:   BoolPtr(false),
		PricePerNight: FloatPtr(120),
		Extra:         ex,
	}

	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"source":"source1","externalId":"1","city":"Berlin","isAvailable":false,` +
		`"pricePerNight":120,"extra":{"name":"Loft","country":"DE"}}`
	if string(b) != want {
		t.Fatalf("unexpected JSON:\ngot:  %s\nwant: %s", b, want)
	}

	var out Record
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Key() != in.Key() {
		t.Errorf("key mismatch: %v vs %v", out.Key(), in.Key())
	}
	if out.IsAvailable == nil || *out.IsAvailable {
		t.Errorf("isAvailable=false must survive, got %v", out.IsAvailable)
	}
	if !out.Extra.Equal(in.Extra) {
		t.Errorf("extra mismatch")
	}
}

func TestKeyString(t *testing.T) {
	k := Key{Source: "source1", ExternalID: "abc"}
	if k.String() != "source1:abc" {
		t.Errorf("unexpected key string %q", k.String())
	}
}
