package extra

import (
	"encoding/json"
	"testing"
)

func TestUnmarshal_PreservesKeyOrder(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`{"z":1,"a":"x","m":{"k":true}}`), &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, ok := v.Object()
	if !ok {
		t.Fatalf("expected object, got %s", v.Kind())
	}
	keys := obj.Keys()
	want := []string{"z", "a", "m"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key[%d] = %q, want %q", i, keys[i], want[i])
		}
	}

	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"z":1,"a":"x","m":{"k":true}}` {
		t.Errorf("unexpected round trip: %s", out)
	}
}

func TestNumber_KeepsLiteral(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`12345678901234567890`), &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, _ := json.Marshal(v)
	if string(out) != "12345678901234567890" {
		t.Errorf("number literal changed: %s", out)
	}
}

func TestScalar(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
		ok   bool
	}{
		{"string", String("abc"), "abc", true},
		{"integer", Number("42"), "42", true},
		{"float", Number("1.50"), "1.5", true},
		{"negative zero", Number("-0"), "0", true},
		{"below exponent threshold", Number("123456789012345678901"), "123456789012345680000", true},
		{"large exponent", Number("1e21"), "1e+21", true},
		{"large mantissa", Number("2.5E+22"), "2.5e+22", true},
		{"small exponent", Number("0.00000015"), "1.5e-7", true},
		{"smallest plain", Number("0.000001"), "0.000001", true},
		{"three-digit exponent", Number("-1e-100"), "-1e-100", true},
		{"bool", Bool(true), "", false},
		{"null", Null(), "", false},
		{"object", ObjectOf(NewObject()), "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.v.Scalar()
			if ok != tc.ok || got != tc.want {
				t.Errorf("Scalar() = (%q, %v), want (%q, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	a := NewObject()
	a.Set("x", Number("1"))
	a.Set("y", Array(String("p"), Bool(false)))
	b := NewObject()
	b.Set("y", Array(String("p"), Bool(false)))
	b.Set("x", Number("1.0"))

	if !ObjectOf(a).Equal(ObjectOf(b)) {
		t.Error("expected objects with same content in different order to be equal")
	}
	if String("1").Equal(Number("1")) {
		t.Error("string and number must not be equal")
	}
}

func TestObject_SetExistingKeepsPosition(t *testing.T) {
	o := NewObject()
	o.Set("a", Number("1"))
	o.Set("b", Number("2"))
	o.Set("a", Number("3"))

	keys := o.Keys()
	if keys[0] != "a" || keys[1] != "b" {
		t.Errorf("unexpected order %v", keys)
	}
	v, _ := o.Get("a")
	if f, _ := v.Float(); f != 3 {
		t.Errorf("expected a=3, got %v", f)
	}
}

func TestObject_Lookup(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`{"address":{"city":"Berlin"},"id":1}`), &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, _ := v.Object()

	city, ok := obj.Lookup("address", "city")
	if s, _ := city.Str(); !ok || s != "Berlin" {
		t.Errorf("Lookup(address.city) = %v, %v", city, ok)
	}
	if _, ok := obj.Lookup("id", "nested"); ok {
		t.Error("lookup through a scalar must fail")
	}
	if _, ok := obj.Lookup("missing", "city"); ok {
		t.Error("lookup of a missing key must fail")
	}
}

func TestUnmarshal_TrailingData(t *testing.T) {
	var v Value
	if err := v.UnmarshalJSON([]byte(`1 2`)); err == nil {
		t.Fatal("expected error for trailing data")
	}
}

func TestObject_UnmarshalRejectsNonObject(t *testing.T) {
	var o Object
	if err := json.Unmarshal([]byte(`[1,2]`), &o); err == nil {
		t.Fatal("expected error for array input")
	}
}
