package db

import (
	"errors"
	"fmt"
)

// AttrKind is how an indexed record attribute can be queried.
type AttrKind int

const (
	// AttrTag supports exact matches: natural key parts and booleans.
	AttrTag AttrKind = iota + 1
	// AttrNumeric supports range and point queries.
	AttrNumeric
)

func (k AttrKind) String() string {
	switch k {
	case AttrTag:
		return "TAG"
	case AttrNumeric:
		return "NUMERIC"
	default:
		return fmt.Sprintf("AttrKind(%d)", int(k))
	}
}

// IndexedAttr exposes one JSON path of a stored record under a query name.
// Substring predicates are never indexed; callers evaluate them in process.
type IndexedAttr struct {
	Path          string // JSONPath inside the document, e.g. "$.pricePerNight"
	Name          string // attribute name used in queries
	Kind          AttrKind
	CaseSensitive bool // AttrTag only
}

// RecordIndex is the FT index over record documents stored as JSON under
// KeyPrefix.
type RecordIndex struct {
	Name      string
	KeyPrefix string
	Attrs     []IndexedAttr
}

// Attr returns the attribute exposed under name.
func (idx *RecordIndex) Attr(name string) (IndexedAttr, bool) {
	for _, a := range idx.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return IndexedAttr{}, false
}

// Validate checks that the index can be created.
func (idx *RecordIndex) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return fmt.Errorf("index name %q contains invalid characters", idx.Name)
	}
	if idx.KeyPrefix == "" {
		return errors.New("key prefix is required")
	}
	if len(idx.Attrs) == 0 {
		return errors.New("at least one attribute is required")
	}

	seen := make(map[string]struct{}, len(idx.Attrs))
	for i, a := range idx.Attrs {
		if a.Path == "" || a.Name == "" {
			return fmt.Errorf("attribute #%d: path and name are required", i)
		}
		if !IsValidIdentifier(a.Name) {
			return fmt.Errorf("attribute name %q contains invalid characters", a.Name)
		}
		if a.Kind != AttrTag && a.Kind != AttrNumeric {
			return fmt.Errorf("attribute %s: unsupported kind %s", a.Name, a.Kind)
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("duplicate attribute %s", a.Name)
		}
		seen[a.Name] = struct{}{}
	}
	return nil
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
