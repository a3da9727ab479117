package db

import "strings"

// IndexBuilder assembles a RecordIndex attribute by attribute.
type IndexBuilder struct {
	idx RecordIndex
}

// NewIndex starts a record index over documents under keyPrefix.
func NewIndex(name, keyPrefix string) *IndexBuilder {
	return &IndexBuilder{idx: RecordIndex{Name: name, KeyPrefix: keyPrefix}}
}

// Tag indexes path for exact matches, folding case.
func (b *IndexBuilder) Tag(path, name string) *IndexBuilder {
	return b.add(IndexedAttr{Path: path, Name: name, Kind: AttrTag})
}

// ExactTag indexes path for case-sensitive exact matches. Natural key parts
// use it: ids "A1" and "a1" are different records.
func (b *IndexBuilder) ExactTag(path, name string) *IndexBuilder {
	return b.add(IndexedAttr{Path: path, Name: name, Kind: AttrTag, CaseSensitive: true})
}

// Numeric indexes path for range queries.
func (b *IndexBuilder) Numeric(path, name string) *IndexBuilder {
	return b.add(IndexedAttr{Path: path, Name: name, Kind: AttrNumeric})
}

func (b *IndexBuilder) add(a IndexedAttr) *IndexBuilder {
	b.idx.Attrs = append(b.idx.Attrs, a)
	return b
}

// Build validates and returns the index.
func (b *IndexBuilder) Build() (*RecordIndex, error) {
	if err := b.idx.Validate(); err != nil {
		return nil, err
	}
	idx := b.idx
	idx.Attrs = append([]IndexedAttr(nil), b.idx.Attrs...)
	return &idx, nil
}

// String renders the index as the FT.CREATE command that creates it.
func (idx *RecordIndex) String() string {
	var sb strings.Builder
	sb.WriteString("FT.CREATE " + idx.Name + " ON JSON PREFIX 1 " + idx.KeyPrefix + " SCHEMA")
	for _, a := range idx.Attrs {
		sb.WriteString(" " + a.Path + " AS " + a.Name + " " + a.Kind.String())
		if a.Kind == AttrTag && a.CaseSensitive {
			sb.WriteString(" CASESENSITIVE")
		}
	}
	return sb.String()
}
