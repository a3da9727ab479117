package redis

import (
	"context"

	"github.com/kailas-cloud/propsync/internal/db"
)

// CreateIndex creates the record index. An index that already exists is
// reported as db.ErrIndexExists and left untouched, even if its schema
// differs.
func (s *Store) CreateIndex(ctx context.Context, idx *db.RecordIndex) error {
	if err := idx.Validate(); err != nil {
		return err //nolint:wrapcheck // validation message is self-describing
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(createArgs(idx)...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// createArgs renders FT.CREATE arguments for JSON record documents:
//
//	<name> ON JSON PREFIX 1 <prefix> SCHEMA <path> AS <name> TAG|NUMERIC [CASESENSITIVE] ...
func createArgs(idx *db.RecordIndex) []string {
	args := []string{idx.Name, "ON", "JSON", "PREFIX", "1", idx.KeyPrefix, "SCHEMA"}
	for _, a := range idx.Attrs {
		args = append(args, a.Path, "AS", a.Name, a.Kind.String())
		if a.Kind == db.AttrTag && a.CaseSensitive {
			args = append(args, "CASESENSITIVE")
		}
	}
	return args
}
