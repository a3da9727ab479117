package db

import "errors"

// ErrIndexExists is returned by CreateIndex when the index is already present.
var ErrIndexExists = errors.New("db: index already exists")

// Op constants name the failing command for error context.
const (
	OpCreateIndex = "FT.CREATE"
	OpSearch      = "FT.SEARCH"
	OpJSONSet     = "JSON.SET"
	OpPing        = "PING"
	OpExec        = "EXEC"
	OpBatch       = "BATCH"
	OpQuery       = "QUERY"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
