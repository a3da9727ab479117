package domain

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrFetch signals a network or HTTP failure while reading a feed.
	ErrFetch = errors.New("fetch failed")
	// ErrParse signals malformed JSON in a feed.
	ErrParse = errors.New("malformed feed")
	// ErrPersistence signals a storage-engine failure.
	ErrPersistence = errors.New("persistence failed")
	// ErrMapperMissing signals that no mapping logic is registered for a source.
	ErrMapperMissing = errors.New("no mapper")
	// ErrInvalidQuery signals a rejected search request.
	ErrInvalidQuery = errors.New("invalid query")
)

// FetchError wraps ErrFetch with the feed URL and, when known, the HTTP status.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return "HTTP " + strconv.Itoa(e.Status) + ": " + e.Err.Error()
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() []error { return []error{ErrFetch, e.Err} }

// ParseError wraps ErrParse with the input byte offset where decoding stopped.
type ParseError struct {
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d: %v", ErrParse.Error(), e.Offset, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// PersistenceError wraps ErrPersistence with the storage operation name.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence.Error(), e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// MapperMissingError reports a source id with no registered mapper.
type MapperMissingError struct {
	Source string
}

func (e *MapperMissingError) Error() string {
	return "No mapper for " + e.Source
}

func (e *MapperMissingError) Unwrap() error { return ErrMapperMissing }

// NewInvalidQuery creates an ErrInvalidQuery with a client-facing reason.
func NewInvalidQuery(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
