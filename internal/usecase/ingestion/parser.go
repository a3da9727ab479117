package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/kailas-cloud/propsync/internal/domain"
	"github.com/kailas-cloud/propsync/internal/domain/extra"
)

// Elements streams the elements of a single top-level JSON array read from
// r, one decoded element at a time. The sequence ends after the first error:
// malformed input yields a *domain.ParseError, a failing reader yields its
// own error.
func Elements(r io.Reader) iter.Seq2[extra.Value, error] {
	return func(yield func(extra.Value, error) bool) {
		src := &trackingReader{r: r}
		dec := json.NewDecoder(src)
		dec.UseNumber()

		fail := func(err error) {
			yield(extra.Value{}, classify(src, dec, err))
		}

		tok, err := dec.Token()
		if err != nil {
			fail(err)
			return
		}
		if d, ok := tok.(json.Delim); !ok || d != '[' {
			fail(fmt.Errorf("expected top-level array, got %v", tok))
			return
		}

		for dec.More() {
			v, err := extra.Decode(dec)
			if err != nil {
				fail(err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}

		if _, err := dec.Token(); err != nil {
			fail(err)
			return
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			if err == nil {
				err = errors.New("trailing data after top-level array")
			}
			fail(err)
		}
	}
}

// classify separates transport failures from malformed JSON.
func classify(src *trackingReader, dec *json.Decoder, err error) error {
	if src.err != nil {
		return fmt.Errorf("read feed: %w", src.err)
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &domain.ParseError{Offset: dec.InputOffset(), Err: err}
}

// trackingReader remembers the first non-EOF read error.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && t.err == nil {
		t.err = err
	}
	return n, err //nolint:wrapcheck // transparent wrapper
}
