package request

import (
	"fmt"

	"github.com/kailas-cloud/propsync/internal/domain/search/filter"
)

// Pagination limits.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Bounds configures limit defaulting and capping.
type Bounds struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultBounds are the stock pagination bounds.
var DefaultBounds = Bounds{DefaultLimit: DefaultLimit, MaxLimit: MaxLimit}

// Request is a validated property search.
type Request struct {
	filters filter.Expression
	limit   int
	offset  int
}

// New validates and normalizes search parameters.
// limit<=0 falls back to the default, larger values are capped at the maximum.
func New(filters filter.Expression, limit, offset int, b Bounds) (Request, error) {
	if b.DefaultLimit <= 0 {
		b.DefaultLimit = DefaultLimit
	}
	if b.MaxLimit <= 0 {
		b.MaxLimit = MaxLimit
	}
	if offset < 0 {
		return Request{}, fmt.Errorf("offset must be >= 0")
	}
	if limit <= 0 {
		limit = b.DefaultLimit
	}
	if limit > b.MaxLimit {
		limit = b.MaxLimit
	}
	return Request{filters: filters, limit: limit, offset: offset}, nil
}

// Filters returns the filter conjunction.
func (r *Request) Filters() filter.Expression { return r.filters }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// Offset returns the number of leading matches to skip.
func (r *Request) Offset() int { return r.offset }
