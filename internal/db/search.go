package db

import "github.com/kailas-cloud/propsync/internal/domain/search/filter"

// ListQuery is the input for a paginated FT.SEARCH. Filters are translated
// by the driver; an empty expression matches every document.
type ListQuery struct {
	IndexName    string
	Filters      filter.Expression
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
