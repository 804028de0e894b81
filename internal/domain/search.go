package domain

// SearchQuery holds the parsed search terms in caller order, duplicates
// included.
type SearchQuery struct {
	Terms []string
}

// ResultRow is one source row keyed by column name, returned verbatim
// except that numeric columns are converted to plain floats for
// transport.
type ResultRow map[string]any

// SearchResult is the search response payload.
type SearchResult struct {
	Total   int         `json:"total"`
	Results []ResultRow `json:"results"`
}
