package usecase

import "github.com/oklog/ulid/v2"

// newAnalysisID returns a lexicographically sortable identifier for one analysis
func newAnalysisID() string {
	return ulid.Make().String()
}
