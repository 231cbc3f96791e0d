package engine

import (
	"errors"
	"fmt"
)

// ErrSyncInProgress is returned when a sync is requested while another run
// holds the writer lock.
var ErrSyncInProgress = errors.New("sync already in progress")

// QueryError rejects a malformed search request before any index is touched.
type QueryError struct {
	Reason string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid query: %s", e.Reason)
}

// ConsistencyError reports a mismatch between the configured embedder and
// the vectors already stored in the index. Recovering requires a forced
// rebuild.
type ConsistencyError struct {
	StoredModel     string
	ConfiguredModel string
	StoredDims      int
	ConfiguredDims  int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf(
		"index built with %s (%d dims) but configured embedder is %s (%d dims); run a forced sync to rebuild",
		e.StoredModel, e.StoredDims, e.ConfiguredModel, e.ConfiguredDims)
}
