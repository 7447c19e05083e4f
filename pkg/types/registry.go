package types

import "context"

// Registry is the data-access boundary used by the presentation layer.
// Find and Save never fail loudly: query and write errors are logged and
// surface as an empty result or false.
type Registry interface {
	// Provision makes sure the local database exists, copying the bundled
	// dataset on first use. Callers must stop when it fails.
	Provision(ctx context.Context) (string, error)

	// Find returns at most MaxResults records matching every active
	// criterion. Empty criteria return an empty slice without querying.
	Find(ctx context.Context, criteria Criteria) []Record

	// GetOne returns the first record Find would return for the national
	// ID, an exact match first. The bool is false when nothing matches; err
	// is set only on I/O failure.
	GetOne(ctx context.Context, nationalID string) (Record, bool, error)

	// Save inserts the record or updates the one sharing its national ID.
	Save(ctx context.Context, rec Record) bool

	// Delete removes the records carrying the national ID.
	Delete(ctx context.Context, nationalID string) bool

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Import upserts every record of a JSONL file in one transaction.
	Import(ctx context.Context, path string) (ImportResult, error)
}
