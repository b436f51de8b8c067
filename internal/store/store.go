// Package store holds the pgx-backed repositories. Services consume them
// through interfaces declared on the consumer side, so the core stays
// testable with in-memory fakes.
package store

import "github.com/google/uuid"

// uuidStrings converts ids for text-array binding; queries cast back with
// ::uuid[]. Keeps encoding independent of driver-level uuid support.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
