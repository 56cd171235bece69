package events

const (
	BatchTransformedTopic = "batch:transformed"
	BatchPersistedTopic   = "batch:persisted"
)

// BatchTransformed is published once a merged canonical batch has been
// written to the processed-data directory.
type BatchTransformed struct {
	Path  string
	Count int
}

// BatchPersisted is published after a canonical batch has been loaded
// into the database and reconciled; the matching service rebuilds its
// vector space on it.
type BatchPersisted struct {
	Inserted int
	Skipped  int
}
