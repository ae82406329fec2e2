package domain

// ShowStore persists fetched rows locally (BoltDB + memory).
// Writes are transactional; callers treat them as complete once they return.
type ShowStore interface {
	// === Shows ===
	GetShows(category ShowCategory) ([]*Show, bool)
	UpsertShows(category ShowCategory, shows []*Show) error
	InsertShows(category ShowCategory, shows []*Show) error // existing keys are kept
	DeleteShows(category ShowCategory) error

	// === Countries ===
	GetCountries(category MediaCategory) ([]*Country, bool)
	UpsertCountries(category MediaCategory, countries []*Country) error
	DeleteCountries(category MediaCategory) error

	// === Invalidation ===
	InvalidateAll() error

	Close() error
}
