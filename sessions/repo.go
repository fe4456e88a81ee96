package sessions

// Repo loads and saves the session record.
type Repo interface {
	// Load returns the stored record, or an empty one if nothing usable is stored.
	Load() (*Record, error)

	// Save persists the record, replacing what was stored.
	Save(r *Record) error
}
