package token

// Repo persists the single credential record. Load degrades to
// (nil, nil) when no usable record exists; it never surfaces read or
// decode errors. Save fully replaces the prior record and must be
// atomic from a reader's perspective.
type Repo interface {
	Load() (*Credentials, error)
	Save(credentials *Credentials) error
}
