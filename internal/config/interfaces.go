package config

// Persister is what the running app needs from a config manager: a place to
// write changes such as recent directories back to.
type Persister interface {
	Path() string
	Save(*Config) error
}

var _ Persister = (*Manager)(nil)
