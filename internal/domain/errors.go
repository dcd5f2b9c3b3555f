package domain

import "fmt"

// ConfigError reports a caller-correctable configuration mistake, such
// as an overlap that is not smaller than the chunk size. It aborts work
// before any of it starts.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// DimensionError reports a vector whose dimensionality does not match
// the one established by the index's first insert.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: expected %d, got %d", e.Want, e.Got)
}

// DuplicateIDError reports an insert under an id already present in the
// index. Entries are append-only and ids are unique.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate entry id: %s", e.ID)
}
