package generator

import (
	"github.com/google/uuid"
)

// Generator produces a new value of type T on each call. Run identifiers
// come through this interface so tests can pin them.
type Generator[T any] interface {
	Next() (T, error)
}

// UUIDV4Generator produces random UUIDv4 strings, used to stamp each
// census run with a unique identifier.
type UUIDV4Generator struct{}

func (g *UUIDV4Generator) Next() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

var _ Generator[string] = &UUIDV4Generator{}

// Static always yields the same value. Only useful in tests that need
// deterministic identifiers.
type Static[T any] struct {
	Value T
}

func (g *Static[T]) Next() (T, error) {
	return g.Value, nil
}

var _ Generator[string] = &Static[string]{}
