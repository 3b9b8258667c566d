// Package ids generates record identifiers.
package ids

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Generator produces identifiers unique within a ledger. Callers must not
// rely on any ordering between the values.
type Generator interface {
	NewID() string
}

// UUID generates random (version 4) UUIDs.
type UUID struct{}

func (UUID) NewID() string { return uuid.NewString() }

// New returns the default generator.
func New() Generator { return UUID{} }

// Func adapts a plain function to Generator.
type Func func() string

func (f Func) NewID() string { return f() }

// Sequence yields prefix-1, prefix-2, ... and is safe for concurrent use.
type Sequence struct {
	Prefix string

	mu sync.Mutex
	n  int
}

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	if s.Prefix == "" {
		return strconv.Itoa(s.n)
	}
	return s.Prefix + "-" + strconv.Itoa(s.n)
}
