package pgsql

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// AliasAllocator hands out table aliases that are unique for the life of the
// process. Implementations must be safe for concurrent use.
type AliasAllocator interface {
	Next() Identifier
}

// SequenceAllocator numbers aliases __local_1__, __local_2__, ... A fresh
// allocator always produces the same sequence.
type SequenceAllocator struct {
	n atomic.Uint64
}

// Next implements AliasAllocator.
func (a *SequenceAllocator) Next() Identifier {
	return Ident(fmt.Sprintf("__local_%d__", a.n.Add(1)))
}

// UUIDAllocator derives aliases from random UUIDs.
type UUIDAllocator struct{}

// Next implements AliasAllocator.
func (UUIDAllocator) Next() Identifier {
	return Ident("__local_" + strings.ReplaceAll(uuid.NewString(), "-", "") + "__")
}

// Allocator kinds accepted by NewAllocator.
const (
	AllocatorSequence = "sequence"
	AllocatorUUID     = "uuid"
)

// NewAllocator returns the allocator for kind. An empty kind selects
// AllocatorSequence.
func NewAllocator(kind string) (AliasAllocator, error) {
	switch kind {
	case "", AllocatorSequence:
		return &SequenceAllocator{}, nil
	case AllocatorUUID:
		return UUIDAllocator{}, nil
	default:
		return nil, fmt.Errorf("unknown alias allocator %q (want %q or %q)", kind, AllocatorSequence, AllocatorUUID)
	}
}
