package storage

import "context"

// Slot is a single named piece of durable local state.
//
// Load reports whether a usable value was found. Absence and corrupt data
// both come back as (false, nil): the slot self-heals by letting the caller
// fall back to its default, it never surfaces corruption. When Load returns
// false the destination must be treated as unspecified and replaced.
type Slot interface {
	Load(ctx context.Context, dst any) (bool, error)
	Save(ctx context.Context, v any) error
	Clear(ctx context.Context) error
}
