package domain

import "github.com/google/uuid"

// IDGenerator mints unique ids for new nodes. Injected into the tree store
// so tests can supply deterministic ids.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator is the production IDGenerator, backed by random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.New().String()
}
