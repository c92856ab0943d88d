package app

import "github.com/google/uuid"

// newID produces a random identifier for requests and leases.
// Isolated here so the ID strategy can evolve independently.
func newID() string {
	return uuid.NewString()
}
