package pkguid

import "github.com/google/uuid"

// UUID generates version 7 UUID strings, which sort by creation time.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a new UUID v7 string. If the clock source fails it falls
// back to a random v4 so callers always get an ID.
func (*UUID) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
