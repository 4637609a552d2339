package platform

import "github.com/google/uuid"

// NewID returns a new random identifier for database rows and workflow IDs.
func NewID() string {
	return uuid.New().String()
}
