package uid

import "github.com/google/uuid"

// New generates a new unique identifier. Used for request
// correlation IDs.
func New() string {
	return uuid.New().String()
}

// IsValid reports whether id parses as a UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
