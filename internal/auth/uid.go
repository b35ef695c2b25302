package auth

import "github.com/google/uuid"

// NewUID produces the 36-character UUID (8-4-4-4-12) used for
// replication uids and new entity keys.
func NewUID() string {
	return uuid.NewString()
}
