package model

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// generateID creates a time-ordered unique ID so that history entries sort by
// creation without an extra index.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		random := make([]byte, 16)
		_, _ = rand.Read(random)
		return hex.EncodeToString(random)
	}
	return id.String()
}
