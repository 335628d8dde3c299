package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// EIDBytes is the number of random bytes in an external identifier. The
// encoded form is twice as long (hex).
const EIDBytes = 8

// NewEID returns a fresh random external identifier.
func NewEID() (string, error) {
	b := make([]byte, EIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate eid: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// AssignEID fills *eid with a new identifier unless one is already set.
// Models call it from their BeforeCreate hook; it is the only place an
// external identifier is produced.
func AssignEID(eid *string) error {
	if *eid != "" {
		return nil
	}
	v, err := NewEID()
	if err != nil {
		return err
	}
	*eid = v
	return nil
}
