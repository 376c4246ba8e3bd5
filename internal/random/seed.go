// Package random provides crypto-quality seeds for math/rand sources.
//
// Message resolution draws dice rolls and random picks from a seeded
// math/rand stream; the seed itself comes from crypto/rand.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
