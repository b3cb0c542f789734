package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// IDGen produces a fresh identifier with the given prefix. Identity
// assignment takes one of these so tests can substitute a deterministic
// sequence.
type IDGen func(prefix string) string

func NewID(prefix string) string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	if prefix == "" {
		return hex.EncodeToString(bytes)
	}
	return prefix + "_" + hex.EncodeToString(bytes)
}

// SequentialIDGen yields prefix_1, prefix_2, ... for reproducible identities.
func SequentialIDGen() IDGen {
	n := 0
	return func(prefix string) string {
		n++
		if prefix == "" {
			return fmt.Sprintf("%d", n)
		}
		return fmt.Sprintf("%s_%d", prefix, n)
	}
}
