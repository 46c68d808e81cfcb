package uid

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// New generates a new unique identifier.
func New() string {
	return uuid.New().String()
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Ambiguous characters (0/O, 1/I/L) are excluded.
const suffixAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Suffix returns a short random uppercase suffix used for generated
// usernames such as "Collector_7XQ4".
func Suffix(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken;
			// fall back to a fixed character rather than panic.
			b[i] = suffixAlphabet[0]
			continue
		}
		b[i] = suffixAlphabet[idx.Int64()]
	}
	return string(b)
}
