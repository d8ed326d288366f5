package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Shuffle performs a cryptographically secure shuffle of the slice.
func Shuffle[T any](slice []T) error {
	n := len(slice)
	for i := n - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("failed to generate random number: %w", err)
		}
		j := int(jBig.Int64())
		slice[i], slice[j] = slice[j], slice[i]
	}
	return nil
}

// Sample returns k distinct elements drawn uniformly without replacement.
// If k exceeds the slice length the whole slice is returned (shuffled).
// The input slice is not modified.
func Sample[T any](slice []T, k int) ([]T, error) {
	if k > len(slice) {
		k = len(slice)
	}
	if k <= 0 {
		return nil, nil
	}

	pool := make([]T, len(slice))
	copy(pool, slice)
	if err := Shuffle(pool); err != nil {
		return nil, err
	}
	return pool[:k], nil
}

// PickOne returns a single element drawn uniformly from the slice.
func PickOne[T any](slice []T) (T, error) {
	var zero T
	if len(slice) == 0 {
		return zero, fmt.Errorf("cannot pick from an empty slice")
	}
	iBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return zero, fmt.Errorf("failed to generate random number: %w", err)
	}
	return slice[iBig.Int64()], nil
}
