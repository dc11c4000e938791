package playback

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// ErrInvalidInput is returned for manual array entries the client refuses to
// send.
var ErrInvalidInput = errors.New("please enter between 1 and 20 valid numbers")

const (
	MinElements = 1
	MaxElements = 20
)

// ParseArray parses a comma-separated list of 1 to 20 integers.
func ParseArray(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrInvalidInput
	}
	fields := strings.Split(s, ",")
	if len(fields) < MinElements || len(fields) > MaxElements {
		return nil, fmt.Errorf("%d values: %w", len(fields), ErrInvalidInput)
	}

	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("%q is not a number: %w", strings.TrimSpace(f), ErrInvalidInput)
		}
		out = append(out, n)
	}
	return out, nil
}

// FormatArray is the inverse of ParseArray.
func FormatArray(a []int) string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// RandomArray returns 8 to 13 values in [1, 100]. Arrays longer than 8 get
// one adjacent duplicate, and half the time a short ascending run is planted
// so partially sorted input shows up.
func RandomArray(r *rand.Rand) []int {
	size := r.IntN(6) + 8
	a := make([]int, size)
	for i := range a {
		a[i] = r.IntN(100) + 1
	}

	if size > 8 {
		i := r.IntN(size - 1)
		a[i+1] = a[i]
	}
	if r.Float64() > 0.5 {
		start := r.IntN(size - 3)
		for i := 0; i < 3; i++ {
			a[start+i] = 20 + i*5
		}
	}
	return a
}
