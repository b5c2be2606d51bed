package dataset

import (
	"math/rand/v2"
	"strings"
)

const letters = "abcdefghijklmnopqrstuvwxyz"

// Synthetic returns n pseudo-random lowercase words derived from seed.
// The same n and seed always give the same list. Duplicates may occur.
func Synthetic(n int, seed uint64) []string {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]string, n)
	var b strings.Builder
	for i := range out {
		b.Reset()
		length := 3 + r.IntN(9)
		for range length {
			b.WriteByte(letters[r.IntN(len(letters))])
		}
		out[i] = b.String()
	}
	return out
}
