package irmem

import "golang.org/x/exp/constraints"

// Align rounds a up to the next multiple of the power-of-two b. Adapted
// directly from the teacher's debugger.Align.
func Align[I constraints.Integer](a, b I) I {
	return (a + b - 1) &^ (b - 1)
}
