package swar

// Kernel executes one generation of Life or Drylife on one strip,
// implementing spec.md §4.2 over Geometry/Masks derived once at
// worker start.
type Kernel struct {
	G     Geometry
	M     Masks
	Rule  Rule
}

func NewKernel(g Geometry, rule Rule) Kernel {
	return Kernel{G: g, M: BuildMasks(g), Rule: rule}
}

// Step advances state by one generation, given the freshly-received
// top and bottom halo rows (each exactly Geometry.HaloRowBytes long).
// It is a pure function: it allocates and returns a new State, leaving
// the input untouched.
func (k Kernel) Step(state State, topHalo, bottomHalo []byte) State {
	g, m := k.G, k.M

	// 1. Incorporate halos, then wrap columns left/right.
	s := []uint64(state.WithHalos(g, topHalo, bottomHalo))
	wrapped := orWords(
		shiftLeft(andWords(s, m.MaskWrapLeft), g.WidthBits),
		shiftRight(andWords(s, m.MaskWrapRight), g.WidthBits),
	)
	s = orWords(s, wrapped)

	// 2. Count neighbours (including self) via three adjacent folds:
	// horizontal (±1 nibble), then vertical (±1 row = ±ColShift bits).
	summed := addWords(addWords(s, shiftRight(s, 4)), shiftLeft(s, 4))
	summed = addWords(addWords(summed, shiftRight(summed, g.ColShiftBits)), shiftLeft(summed, g.ColShiftBits))

	// 3. Per-nibble equality folds for each target count.
	eq3 := foldEq(summed, m.MaskNot3)
	eq4 := foldEq(summed, m.MaskNot4)

	// 4. Apply rules. Drylife's extra birth condition is "exactly 6
	// live non-self neighbours"; summed counts self too, but a birth
	// candidate is by definition dead (self contributes 0), so summed
	// == 6 for such a cell means 6 live neighbours, matching B36/S23.
	if k.Rule == RuleDrylife {
		eq6 := foldEq(summed, m.MaskNot6)
		born := andWords(eq6, notWords(s))
		eq3 = orWords(eq3, born)
	}
	s = andWords(s, eq4)
	s = orWords(s, eq3)

	// 5. Clamp.
	s = andWords(s, m.MaskCanvas)

	return State(s)
}

// foldEq realises "summed XOR MASK_NOT_n", folded down to bit 0 of
// each nibble: the result's bit 0 is 1 in every nibble that held
// exactly n, 0 elsewhere.
func foldEq(summed, maskNotN []uint64) []uint64 {
	eq := xorWords(summed, maskNotN)
	eq = andWords(eq, shiftRight(eq, 2))
	eq = andWords(eq, shiftRight(eq, 1))
	return eq
}
