package satbv

// BV is a fixed-width symbolic bit-vector: Bits[0] is the least
// significant bit. All arithmetic in this package is modular two's
// complement, matching LLVM-style wraparound semantics.
type BV struct {
	Bits []Lit
}

// Width returns the bit-width of v.
func (v BV) Width() int { return len(v.Bits) }

// NewVar allocates a fresh, unconstrained bit-vector of the given width —
// the engine's "fresh symbol" primitive (spec.md §4.3: alloca, free loads,
// call results, unknown opcodes).
func (s *Solver) NewVar(width int) BV {
	bits := make([]Lit, width)
	for i := range bits {
		bits[i] = s.newVar().Pos()
	}
	return BV{Bits: bits}
}

// Const returns a bit-vector literal for value, truncated to width bits.
func (s *Solver) Const(width int, value uint64) BV {
	bits := make([]Lit, width)
	for i := 0; i < width; i++ {
		if (value>>uint(i))&1 == 1 {
			bits[i] = s.TrueLit()
		} else {
			bits[i] = s.FalseLit()
		}
	}
	return BV{Bits: bits}
}

// CoerceWidth implements the engine's `_as_bv` width-normalization rule
// (spec.md §4.3): same width is unchanged, narrower is zero-extended,
// wider is truncated to the low bits.
func (s *Solver) CoerceWidth(a BV, width int) BV {
	if len(a.Bits) == width {
		return a
	}
	if len(a.Bits) < width {
		return s.ZeroExt(a, width)
	}
	return s.Trunc(a, width)
}

// ZeroExt extends a to newWidth bits, filling high bits with 0.
func (s *Solver) ZeroExt(a BV, newWidth int) BV {
	if newWidth <= len(a.Bits) {
		return a
	}
	bits := make([]Lit, newWidth)
	copy(bits, a.Bits)
	for i := len(a.Bits); i < newWidth; i++ {
		bits[i] = s.FalseLit()
	}
	return BV{Bits: bits}
}

// SignExt extends a to newWidth bits, replicating the sign (top) bit.
func (s *Solver) SignExt(a BV, newWidth int) BV {
	if newWidth <= len(a.Bits) || len(a.Bits) == 0 {
		return a
	}
	sign := a.Bits[len(a.Bits)-1]
	bits := make([]Lit, newWidth)
	copy(bits, a.Bits)
	for i := len(a.Bits); i < newWidth; i++ {
		bits[i] = sign
	}
	return BV{Bits: bits}
}

// Trunc keeps the low newWidth bits of a.
func (s *Solver) Trunc(a BV, newWidth int) BV {
	if newWidth >= len(a.Bits) {
		return a
	}
	bits := make([]Lit, newWidth)
	copy(bits, a.Bits[:newWidth])
	return BV{Bits: bits}
}

// BoolToBV lifts a boolean literal to a 1-bit bit-vector — the
// `_as_bv` rule's boolean case (if-then-else to {0,1}).
func (s *Solver) BoolToBV(c Lit) BV {
	return BV{Bits: []Lit{c}}
}

// BVToBool lowers a 1-bit bit-vector to a boolean literal (true iff the
// bit is set): used for icmp results feeding `select` and branch conditions.
func BVToBool(a BV) Lit {
	if len(a.Bits) == 0 {
		return 0
	}
	return a.Bits[0]
}

func (s *Solver) notBV(a BV) BV {
	bits := make([]Lit, len(a.Bits))
	for i, b := range a.Bits {
		bits[i] = Not(b)
	}
	return BV{Bits: bits}
}

// And, Or, Xor are bitwise gates over equal-width operands.
func (s *Solver) And(a, b BV) BV { return s.bitwise(a, b, s.andGate) }
func (s *Solver) Or(a, b BV) BV  { return s.bitwise(a, b, s.orGate) }
func (s *Solver) Xor(a, b BV) BV { return s.bitwise(a, b, s.xorGate) }

func (s *Solver) bitwise(a, b BV, gate func(Lit, Lit) Lit) BV {
	w := len(a.Bits)
	bits := make([]Lit, w)
	for i := 0; i < w; i++ {
		bits[i] = gate(a.Bits[i], b.Bits[i])
	}
	return BV{Bits: bits}
}

// Add returns a+b modulo 2^width.
func (s *Solver) Add(a, b BV) BV {
	w := len(a.Bits)
	bits := make([]Lit, w)
	carry := s.FalseLit()
	for i := 0; i < w; i++ {
		sum, cout := s.fullAdder(a.Bits[i], b.Bits[i], carry)
		bits[i] = sum
		carry = cout
	}
	return BV{Bits: bits}
}

// Neg returns two's-complement negation.
func (s *Solver) Neg(a BV) BV {
	one := s.Const(len(a.Bits), 1)
	return s.Add(s.notBV(a), one)
}

// Sub returns a-b modulo 2^width.
func (s *Solver) Sub(a, b BV) BV {
	return s.Add(a, s.Neg(b))
}

// Mul returns a*b modulo 2^width via shift-and-add.
func (s *Solver) Mul(a, b BV) BV {
	w := len(a.Bits)
	acc := s.Const(w, 0)
	shifted := a
	for i := 0; i < w; i++ {
		sum := s.Add(acc, shifted)
		acc = s.muxBV(b.Bits[i], sum, acc)
		shifted = s.shiftLeftByOne(shifted)
	}
	return acc
}

func (s *Solver) muxBV(c Lit, t, f BV) BV {
	w := len(t.Bits)
	bits := make([]Lit, w)
	for i := 0; i < w; i++ {
		bits[i] = s.iteGate(c, t.Bits[i], f.Bits[i])
	}
	return BV{Bits: bits}
}

func (s *Solver) shiftLeftByOne(a BV) BV {
	w := len(a.Bits)
	bits := make([]Lit, w)
	bits[0] = s.FalseLit()
	copy(bits[1:], a.Bits[:w-1])
	return BV{Bits: bits}
}

// shiftByConst shifts a by a fixed, non-symbolic amount; fill controls
// what flows in on the vacated side (0 for logical shifts, the sign bit
// for arithmetic right shift).
func shiftByConst(a BV, amount int, left bool, fill Lit) BV {
	w := len(a.Bits)
	bits := make([]Lit, w)
	if amount >= w {
		for i := range bits {
			bits[i] = fill
		}
		return BV{Bits: bits}
	}
	if left {
		for i := 0; i < amount; i++ {
			bits[i] = fill
		}
		copy(bits[amount:], a.Bits[:w-amount])
	} else {
		for i := w - amount; i < w; i++ {
			bits[i] = fill
		}
		copy(bits[:w-amount], a.Bits[amount:])
	}
	return BV{Bits: bits}
}

// variableShift implements a barrel shifter over a symbolic shift amount:
// one mux stage per bit of amt, so the result stays sound even when amt is
// itself an unconstrained symbol (shl/lshr/ashr's second operand).
func (s *Solver) variableShift(a BV, amt BV, left bool, signFill bool) BV {
	w := len(a.Bits)
	cur := a
	stages := 0
	for (1 << stages) < w {
		stages++
	}
	fillLit := s.FalseLit()
	if signFill {
		fillLit = a.Bits[w-1]
	}
	for stage := 0; stage < stages; stage++ {
		shiftBy := 1 << stage
		var bit Lit
		if stage < len(amt.Bits) {
			bit = amt.Bits[stage]
		} else {
			bit = s.FalseLit()
		}
		shifted := shiftByConst(cur, shiftBy, left, fillLit)
		if signFill && !left {
			// Re-derive the fill from cur's (unchanged) sign bit; shiftByConst
			// above already used it, nothing further to do.
		}
		cur = s.muxBV(bit, shifted, cur)
	}
	if len(amt.Bits) > stages {
		anyHigh := s.orMany(amt.Bits[stages:])
		zeroOrSign := s.Const(w, 0)
		if signFill {
			zeroOrSign = shiftByConst(a, w, left, a.Bits[w-1])
		}
		cur = s.muxBV(anyHigh, zeroOrSign, cur)
	}
	return cur
}

// Shl is a logical left shift by a symbolic amount.
func (s *Solver) Shl(a, amt BV) BV { return s.variableShift(a, amt, true, false) }

// LShr is a logical right shift by a symbolic amount.
func (s *Solver) LShr(a, amt BV) BV { return s.variableShift(a, amt, false, false) }

// AShr is an arithmetic right shift by a symbolic amount.
func (s *Solver) AShr(a, amt BV) BV { return s.variableShift(a, amt, false, true) }

// Select is the `select` opcode's ternary: cond is a 1-bit bit-vector.
func (s *Solver) Select(cond BV, t, f BV) BV {
	return s.muxBV(BVToBool(cond), t, f)
}

// Eq returns a boolean literal for bitwise equality of a and b.
func (s *Solver) Eq(a, b BV) Lit {
	eqs := make([]Lit, len(a.Bits))
	for i := range a.Bits {
		eqs[i] = Not(s.xorGate(a.Bits[i], b.Bits[i]))
	}
	return s.andMany(eqs)
}

// Ne returns a boolean literal for bitwise disequality of a and b.
func (s *Solver) Ne(a, b BV) Lit { return Not(s.Eq(a, b)) }

// ULt returns a boolean literal for unsigned a < b, built MSB-to-LSB.
func (s *Solver) ULt(a, b BV) Lit {
	lt := s.FalseLit()
	eq := s.TrueLit()
	for i := len(a.Bits) - 1; i >= 0; i-- {
		ai, bi := a.Bits[i], b.Bits[i]
		bitLt := s.andGate(Not(ai), bi)
		bitEq := Not(s.xorGate(ai, bi))
		lt = s.orGate(lt, s.andGate(eq, bitLt))
		eq = s.andGate(eq, bitEq)
	}
	return lt
}

func (s *Solver) ULe(a, b BV) Lit { return Not(s.ULt(b, a)) }
func (s *Solver) UGt(a, b BV) Lit { return s.ULt(b, a) }
func (s *Solver) UGe(a, b BV) Lit { return Not(s.ULt(a, b)) }

// flipSign converts signed ordering into unsigned ordering by flipping the
// MSB — the standard two's-complement comparator trick.
func (s *Solver) flipSign(a BV) BV {
	w := len(a.Bits)
	bits := append([]Lit(nil), a.Bits...)
	bits[w-1] = Not(bits[w-1])
	return BV{Bits: bits}
}

func (s *Solver) SLt(a, b BV) Lit { return s.ULt(s.flipSign(a), s.flipSign(b)) }
func (s *Solver) SLe(a, b BV) Lit { return s.ULe(s.flipSign(a), s.flipSign(b)) }
func (s *Solver) SGt(a, b BV) Lit { return s.UGt(s.flipSign(a), s.flipSign(b)) }
func (s *Solver) SGe(a, b BV) Lit { return s.UGe(s.flipSign(a), s.flipSign(b)) }

// AssertBVEq asserts a==b directly as bitwise biconditionals, cheaper than
// routing through Eq+Assert since no aux variable or clause-wide OR is
// needed.
func (s *Solver) AssertBVEq(a, b BV) {
	for i := range a.Bits {
		s.addClause(Not(a.Bits[i]), b.Bits[i])
		s.addClause(a.Bits[i], Not(b.Bits[i]))
	}
}

// AssertBVNe asserts a!=b as a single clause: at least one bit-pair differs.
func (s *Solver) AssertBVNe(a, b BV) {
	diffs := make([]Lit, len(a.Bits))
	for i := range a.Bits {
		diffs[i] = s.xorGate(a.Bits[i], b.Bits[i])
	}
	s.addClause(diffs...)
}
