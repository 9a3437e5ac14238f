package engine

import (
	"github.com/pkg/errors"

	"github.com/RovayL/ct-publicness/internal/constraints"
	"github.com/RovayL/ct-publicness/internal/model"
	"github.com/RovayL/ct-publicness/internal/satbv"
)

// Eval evaluates one instruction into the given state using the opcode
// table of spec.md §4.3. prevBB is the block that was current before the
// current one started (spec.md's "previous-block tracking"), used to
// resolve PHI nodes. Evaluation never fails on an unrecognized opcode or
// predicate (spec.md §4.4): only a malformed operand reference can.
func Eval(s *satbv.Solver, st *SymState, inst model.Instruction, prevBB string) error {
	w := defWidth(inst.DefTy)

	switch ResolveOpcode(inst.Op) {
	case OpAlloca:
		st.Bind(inst.DefID, s.NewVar(constraints.PointerWidth))

	case OpLoad:
		ptr := operand(inst, 0)
		if v, ok := st.Load(ptr); ok {
			st.Bind(inst.DefID, s.CoerceWidth(v, w))
			return nil
		}
		v := s.NewVar(w)
		st.Store(ptr, v)
		st.Bind(inst.DefID, v)

	case OpStore:
		ptr := operand(inst, 0)
		valTok := operand(inst, 1)
		vw := useWidth(inst.UseTys, 1)
		v := constraints.ResolveValue(s, st, valTok, vw)
		st.Store(ptr, v)

	case OpAdd, OpSub, OpMul, OpAnd, OpOr, OpXor, OpShl, OpLShr, OpAShr:
		if len(inst.Uses) < 2 {
			return errors.Errorf("engine: %s at %s needs two operands", inst.Op, inst.PP)
		}
		a := constraints.ResolveValue(s, st, operand(inst, 0), w)
		b := constraints.ResolveValue(s, st, operand(inst, 1), w)
		a = s.CoerceWidth(a, w)
		b = s.CoerceWidth(b, w)
		st.Bind(inst.DefID, binop(s, ResolveOpcode(inst.Op), a, b))

	case OpICmp:
		if len(inst.Uses) < 2 {
			return errors.Errorf("engine: icmp at %s needs two operands", inst.PP)
		}
		cw := useWidth(inst.UseTys, 0)
		a := constraints.ResolveValue(s, st, operand(inst, 0), cw)
		b := constraints.ResolveValue(s, st, operand(inst, 1), cw)
		a = s.CoerceWidth(a, cw)
		b = s.CoerceWidth(b, cw)
		st.Bind(inst.DefID, s.BoolToBV(icmp(s, ResolvePred(inst.ICmpPred), a, b)))

	case OpZext:
		v := constraints.ResolveValue(s, st, operand(inst, 0), useWidth(inst.UseTys, 0))
		st.Bind(inst.DefID, s.ZeroExt(v, w))

	case OpSext:
		v := constraints.ResolveValue(s, st, operand(inst, 0), useWidth(inst.UseTys, 0))
		st.Bind(inst.DefID, s.SignExt(v, w))

	case OpTrunc:
		v := constraints.ResolveValue(s, st, operand(inst, 0), useWidth(inst.UseTys, 0))
		st.Bind(inst.DefID, s.Trunc(v, w))

	case OpSelect:
		if len(inst.Uses) < 3 {
			return errors.Errorf("engine: select at %s needs three operands", inst.PP)
		}
		cond := constraints.ResolveValue(s, st, operand(inst, 0), 1)
		t := s.CoerceWidth(constraints.ResolveValue(s, st, operand(inst, 1), w), w)
		f := s.CoerceWidth(constraints.ResolveValue(s, st, operand(inst, 2), w), w)
		st.Bind(inst.DefID, s.Select(cond, t, f))

	case OpGetElementPtr:
		if len(inst.Uses) == 0 {
			return errors.Errorf("engine: getelementptr at %s needs at least one operand", inst.PP)
		}
		base := s.CoerceWidth(constraints.ResolveValue(s, st, operand(inst, 0), constraints.PointerWidth), constraints.PointerWidth)
		lastIdx := s.CoerceWidth(constraints.ResolveValue(s, st, operand(inst, len(inst.Uses)-1), constraints.PointerWidth), constraints.PointerWidth)
		st.Bind(inst.DefID, s.Add(base, lastIdx))

	case OpPhi:
		v, err := evalPhi(s, st, inst, prevBB, w)
		if err != nil {
			return err
		}
		st.Bind(inst.DefID, v)

	case OpCall:
		if inst.HasDef() {
			st.Bind(inst.DefID, s.NewVar(w))
		}

	default:
		if inst.HasDef() {
			st.Bind(inst.DefID, s.NewVar(w))
		}
	}
	return nil
}

// operand returns the idx'th use token, or "" if absent.
func operand(inst model.Instruction, idx int) string {
	if idx < 0 || idx >= len(inst.Uses) {
		return ""
	}
	return inst.Uses[idx]
}

func binop(s *satbv.Solver, op Opcode, a, b satbv.BV) satbv.BV {
	switch op {
	case OpAdd:
		return s.Add(a, b)
	case OpSub:
		return s.Sub(a, b)
	case OpMul:
		return s.Mul(a, b)
	case OpAnd:
		return s.And(a, b)
	case OpOr:
		return s.Or(a, b)
	case OpXor:
		return s.Xor(a, b)
	case OpShl:
		return s.Shl(a, b)
	case OpLShr:
		return s.LShr(a, b)
	case OpAShr:
		return s.AShr(a, b)
	default:
		return a
	}
}

// icmp evaluates a comparison predicate; an unrecognized predicate is
// treated as always-true (spec.md §4.4: "conservative-public").
func icmp(s *satbv.Solver, p Pred, a, b satbv.BV) satbv.Lit {
	switch p {
	case PredEq:
		return s.Eq(a, b)
	case PredNe:
		return s.Ne(a, b)
	case PredSlt:
		return s.SLt(a, b)
	case PredSle:
		return s.SLe(a, b)
	case PredSgt:
		return s.SGt(a, b)
	case PredSge:
		return s.SGe(a, b)
	case PredUlt:
		return s.ULt(a, b)
	case PredUle:
		return s.ULe(a, b)
	case PredUgt:
		return s.UGt(a, b)
	case PredUge:
		return s.UGe(a, b)
	default:
		return s.TrueLit()
	}
}

// evalPhi implements spec.md §4.3's PHI semantics: operands come in
// (value, block) pairs; pick the value whose block equals the previously
// executed block, defaulting to the first pair when none match (spec.md
// §8's PHI-resolution property).
func evalPhi(s *satbv.Solver, st *SymState, inst model.Instruction, prevBB string, w int) (satbv.BV, error) {
	if len(inst.Uses) < 2 || len(inst.Uses)%2 != 0 {
		return satbv.BV{}, errors.Errorf("engine: phi at %s needs (value,block) pairs", inst.PP)
	}
	first := constraints.ResolveValue(s, st, inst.Uses[0], w)
	if prevBB != "" {
		for i := 0; i+1 < len(inst.Uses); i += 2 {
			val, blk := inst.Uses[i], inst.Uses[i+1]
			if blk == prevBB {
				return s.CoerceWidth(constraints.ResolveValue(s, st, val, w), w), nil
			}
		}
	}
	return s.CoerceWidth(first, w), nil
}
