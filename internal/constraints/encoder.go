package constraints

import (
	"github.com/pkg/errors"

	"github.com/RovayL/ct-publicness/internal/condlang"
	"github.com/RovayL/ct-publicness/internal/model"
	"github.com/RovayL/ct-publicness/internal/satbv"
)

// SymbolSource resolves a non-constant operand token to a bit-vector within
// one symbolic state, introducing a fresh symbol on first reference. The
// engine's per-state environment implements this so that path-condition
// atoms and instruction operands share the same symbol identities
// (spec.md §4.2's "shared symbol environment").
type SymbolSource interface {
	Resolve(token string, width int) satbv.BV
}

// Encoder lifts path conditions into solver assertions against one
// SymbolSource (spec.md §4.2). A fresh Encoder is built per (state, path)
// pair — see internal/engine, which asserts the condition once per state.
type Encoder struct {
	Solver *satbv.Solver
	Env    SymbolSource
}

// New builds an Encoder over the given solver and symbol source.
func New(s *satbv.Solver, env SymbolSource) *Encoder {
	return &Encoder{Solver: s, Env: env}
}

// ResolveValue turns one operand token into a bit-vector: a sized or
// opaque constant (per InferToken) is synthesized directly on the solver;
// any other token is deferred to env, which mints a fresh symbol on first
// reference. This is the single place constant-vs-variable dispatch
// happens, shared by the path-condition encoder below and by the
// instruction evaluator in internal/engine, so that `const:...` tokens
// behave identically wherever they appear as an operand.
func ResolveValue(s *satbv.Solver, env SymbolSource, tok string, fallbackWidth int) satbv.BV {
	if tk, ok := InferToken(tok); ok {
		w := tk.Width
		if w == 0 {
			w = fallbackWidth
		}
		return s.Const(w, tk.Value)
	}
	return env.Resolve(tok, fallbackWidth)
}

// resolveOperand turns one atom-side token into a bit-vector, synthesizing
// sized constants directly and deferring variables to the SymbolSource.
func (e *Encoder) resolveOperand(tok string, tk TokenKind) satbv.BV {
	width := tk.Width
	if width == 0 {
		width = PointerWidth
	}
	return ResolveValue(e.Solver, e.Env, tok, width)
}

// AssertAtom encodes a single `lhs==rhs`/`lhs!=rhs` comparison, applying
// the width-coercion rule (zero-extend the narrower operand) before
// asserting (dis)equality.
func (e *Encoder) AssertAtom(lhs, rhs, op string) error {
	lk, rk := ResolvePair(lhs, rhs)
	lv := e.resolveOperand(lhs, lk)
	rv := e.resolveOperand(rhs, rk)

	width := lv.Width()
	if rv.Width() > width {
		width = rv.Width()
	}
	lv = e.Solver.CoerceWidth(lv, width)
	rv = e.Solver.CoerceWidth(rv, width)

	switch op {
	case "==":
		e.Solver.AssertBVEq(lv, rv)
	case "!=":
		e.Solver.AssertBVNe(lv, rv)
	default:
		return errors.Errorf("constraints: unknown comparison operator %q", op)
	}
	return nil
}

// AssertExpr recursively asserts a structured path-condition tree (spec.md
// §3's path_cond_json shape: "and" of terms, or a leaf "=="/"!=" atom).
// Unknown node shapes fail loudly, per §4.2's "never silently drop
// conditions" policy.
func (e *Encoder) AssertExpr(expr *model.CondExpr) error {
	switch expr.Op {
	case "and":
		for _, t := range expr.Terms {
			if err := e.AssertExpr(t); err != nil {
				return err
			}
		}
		return nil
	case "==", "!=":
		return e.AssertAtom(expr.Lhs, expr.Rhs, expr.Op)
	default:
		return errors.Errorf("constraints: unknown path-condition node op %q", expr.Op)
	}
}

// AssertAll asserts every expression in a structured path condition tree
// list (spec.md §3's `path_cond_json` is a list of such trees).
func (e *Encoder) AssertAll(exprs []*model.CondExpr) error {
	for _, expr := range exprs {
		if err := e.AssertExpr(expr); err != nil {
			return err
		}
	}
	return nil
}

// AssertPath encodes one CfgPath's path condition, preferring the structured
// path_cond_json form when it is non-empty and falling back to parsing the
// textual path_cond otherwise (spec.md §4.2: "structured form takes
// precedence when non-empty").
func (e *Encoder) AssertPath(textual []string, jsonExprs []*model.CondExpr) error {
	if len(jsonExprs) > 0 {
		return e.AssertAll(jsonExprs)
	}
	if len(textual) == 0 {
		return nil
	}
	atoms, err := condlang.ParseTextual(textual)
	if err != nil {
		return errors.Wrap(err, "constraints: parsing textual path condition")
	}
	return e.AssertAll(condlang.ToCondExprs(atoms))
}
