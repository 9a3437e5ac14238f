package engine

import (
	"strconv"
	"strings"

	"github.com/RovayL/ct-publicness/internal/constraints"
)

// typeWidth parses an `iW`-shaped type string (e.g. "i32", "i1") into its
// bit-width. Anything else — empty, "ptr", "float", malformed — falls back
// to pointer width, per spec.md §4.3: "operand widths from use_tys where
// available, else pointer width".
func typeWidth(ty string) int {
	if strings.HasPrefix(ty, "i") {
		if w, err := strconv.Atoi(ty[1:]); err == nil && w > 0 {
			return w
		}
	}
	return constraints.PointerWidth
}

// defWidth resolves a defined value's width from def_ty.
func defWidth(defTy string) int {
	if defTy == "" {
		return constraints.PointerWidth
	}
	return typeWidth(defTy)
}

// useWidth resolves operand idx's width from use_tys, falling back to
// pointer width when use_tys is absent or short.
func useWidth(useTys []string, idx int) int {
	if idx < 0 || idx >= len(useTys) {
		return constraints.PointerWidth
	}
	return typeWidth(useTys[idx])
}
