package engine

// Opcode is a closed, tagged enumeration of the instruction opcodes the
// engine understands (spec.md §9: "dispatch on opcode... tagged dispatch
// rather than a dynamic string compare hot-loop").
type Opcode int

const (
	OpUnknown Opcode = iota
	OpAlloca
	OpLoad
	OpStore
	OpAdd
	OpSub
	OpMul
	OpAnd
	OpOr
	OpXor
	OpShl
	OpLShr
	OpAShr
	OpICmp
	OpZext
	OpSext
	OpTrunc
	OpSelect
	OpGetElementPtr
	OpPhi
	OpCall
)

var opcodeNames = map[string]Opcode{
	"alloca":         OpAlloca,
	"load":           OpLoad,
	"store":          OpStore,
	"add":            OpAdd,
	"sub":            OpSub,
	"mul":            OpMul,
	"and":            OpAnd,
	"or":             OpOr,
	"xor":            OpXor,
	"shl":            OpShl,
	"lshr":           OpLShr,
	"ashr":           OpAShr,
	"icmp":           OpICmp,
	"zext":           OpZext,
	"sext":           OpSext,
	"trunc":          OpTrunc,
	"select":         OpSelect,
	"getelementptr":  OpGetElementPtr,
	"phi":            OpPhi,
	"call":           OpCall,
}

// ResolveOpcode maps a trace record's textual opcode to its tag; an
// unrecognized opcode maps to OpUnknown, which the evaluator handles by
// binding a fresh symbol when the instruction defines a value (spec.md
// §4.3's fallback row, §4.4's "unknown opcode... never abort").
func ResolveOpcode(op string) Opcode {
	return opcodeNames[op]
}

// Pred is the closed set of icmp predicates (plus float aliases, folded
// onto their integer counterparts per spec.md §4.3's table).
type Pred int

const (
	PredUnknown Pred = iota
	PredEq
	PredNe
	PredSlt
	PredSle
	PredSgt
	PredSge
	PredUlt
	PredUle
	PredUgt
	PredUge
)

var predNames = map[string]Pred{
	"eq":  PredEq,
	"ne":  PredNe,
	"slt": PredSlt,
	"sle": PredSle,
	"sgt": PredSgt,
	"sge": PredSge,
	"ult": PredUlt,
	"ule": PredUle,
	"ugt": PredUgt,
	"uge": PredUge,
	"oeq": PredEq,
	"ueq": PredEq,
	"one": PredNe,
	"une": PredNe,
}

// ResolvePred maps a textual icmp predicate to its tag; an unrecognized
// predicate maps to PredUnknown, handled conservatively (spec.md §4.4:
// "treat the predicate as true").
func ResolvePred(p string) Pred {
	return predNames[p]
}
