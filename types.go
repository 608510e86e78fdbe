package pawndex

import "github.com/jward/pawndex/internal/symbols"

// Public type aliases for the internal symbol model used in the Engine API.
// These are Go type aliases (=), identical to the internal types at compile
// time, so no conversion is needed.

type FileCompletions = symbols.FileCompletions
type Declaration = symbols.Declaration
type Parameter = symbols.Parameter
type Import = symbols.Import
type Kind = symbols.Kind

// Declaration kinds.
const (
	KindDefine   = symbols.Define
	KindFunction = symbols.Function
	KindMethod   = symbols.Method
	KindClass    = symbols.Class
	KindProperty = symbols.Property
	KindVariable = symbols.Variable
)
