package ast

// BracketType is the delimiter family an Expression was wrapped in.
type BracketType string

const (
	BracketNone   BracketType = "none"
	BracketCurly  BracketType = "curly"
	BracketRound  BracketType = "round"
	BracketSquare BracketType = "square"
)

// Delimiters returns the opening and closing strings for the bracket type.
// BracketNone and unknown values return empty strings.
func (b BracketType) Delimiters() (open, close string) {
	switch b {
	case BracketCurly:
		return "{", "}"
	case BracketRound:
		return "(", ")"
	case BracketSquare:
		return "[", "]"
	default:
		return "", ""
	}
}

// BracketTypeFor returns the bracket type opened by the given character.
func BracketTypeFor(open byte) (BracketType, bool) {
	switch open {
	case '{':
		return BracketCurly, true
	case '(':
		return BracketRound, true
	case '[':
		return BracketSquare, true
	default:
		return BracketNone, false
	}
}

// FunctionName identifies a registered construct. The set is closed; the
// translator has exactly one formatting rule per name.
type FunctionName string

const (
	FuncRegular              FunctionName = "regular"
	FuncAbs                  FunctionName = "abs"
	FuncSqrt                 FunctionName = "sqrt"
	FuncIntegral             FunctionName = "integral"
	FuncFraction             FunctionName = "fraction"
	FuncDerivative           FunctionName = "derivative"
	FuncLatexFunction        FunctionName = "latex_function"
	FuncLatexFunctionInverse FunctionName = "latex_function_inverse"
	FuncBinomial             FunctionName = "binomial"
	FuncLogarithm            FunctionName = "logarithm"
	FuncLogarithm10          FunctionName = "logarithm_10"
	FuncLogarithmLn          FunctionName = "logarithm_ln"
	FuncLimit                FunctionName = "limit"
	FuncMean                 FunctionName = "mean"
	FuncDegrees              FunctionName = "degrees"
)

var functionNames = []FunctionName{
	FuncRegular,
	FuncAbs,
	FuncSqrt,
	FuncIntegral,
	FuncFraction,
	FuncDerivative,
	FuncLatexFunction,
	FuncLatexFunctionInverse,
	FuncBinomial,
	FuncLogarithm,
	FuncLogarithm10,
	FuncLogarithmLn,
	FuncLimit,
	FuncMean,
	FuncDegrees,
}

// FunctionNames returns every registered function name.
func FunctionNames() []FunctionName {
	return append([]FunctionName{}, functionNames...)
}

// IsValid returns true if the name is registered.
func (f FunctionName) IsValid() bool {
	for _, name := range functionNames {
		if name == f {
			return true
		}
	}
	return false
}

// EnvironmentType identifies the kind of a begin/end block.
type EnvironmentType string

const (
	EnvSystem      EnvironmentType = "system"      // system of equations
	EnvDeterminant EnvironmentType = "determinant" // 2x2 or 3x3 matrix
)

// IsValid returns true if the environment type is known.
func (e EnvironmentType) IsValid() bool {
	return e == EnvSystem || e == EnvDeterminant
}
