// Package ops defines the closed set of scalar operations for automatic differentiation.
//
// Every operation is a tagged variant (Op) carrying only the data its rules need.
// Each Op provides:
//   - Forward: the value of the node from its operand values
//   - Backward: one gradient contribution per operand, given the output gradient
//
// Supported operations:
//   - Add, Sub, Mul, Div: binary arithmetic
//   - Pow: a^n with a constant exponent n (d(a^n)/da = n*a^(n-1))
//   - PowValue: a^b with both operands in the graph
//   - Neg: unary negation
//   - Sin, Cos, Tan, Cot: trigonometric functions
//   - Sinh, Cosh, Tanh, Coth: hyperbolic functions
//   - Exp, Log: natural exponential and logarithm
//
// Domain problems (division by zero, log of a non-positive value, tan at
// odd multiples of π/2) are never trapped: they follow IEEE-754 semantics and
// surface as ±Inf or NaN in values and gradients.
package ops

import (
	"fmt"
	"strconv"
)

// Kind identifies an operation.
type Kind uint8

// Operation kinds. The zero value is invalid so an unset Op is detectable.
const (
	Invalid Kind = iota
	Add
	Sub
	Mul
	Div
	Pow
	PowValue
	Neg
	Sin
	Cos
	Tan
	Cot
	Sinh
	Cosh
	Tanh
	Coth
	Exp
	Log

	numKinds
)

var kindNames = [numKinds]string{
	Invalid:  "invalid",
	Add:      "add",
	Sub:      "sub",
	Mul:      "mul",
	Div:      "div",
	Pow:      "pow",
	PowValue: "powv",
	Neg:      "neg",
	Sin:      "sin",
	Cos:      "cos",
	Tan:      "tan",
	Cot:      "cot",
	Sinh:     "sinh",
	Cosh:     "cosh",
	Tanh:     "tanh",
	Coth:     "coth",
	Exp:      "exp",
	Log:      "log",
}

// Name returns the lower-case name of the kind (e.g. "sin", "mul").
func (k Kind) Name() string {
	if k >= numKinds {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return k.Name()
}

// Valid reports whether k is one of the defined operation kinds.
func (k Kind) Valid() bool {
	return k > Invalid && k < numKinds
}

// Arity returns the number of graph operands the kind consumes.
func (k Kind) Arity() int {
	switch k {
	case Add, Sub, Mul, Div, PowValue:
		return 2
	case Invalid:
		return 0
	default:
		if k >= numKinds {
			return 0
		}
		return 1
	}
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, numKinds-1)
	for k := Invalid + 1; k < numKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Functions returns the names of the unary functions callable by name
// (sin, cos, ..., exp, log), in declaration order.
func Functions() []string {
	names := make([]string, 0, 10)
	for k := Sin; k <= Log; k++ {
		names = append(names, k.Name())
	}
	return names
}

// ParseKind looks up a kind by its Name.
func ParseKind(name string) (Kind, bool) {
	for k := Invalid + 1; k < numKinds; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return Invalid, false
}

// Op is a stateless forward/backward rule pair bound to a node at creation time.
//
// Exponent is only meaningful for Pow.
type Op struct {
	Kind     Kind
	Exponent float64
}

// Of returns the Op for a kind that carries no extra data.
func Of(k Kind) Op {
	return Op{Kind: k}
}

// PowOf returns the Op computing a^n for a constant n.
func PowOf(n float64) Op {
	return Op{Kind: Pow, Exponent: n}
}

// Arity returns the number of operands the op consumes.
func (op Op) Arity() int {
	return op.Kind.Arity()
}

// String returns the display symbol used when rendering graphs.
func (op Op) String() string {
	switch op.Kind {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Pow:
		return "**" + strconv.FormatFloat(op.Exponent, 'g', -1, 64)
	case PowValue:
		return "**"
	default:
		return op.Kind.Name()
	}
}

// Forward computes the output value from the operand values.
//
// Panics if len(inputs) does not match the op's arity.
func (op Op) Forward(inputs []float64) float64 {
	op.checkArity(inputs)

	switch op.Kind {
	case Add, Sub, Mul, Div, Pow, PowValue, Neg:
		return arithForward(op, inputs)
	case Sin, Cos, Tan, Cot:
		return trigForward(op.Kind, inputs[0])
	case Sinh, Cosh, Tanh, Coth:
		return hyperbolicForward(op.Kind, inputs[0])
	case Exp, Log:
		return expForward(op.Kind, inputs[0])
	default:
		panic(fmt.Sprintf("ops: forward of invalid op %s", op.Kind))
	}
}

// Backward returns one contribution per operand, each equal to
// outputGrad * ∂output/∂inputs[i]. output is the value Forward produced
// for the same inputs; rules such as Exp reuse it instead of recomputing.
//
// Panics if len(inputs) does not match the op's arity.
func (op Op) Backward(inputs []float64, output, outputGrad float64) []float64 {
	op.checkArity(inputs)

	switch op.Kind {
	case Add, Sub, Mul, Div, Pow, PowValue, Neg:
		return arithBackward(op, inputs, output, outputGrad)
	case Sin, Cos, Tan, Cot:
		return []float64{trigBackward(op.Kind, inputs[0], outputGrad)}
	case Sinh, Cosh, Tanh, Coth:
		return []float64{hyperbolicBackward(op.Kind, inputs[0], output, outputGrad)}
	case Exp, Log:
		return []float64{expBackward(op.Kind, inputs[0], output, outputGrad)}
	default:
		panic(fmt.Sprintf("ops: backward of invalid op %s", op.Kind))
	}
}

func (op Op) checkArity(inputs []float64) {
	if !op.Kind.Valid() {
		panic(fmt.Sprintf("ops: invalid op %s", op.Kind))
	}
	if len(inputs) != op.Arity() {
		panic(fmt.Sprintf("ops: %s expects %d operands, got %d", op.Kind, op.Arity(), len(inputs)))
	}
}
