package autodiff

import (
	"fmt"
	"reflect"

	"github.com/born-ml/scalargrad/internal/autodiff/ops"
)

// Lift converts x into a graph node.
//
// A *Value is returned unchanged. Go integer and floating-point numbers,
// including named types such as `type meters float64`, become new leaves.
// Anything else (including a nil *Value) is rejected with an *OperandError.
func Lift(x any) (*Value, error) {
	return lift("", x)
}

func lift(op string, x any) (*Value, error) {
	switch n := x.(type) {
	case *Value:
		if n == nil {
			return nil, &OperandError{Op: op, Got: x}
		}
		return n, nil
	case float64:
		return New(n), nil
	case float32:
		return New(float64(n)), nil
	case int:
		return New(float64(n)), nil
	case int8:
		return New(float64(n)), nil
	case int16:
		return New(float64(n)), nil
	case int32:
		return New(float64(n)), nil
	case int64:
		return New(float64(n)), nil
	case uint:
		return New(float64(n)), nil
	case uint8:
		return New(float64(n)), nil
	case uint16:
		return New(float64(n)), nil
	case uint32:
		return New(float64(n)), nil
	case uint64:
		return New(float64(n)), nil
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return New(rv.Float()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return New(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return New(float64(rv.Uint())), nil
	default:
		return nil, &OperandError{Op: op, Got: x}
	}
}

// mustLift is lift for the operator methods, which have no error return.
// Passing a non-numeric operand is a programming error.
func mustLift(op ops.Kind, x any) *Value {
	v, err := lift(op.Name(), x)
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Value) binary(k ops.Kind, other any) *Value {
	return apply(ops.Of(k), v, mustLift(k, other))
}

func (v *Value) unary(k ops.Kind) *Value {
	return apply(ops.Of(k), v)
}

// Add returns v + other. other may be a *Value or a Go number.
// Panics with an *OperandError for any other type.
func (v *Value) Add(other any) *Value {
	return v.binary(ops.Add, other)
}

// Sub returns v - other.
func (v *Value) Sub(other any) *Value {
	return v.binary(ops.Sub, other)
}

// Mul returns v * other.
func (v *Value) Mul(other any) *Value {
	return v.binary(ops.Mul, other)
}

// Div returns v / other. Dividing by zero yields ±Inf or NaN.
func (v *Value) Div(other any) *Value {
	return v.binary(ops.Div, other)
}

// Pow returns v^n for a constant exponent n.
func (v *Value) Pow(n float64) *Value {
	return apply(ops.PowOf(n), v)
}

// PowValue returns v^other where the exponent is itself differentiated.
// The exponent receives no gradient where v <= 0.
func (v *Value) PowValue(other any) *Value {
	return v.binary(ops.PowValue, other)
}

// Neg returns -v.
func (v *Value) Neg() *Value { return v.unary(ops.Neg) }

// Sin returns sin(v).
func (v *Value) Sin() *Value { return v.unary(ops.Sin) }

// Cos returns cos(v).
func (v *Value) Cos() *Value { return v.unary(ops.Cos) }

// Tan returns tan(v).
func (v *Value) Tan() *Value { return v.unary(ops.Tan) }

// Cot returns cot(v) = 1/tan(v).
func (v *Value) Cot() *Value { return v.unary(ops.Cot) }

// Sinh returns sinh(v).
func (v *Value) Sinh() *Value { return v.unary(ops.Sinh) }

// Cosh returns cosh(v).
func (v *Value) Cosh() *Value { return v.unary(ops.Cosh) }

// Tanh returns tanh(v).
func (v *Value) Tanh() *Value { return v.unary(ops.Tanh) }

// Coth returns coth(v) = 1/tanh(v).
func (v *Value) Coth() *Value { return v.unary(ops.Coth) }

// Exp returns e^v.
func (v *Value) Exp() *Value { return v.unary(ops.Exp) }

// Log returns the natural logarithm of v.
func (v *Value) Log() *Value { return v.unary(ops.Log) }

// Apply builds a node for an arbitrary op. It is the by-name entry point used
// by parsers; operands may be *Value or Go numbers.
func Apply(op ops.Op, operands ...any) (*Value, error) {
	if !op.Kind.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOp, op.Kind)
	}
	if len(operands) != op.Arity() {
		return nil, &ArityError{Op: op.Kind.Name(), Want: op.Arity(), Got: len(operands)}
	}
	vals := make([]*Value, len(operands))
	for i, o := range operands {
		v, err := lift(op.Kind.Name(), o)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return apply(op, vals...), nil
}
