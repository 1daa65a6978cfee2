// Package autodiff implements scalar reverse-mode automatic differentiation.
//
// A Value is one node of a computation graph. Applying an operation to values
// creates a new Value that remembers its operands and the ops.Op that produced
// it. Calling Backward on any node walks the graph once and fills in the
// partial derivative of that node with respect to every node it depends on.
//
// Architecture:
//   - Value: forward value, accumulated gradient, operands, op, label
//   - ops.Op: closed set of operations, each with forward and backward rules
//   - tape: topological order + pass-local gradient buffer for one backward pass
//   - Reverse-mode AD: gradients are accumulated additively (multivariate chain rule)
//
// Usage:
//
//	x := autodiff.New(2.0, autodiff.WithLabel("x"))
//	y := x.Mul(x).Add(x.Mul(2)).Add(1) // y = x² + 2x + 1
//
//	y.Backward()
//	fmt.Println(y.Data(), x.Grad()) // 9 6
//
// Domain errors are not trapped: division by zero, log of a non-positive
// value and tan/cot at their poles produce ±Inf or NaN following IEEE-754.
// Use NonFinite to find the nodes affected.
package autodiff

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/born-ml/scalargrad/internal/autodiff/ops"
)

var nextID atomic.Uint64

// Value is a scalar node in a computation graph.
//
// Data, operands and op are fixed at construction. Only the gradient changes,
// and only through a backward pass or ZeroGrad.
type Value struct {
	data     float64
	grad     float64
	operands []*Value // empty for leaves
	op       ops.Op   // op.Kind == ops.Invalid for leaves
	label    string
	id       uint64
}

// Option configures a leaf Value.
type Option func(*Value)

// WithLabel attaches a display label to the value.
func WithLabel(label string) Option {
	return func(v *Value) {
		v.label = label
	}
}

// New creates a leaf value (an input of the computation).
func New(x float64, opts ...Option) *Value {
	v := &Value{
		data: x,
		id:   nextID.Add(1),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// apply evaluates op on the operands and allocates the result node.
func apply(op ops.Op, operands ...*Value) *Value {
	inputs := make([]float64, len(operands))
	for i, o := range operands {
		inputs[i] = o.data
	}
	return &Value{
		data:     op.Forward(inputs),
		operands: operands,
		op:       op,
		id:       nextID.Add(1),
	}
}

// Data returns the forward value.
func (v *Value) Data() float64 {
	return v.data
}

// Grad returns the accumulated gradient of the last backward root with
// respect to v. It is 0 until a backward pass reaches v.
func (v *Value) Grad() float64 {
	return v.grad
}

// Operands returns the values v was computed from, in operand order.
// The returned slice is a copy; leaves return nil.
func (v *Value) Operands() []*Value {
	if len(v.operands) == 0 {
		return nil
	}
	return append([]*Value(nil), v.operands...)
}

// Op returns the operation that produced v. ok is false for leaves.
func (v *Value) Op() (op ops.Op, ok bool) {
	return v.op, v.op.Kind != ops.Invalid
}

// IsLeaf reports whether v is an input (has no producing operation).
func (v *Value) IsLeaf() bool {
	return v.op.Kind == ops.Invalid
}

// Label returns the display label, or "" if none was set.
func (v *Value) Label() string {
	return v.label
}

// SetLabel sets the display label. Labels never affect numerics.
func (v *Value) SetLabel(label string) *Value {
	v.label = label
	return v
}

// ID returns a process-unique identifier for the node.
func (v *Value) ID() uint64 {
	return v.id
}

// String implements fmt.Stringer.
func (v *Value) String() string {
	s := "Value(data=" + strconv.FormatFloat(v.data, 'g', -1, 64) +
		", grad=" + strconv.FormatFloat(v.grad, 'g', -1, 64)
	if op, ok := v.Op(); ok {
		s += ", op=" + op.String()
	}
	if v.label != "" {
		s += fmt.Sprintf(", label=%q", v.label)
	}
	return s + ")"
}
