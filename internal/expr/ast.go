package expr

import (
	"strconv"

	"github.com/born-ml/scalargrad/internal/autodiff/ops"
)

// Node is a parsed expression tree node.
type Node interface {
	String() string
	node()
}

// Num is a numeric literal (including the constants pi and e).
type Num struct {
	Val float64
}

// Var is a free variable.
type Var struct {
	Name string
}

// Call applies a unary op: negation or a named function.
type Call struct {
	Kind ops.Kind
	X    Node
}

// Binary applies a two-operand op (add, sub, mul, div, powv).
type Binary struct {
	Kind ops.Kind
	L, R Node
}

// Power raises X to a constant exponent.
type Power struct {
	X Node
	N float64
}

func (*Num) node()    {}
func (*Var) node()    {}
func (*Call) node()   {}
func (*Binary) node() {}
func (*Power) node()  {}

func (n *Num) String() string {
	return strconv.FormatFloat(n.Val, 'g', -1, 64)
}

func (v *Var) String() string {
	return v.Name
}

func (c *Call) String() string {
	if c.Kind == ops.Neg {
		return "(-" + c.X.String() + ")"
	}
	return c.Kind.Name() + "(" + c.X.String() + ")"
}

func (b *Binary) String() string {
	return "(" + b.L.String() + " " + ops.Of(b.Kind).String() + " " + b.R.String() + ")"
}

func (p *Power) String() string {
	return "(" + p.X.String() + " ** " + strconv.FormatFloat(p.N, 'g', -1, 64) + ")"
}
