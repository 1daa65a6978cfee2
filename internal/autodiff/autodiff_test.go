package autodiff_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/scalargrad/internal/autodiff"
	"github.com/born-ml/scalargrad/internal/autodiff/ops"
)

// TestValue_Leaf tests leaf construction.
func TestValue_Leaf(t *testing.T) {
	x := autodiff.New(2.5, autodiff.WithLabel("x"))

	assert.Equal(t, 2.5, x.Data())
	assert.Equal(t, 0.0, x.Grad())
	assert.Equal(t, "x", x.Label())
	assert.True(t, x.IsLeaf())
	assert.Nil(t, x.Operands())

	_, ok := x.Op()
	assert.False(t, ok)
}

// TestValue_Construction tests that operations record operands in order and
// leave their operands untouched.
func TestValue_Construction(t *testing.T) {
	a := autodiff.New(6)
	b := autodiff.New(3)
	c := a.Div(b)

	assert.Equal(t, 2.0, c.Data())
	assert.False(t, c.IsLeaf())
	require.Len(t, c.Operands(), 2)
	assert.Same(t, a, c.Operands()[0])
	assert.Same(t, b, c.Operands()[1])

	op, ok := c.Op()
	require.True(t, ok)
	assert.Equal(t, ops.Div, op.Kind)

	assert.Equal(t, 6.0, a.Data())
	assert.Equal(t, 0.0, a.Grad())
}

// TestValue_OperandsIsCopy tests that consumers cannot rewire the graph.
func TestValue_OperandsIsCopy(t *testing.T) {
	a := autodiff.New(1)
	b := autodiff.New(2)
	c := a.Add(b)

	operands := c.Operands()
	operands[0] = autodiff.New(100)

	assert.Same(t, a, c.Operands()[0])
}

// TestValue_LiteralPromotion tests implicit promotion of Go numbers.
func TestValue_LiteralPromotion(t *testing.T) {
	x := autodiff.New(2)

	y := x.Mul(3).Add(int64(1)).Sub(float32(0.5)).Div(uint8(2))
	assert.InDelta(t, 3.25, y.Data(), 1e-12)

	y.Backward()
	assert.InDelta(t, 1.5, x.Grad(), 1e-12)

	lit := x.Mul(3).Operands()[1]
	assert.True(t, lit.IsLeaf())
	assert.Equal(t, 3.0, lit.Data())
}

type meters float64

type count uint16

// TestLift_NamedNumericTypes tests promotion of user-defined numeric types.
func TestLift_NamedNumericTypes(t *testing.T) {
	v, err := autodiff.Lift(meters(2.5))
	require.NoError(t, err)
	assert.Equal(t, 2.5, v.Data())

	v, err = autodiff.Lift(count(7))
	require.NoError(t, err)
	assert.Equal(t, 7.0, v.Data())

	x := autodiff.New(3)
	y := x.Mul(meters(2))
	y.Backward()
	assert.Equal(t, 6.0, y.Data())
	assert.Equal(t, 2.0, x.Grad())

	type name string
	_, err = autodiff.Lift(name("x"))
	assert.ErrorIs(t, err, autodiff.ErrInvalidOperand)
	_, err = autodiff.Lift(true)
	assert.ErrorIs(t, err, autodiff.ErrInvalidOperand)
}

// TestValue_InvalidOperand tests that non-numeric operands fail fast.
func TestValue_InvalidOperand(t *testing.T) {
	x := autodiff.New(1)

	_, err := autodiff.Lift("2")
	require.Error(t, err)
	assert.ErrorIs(t, err, autodiff.ErrInvalidOperand)

	var opErr *autodiff.OperandError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "2", opErr.Got)

	var nilValue *autodiff.Value
	_, err = autodiff.Lift(nilValue)
	assert.ErrorIs(t, err, autodiff.ErrInvalidOperand)

	assert.PanicsWithError(t,
		"autodiff: invalid operand: add: cannot use string as a value",
		func() { x.Add("2") })
	assert.Panics(t, func() { x.Mul(nil) })
	assert.Panics(t, func() { x.PowValue(struct{}{}) })
}

// TestApply tests the by-op constructor.
func TestApply(t *testing.T) {
	x := autodiff.New(4)

	y, err := autodiff.Apply(ops.Of(ops.Sub), 10, x)
	require.NoError(t, err)
	assert.Equal(t, 6.0, y.Data())

	y.Backward()
	assert.Equal(t, -1.0, x.Grad())

	_, err = autodiff.Apply(ops.Of(ops.Add), x)
	var arityErr *autodiff.ArityError
	require.ErrorAs(t, err, &arityErr)
	assert.Equal(t, 2, arityErr.Want)
	assert.Equal(t, 1, arityErr.Got)

	_, err = autodiff.Apply(ops.Op{}, x)
	assert.ErrorIs(t, err, autodiff.ErrInvalidOp)

	_, err = autodiff.Apply(ops.Of(ops.Sin), "x")
	assert.ErrorIs(t, err, autodiff.ErrInvalidOperand)
}

// TestValue_Labels tests that labels are presentational only.
func TestValue_Labels(t *testing.T) {
	x := autodiff.New(2, autodiff.WithLabel("x"))
	y := autodiff.New(3, autodiff.WithLabel("y"))

	z := x.Mul(y).SetLabel("z = x*y")
	w := z.Add(x).SetLabel("w = z+x")
	result := w.Pow(2).SetLabel("result")

	result.Backward()

	assert.Equal(t, "z = x*y", z.Label())
	assert.InDelta(t, 64.0, result.Data(), 1e-12)
	// d/dx (xy + x)² = 2(xy + x)(y + 1) = 2*8*4
	assert.InDelta(t, 64.0, x.Grad(), 1e-12)
	// d/dy = 2(xy + x)x = 2*8*2
	assert.InDelta(t, 32.0, y.Grad(), 1e-12)
}

// TestValue_String tests the debug representation.
func TestValue_String(t *testing.T) {
	x := autodiff.New(2, autodiff.WithLabel("x"))
	assert.Equal(t, `Value(data=2, grad=0, label="x")`, x.String())

	y := x.Pow(3)
	y.Backward()
	assert.Equal(t, "Value(data=8, grad=1, op=**3)", y.String())
}

// TestValue_IDsAreUnique tests node identity.
func TestValue_IDsAreUnique(t *testing.T) {
	a := autodiff.New(1)
	b := autodiff.New(1)
	c := a.Add(b)

	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotEqual(t, b.ID(), c.ID())
	assert.NotZero(t, a.ID())
}

// TestValue_DomainErrorsPropagate tests IEEE semantics through both passes.
func TestValue_DomainErrorsPropagate(t *testing.T) {
	x := autodiff.New(0, autodiff.WithLabel("x"))
	y := x.Pow(-1)
	assert.True(t, math.IsInf(y.Data(), 1))

	y.Backward()
	assert.True(t, math.IsInf(x.Grad(), -1))

	bad := y.NonFinite()
	require.Len(t, bad, 2)
	assert.Same(t, x, bad[0])
	assert.Same(t, y, bad[1])

	z := autodiff.New(-1).Log()
	assert.True(t, math.IsNaN(z.Data()))
}

// TestValue_NonFinite_Clean tests that a healthy graph reports nothing.
func TestValue_NonFinite_Clean(t *testing.T) {
	x := autodiff.New(2)
	y := x.Mul(x).Log()
	y.Backward()
	assert.Empty(t, y.NonFinite())
}
