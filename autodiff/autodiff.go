// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides scalar automatic differentiation.
//
// This package implements reverse-mode automatic differentiation
// (backpropagation) over a graph of scalar values. Every operation applied to a
// Value creates a new node that remembers its operands; Backward on any node
// fills in the gradient of that node with respect to everything it depends on.
//
// Example:
//
//	import "github.com/born-ml/scalargrad/autodiff"
//
//	func main() {
//	    x := autodiff.New(3.0, autodiff.WithLabel("x"))
//	    y := x.Pow(2).Add(x.Mul(2)).Add(1) // y = x² + 2x + 1
//
//	    y.Backward()
//	    fmt.Println(y.Data(), x.Grad()) // 16 8
//	}
package autodiff

import (
	"github.com/born-ml/scalargrad/internal/autodiff"
	"github.com/born-ml/scalargrad/internal/autodiff/ops"
)

// Value is a scalar node in a computation graph.
type Value = autodiff.Value

// Option configures a leaf Value.
type Option = autodiff.Option

// Op is an operation applied to one or two values.
type Op = ops.Op

// Kind identifies an operation.
type Kind = ops.Kind

// OperandError describes an operand that is neither a *Value nor a number.
type OperandError = autodiff.OperandError

// ErrInvalidOperand is wrapped by every OperandError.
var ErrInvalidOperand = autodiff.ErrInvalidOperand

// New creates a leaf value.
//
// Example:
//
//	x := autodiff.New(2.0, autodiff.WithLabel("x"))
func New(x float64, opts ...Option) *Value {
	return autodiff.New(x, opts...)
}

// WithLabel attaches a display label to a leaf.
func WithLabel(label string) Option {
	return autodiff.WithLabel(label)
}

// Lift converts a *Value or Go number into a graph node.
func Lift(x any) (*Value, error) {
	return autodiff.Lift(x)
}

// TopoSort returns the nodes reachable from root, operands before the nodes
// that use them.
func TopoSort(root *Value) []*Value {
	return autodiff.TopoSort(root)
}
