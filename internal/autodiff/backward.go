package autodiff

import "math"

// Backward computes the gradient of v with respect to every node reachable
// from it.
//
// Algorithm:
//  1. Record a topological order of the graph below v (operands before self)
//  2. Reset the gradient of every recorded node to 0
//  3. Seed v's gradient with 1
//  4. Walk the order in reverse, adding each op's local contributions into
//     its operands' gradients
//
// Because of step 2, calling Backward twice yields the same gradients. Nodes
// outside v's graph keep whatever gradient they had. Use Accumulate to sum
// gradients across passes instead.
func (v *Value) Backward() {
	t := record(v)
	for i, g := range t.propagate() {
		t.nodes[i].grad = g
	}
}

// Accumulate runs the same pass as Backward but adds the result into the
// existing gradients instead of resetting them first. Running it twice on
// the same root doubles every gradient.
func (v *Value) Accumulate() {
	t := record(v)
	for i, g := range t.propagate() {
		t.nodes[i].grad += g
	}
}

// ZeroGrad resets the gradient of v and every node it depends on.
func (v *Value) ZeroGrad() {
	for _, n := range record(v).nodes {
		n.grad = 0
	}
}

// TopoSort returns the nodes reachable from root in post-order: every node
// appears after all of its operands and root is last. Each node appears once.
func TopoSort(root *Value) []*Value {
	if root == nil {
		return nil
	}
	return record(root).nodes
}

// Nodes is TopoSort(v).
func (v *Value) Nodes() []*Value {
	return TopoSort(v)
}

// Walk calls fn on every node reachable from v in topological order
// (operands first) until fn returns false. fn must not modify the graph.
func (v *Value) Walk(fn func(*Value) bool) {
	for _, n := range record(v).nodes {
		if !fn(n) {
			return
		}
	}
}

// NonFinite returns the reachable nodes whose value or gradient is NaN or
// ±Inf, in topological order.
func (v *Value) NonFinite() []*Value {
	var bad []*Value
	v.Walk(func(n *Value) bool {
		if !isFinite(n.data) || !isFinite(n.grad) {
			bad = append(bad, n)
		}
		return true
	})
	return bad
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
