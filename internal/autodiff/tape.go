package autodiff

// tape is the topological order of the graph below one root, recorded for a
// single backward pass.
//
// nodes is in post-order: every node appears after all of its operands, so
// the root is last. Walking it backwards visits each node before any of the
// operands it contributes gradient to.
type tape struct {
	nodes []*Value       // post-order (operands before self)
	index map[*Value]int // position of each node in nodes
}

// frame is one pending node on the explicit DFS stack.
type frame struct {
	v    *Value
	next int // next operand to visit
}

// record builds the tape for root with an iterative depth-first search.
// Shared subgraphs are visited once; depth is bounded by the heap, not the
// goroutine stack.
func record(root *Value) *tape {
	t := &tape{
		nodes: make([]*Value, 0, 16),
		index: make(map[*Value]int, 16),
	}
	visited := make(map[*Value]struct{}, 16)
	visited[root] = struct{}{}
	stack := []frame{{v: root}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.v.operands) {
			child := top.v.operands[top.next]
			top.next++
			if _, seen := visited[child]; !seen {
				visited[child] = struct{}{}
				stack = append(stack, frame{v: child})
			}
			continue
		}
		t.index[top.v] = len(t.nodes)
		t.nodes = append(t.nodes, top.v)
		stack = stack[:len(stack)-1]
	}

	return t
}

// Len returns the number of recorded nodes.
func (t *tape) Len() int {
	return len(t.nodes)
}

// propagate runs reverse-mode accumulation seeded with ∂root/∂root = 1.
// It returns the gradient of each node in tape order without touching the
// nodes themselves.
func (t *tape) propagate() []float64 {
	local := make([]float64, len(t.nodes))
	if len(t.nodes) == 0 {
		return local
	}
	local[len(local)-1] = 1

	var inputs []float64
	for i := len(t.nodes) - 1; i >= 0; i-- {
		n := t.nodes[i]
		if n.IsLeaf() {
			continue
		}

		inputs = inputs[:0]
		for _, o := range n.operands {
			inputs = append(inputs, o.data)
		}
		grads := n.op.Backward(inputs, n.data, local[i])

		// Additive: an operand may be shared by several downstream nodes.
		for j, o := range n.operands {
			local[t.index[o]] += grads[j]
		}
	}

	return local
}
