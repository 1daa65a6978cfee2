package autodiff

import "testing"

func TestRecord_DedupesSharedOperands(t *testing.T) {
	a := New(2)
	b := a.Mul(a)
	c := a.Add(a)
	y := b.Mul(c)

	tp := record(y)
	if tp.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", tp.Len())
	}
	if tp.nodes[tp.Len()-1] != y {
		t.Errorf("root must be recorded last")
	}
	for i, n := range tp.nodes {
		if tp.index[n] != i {
			t.Errorf("index[%v] = %d, want %d", n, tp.index[n], i)
		}
		for _, o := range n.operands {
			if tp.index[o] >= i {
				t.Errorf("operand %v recorded after %v", o, n)
			}
		}
	}
}

func TestPropagate_DoesNotTouchNodes(t *testing.T) {
	x := New(3)
	y := x.Mul(x)

	local := record(y).propagate()
	if x.grad != 0 || y.grad != 0 {
		t.Errorf("propagate mutated grads: x=%v y=%v", x.grad, y.grad)
	}
	if local[0] != 6 || local[1] != 1 {
		t.Errorf("local = %v, want [6 1]", local)
	}
}
