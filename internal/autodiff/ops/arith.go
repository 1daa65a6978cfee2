package ops

import "math"

// arithForward evaluates the arithmetic family.
//
//	add: a + b        sub: a - b        mul: a * b
//	div: a / b        pow: a ^ n        powv: a ^ b
//	neg: -a
func arithForward(op Op, in []float64) float64 {
	switch op.Kind {
	case Add:
		return in[0] + in[1]
	case Sub:
		return in[0] - in[1]
	case Mul:
		return in[0] * in[1]
	case Div:
		return in[0] / in[1]
	case Pow:
		return math.Pow(in[0], op.Exponent)
	case PowValue:
		return math.Pow(in[0], in[1])
	default: // Neg
		return -in[0]
	}
}

// arithBackward applies the chain rule for the arithmetic family.
//
// Backward pass (d = outputGrad):
//   - add:  grad_a = d,           grad_b = d
//   - sub:  grad_a = d,           grad_b = -d
//   - mul:  grad_a = d*b,         grad_b = d*a
//   - div:  grad_a = d/b,         grad_b = -d*a/b²
//   - pow:  grad_a = d*n*a^(n-1)
//   - powv: grad_a = d*b*a^(b-1), grad_b = d*a^b*ln(a) for a > 0, else 0
//   - neg:  grad_a = -d
func arithBackward(op Op, in []float64, output, d float64) []float64 {
	switch op.Kind {
	case Add:
		return []float64{d, d}
	case Sub:
		return []float64{d, -d}
	case Mul:
		a, b := in[0], in[1]
		return []float64{d * b, d * a}
	case Div:
		a, b := in[0], in[1]
		return []float64{d / b, -d * a / (b * b)}
	case Pow:
		n := op.Exponent
		return []float64{d * n * math.Pow(in[0], n-1)}
	case PowValue:
		a, b := in[0], in[1]
		gradA := d * b * math.Pow(a, b-1)
		// ln(a) is undefined for a <= 0; the exponent gets no gradient there.
		gradB := 0.0
		if a > 0 {
			gradB = d * output * math.Log(a)
		}
		return []float64{gradA, gradB}
	default: // Neg
		return []float64{-d}
	}
}
