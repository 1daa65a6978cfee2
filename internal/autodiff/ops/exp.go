package ops

import "math"

// expForward evaluates exp and the natural logarithm.
// log of a negative value is NaN, log(0) is -Inf.
func expForward(k Kind, x float64) float64 {
	if k == Exp {
		return math.Exp(x)
	}
	return math.Log(x)
}

// expBackward computes the input gradient for exp and log.
//
// Since d(exp(x))/dx = exp(x), and we already have exp(x) as output:
// grad_input = grad_output * output.
//
// For log, grad_input = grad_output / input.
func expBackward(k Kind, x, output, d float64) float64 {
	if k == Exp {
		return d * output
	}
	return d / x
}
