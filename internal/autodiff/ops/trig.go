package ops

import "math"

// trigForward evaluates sin, cos, tan and cot.
// cot(x) is computed as 1/tan(x), so cot(0) is +Inf.
func trigForward(k Kind, x float64) float64 {
	switch k {
	case Sin:
		return math.Sin(x)
	case Cos:
		return math.Cos(x)
	case Tan:
		return math.Tan(x)
	default: // Cot
		return 1 / math.Tan(x)
	}
}

// trigBackward returns d * trig'(x).
//
//	sin' = cos    cos' = -sin
//	tan' = sec²   cot' = -csc²
func trigBackward(k Kind, x, d float64) float64 {
	switch k {
	case Sin:
		return d * math.Cos(x)
	case Cos:
		return -d * math.Sin(x)
	case Tan:
		c := math.Cos(x)
		return d / (c * c)
	default: // Cot
		s := math.Sin(x)
		return -d / (s * s)
	}
}
