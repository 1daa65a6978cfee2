package ops

import "math"

// hyperbolicForward evaluates sinh, cosh, tanh and coth.
func hyperbolicForward(k Kind, x float64) float64 {
	switch k {
	case Sinh:
		return math.Sinh(x)
	case Cosh:
		return math.Cosh(x)
	case Tanh:
		return math.Tanh(x)
	default: // Coth
		return 1 / math.Tanh(x)
	}
}

// hyperbolicBackward returns d * hyperbolic'(x).
//
//	sinh' = cosh          cosh' = sinh
//	tanh' = 1 - tanh²     coth' = -csch²
//
// tanh reuses the forward output.
func hyperbolicBackward(k Kind, x, output, d float64) float64 {
	switch k {
	case Sinh:
		return d * math.Cosh(x)
	case Cosh:
		return d * math.Sinh(x)
	case Tanh:
		return d * (1 - output*output)
	default: // Coth
		s := math.Sinh(x)
		return -d / (s * s)
	}
}
