package optim

// SGD implements gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Momentum helps accelerate SGD in relevant directions and dampens oscillations.
type SGD struct {
	lr         float64
	momentum   float64
	velocities []float64
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	sgd := optim.NewSGD(optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		lr:       config.LR,
		momentum: config.Momentum,
	}
}

// Step performs a single optimization step.
//
// Panics if params and grads differ in length.
func (s *SGD) Step(params, grads []float64) {
	checkLengths(params, grads)

	if s.momentum == 0 {
		for i, g := range grads {
			params[i] -= s.lr * g
		}
		return
	}

	s.velocities = grow(s.velocities, len(params))
	for i, g := range grads {
		s.velocities[i] = s.momentum*s.velocities[i] + g
		params[i] -= s.lr * s.velocities[i]
	}
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// Velocities returns a copy of the momentum buffers, one per parameter.
// It is empty until the first step with momentum.
func (s *SGD) Velocities() []float64 {
	return append([]float64(nil), s.velocities...)
}
