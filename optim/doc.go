// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides first-order optimizers for scalar functions.
//
// # Overview
//
// This package contains:
//   - SGD: gradient descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//   - Minimize: the build, backward, step loop
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/scalargrad/autodiff"
//	    "github.com/born-ml/scalargrad/optim"
//	)
//
//	func main() {
//	    // f(x, y) = (x-1)² + (y+2)²
//	    f := func(x []*autodiff.Value) *autodiff.Value {
//	        return x[0].Sub(1).Pow(2).Add(x[1].Add(2).Pow(2))
//	    }
//
//	    res, err := optim.Minimize(context.Background(), f, []float64{0, 0},
//	        optim.NewAdam(optim.AdamConfig{LR: 0.05}),
//	        optim.MinimizeConfig{Steps: 2000},
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res.X, res.Loss)
//	}
//
// # Graph reconstruction
//
// Leaf values are fixed once a graph is built. Minimize therefore calls the
// function once per step with fresh leaves holding the current parameters.
package optim
