// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"errors"
	"time"
)

// Result holds the result of an iterative solve.
type Result struct {
	// X is the approximate solution.
	X Vector
	// Stats holds the statistics of the solve.
	Stats Stats
}

// Stats holds statistics about an iterative solve.
type Stats struct {
	// Iterations is the number of iterations performed. For restarted
	// methods it counts inner iterations across all restarts.
	Iterations int
	// MatVec is the number of matrix-vector products computed.
	MatVec int
	// PSolve is the number of preconditioner applications.
	PSolve int
	// ResidualNorm is the residual norm reported by the solver when it
	// returned. See the documentation of the individual solvers for its
	// exact meaning.
	ResidualNorm float64
	// StartTime is an approximate time when the solve was started.
	StartTime time.Time
	// Runtime is an approximate duration of the solve.
	Runtime time.Duration
}

// Progress describes the state of a solve at a monitoring point.
type Progress struct {
	// Restart is the index of the current restart cycle, zero for methods
	// that do not restart.
	Restart int
	// Iteration is the number of iterations performed so far.
	Iteration int
	// ResidualNorm is the current estimate of the relative residual norm.
	ResidualNorm float64
}

// ErrIterationLimit is returned when a solver exhausts its iteration budget
// without reducing the residual below its tolerance.
var ErrIterationLimit = errors.New("iterative: iteration limit reached")

const (
	// dlamchE is the machine roundoff unit, 2^{-53} for float64.
	dlamchE = 1.0 / (1 << 53)
	// machEps is the distance from 1 to the next larger float64.
	machEps = 2 * dlamchE
)
