// Package metrics provides deterministic return-metric calculations over
// ordered cash-flow series: NPV, IRR root-finding, and derived ratios.
package metrics

import (
	"math"
)

// =============================================================================
// SOLVER BUDGET
// =============================================================================

const (
	// MaxIterations bounds both the Newton and bisection phases.
	MaxIterations = 100

	// NPVTolerance is the convergence criterion: |NPV(r)| below this is a root.
	NPVTolerance = 1e-7

	// bracketLow / bracketHigh bound the bisection search. -99.99% to +1000%
	// per period covers every economically meaningful deal outcome.
	bracketLow  = -0.9999
	bracketHigh = 10.0
)

// IRRResult reports the outcome of an IRR solve. A non-converged result
// carries a Reason and must not be read as a rate.
type IRRResult struct {
	Rate       float64 `json:"rate"`       // Periodic rate (per series interval)
	Annualized float64 `json:"annualized"` // Rate compounded to a yearly figure
	Converged  bool    `json:"converged"`
	Iterations int     `json:"iterations"`
	Reason     string  `json:"reason,omitempty"` // Populated when Converged is false

	// MultipleRoots is set when the series changes sign more than once. The
	// returned rate is a genuine root, but by Descartes' rule it may not be
	// the only one; callers should surface the ambiguity.
	MultipleRoots bool `json:"multiple_roots,omitempty"`
}

// =============================================================================
// NPV
// =============================================================================

// NPV calculates net present value of a cash-flow series at a discount rate.
//
// FORMULA: NPV = Σ [ CF_t / (1 + r)^t ]   for t = 0..n-1
//
// The first flow is at t=0 (undiscounted); this matches the underwriting
// convention of an initial equity outflow followed by periodic receipts.
func NPV(rate float64, flows []float64) float64 {
	var pv float64
	for t, cf := range flows {
		pv += cf / math.Pow(1+rate, float64(t))
	}
	return pv
}

// npvDerivative is dNPV/dr, used by the Newton phase.
//
// FORMULA: dNPV/dr = Σ [ -t · CF_t / (1 + r)^(t+1) ]
func npvDerivative(rate float64, flows []float64) float64 {
	var d float64
	for t, cf := range flows {
		if t == 0 {
			continue
		}
		d -= float64(t) * cf / math.Pow(1+rate, float64(t+1))
	}
	return d
}

// =============================================================================
// IRR ROOT-FINDING
// =============================================================================

// IRR solves NPV(r) = 0 for a cash-flow series whose first element is the
// initial outflow. Periods per year converts the periodic root into an
// annualized rate (12 for monthly series, 1 for annual).
//
// Strategy: Newton-Raphson from a 10% seed, falling back to bisection when
// the derivative degenerates or Newton leaves the bracket. A series with no
// sign change has no root and is reported as non-converged rather than
// guessed at; a series with more than one sign change may have several roots,
// so the result carries MultipleRoots and callers must not treat the rate as
// unique.
func IRR(flows []float64, periodsPerYear int) IRRResult {
	if len(flows) < 2 {
		return IRRResult{Reason: "series too short: need an outflow and at least one subsequent flow"}
	}
	changes := signChanges(flows)
	if changes == 0 {
		return IRRResult{Reason: "no sign change in cash-flow series: IRR undefined"}
	}
	multiple := changes > 1

	// Newton phase.
	rate := 0.10
	for i := 0; i < MaxIterations; i++ {
		v := NPV(rate, flows)
		if math.Abs(v) < NPVTolerance {
			return converged(rate, i+1, periodsPerYear, multiple)
		}
		d := npvDerivative(rate, flows)
		if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			break
		}
		next := rate - v/d
		if next <= bracketLow || next >= bracketHigh || math.IsNaN(next) {
			break
		}
		rate = next
	}

	// Bisection fallback. Guaranteed progress as long as the bracket spans
	// a sign change of NPV.
	lo, hi := bracketLow, bracketHigh
	vLo := NPV(lo, flows)
	vHi := NPV(hi, flows)
	if vLo*vHi > 0 {
		return IRRResult{Reason: "solver did not converge: NPV does not cross zero in bracket (possible multiple roots)"}
	}
	for i := 0; i < MaxIterations; i++ {
		mid := (lo + hi) / 2
		vMid := NPV(mid, flows)
		if math.Abs(vMid) < NPVTolerance {
			return converged(mid, i+1, periodsPerYear, multiple)
		}
		if vLo*vMid < 0 {
			hi = mid
		} else {
			lo = mid
			vLo = vMid
		}
	}
	return IRRResult{Reason: "solver did not converge within iteration budget"}
}

// converged packages a root with its annualized equivalent.
//
// FORMULA: annual = (1 + r_periodic)^periodsPerYear - 1
func converged(rate float64, iters, periodsPerYear int, multipleRoots bool) IRRResult {
	annual := rate
	if periodsPerYear > 1 {
		annual = math.Pow(1+rate, float64(periodsPerYear)) - 1
	}
	return IRRResult{
		Rate:          rate,
		Annualized:    annual,
		Converged:     true,
		Iterations:    iters,
		MultipleRoots: multipleRoots,
	}
}

// signChanges counts sign transitions in the series, skipping zero flows.
// Zero changes means NPV(r) is monotone in sign and has no root; more than
// one means the polynomial can have as many roots as there are changes.
func signChanges(flows []float64) int {
	changes := 0
	prev := 0.0
	for _, cf := range flows {
		if cf == 0 {
			continue
		}
		if prev != 0 && (cf > 0) != (prev > 0) {
			changes++
		}
		prev = cf
	}
	return changes
}
