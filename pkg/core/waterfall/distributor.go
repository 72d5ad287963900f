package waterfall

import (
	"fmt"
	"math"

	"deal_engine/pkg/core/metrics"
)

// cashTolerance treats sub-hundredth-of-a-cent residuals as zero so float
// drift cannot hold an event inside a satisfied stage.
const cashTolerance = 1e-6

// Distribute runs every distribution event through the tier stack and
// returns per-party totals with realized return metrics.
//
// Semantics (evaluated per event, strictly in order):
//  1. Return of capital — pro rata on unreturned balances.
//  2. Preferred return — cumulative accrued minus paid, pro rata.
//  3. GP catch-up — until the GP holds its target share of profits.
//  4. Promote tiers — cash flows at the tier split until the LP's running
//     IRR or equity multiple reaches the tier hurdle.
//  5. Remaining — residual at the final tier's fixed split.
//
// A stage that cannot be fully satisfied absorbs all remaining cash and ends
// the event; later stages are never partially advanced.
func Distribute(in Input) (*DistributionResult, error) {
	if err := in.Config.Validate(); err != nil {
		return nil, err
	}
	if in.LPContribution <= 0 {
		return nil, fmt.Errorf("LP contribution must be positive, got %.2f", in.LPContribution)
	}
	if in.GPContribution < 0 {
		return nil, fmt.Errorf("GP contribution cannot be negative, got %.2f", in.GPContribution)
	}
	if in.PeriodsPerYear <= 0 {
		in.PeriodsPerYear = 1
	}
	lastPeriod := 0
	for i, ev := range in.Events {
		if ev.Period <= lastPeriod && i > 0 || ev.Period < 1 {
			return nil, fmt.Errorf("events must have ascending periods starting at 1, event %d has period %d", i, ev.Period)
		}
		if ev.Cash < 0 {
			return nil, fmt.Errorf("event %d has negative cash %.2f", i, ev.Cash)
		}
		lastPeriod = ev.Period
	}

	st := &runState{
		in:           in,
		lpUnreturned: in.LPContribution,
		gpUnreturned: in.GPContribution,
		lpFlows:      make([]float64, lastPeriod+1),
		gpFlows:      make([]float64, lastPeriod+1),
	}
	st.lpFlows[0] = -in.LPContribution
	st.gpFlows[0] = -in.GPContribution

	// Walk periods so preferred return accrues between events, not just at
	// event dates.
	next := 0
	for p := 1; p <= lastPeriod; p++ {
		st.accruePref()
		for next < len(in.Events) && in.Events[next].Period == p {
			st.distributeEvent(in.Events[next])
			next++
		}
	}

	return st.result(), nil
}

// =============================================================================
// RUN STATE
// =============================================================================

type runState struct {
	in Input

	lpUnreturned, gpUnreturned   float64
	lpPrefAccrued, gpPrefAccrued float64
	lpROC, gpROC                 float64
	lpPrefPaid, gpPrefPaid       float64
	lpCatchUp, gpCatchUp         float64
	lpPromote, gpPromote         float64

	lpFlows, gpFlows []float64
	allocs           []Allocation
}

// accruePref adds one period of simple preferred return on each party's
// unreturned capital.
func (st *runState) accruePref() {
	ratePerPeriod := st.in.Config.PreferredRate / float64(st.in.PeriodsPerYear)
	st.lpPrefAccrued += st.lpUnreturned * ratePerPeriod
	st.gpPrefAccrued += st.gpUnreturned * ratePerPeriod
}

// distributeEvent pushes one event's cash through the stages.
func (st *runState) distributeEvent(ev Event) {
	cash := ev.Cash

	// Stage 1: Return of capital.
	cash = st.payProRata(ev.Period, StageReturnOfCapital, cash,
		st.lpUnreturned, st.gpUnreturned,
		func(lp, gp float64) {
			st.lpUnreturned -= lp
			st.gpUnreturned -= gp
			st.lpROC += lp
			st.gpROC += gp
		})
	if cash <= cashTolerance {
		return
	}

	// Stage 2: Preferred return (cumulative accrued minus paid).
	cash = st.payProRata(ev.Period, StagePreferredReturn, cash,
		st.lpPrefAccrued-st.lpPrefPaid, st.gpPrefAccrued-st.gpPrefPaid,
		func(lp, gp float64) {
			st.lpPrefPaid += lp
			st.gpPrefPaid += gp
		})
	if cash <= cashTolerance {
		return
	}

	// Stage 3: GP catch-up.
	if st.in.Config.CatchUpTarget > 0 {
		needed := st.catchUpCashNeeded()
		pay := math.Min(cash, needed)
		if pay > cashTolerance {
			gp := pay * st.in.Config.CatchUpShare
			lp := pay - gp
			st.lpCatchUp += lp
			st.gpCatchUp += gp
			st.record(ev.Period, StageCatchUp, lp, gp)
			cash -= pay
		}
		if cash <= cashTolerance {
			return
		}
	}

	// Stage 4: Promote tiers (all but the final remaining tier).
	for i, tier := range st.in.Config.Tiers[:len(st.in.Config.Tiers)-1] {
		capacity := st.tierCapacity(tier, ev.Period)
		pay := math.Min(cash, capacity)
		if pay > cashTolerance {
			lp := pay * tier.LPSplit
			gp := pay * tier.GPSplit
			st.lpPromote += lp
			st.gpPromote += gp
			st.record(ev.Period, Stage(fmt.Sprintf("%s_%d", StagePromote, i+1)), lp, gp)
			cash -= pay
		}
		if cash <= cashTolerance {
			return
		}
	}

	// Stage 5: Remaining.
	final := st.in.Config.Tiers[len(st.in.Config.Tiers)-1]
	lp := cash * final.LPSplit
	gp := cash * final.GPSplit
	st.lpPromote += lp
	st.gpPromote += gp
	st.record(ev.Period, StageRemaining, lp, gp)
}

// payProRata satisfies a stage owed to both parties, splitting available
// cash in proportion to what each is owed. Returns the cash left over.
func (st *runState) payProRata(period int, stage Stage, cash, owedLP, owedGP float64, apply func(lp, gp float64)) float64 {
	owed := owedLP + owedGP
	if owed <= cashTolerance || cash <= cashTolerance {
		return cash
	}
	pay := math.Min(cash, owed)
	lp := pay * owedLP / owed
	gp := pay - lp
	apply(lp, gp)
	st.record(period, stage, lp, gp)
	return cash - pay
}

// catchUpCashNeeded solves how many catch-up dollars restore the GP to its
// target profit share.
//
// With target t and GP catch-up share s, paying c dollars gives the GP s·c
// and the LP (1−s)·c, so the stage completes when
//
//	gpProfit + s·c = t/(1−t) · (lpProfit + (1−s)·c)
//
// where profits exclude return of capital and the GP's own preferred return.
// A non-positive denominator means the catch-up can never complete (the LP
// accrues profit faster than the GP catches up); the stage then absorbs
// everything, which Validate's share/target ranges make unreachable for
// sane configs.
func (st *runState) catchUpCashNeeded() float64 {
	t := st.in.Config.CatchUpTarget
	s := st.in.Config.CatchUpShare
	ratio := t / (1 - t)

	// Both sides count every profit dollar to date, so a catch-up in a
	// later event sees LP promote receipts from earlier events.
	lpProfit := st.lpPrefPaid + st.lpCatchUp + st.lpPromote
	gpProfit := st.gpCatchUp + st.gpPromote

	gap := ratio*lpProfit - gpProfit
	if gap <= 0 {
		return 0
	}
	denom := s - ratio*(1-s)
	if denom <= 0 {
		return math.Inf(1)
	}
	return gap / denom
}

// tierCapacity is how much total cash the tier can absorb before its LP
// hurdle is met, given the tier's LP split.
func (st *runState) tierCapacity(tier Tier, period int) float64 {
	var lpNeeded float64
	switch tier.Type {
	case TierEquityMultiple:
		lpNeeded = tier.Hurdle*st.in.LPContribution - st.lpDistributed()
	case TierIRRHurdle:
		lpNeeded = st.lpNeededForIRR(tier.Hurdle, period)
	}
	if lpNeeded <= 0 {
		return 0
	}
	return lpNeeded / tier.LPSplit
}

// lpNeededForIRR finds the smallest LP distribution at this period that
// lifts the LP's running annualized IRR to the hurdle. Bisection over the
// incremental amount, reusing the same solver that reports realized IRR so
// the mid-waterfall hurdle check and the final metric agree exactly.
func (st *runState) lpNeededForIRR(hurdle float64, period int) float64 {
	satisfied := func(extra float64) bool {
		flows := make([]float64, len(st.lpFlows))
		copy(flows, st.lpFlows)
		flows[period] += extra
		res := metrics.IRR(flows, st.in.PeriodsPerYear)
		return res.Converged && res.Annualized >= hurdle-1e-12
	}

	if satisfied(0) {
		return 0
	}

	hi := st.in.LPContribution
	if hi <= 0 {
		hi = 1
	}
	for i := 0; i < 200 && !satisfied(hi); i++ {
		hi *= 2
	}
	if !satisfied(hi) {
		return math.Inf(1)
	}

	lo := 0.0
	for i := 0; i < 100 && hi-lo > cashTolerance; i++ {
		mid := (lo + hi) / 2
		if satisfied(mid) {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi
}

// record books an allocation into the trace and each party's flow series.
func (st *runState) record(period int, stage Stage, lp, gp float64) {
	st.lpFlows[period] += lp
	st.gpFlows[period] += gp
	st.allocs = append(st.allocs, Allocation{Period: period, Stage: string(stage), LP: lp, GP: gp})
}

// lpDistributed is cumulative LP distributions across all stages.
func (st *runState) lpDistributed() float64 {
	return st.lpROC + st.lpPrefPaid + st.lpCatchUp + st.lpPromote
}

func (st *runState) gpDistributed() float64 {
	return st.gpROC + st.gpPrefPaid + st.gpCatchUp + st.gpPromote
}

// result assembles the immutable outcome.
func (st *runState) result() *DistributionResult {
	lpTotal := st.lpDistributed()
	gpTotal := st.gpDistributed()
	return &DistributionResult{
		LP: PartyTotals{
			Contributed:     st.in.LPContribution,
			ReturnOfCapital: st.lpROC,
			Preferred:       st.lpPrefPaid,
			CatchUp:         st.lpCatchUp,
			Promote:         st.lpPromote,
			Total:           lpTotal,
			IRR:             metrics.IRR(st.lpFlows, st.in.PeriodsPerYear),
			EquityMultiple:  metrics.EquityMultiple(lpTotal, st.in.LPContribution),
		},
		GP: PartyTotals{
			Contributed:     st.in.GPContribution,
			ReturnOfCapital: st.gpROC,
			Preferred:       st.gpPrefPaid,
			CatchUp:         st.gpCatchUp,
			Promote:         st.gpPromote,
			Total:           gpTotal,
			IRR:             metrics.IRR(st.gpFlows, st.in.PeriodsPerYear),
			EquityMultiple:  metrics.EquityMultiple(gpTotal, st.in.GPContribution),
		},
		Allocations: st.allocs,
	}
}
