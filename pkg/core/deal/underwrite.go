package deal

import (
	"fmt"
	"math"

	"deal_engine/pkg/core/amort"
	"deal_engine/pkg/core/metrics"
	"deal_engine/pkg/core/proforma"
	"deal_engine/pkg/core/validate"
	"deal_engine/pkg/core/waterfall"
)

// stackTolerance is the sources-vs-uses reconciliation tolerance in dollars.
const stackTolerance = 0.01

// Underwrite runs the full deal model. It never panics and never returns a
// Go error: validation failures come back in DealResult.Errors so the caller
// can render them inline (the computation is deterministic, so retrying a
// failed input is pointless).
func Underwrite(in DealInput) *DealResult {
	res := &DealResult{Name: in.Name}

	// -------------------------------------------------------------------------
	// Validation gate: collect every input problem before touching math.
	// -------------------------------------------------------------------------
	if err := in.Assumptions.Validate(); err != nil {
		res.Errors = append(res.Errors, err.Error())
	}
	if in.Loan != nil {
		if err := in.Loan.Validate(); err != nil {
			res.Errors = append(res.Errors, err.Error())
		}
	}
	if in.Waterfall != nil {
		if err := in.Waterfall.Validate(); err != nil {
			res.Errors = append(res.Errors, err.Error())
		}
		if in.GPEquityShare < 0 || in.GPEquityShare >= 1 {
			res.Errors = append(res.Errors, fmt.Sprintf("GP equity share must be in [0,1), got %.4f", in.GPEquityShare))
		}
	}
	if in.Reserves < 0 {
		res.Errors = append(res.Errors, fmt.Sprintf("reserves cannot be negative, got %.2f", in.Reserves))
	}
	if res.Failed() {
		return res
	}

	// -------------------------------------------------------------------------
	// Debt schedule
	// -------------------------------------------------------------------------
	var sched *amort.Schedule
	if in.Loan != nil {
		s, err := amort.BuildSchedule(*in.Loan)
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
			return res
		}
		sched = s
		if in.Loan.TermMonths < in.Assumptions.HoldYears*12 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("loan matures in month %d, before the %d-year hold ends", in.Loan.TermMonths, in.Assumptions.HoldYears))
		}
	}

	// -------------------------------------------------------------------------
	// Capital stack: equity is sized as the residual so sources always
	// reconcile to uses. A loan bigger than total uses is an input error.
	// -------------------------------------------------------------------------
	stack := buildStack(in)
	if stack.TotalEquity <= 0 {
		res.Errors = append(res.Errors, fmt.Sprintf("loan amount %.2f exceeds total uses %.2f: no equity requirement", stack.LoanAmount, stack.TotalUses))
		return res
	}
	check := validate.CheckSourcesUses(stack.LoanAmount, stack.LPEquity, stack.GPEquity,
		stack.PurchasePrice, stack.ClosingCosts, stack.LoanFees, stack.Reserves, stackTolerance)
	if !check.IsBalanced {
		res.Errors = append(res.Errors, fmt.Sprintf("capital stack does not balance: sources %.2f vs uses %.2f", check.TotalSources, check.TotalUses))
		return res
	}
	res.CapitalStack = stack

	// -------------------------------------------------------------------------
	// Projection
	// -------------------------------------------------------------------------
	pf, err := proforma.Project(in.Assumptions, sched)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}
	res.Proforma = pf
	res.Schedule = sched
	res.Warnings = append(res.Warnings, validate.ScanProforma(pf, validate.DefaultDSCRThreshold)...)

	// -------------------------------------------------------------------------
	// Return metrics on the equity cash-flow series
	// -------------------------------------------------------------------------
	res.Metrics = computeMetrics(in, stack, pf)
	if !res.Metrics.IRR.Converged {
		res.Warnings = append(res.Warnings, fmt.Sprintf("IRR undefined: %s", res.Metrics.IRR.Reason))
	} else if res.Metrics.IRR.MultipleRoots {
		res.Warnings = append(res.Warnings, "IRR may not be unique: equity cash flows change sign more than once")
	}

	// -------------------------------------------------------------------------
	// Syndication waterfall
	// -------------------------------------------------------------------------
	if in.Waterfall != nil {
		dist, err := waterfall.Distribute(waterfall.Input{
			LPContribution: stack.LPEquity,
			GPContribution: stack.GPEquity,
			PeriodsPerYear: periodsPerYear(pf.Frequency),
			Events:         distributionEvents(pf),
			Config:         *in.Waterfall,
		})
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
			return res
		}
		res.Distribution = dist
	}

	return res
}

// buildStack assembles sources and uses at close.
func buildStack(in DealInput) *CapitalStack {
	stack := &CapitalStack{
		PurchasePrice: in.Assumptions.PurchasePrice,
		ClosingCosts:  in.Assumptions.ClosingCosts(),
		Reserves:      in.Reserves,
	}
	if in.Loan != nil {
		stack.LoanAmount = in.Loan.Principal
		stack.LoanFees = in.Loan.OriginationFee()
	}
	stack.TotalUses = stack.PurchasePrice + stack.ClosingCosts + stack.LoanFees + stack.Reserves
	stack.TotalEquity = stack.TotalUses - stack.LoanAmount
	stack.GPEquity = stack.TotalEquity * in.GPEquityShare
	stack.LPEquity = stack.TotalEquity - stack.GPEquity
	stack.TotalSources = stack.LoanAmount + stack.LPEquity + stack.GPEquity
	return stack
}

// computeMetrics derives the headline numbers from the equity flow series.
func computeMetrics(in DealInput, stack *CapitalStack, pf *proforma.Proforma) *DealMetrics {
	ppy := periodsPerYear(pf.Frequency)

	flows := make([]float64, len(pf.Periods)+1)
	flows[0] = -stack.TotalEquity
	for i, row := range pf.Periods {
		flows[i+1] = row.NetCashFlow
	}

	// Year-one figures, at annual scale regardless of projection frequency.
	var y1NOI, y1DebtService, y1NetCF float64
	for i := 0; i < ppy && i < len(pf.Periods); i++ {
		y1NOI += pf.Periods[i].NOI
		y1DebtService += pf.Periods[i].DebtService
		net := pf.Periods[i].NetCashFlow
		if i == len(pf.Periods)-1 {
			net -= pf.Sale.NetSaleProceeds // One-year hold: keep CoC operating-only
		}
		y1NetCF += net
	}

	var totalDistributions float64
	for _, row := range pf.Periods {
		if row.NetCashFlow > 0 {
			totalDistributions += row.NetCashFlow
		}
	}

	dscr := metrics.DSCR(y1NOI, y1DebtService)
	periodicDiscount := in.DiscountRate
	if ppy > 1 && periodicDiscount != 0 {
		periodicDiscount = periodicRate(in.DiscountRate, ppy)
	}

	return &DealMetrics{
		GoingInCapRate:    metrics.CapRate(y1NOI, stack.PurchasePrice),
		YearOneDSCR:       dscr,
		DSCRDisplay:       metrics.FormatDSCR(dscr),
		YearOneCashOnCash: metrics.CashOnCash(y1NetCF, stack.TotalEquity),
		EquityMultiple:    metrics.EquityMultiple(totalDistributions, stack.TotalEquity),
		IRR:               metrics.IRR(flows, ppy),
		NPV:               metrics.NPV(periodicDiscount, flows),
	}
}

// distributionEvents converts positive periodic cash flows into waterfall
// events. Negative periods distribute nothing (operating shortfalls are the
// sponsor's problem, not a clawback).
func distributionEvents(pf *proforma.Proforma) []waterfall.Event {
	events := make([]waterfall.Event, 0, len(pf.Periods))
	for _, row := range pf.Periods {
		if row.NetCashFlow > 0 {
			events = append(events, waterfall.Event{Period: row.Period, Cash: row.NetCashFlow})
		}
	}
	return events
}

func periodsPerYear(freq proforma.Frequency) int {
	if freq == proforma.Monthly {
		return 12
	}
	return 1
}

// periodicRate converts an annual discount rate to the projection interval.
//
// FORMULA: r_p = (1 + r_annual)^(1/ppy) - 1
func periodicRate(annual float64, ppy int) float64 {
	return math.Pow(1+annual, 1.0/float64(ppy)) - 1
}
