package deal

import (
	"math"
	"strings"
	"testing"

	"deal_engine/pkg/core/amort"
	"deal_engine/pkg/core/proforma"
	"deal_engine/pkg/core/waterfall"
)

// referenceDeal is the $1.0M / 70% LTV / 6% 30yr / 5-year hold case used
// throughout the engine's verification tooling.
func referenceDeal() DealInput {
	return DealInput{
		Name: "Reference Deal",
		Assumptions: proforma.Assumptions{
			PurchasePrice:     1_000_000,
			ClosingCostPct:    0.02,
			GrossIncome:       100_000,
			VacancyPct:        0.05,
			OperatingExpenses: 25_000,
			IncomeEscalation:  proforma.Escalation{AnnualRate: 0.08},
			ExpenseEscalation: proforma.Escalation{AnnualRate: 0.08},
			HoldYears:         5,
			Frequency:         proforma.Annual,
			ExitCapRate:       0.055,
			SaleCostPct:       0.02,
		},
		Loan: &amort.LoanTerms{
			Principal:         700_000,
			AnnualRate:        0.06,
			AmortMonths:       360,
			TermMonths:        360,
			OriginationFeePct: 0.01,
		},
		GPEquityShare: 0.10,
		DiscountRate:  0.08,
		Waterfall: &waterfall.Config{
			PreferredRate: 0.08,
			CatchUpShare:  1.0,
			CatchUpTarget: 0.20,
			Tiers: []waterfall.Tier{
				{Type: waterfall.TierIRRHurdle, Hurdle: 0.12, LPSplit: 0.80, GPSplit: 0.20},
				{Type: waterfall.TierEquityMultiple, Hurdle: 2.0, LPSplit: 0.70, GPSplit: 0.30},
				{Type: waterfall.TierRemaining, LPSplit: 0.50, GPSplit: 0.50},
			},
		},
	}
}

func TestReferenceDealUnderwrites(t *testing.T) {
	res := Underwrite(referenceDeal())
	if res.Failed() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}

	// Uses: 1,000,000 + 20,000 closing + 7,000 loan fee = 1,027,000.
	// Equity is the residual: 327,000, split 90/10 LP/GP.
	stack := res.CapitalStack
	if math.Abs(stack.TotalUses-1_027_000) > 0.01 {
		t.Errorf("Total uses = %.2f, want 1027000", stack.TotalUses)
	}
	if math.Abs(stack.TotalEquity-327_000) > 0.01 {
		t.Errorf("Total equity = %.2f, want 327000", stack.TotalEquity)
	}
	if math.Abs(stack.GPEquity-32_700) > 0.01 {
		t.Errorf("GP equity = %.2f, want 32700", stack.GPEquity)
	}
	if math.Abs(stack.TotalSources-stack.TotalUses) > 0.01 {
		t.Errorf("sources %.2f != uses %.2f", stack.TotalSources, stack.TotalUses)
	}

	// Month-1 interest = P * r/12 = 3500.
	if math.Abs(res.Schedule.Rows[0].Interest-3500) > 0.01 {
		t.Errorf("Month-1 interest = %.2f, want 3500", res.Schedule.Rows[0].Interest)
	}

	// Year-1 NOI = 95,000 effective - 25,000 opex = 70,000.
	// Going-in cap = 70,000 / 1,000,000 = 7%.
	m := res.Metrics
	if math.Abs(m.GoingInCapRate-0.07) > 1e-9 {
		t.Errorf("Going-in cap = %f, want 0.07", m.GoingInCapRate)
	}

	// Annual debt service = 12 * level payment on 700k at 6%/360.
	wantDSCR := 70_000 / (12 * amort.MonthlyPayment(700_000, 0.06, 360))
	if math.Abs(m.YearOneDSCR-wantDSCR) > 1e-9 {
		t.Errorf("DSCR = %f, want %f", m.YearOneDSCR, wantDSCR)
	}
	if !strings.HasSuffix(m.DSCRDisplay, "x") {
		t.Errorf("DSCR display = %q, want a multiple", m.DSCRDisplay)
	}

	// A profitable levered exit: IRR converges well above zero.
	if !m.IRR.Converged {
		t.Fatalf("IRR did not converge: %s", m.IRR.Reason)
	}
	if m.IRR.Annualized <= 0 {
		t.Errorf("IRR = %f, want positive", m.IRR.Annualized)
	}
	if m.EquityMultiple <= 1.0 {
		t.Errorf("EM = %f, want > 1.0", m.EquityMultiple)
	}

	// Waterfall conserves cash: LP + GP totals equal the distributed flows.
	d := res.Distribution
	if d == nil {
		t.Fatal("expected a distribution for a syndicated deal")
	}
	var distributed float64
	for _, row := range res.Proforma.Periods {
		if row.NetCashFlow > 0 {
			distributed += row.NetCashFlow
		}
	}
	if math.Abs(d.LP.Total+d.GP.Total-distributed) > 1e-6 {
		t.Errorf("waterfall leaked cash: LP %.2f + GP %.2f != %.2f", d.LP.Total, d.GP.Total, distributed)
	}
	if d.LP.EquityMultiple < 1.0 {
		t.Errorf("LP EM = %.2f on a profitable exit, want >= 1.0", d.LP.EquityMultiple)
	}
}

func TestUnleveredCashOnCashEqualsCapRate(t *testing.T) {
	// All cash, no closing costs, no reserves: equity = price and year-1
	// net CF = NOI, so cash-on-cash collapses to the cap rate.
	in := DealInput{
		Name: "All Cash",
		Assumptions: proforma.Assumptions{
			PurchasePrice:     1_000_000,
			GrossIncome:       100_000,
			OperatingExpenses: 30_000,
			HoldYears:         5,
			Frequency:         proforma.Annual,
			ExitCapRate:       0.06,
		},
	}
	res := Underwrite(in)
	if res.Failed() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}

	m := res.Metrics
	if math.Abs(m.YearOneCashOnCash-m.GoingInCapRate) > 1e-9 {
		t.Errorf("unlevered CoC %f should equal cap rate %f", m.YearOneCashOnCash, m.GoingInCapRate)
	}
	if m.DSCRDisplay != "N/A" {
		t.Errorf("unlevered DSCR display = %q, want N/A", m.DSCRDisplay)
	}
	if res.Distribution != nil {
		t.Error("non-syndicated deal should not produce a distribution")
	}
}

func TestValidationErrorsCollected(t *testing.T) {
	// Three independent problems; all must be reported in one pass.
	in := DealInput{
		Assumptions: proforma.Assumptions{
			PurchasePrice: -5, // bad
			HoldYears:     5,
			ExitCapRate:   0.06,
			GrossIncome:   100_000,
		},
		Loan:      &amort.LoanTerms{Principal: 0, AnnualRate: 0.06, AmortMonths: 360, TermMonths: 360}, // bad
		Reserves:  -100,                                                                               // bad
		Waterfall: &waterfall.Config{},                                                                // bad: no tiers
	}
	res := Underwrite(in)
	if !res.Failed() {
		t.Fatal("expected failure")
	}
	if len(res.Errors) < 4 {
		t.Errorf("expected all 4 problems collected, got %d: %v", len(res.Errors), res.Errors)
	}
	if res.Metrics != nil || res.Proforma != nil {
		t.Error("failed run must not carry computed sections")
	}
}

func TestLoanExceedingUsesFails(t *testing.T) {
	in := DealInput{
		Assumptions: proforma.Assumptions{
			PurchasePrice:     1_000_000,
			GrossIncome:       100_000,
			OperatingExpenses: 30_000,
			HoldYears:         5,
			ExitCapRate:       0.06,
		},
		Loan: &amort.LoanTerms{Principal: 2_000_000, AnnualRate: 0.06, AmortMonths: 360, TermMonths: 360},
	}
	res := Underwrite(in)
	if !res.Failed() {
		t.Fatal("expected failure when the loan exceeds total uses")
	}
}

func TestThinCoverageWarns(t *testing.T) {
	// 70k NOI against ~86k of debt service: DSCR ~0.81 and negative
	// operating cash flow, both surfaced as warnings, neither fatal.
	in := DealInput{
		Assumptions: proforma.Assumptions{
			PurchasePrice:     1_500_000,
			GrossIncome:       100_000,
			VacancyPct:        0.05,
			OperatingExpenses: 25_000,
			HoldYears:         5,
			Frequency:         proforma.Annual,
			ExitCapRate:       0.055,
		},
		Loan: &amort.LoanTerms{Principal: 1_200_000, AnnualRate: 0.06, AmortMonths: 360, TermMonths: 360},
	}
	res := Underwrite(in)
	if res.Failed() {
		t.Fatalf("thin coverage should warn, not fail: %v", res.Errors)
	}

	var sawDSCR, sawNegative bool
	for _, w := range res.Warnings {
		if strings.Contains(w, "DSCR") {
			sawDSCR = true
		}
		if strings.Contains(w, "negative operating cash flow") {
			sawNegative = true
		}
	}
	if !sawDSCR {
		t.Errorf("expected a DSCR warning, got %v", res.Warnings)
	}
	if !sawNegative {
		t.Errorf("expected a negative cash flow warning, got %v", res.Warnings)
	}
}

func TestLoanMaturingBeforeHoldWarns(t *testing.T) {
	in := referenceDeal()
	in.Loan.TermMonths = 36 // 5-year hold

	res := Underwrite(in)
	if res.Failed() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	var saw bool
	for _, w := range res.Warnings {
		if strings.Contains(w, "matures") {
			saw = true
		}
	}
	if !saw {
		t.Errorf("expected a maturity warning, got %v", res.Warnings)
	}
}

func TestMonthlyAndAnnualAgreeOnStack(t *testing.T) {
	// The capital stack is frequency-independent.
	annual := referenceDeal()
	monthly := referenceDeal()
	monthly.Assumptions.Frequency = proforma.Monthly

	ra := Underwrite(annual)
	rm := Underwrite(monthly)
	if ra.Failed() || rm.Failed() {
		t.Fatalf("unexpected errors: %v / %v", ra.Errors, rm.Errors)
	}
	if math.Abs(ra.CapitalStack.TotalEquity-rm.CapitalStack.TotalEquity) > 1e-9 {
		t.Errorf("equity differs by frequency: %f vs %f", ra.CapitalStack.TotalEquity, rm.CapitalStack.TotalEquity)
	}
	if len(rm.Proforma.Periods) != 60 {
		t.Errorf("monthly projection has %d periods, want 60", len(rm.Proforma.Periods))
	}
}
