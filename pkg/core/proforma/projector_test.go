package proforma

import (
	"math"
	"reflect"
	"testing"

	"deal_engine/pkg/core/amort"
)

func baseAssumptions() Assumptions {
	return Assumptions{
		PurchasePrice:     1000000,
		GrossIncome:       100000,
		VacancyPct:        0,
		OperatingExpenses: 40000,
		IncomeEscalation:  Escalation{AnnualRate: 0.10},
		HoldYears:         3,
		Frequency:         Annual,
		ExitCapRate:       0.06,
	}
}

func TestAnnualEscalationEndOfPeriod(t *testing.T) {
	pf, err := Project(baseAssumptions(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// End-of-period convention: year 1 at base, 10% steps after.
	// Y1: gross 100000, NOI 60000
	// Y2: gross 110000, NOI 70000
	// Y3: gross 121000, NOI 81000
	wantNOI := []float64{60000, 70000, 81000}
	for i, want := range wantNOI {
		if math.Abs(pf.Periods[i].NOI-want) > 1e-6 {
			t.Errorf("Year %d NOI = %f, want %f", i+1, pf.Periods[i].NOI, want)
		}
	}

	// Forward NOI (buyer's year 1): gross 133100 - 40000 = 93100.
	// Sale = 93100 / 0.06 = 1551666.67, no costs, no payoff.
	if math.Abs(pf.Sale.ForwardNOI-93100) > 1e-6 {
		t.Errorf("Forward NOI = %f, want 93100", pf.Sale.ForwardNOI)
	}
	wantSale := 93100.0 / 0.06
	if math.Abs(pf.Sale.NetSaleProceeds-wantSale) > 1e-6 {
		t.Errorf("Net proceeds = %f, want %f", pf.Sale.NetSaleProceeds, wantSale)
	}

	// Sale proceeds land in the final period's net cash flow.
	wantFinal := 81000 + wantSale
	if math.Abs(pf.Periods[2].NetCashFlow-wantFinal) > 1e-6 {
		t.Errorf("Final period net CF = %f, want %f", pf.Periods[2].NetCashFlow, wantFinal)
	}
}

func TestBeginningOfPeriodConvention(t *testing.T) {
	a := baseAssumptions()
	a.IncomeEscalation.Convention = BeginningOfPeriod

	pf, err := Project(a, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Year 1 is already escalated once: gross 110000, NOI 70000.
	if math.Abs(pf.Periods[0].NOI-70000) > 1e-6 {
		t.Errorf("Year 1 NOI = %f, want 70000", pf.Periods[0].NOI)
	}
}

func TestMonthlyProjectionAnnualSteps(t *testing.T) {
	a := baseAssumptions()
	a.Frequency = Monthly

	pf, err := Project(a, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pf.Periods) != 36 {
		t.Fatalf("expected 36 periods, got %d", len(pf.Periods))
	}

	// Annual escalation steps once per year: months 1-12 flat, month 13 +10%.
	m1 := pf.Periods[0].GrossIncome
	m12 := pf.Periods[11].GrossIncome
	m13 := pf.Periods[12].GrossIncome
	if math.Abs(m1-100000.0/12) > 1e-9 {
		t.Errorf("Month 1 gross = %f, want %f", m1, 100000.0/12)
	}
	if math.Abs(m12-m1) > 1e-9 {
		t.Errorf("Month 12 should equal month 1: %f vs %f", m12, m1)
	}
	if math.Abs(m13-m1*1.10) > 1e-9 {
		t.Errorf("Month 13 gross = %f, want %f", m13, m1*1.10)
	}
}

func TestMonthlyEscalationCompounds(t *testing.T) {
	a := baseAssumptions()
	a.Frequency = Monthly
	a.IncomeEscalation = Escalation{AnnualRate: 0.10, Frequency: Monthly}

	pf, err := Project(a, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Month-equivalent rate g = 1.1^(1/12)-1; month 13 carries 12 steps,
	// which compounds back to exactly +10% over month 1.
	m1 := pf.Periods[0].GrossIncome
	m13 := pf.Periods[12].GrossIncome
	if math.Abs(m13-m1*1.10) > 1e-6 {
		t.Errorf("12 monthly steps should equal one annual step: %f vs %f", m13, m1*1.10)
	}

	g := math.Pow(1.10, 1.0/12.0) - 1
	m2 := pf.Periods[1].GrossIncome
	if math.Abs(m2-m1*(1+g)) > 1e-9 {
		t.Errorf("Month 2 gross = %f, want %f", m2, m1*(1+g))
	}
}

func TestFreeRentMonthly(t *testing.T) {
	a := baseAssumptions()
	a.Frequency = Monthly
	a.FreeRentMonths = 3

	pf, err := Project(a, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if pf.Periods[i].GrossIncome != 0 {
			t.Errorf("Month %d should be free rent, got %f", i+1, pf.Periods[i].GrossIncome)
		}
		// Expenses still run during free rent.
		if pf.Periods[i].OperatingExpenses <= 0 {
			t.Errorf("Month %d expenses missing", i+1)
		}
	}
	if pf.Periods[3].GrossIncome <= 0 {
		t.Errorf("Month 4 should bill rent, got %f", pf.Periods[3].GrossIncome)
	}
}

func TestFreeRentAnnualProration(t *testing.T) {
	a := baseAssumptions()
	a.FreeRentMonths = 3

	pf, err := Project(a, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Year 1 billed 9 of 12 months: 100000 * 0.75 = 75000.
	if math.Abs(pf.Periods[0].GrossIncome-75000) > 1e-6 {
		t.Errorf("Year 1 gross = %f, want 75000", pf.Periods[0].GrossIncome)
	}
	// Year 2 unaffected.
	if math.Abs(pf.Periods[1].GrossIncome-110000) > 1e-6 {
		t.Errorf("Year 2 gross = %f, want 110000", pf.Periods[1].GrossIncome)
	}
}

func TestVacancyAndEffectiveIncome(t *testing.T) {
	a := baseAssumptions()
	a.VacancyPct = 0.05

	pf, err := Project(a, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Y1: gross 100000, vacancy 5000, effective 95000, NOI 55000.
	row := pf.Periods[0]
	if math.Abs(row.Vacancy-5000) > 1e-9 || math.Abs(row.EffectiveIncome-95000) > 1e-9 {
		t.Errorf("vacancy/effective = %f/%f, want 5000/95000", row.Vacancy, row.EffectiveIncome)
	}
	if math.Abs(row.NOI-55000) > 1e-9 {
		t.Errorf("NOI = %f, want 55000", row.NOI)
	}
}

func TestLeveredProjectionPaysLoan(t *testing.T) {
	sched, err := amort.BuildSchedule(amort.LoanTerms{
		Principal:   700000,
		AnnualRate:  0.06,
		AmortMonths: 360,
		TermMonths:  360,
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	pf, err := Project(baseAssumptions(), sched)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantDS := sched.DebtServiceForYear(1)
	if math.Abs(pf.Periods[0].DebtService-wantDS) > 1e-9 {
		t.Errorf("Year 1 debt service = %f, want %f", pf.Periods[0].DebtService, wantDS)
	}
	if math.Abs(pf.Periods[0].NetCashFlow-(pf.Periods[0].NOI-wantDS)) > 1e-9 {
		t.Errorf("Net CF should be NOI - debt service")
	}

	// Sale repays the month-36 balance.
	if math.Abs(pf.Sale.LoanPayoff-sched.BalanceAt(36)) > 1e-9 {
		t.Errorf("Loan payoff = %f, want %f", pf.Sale.LoanPayoff, sched.BalanceAt(36))
	}
}

func TestDeterminism(t *testing.T) {
	a := baseAssumptions()
	a.Frequency = Monthly
	a.FreeRentMonths = 2
	a.VacancyPct = 0.07

	first, err := Project(a, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Project(a, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must produce identical projections")
	}
}

func TestValidationRejectsBadAssumptions(t *testing.T) {
	cases := []func(*Assumptions){
		func(a *Assumptions) { a.PurchasePrice = 0 },
		func(a *Assumptions) { a.HoldYears = 0 },
		func(a *Assumptions) { a.VacancyPct = 1.5 },
		func(a *Assumptions) { a.ExitCapRate = 0 },
		func(a *Assumptions) { a.SaleCostPct = -0.1 },
		func(a *Assumptions) { a.FreeRentMonths = 999 },
		func(a *Assumptions) { a.Frequency = "weekly" },
	}
	for i, mutate := range cases {
		a := baseAssumptions()
		mutate(&a)
		if _, err := Project(a, nil); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}
