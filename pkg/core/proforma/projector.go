package proforma

import (
	"math"

	"deal_engine/pkg/core/amort"
)

// Project builds the full hold-period projection. A nil schedule models an
// unlevered (all-cash) acquisition. Identical inputs always produce
// identical output.
func Project(a Assumptions, sched *amort.Schedule) (*Proforma, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	freq := a.Frequency
	if freq == "" {
		freq = Annual
	}
	n := a.PeriodCount()
	periods := make([]PeriodCashFlow, 0, n)

	var cumulative float64
	for p := 1; p <= n; p++ {
		row := a.operatingRow(p, freq)
		row.DebtService, row.InterestPaid, row.PrincipalPaid = debtServiceFor(sched, p, freq)
		row.NetCashFlow = row.NOI - row.DebtService
		cumulative += row.NetCashFlow
		row.CumulativeCashFlow = cumulative
		periods = append(periods, row)
	}

	// Terminal sale: price the exit off forward NOI, deduct sale costs and
	// the remaining loan balance, and append the proceeds to the final period.
	sale := a.saleEvent(sched, freq)
	last := &periods[n-1]
	last.NetCashFlow += sale.NetSaleProceeds
	last.CumulativeCashFlow += sale.NetSaleProceeds

	return &Proforma{Frequency: freq, Periods: periods, Sale: sale}, nil
}

// operatingRow computes the income/expense side of one period.
func (a Assumptions) operatingRow(p int, freq Frequency) PeriodCashFlow {
	periodsPerYear := 1.0
	if freq == Monthly {
		periodsPerYear = 12.0
	}

	gross := a.GrossIncome / periodsPerYear * escalationFactor(a.IncomeEscalation, p, freq)
	gross = a.applyFreeRent(gross, p, freq)

	vacancy := gross * a.VacancyPct
	effective := gross - vacancy
	opex := a.OperatingExpenses / periodsPerYear * escalationFactor(a.ExpenseEscalation, p, freq)

	return PeriodCashFlow{
		Period:            p,
		GrossIncome:       gross,
		Vacancy:           vacancy,
		EffectiveIncome:   effective,
		OperatingExpenses: opex,
		NOI:               effective - opex,
	}
}

// applyFreeRent zeroes (or prorates, for annual rows) gross income inside
// the free-rent window. Only the affected periods are reduced.
func (a Assumptions) applyFreeRent(gross float64, p int, freq Frequency) float64 {
	if a.FreeRentMonths == 0 {
		return gross
	}
	if freq == Monthly {
		if p <= a.FreeRentMonths {
			return 0
		}
		return gross
	}
	// Annual rows: free months falling inside year p reduce it pro rata.
	yearStart := (p - 1) * 12
	freeInYear := a.FreeRentMonths - yearStart
	if freeInYear <= 0 {
		return gross
	}
	if freeInYear > 12 {
		freeInYear = 12
	}
	return gross * (1 - float64(freeInYear)/12.0)
}

// escalationFactor compounds growth up to period p (1-based).
//
// The escalation's own frequency sets the step size: annual escalations step
// once per year regardless of projection granularity; monthly escalations
// compound at the month-equivalent rate (1+g)^(1/12)-1.
func escalationFactor(esc Escalation, p int, projFreq Frequency) float64 {
	if esc.AnnualRate == 0 {
		return 1
	}

	projPerYear := 1
	if projFreq == Monthly {
		projPerYear = 12
	}

	var steps int
	var stepRate float64
	switch esc.Frequency {
	case Monthly:
		stepRate = math.Pow(1+esc.AnnualRate, 1.0/12.0) - 1
		steps = (p - 1) * (12 / projPerYear)
	default: // Annual steps
		stepRate = esc.AnnualRate
		steps = (p - 1) / projPerYear
	}

	if esc.Convention == BeginningOfPeriod {
		steps++
	}
	return math.Pow(1+stepRate, float64(steps))
}

// debtServiceFor reads the loan schedule at projection granularity.
func debtServiceFor(sched *amort.Schedule, p int, freq Frequency) (payment, interest, principal float64) {
	if sched == nil {
		return 0, 0, 0
	}
	if freq == Monthly {
		if p > len(sched.Rows) {
			return 0, 0, 0
		}
		row := sched.Rows[p-1]
		return row.Payment, row.Interest, row.Principal
	}
	return sched.DebtServiceForYear(p), sched.InterestForYear(p), sched.PrincipalForYear(p)
}

// saleEvent prices the exit.
//
// FORMULA: Gross Sale Price = Forward NOI / Exit Cap Rate
//
// Forward NOI is the year following the hold (the buyer's year one). For
// monthly projections that is the sum of the twelve months after the hold.
func (a Assumptions) saleEvent(sched *amort.Schedule, freq Frequency) SaleEvent {
	n := a.PeriodCount()

	var forwardNOI float64
	if freq == Monthly {
		for m := n + 1; m <= n+12; m++ {
			forwardNOI += a.operatingRow(m, freq).NOI
		}
	} else {
		forwardNOI = a.operatingRow(n+1, freq).NOI
	}

	grossPrice := forwardNOI / a.ExitCapRate
	saleCosts := grossPrice * a.SaleCostPct

	var payoff float64
	if sched != nil {
		payoff = sched.BalanceAt(a.HoldYears * 12)
	}

	return SaleEvent{
		ForwardNOI:      forwardNOI,
		GrossSalePrice:  grossPrice,
		SaleCosts:       saleCosts,
		LoanPayoff:      payoff,
		NetSaleProceeds: grossPrice - saleCosts - payoff,
	}
}
