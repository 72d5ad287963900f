// Package amort converts loan terms into a per-period amortization schedule.
package amort

import (
	"fmt"
	"math"
)

// =============================================================================
// LOAN TERMS
// =============================================================================

// LoanTerms describes a commercial mortgage. Months are used throughout;
// annual inputs are converted internally.
type LoanTerms struct {
	Principal          float64 `json:"principal"`
	AnnualRate         float64 `json:"annual_rate"`          // e.g. 0.06 for 6%
	AmortMonths        int     `json:"amort_months"`         // e.g. 360 for 30-year
	InterestOnlyMonths int     `json:"interest_only_months"` // 0 for fully amortizing
	TermMonths         int     `json:"term_months"`          // Loan term (<= amortization)
	OriginationFeePct  float64 `json:"origination_fee_pct"`  // On principal, paid at close
}

// OriginationFee is the closing-cost dollar amount of the fee.
func (t LoanTerms) OriginationFee() float64 {
	return t.Principal * t.OriginationFeePct
}

// Validate rejects malformed terms before any schedule math runs.
func (t LoanTerms) Validate() error {
	if t.Principal <= 0 {
		return fmt.Errorf("loan principal must be positive, got %.2f", t.Principal)
	}
	if t.AnnualRate < 0 {
		return fmt.Errorf("loan rate cannot be negative, got %.4f", t.AnnualRate)
	}
	if t.TermMonths <= 0 {
		return fmt.Errorf("loan term must be positive, got %d months", t.TermMonths)
	}
	if t.AmortMonths <= 0 {
		return fmt.Errorf("amortization period must be positive, got %d months", t.AmortMonths)
	}
	if t.TermMonths > t.AmortMonths {
		return fmt.Errorf("loan term (%d) cannot exceed amortization period (%d)", t.TermMonths, t.AmortMonths)
	}
	if t.AmortMonths < t.InterestOnlyMonths {
		return fmt.Errorf("amortization period (%d) shorter than interest-only period (%d)", t.AmortMonths, t.InterestOnlyMonths)
	}
	if t.InterestOnlyMonths < 0 {
		return fmt.Errorf("interest-only period cannot be negative, got %d", t.InterestOnlyMonths)
	}
	return nil
}

// =============================================================================
// SCHEDULE
// =============================================================================

// Row is one period of the schedule. Period is 1-based.
type Row struct {
	Period    int     `json:"period"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"` // Ending balance after this payment
}

// Schedule is the ordered amortization table for the loan term.
type Schedule struct {
	Terms LoanTerms `json:"terms"`
	Rows  []Row     `json:"rows"`
}

// MonthlyPayment calculates the level amortizing payment.
//
// FORMULA: M = P · r(1+r)^n / ((1+r)^n − 1)
//
// Where r is the monthly rate and n the amortizing month count. Zero-rate
// loans pay straight-line P/n.
func MonthlyPayment(principal, annualRate float64, amortMonths int) float64 {
	if amortMonths <= 0 {
		return 0
	}
	if annualRate == 0 {
		return principal / float64(amortMonths)
	}
	r := annualRate / 12.0
	pow := math.Pow(1+r, float64(amortMonths))
	return principal * r * pow / (pow - 1)
}

// BuildSchedule produces the full schedule over the loan term. During the
// interest-only window the payment is balance × monthly rate with no
// principal reduction; afterwards the level payment amortizes the balance
// over the remaining amortization months.
func BuildSchedule(terms LoanTerms) (*Schedule, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	r := terms.AnnualRate / 12.0
	balance := terms.Principal
	amortizingMonths := terms.AmortMonths - terms.InterestOnlyMonths
	levelPayment := MonthlyPayment(terms.Principal, terms.AnnualRate, amortizingMonths)

	rows := make([]Row, 0, terms.TermMonths)
	for m := 1; m <= terms.TermMonths; m++ {
		interest := balance * r
		var principal, payment float64

		if m <= terms.InterestOnlyMonths {
			payment = interest
		} else if m == terms.InterestOnlyMonths+amortizingMonths {
			// Final amortizing month: retire the remaining balance exactly
			// instead of letting float drift leave a residual.
			principal = balance
			payment = principal + interest
		} else {
			payment = levelPayment
			principal = payment - interest
			if principal > balance {
				principal = balance
				payment = principal + interest
			}
		}

		balance -= principal
		rows = append(rows, Row{
			Period:    m,
			Payment:   payment,
			Principal: principal,
			Interest:  interest,
			Balance:   balance,
		})
	}

	return &Schedule{Terms: terms, Rows: rows}, nil
}

// =============================================================================
// SCHEDULE QUERIES
// =============================================================================

// BalanceAt returns the outstanding balance after the given month.
// Month 0 is the original principal.
func (s *Schedule) BalanceAt(month int) float64 {
	if month <= 0 {
		return s.Terms.Principal
	}
	if month > len(s.Rows) {
		month = len(s.Rows)
	}
	return s.Rows[month-1].Balance
}

// DebtServiceForYear sums the twelve payments of a 1-based year. Years past
// the loan term contribute only the months that exist.
func (s *Schedule) DebtServiceForYear(year int) float64 {
	var total float64
	start := (year - 1) * 12
	for m := start; m < start+12 && m < len(s.Rows); m++ {
		total += s.Rows[m].Payment
	}
	return total
}

// InterestForYear sums interest portions across a 1-based year.
func (s *Schedule) InterestForYear(year int) float64 {
	var total float64
	start := (year - 1) * 12
	for m := start; m < start+12 && m < len(s.Rows); m++ {
		total += s.Rows[m].Interest
	}
	return total
}

// PrincipalForYear sums principal portions across a 1-based year.
func (s *Schedule) PrincipalForYear(year int) float64 {
	var total float64
	start := (year - 1) * 12
	for m := start; m < start+12 && m < len(s.Rows); m++ {
		total += s.Rows[m].Principal
	}
	return total
}
