// Package proforma builds the periodic operating cash-flow projection for a
// hold period, including the terminal sale event.
package proforma

import "fmt"

// =============================================================================
// ASSUMPTIONS
// =============================================================================

// Frequency selects the projection granularity.
type Frequency string

const (
	Monthly Frequency = "monthly"
	Annual  Frequency = "annual"
)

// Convention selects when an escalation first applies.
//   - EndOfPeriod: the first period runs at the base amount (escalation shows
//     up from the second period on). This is the spreadsheet default.
//   - BeginningOfPeriod: the first period is already escalated once.
type Convention string

const (
	EndOfPeriod       Convention = "end"
	BeginningOfPeriod Convention = "beginning"
)

// Escalation describes compounding growth applied to a line item.
type Escalation struct {
	AnnualRate float64    `json:"annual_rate"` // e.g. 0.03 for 3%/yr
	Frequency  Frequency  `json:"frequency"`   // compound monthly or step annually
	Convention Convention `json:"convention"`
}

// Assumptions are the operating inputs for the projection. Income and
// expense figures are year-one annual amounts; the projector scales them to
// the period granularity.
type Assumptions struct {
	PurchasePrice  float64 `json:"purchase_price"`
	ClosingCostPct float64 `json:"closing_cost_pct"` // On purchase price

	GrossIncome       float64 `json:"gross_income"`       // Annual scheduled income, year 1
	VacancyPct        float64 `json:"vacancy_pct"`        // Fraction of gross income
	OperatingExpenses float64 `json:"operating_expenses"` // Annual, year 1

	IncomeEscalation  Escalation `json:"income_escalation"`
	ExpenseEscalation Escalation `json:"expense_escalation"`

	// FreeRentMonths zeroes gross income for that many periods at the start
	// of the hold (annual projections prorate the first year).
	FreeRentMonths int `json:"free_rent_months"`

	HoldYears int       `json:"hold_years"`
	Frequency Frequency `json:"frequency"`

	ExitCapRate float64 `json:"exit_cap_rate"` // Applied to forward NOI
	SaleCostPct float64 `json:"sale_cost_pct"` // On gross sale price
}

// Validate rejects out-of-range operating inputs.
func (a Assumptions) Validate() error {
	if a.PurchasePrice <= 0 {
		return fmt.Errorf("purchase price must be positive, got %.2f", a.PurchasePrice)
	}
	if a.HoldYears <= 0 {
		return fmt.Errorf("hold period must be positive, got %d years", a.HoldYears)
	}
	if a.VacancyPct < 0 || a.VacancyPct >= 1 {
		return fmt.Errorf("vacancy must be in [0,1), got %.4f", a.VacancyPct)
	}
	if a.ExitCapRate <= 0 {
		return fmt.Errorf("exit cap rate must be positive, got %.4f", a.ExitCapRate)
	}
	if a.SaleCostPct < 0 || a.SaleCostPct >= 1 {
		return fmt.Errorf("sale costs must be in [0,1), got %.4f", a.SaleCostPct)
	}
	if a.FreeRentMonths < 0 || a.FreeRentMonths > a.HoldYears*12 {
		return fmt.Errorf("free rent months out of range: %d", a.FreeRentMonths)
	}
	if a.IncomeEscalation.AnnualRate <= -1 || a.ExpenseEscalation.AnnualRate <= -1 {
		return fmt.Errorf("escalation rate must be greater than -100%%")
	}
	switch a.Frequency {
	case Monthly, Annual, "":
	default:
		return fmt.Errorf("unknown projection frequency: %q", a.Frequency)
	}
	return nil
}

// PeriodCount is the number of operating periods in the hold.
func (a Assumptions) PeriodCount() int {
	if a.Frequency == Monthly {
		return a.HoldYears * 12
	}
	return a.HoldYears
}

// ClosingCosts is the dollar amount of acquisition costs (excluding loan fees).
func (a Assumptions) ClosingCosts() float64 {
	return a.PurchasePrice * a.ClosingCostPct
}

// =============================================================================
// OUTPUT
// =============================================================================

// PeriodCashFlow is one row of the projection. Period is 1-based; values are
// immutable once computed.
type PeriodCashFlow struct {
	Period             int     `json:"period"`
	GrossIncome        float64 `json:"gross_income"`
	Vacancy            float64 `json:"vacancy"`
	EffectiveIncome    float64 `json:"effective_income"`
	OperatingExpenses  float64 `json:"operating_expenses"`
	NOI                float64 `json:"noi"`
	DebtService        float64 `json:"debt_service"`
	InterestPaid       float64 `json:"interest_paid"`
	PrincipalPaid      float64 `json:"principal_paid"`
	NetCashFlow        float64 `json:"net_cash_flow"` // Includes sale proceeds in the final period
	CumulativeCashFlow float64 `json:"cumulative_cash_flow"`
}

// SaleEvent summarizes the terminal disposition.
type SaleEvent struct {
	ForwardNOI      float64 `json:"forward_noi"` // Next-period NOI used for pricing
	GrossSalePrice  float64 `json:"gross_sale_price"`
	SaleCosts       float64 `json:"sale_costs"`
	LoanPayoff      float64 `json:"loan_payoff"`
	NetSaleProceeds float64 `json:"net_sale_proceeds"`
}

// Proforma is the completed projection.
type Proforma struct {
	Frequency Frequency        `json:"frequency"`
	Periods   []PeriodCashFlow `json:"periods"`
	Sale      SaleEvent        `json:"sale"`
}
