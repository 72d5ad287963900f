// Package deal orchestrates a full underwriting run: capital stack sizing,
// amortization, pro forma projection, return metrics, and (for syndicated
// deals) the GP/LP waterfall. The boundary is pure: a DealInput goes in, a
// DealResult comes out, and failures travel as structured errors inside the
// result rather than panics.
package deal

import (
	"deal_engine/pkg/core/amort"
	"deal_engine/pkg/core/metrics"
	"deal_engine/pkg/core/proforma"
	"deal_engine/pkg/core/waterfall"
)

// DealInput mirrors the calculator form: operating assumptions, optional
// debt, optional syndication structure.
type DealInput struct {
	Name        string               `json:"name"`
	Assumptions proforma.Assumptions `json:"assumptions"`

	// Loan is nil for an all-cash acquisition.
	Loan *amort.LoanTerms `json:"loan,omitempty"`

	// Reserves are funded at close and counted among uses.
	Reserves float64 `json:"reserves"`

	// GPEquityShare is the GP's fraction of required equity (0 for a deal
	// with no co-invest). Only meaningful when Waterfall is set.
	GPEquityShare float64 `json:"gp_equity_share"`

	// DiscountRate prices the NPV metric (annual).
	DiscountRate float64 `json:"discount_rate"`

	// Waterfall is nil for non-syndicated deals.
	Waterfall *waterfall.Config `json:"waterfall,omitempty"`
}

// CapitalStack records sources and uses at close. Invariant: sources equal
// uses (the equity requirement is sized as the residual).
type CapitalStack struct {
	PurchasePrice float64 `json:"purchase_price"`
	ClosingCosts  float64 `json:"closing_costs"`
	LoanFees      float64 `json:"loan_fees"`
	Reserves      float64 `json:"reserves"`
	TotalUses     float64 `json:"total_uses"`

	LoanAmount   float64 `json:"loan_amount"`
	LPEquity     float64 `json:"lp_equity"`
	GPEquity     float64 `json:"gp_equity"`
	TotalEquity  float64 `json:"total_equity"`
	TotalSources float64 `json:"total_sources"`
}

// DealMetrics are the headline numbers a calculator screen renders.
type DealMetrics struct {
	GoingInCapRate    float64           `json:"going_in_cap_rate"`
	YearOneDSCR       float64           `json:"year_one_dscr"`
	DSCRDisplay       string            `json:"dscr_display"`
	YearOneCashOnCash float64           `json:"year_one_cash_on_cash"`
	EquityMultiple    float64           `json:"equity_multiple"`
	IRR               metrics.IRRResult `json:"irr"`
	NPV               float64           `json:"npv"`
}

// DealResult is the complete underwriting output. Errors are fatal (the
// computed sections are nil); Warnings are advisory and accompany a full
// result.
type DealResult struct {
	Name     string   `json:"name"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	CapitalStack *CapitalStack                 `json:"capital_stack,omitempty"`
	Schedule     *amort.Schedule               `json:"schedule,omitempty"`
	Proforma     *proforma.Proforma            `json:"proforma,omitempty"`
	Metrics      *DealMetrics                  `json:"metrics,omitempty"`
	Distribution *waterfall.DistributionResult `json:"distribution,omitempty"`
}

// Failed reports whether the run stopped on validation errors.
func (r *DealResult) Failed() bool {
	return len(r.Errors) > 0
}
