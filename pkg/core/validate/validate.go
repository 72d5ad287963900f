// Package validate provides reusable underwriting validation utilities.
// These functions can be called from tests, API handlers, or the deal
// orchestrator to verify input integrity and flag concerning economics.
package validate

import (
	"fmt"
	"math"

	"deal_engine/pkg/core/metrics"
	"deal_engine/pkg/core/proforma"
)

// DefaultDSCRThreshold is the coverage level below which lenders typically
// balk; deals under it compute fine but carry a warning.
const DefaultDSCRThreshold = 1.2

// =============================================================================
// SOURCES & USES
// =============================================================================

// SourcesUsesCheck verifies Sources (loan + LP equity + GP equity) equal
// Uses (price + closing costs + loan fees + reserves) at close.
type SourcesUsesCheck struct {
	LoanAmount   float64
	LPEquity     float64
	GPEquity     float64
	TotalSources float64

	PurchasePrice float64
	ClosingCosts  float64
	LoanFees      float64
	Reserves      float64
	TotalUses     float64

	Difference float64
	IsBalanced bool
	Tolerance  float64
}

// CheckSourcesUses validates sources = uses within tolerance.
func CheckSourcesUses(loan, lpEquity, gpEquity, price, closingCosts, loanFees, reserves, tolerance float64) *SourcesUsesCheck {
	sources := loan + lpEquity + gpEquity
	uses := price + closingCosts + loanFees + reserves
	diff := sources - uses

	return &SourcesUsesCheck{
		LoanAmount:    loan,
		LPEquity:      lpEquity,
		GPEquity:      gpEquity,
		TotalSources:  sources,
		PurchasePrice: price,
		ClosingCosts:  closingCosts,
		LoanFees:      loanFees,
		Reserves:      reserves,
		TotalUses:     uses,
		Difference:    diff,
		IsBalanced:    math.Abs(diff) <= tolerance,
		Tolerance:     tolerance,
	}
}

// =============================================================================
// ECONOMIC WARNINGS
// =============================================================================

// ScanProforma walks a computed projection and returns non-fatal warnings:
// DSCR below threshold and negative periodic cash flow. The deal still
// computes; the caller decides how to surface these.
func ScanProforma(pf *proforma.Proforma, dscrThreshold float64) []string {
	if pf == nil {
		return nil
	}
	if dscrThreshold == 0 {
		dscrThreshold = DefaultDSCRThreshold
	}

	var warnings []string
	worstDSCR := math.Inf(1)
	worstPeriod := 0
	negativePeriods := 0

	for i, row := range pf.Periods {
		d := metrics.DSCR(row.NOI, row.DebtService)
		if d < worstDSCR {
			worstDSCR = d
			worstPeriod = row.Period
		}
		// Sale proceeds sit in the final row's NetCashFlow; judge operations only.
		operating := row.NetCashFlow
		if i == len(pf.Periods)-1 {
			operating -= pf.Sale.NetSaleProceeds
		}
		if operating < 0 {
			negativePeriods++
		}
	}

	if !math.IsInf(worstDSCR, 1) && worstDSCR < dscrThreshold {
		warnings = append(warnings, fmt.Sprintf("DSCR %.2f in period %d is below %.2f", worstDSCR, worstPeriod, dscrThreshold))
	}
	if negativePeriods > 0 {
		warnings = append(warnings, fmt.Sprintf("negative operating cash flow in %d of %d periods", negativePeriods, len(pf.Periods)))
	}
	if pf.Sale.NetSaleProceeds < 0 {
		warnings = append(warnings, fmt.Sprintf("sale proceeds of %.2f do not cover the loan payoff", pf.Sale.NetSaleProceeds))
	}
	return warnings
}
