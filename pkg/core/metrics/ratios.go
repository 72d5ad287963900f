// Ratio metrics derived from a deal's cash flows. These are display-grade
// numbers: callers format them, the functions never panic on degenerate
// denominators.
package metrics

import (
	"fmt"
	"math"
)

// CapRate calculates the capitalization rate.
//
// FORMULA: Cap Rate = NOI / Purchase Price
func CapRate(noi, purchasePrice float64) float64 {
	if purchasePrice == 0 {
		return 0
	}
	return noi / purchasePrice
}

// DSCR calculates the Debt Service Coverage Ratio.
//
// FORMULA: DSCR = NOI / Debt Service
//
// Zero debt service means the ratio is undefined; +Inf is returned as the
// sentinel and FormatDSCR renders it as "N/A".
func DSCR(noi, debtService float64) float64 {
	if debtService == 0 {
		return math.Inf(1)
	}
	return noi / debtService
}

// FormatDSCR renders a DSCR for display. The unlevered case has no
// meaningful coverage ratio.
func FormatDSCR(dscr float64) string {
	if math.IsInf(dscr, 1) {
		return "N/A"
	}
	return fmt.Sprintf("%.2fx", dscr)
}

// CashOnCash calculates the periodic cash-on-cash return.
//
// FORMULA: CoC = Net Cash Flow / Total Equity Invested
func CashOnCash(netCashFlow, equityInvested float64) float64 {
	if equityInvested == 0 {
		return 0
	}
	return netCashFlow / equityInvested
}

// EquityMultiple calculates total distributions over total contributions.
//
// FORMULA: EM = Σ Distributions / Σ Contributions
func EquityMultiple(totalDistributions, totalContributions float64) float64 {
	if totalContributions == 0 {
		return 0
	}
	return totalDistributions / totalContributions
}
