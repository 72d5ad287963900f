// Command verify_deal_logic runs the reference deal through the full engine
// and prints every intermediate table with invariant checks. Used as a
// quick eyeball harness when touching the math packages.
package main

import (
	"fmt"
	"math"

	"deal_engine/pkg/core/amort"
	"deal_engine/pkg/core/deal"
	"deal_engine/pkg/core/proforma"
	"deal_engine/pkg/core/waterfall"
)

func main() {
	// Reference deal: $1.0M purchase, 70% LTV, 6% / 30yr, 5-year hold,
	// 8% annual NOI escalation, exit at a 5.5% cap.
	input := deal.DealInput{
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

	result := deal.Underwrite(input)
	if result.Failed() {
		fmt.Println("UNDERWRITE FAILED:")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
		return
	}

	pass := func(ok bool) string {
		if ok {
			return "PASS"
		}
		return "FAIL"
	}

	fmt.Println("====================================================================================")
	fmt.Println("                          CAPITAL STACK (SOURCES & USES)")
	fmt.Println("====================================================================================")
	stack := result.CapitalStack
	fmt.Printf("%-30s | %15.2f\n", "Purchase Price", stack.PurchasePrice)
	fmt.Printf("%-30s | %15.2f\n", "Closing Costs", stack.ClosingCosts)
	fmt.Printf("%-30s | %15.2f\n", "Loan Fees", stack.LoanFees)
	fmt.Printf("%-30s | %15.2f\n", "Total Uses", stack.TotalUses)
	fmt.Printf("%-30s | %15.2f\n", "Loan Amount", stack.LoanAmount)
	fmt.Printf("%-30s | %15.2f\n", "LP Equity", stack.LPEquity)
	fmt.Printf("%-30s | %15.2f\n", "GP Equity", stack.GPEquity)
	fmt.Printf("%-30s | %15.2f\n", "Total Sources", stack.TotalSources)
	fmt.Printf("CHECK sources = uses: %s (diff %.6f)\n", pass(math.Abs(stack.TotalSources-stack.TotalUses) < 0.01), stack.TotalSources-stack.TotalUses)

	fmt.Println("====================================================================================")
	fmt.Println("                          AMORTIZATION (FIRST YEAR)")
	fmt.Println("====================================================================================")
	fmt.Printf("%-8s | %12s | %12s | %12s | %14s\n", "MONTH", "PAYMENT", "PRINCIPAL", "INTEREST", "BALANCE")
	for _, row := range result.Schedule.Rows[:12] {
		fmt.Printf("%-8d | %12.2f | %12.2f | %12.2f | %14.2f\n", row.Period, row.Payment, row.Principal, row.Interest, row.Balance)
	}
	wantInterest := 700_000 * 0.06 / 12
	gotInterest := result.Schedule.Rows[0].Interest
	fmt.Printf("CHECK month-1 interest = P*r/12 (%.2f): %s (got %.2f)\n", wantInterest, pass(math.Abs(gotInterest-wantInterest) < 0.01), gotInterest)

	fmt.Println("====================================================================================")
	fmt.Println("                          PRO FORMA")
	fmt.Println("====================================================================================")
	fmt.Printf("%-6s | %12s | %12s | %12s | %12s | %14s\n", "YEAR", "GROSS", "OPEX", "NOI", "DEBT SVC", "NET CF")
	for _, row := range result.Proforma.Periods {
		fmt.Printf("%-6d | %12.2f | %12.2f | %12.2f | %12.2f | %14.2f\n", row.Period, row.GrossIncome, row.OperatingExpenses, row.NOI, row.DebtService, row.NetCashFlow)
	}
	sale := result.Proforma.Sale
	fmt.Printf("Sale: forward NOI %.2f / %.4f cap = %.2f gross, %.2f net of costs and payoff\n",
		sale.ForwardNOI, input.Assumptions.ExitCapRate, sale.GrossSalePrice, sale.NetSaleProceeds)

	fmt.Println("====================================================================================")
	fmt.Println("                          RETURN METRICS")
	fmt.Println("====================================================================================")
	m := result.Metrics
	fmt.Printf("%-30s | %15.4f\n", "Going-in Cap Rate", m.GoingInCapRate)
	fmt.Printf("%-30s | %15s\n", "Year-1 DSCR", m.DSCRDisplay)
	fmt.Printf("%-30s | %15.4f\n", "Year-1 Cash-on-Cash", m.YearOneCashOnCash)
	fmt.Printf("%-30s | %15.2f\n", "Equity Multiple", m.EquityMultiple)
	fmt.Printf("%-30s | %15.4f (converged=%v)\n", "IRR (annual)", m.IRR.Annualized, m.IRR.Converged)
	fmt.Printf("%-30s | %15.2f\n", "NPV @ 8%", m.NPV)

	fmt.Println("====================================================================================")
	fmt.Println("                          WATERFALL")
	fmt.Println("====================================================================================")
	d := result.Distribution
	fmt.Printf("%-22s | %14s | %14s\n", "", "LP", "GP")
	fmt.Printf("%-22s | %14.2f | %14.2f\n", "Contributed", d.LP.Contributed, d.GP.Contributed)
	fmt.Printf("%-22s | %14.2f | %14.2f\n", "Return of Capital", d.LP.ReturnOfCapital, d.GP.ReturnOfCapital)
	fmt.Printf("%-22s | %14.2f | %14.2f\n", "Preferred", d.LP.Preferred, d.GP.Preferred)
	fmt.Printf("%-22s | %14.2f | %14.2f\n", "Catch-up", d.LP.CatchUp, d.GP.CatchUp)
	fmt.Printf("%-22s | %14.2f | %14.2f\n", "Promote", d.LP.Promote, d.GP.Promote)
	fmt.Printf("%-22s | %14.2f | %14.2f\n", "Total", d.LP.Total, d.GP.Total)
	fmt.Printf("%-22s | %13.2fx | %13.2fx\n", "Equity Multiple", d.LP.EquityMultiple, d.GP.EquityMultiple)
	fmt.Printf("%-22s | %14.4f | %14.4f\n", "IRR (annual)", d.LP.IRR.Annualized, d.GP.IRR.Annualized)
	fmt.Printf("CHECK LP equity multiple >= 1.0 on profitable exit: %s (%.2fx)\n", pass(d.LP.EquityMultiple >= 1.0), d.LP.EquityMultiple)

	if len(result.Warnings) > 0 {
		fmt.Println("Warnings:")
		for _, w := range result.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
}
