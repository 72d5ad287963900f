package validate

import (
	"strings"
	"testing"

	"deal_engine/pkg/core/amort"
	"deal_engine/pkg/core/proforma"
)

func TestCheckSourcesUses(t *testing.T) {
	// 700k loan + 294.3k LP + 32.7k GP = 1,027,000 sources.
	// 1M price + 20k closing + 7k fees + 0 reserves = 1,027,000 uses.
	check := CheckSourcesUses(700_000, 294_300, 32_700, 1_000_000, 20_000, 7_000, 0, 0.01)
	if !check.IsBalanced {
		t.Errorf("expected balanced stack, diff %.6f", check.Difference)
	}

	// A $5 hole fails a $0.01 tolerance.
	check = CheckSourcesUses(700_000, 294_295, 32_700, 1_000_000, 20_000, 7_000, 0, 0.01)
	if check.IsBalanced {
		t.Error("expected imbalance to be flagged")
	}
	if check.Difference > -4.99 || check.Difference < -5.01 {
		t.Errorf("difference = %f, want -5", check.Difference)
	}
}

func projectLevered(t *testing.T, gross, opex, principal float64) *proforma.Proforma {
	t.Helper()
	sched, err := amort.BuildSchedule(amort.LoanTerms{
		Principal:   principal,
		AnnualRate:  0.06,
		AmortMonths: 360,
		TermMonths:  360,
	})
	if err != nil {
		t.Fatal(err)
	}
	pf, err := proforma.Project(proforma.Assumptions{
		PurchasePrice:     1_500_000,
		GrossIncome:       gross,
		OperatingExpenses: opex,
		HoldYears:         3,
		Frequency:         proforma.Annual,
		ExitCapRate:       0.06,
	}, sched)
	if err != nil {
		t.Fatal(err)
	}
	return pf
}

func TestScanProformaHealthyDeal(t *testing.T) {
	// NOI 120k against ~50.4k of debt service: DSCR ~2.4, no warnings.
	pf := projectLevered(t, 150_000, 30_000, 700_000)
	if warnings := ScanProforma(pf, DefaultDSCRThreshold); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestScanProformaThinCoverage(t *testing.T) {
	// NOI 70k against ~86.3k of debt service on 1.2M: DSCR ~0.81 plus
	// negative operating cash flow every period.
	pf := projectLevered(t, 100_000, 30_000, 1_200_000)
	warnings := ScanProforma(pf, DefaultDSCRThreshold)

	var sawDSCR, sawNegative bool
	for _, w := range warnings {
		if strings.Contains(w, "DSCR") {
			sawDSCR = true
		}
		if strings.Contains(w, "negative operating cash flow") {
			sawNegative = true
		}
	}
	if !sawDSCR {
		t.Errorf("expected a DSCR warning, got %v", warnings)
	}
	if !sawNegative {
		t.Errorf("expected a negative cash flow warning, got %v", warnings)
	}
}

func TestScanProformaUnleveredIsQuiet(t *testing.T) {
	// No debt: DSCR is undefined (+Inf), which must not trip the threshold.
	pf, err := proforma.Project(proforma.Assumptions{
		PurchasePrice:     1_000_000,
		GrossIncome:       100_000,
		OperatingExpenses: 30_000,
		HoldYears:         3,
		Frequency:         proforma.Annual,
		ExitCapRate:       0.06,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if warnings := ScanProforma(pf, DefaultDSCRThreshold); len(warnings) != 0 {
		t.Errorf("expected no warnings for an unlevered deal, got %v", warnings)
	}
}

func TestScanProformaNil(t *testing.T) {
	if warnings := ScanProforma(nil, DefaultDSCRThreshold); warnings != nil {
		t.Errorf("nil proforma should produce nil warnings, got %v", warnings)
	}
}
