// Package waterfall allocates distributable cash between LP and GP across an
// ordered stack of tiers: return of capital, preferred return, GP catch-up,
// hurdle-gated promote splits, and a terminal residual split.
package waterfall

import (
	"fmt"
	"math"

	"deal_engine/pkg/core/metrics"
)

// splitTolerance is how far an LP+GP split pair may drift from 1.0 before
// the configuration is rejected.
const splitTolerance = 1e-9

// =============================================================================
// STAGES
// =============================================================================

// Stage identifies where in the waterfall a dollar was allocated. Stages are
// evaluated strictly in this order for every distribution event.
type Stage string

const (
	StageReturnOfCapital Stage = "return_of_capital"
	StagePreferredReturn Stage = "preferred_return"
	StageCatchUp         Stage = "catch_up"
	StagePromote         Stage = "promote" // Suffixed with the tier index in traces
	StageRemaining       Stage = "remaining"
)

// =============================================================================
// TIERS
// =============================================================================

// TierType is the hurdle semantics of a promote tier.
type TierType string

const (
	// TierIRRHurdle gates on the LP's running annualized IRR.
	TierIRRHurdle TierType = "irr"
	// TierEquityMultiple gates on cumulative LP distributions / contributions.
	TierEquityMultiple TierType = "equity_multiple"
	// TierRemaining takes everything left; must be the final tier.
	TierRemaining TierType = "remaining"
)

// Tier is one rung of the promote stack.
type Tier struct {
	Type    TierType `json:"type"`
	Hurdle  float64  `json:"hurdle"` // Annualized IRR (e.g. 0.12) or equity multiple (e.g. 1.5)
	LPSplit float64  `json:"lp_split"`
	GPSplit float64  `json:"gp_split"`
}

// Config describes the full waterfall.
type Config struct {
	// PreferredRate accrues simple, non-compounding, on each party's
	// unreturned capital, prorated per distribution period.
	PreferredRate float64 `json:"preferred_rate"`

	// CatchUpShare is the GP's share of each catch-up dollar (1.0 = full
	// catch-up). CatchUpTarget is the GP profit share the catch-up restores
	// (e.g. 0.20); zero disables the stage.
	CatchUpShare  float64 `json:"catch_up_share"`
	CatchUpTarget float64 `json:"catch_up_target"`

	Tiers []Tier `json:"tiers"`
}

// Validate rejects malformed waterfall configurations before any cash moves.
// Nothing is silently corrected.
func (c Config) Validate() error {
	if c.PreferredRate < 0 {
		return fmt.Errorf("preferred rate cannot be negative, got %.4f", c.PreferredRate)
	}
	if c.CatchUpTarget < 0 || c.CatchUpTarget >= 1 {
		return fmt.Errorf("catch-up target must be in [0,1), got %.4f", c.CatchUpTarget)
	}
	if c.CatchUpTarget > 0 && (c.CatchUpShare <= 0 || c.CatchUpShare > 1) {
		return fmt.Errorf("catch-up share must be in (0,1], got %.4f", c.CatchUpShare)
	}
	if len(c.Tiers) == 0 {
		return fmt.Errorf("waterfall requires at least a remaining tier")
	}

	prevHurdle := math.Inf(-1)
	for i, tier := range c.Tiers {
		if sum := tier.LPSplit + tier.GPSplit; math.Abs(sum-1.0) > splitTolerance {
			return fmt.Errorf("tier %d splits must sum to 1.0, got %.6f", i, sum)
		}
		if tier.LPSplit < 0 || tier.GPSplit < 0 {
			return fmt.Errorf("tier %d splits cannot be negative", i)
		}

		switch tier.Type {
		case TierRemaining:
			if i != len(c.Tiers)-1 {
				return fmt.Errorf("remaining tier must be last, found at index %d", i)
			}
		case TierIRRHurdle, TierEquityMultiple:
			if i == len(c.Tiers)-1 {
				return fmt.Errorf("final tier must be of type remaining, got %q", tier.Type)
			}
			if tier.Hurdle <= 0 {
				return fmt.Errorf("tier %d hurdle must be positive, got %.4f", i, tier.Hurdle)
			}
			if tier.LPSplit == 0 {
				return fmt.Errorf("tier %d: hurdle tier needs a positive LP split to ever satisfy its hurdle", i)
			}
			if tier.Hurdle <= prevHurdle {
				return fmt.Errorf("tier hurdles must be strictly increasing: tier %d hurdle %.4f <= prior %.4f", i, tier.Hurdle, prevHurdle)
			}
			prevHurdle = tier.Hurdle
		default:
			return fmt.Errorf("tier %d has unknown type %q", i, tier.Type)
		}
	}
	return nil
}

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

// Event is one distribution of cash at a period index (1-based; period 0 is
// the contribution date). Events must be ordered by ascending period.
type Event struct {
	Period int     `json:"period"`
	Cash   float64 `json:"cash"`
}

// Input drives one full waterfall run.
type Input struct {
	LPContribution float64 `json:"lp_contribution"` // At period 0
	GPContribution float64 `json:"gp_contribution"` // At period 0
	PeriodsPerYear int     `json:"periods_per_year"`
	Events         []Event `json:"events"`
	Config         Config  `json:"config"`
}

// Allocation records where one slice of an event's cash landed.
type Allocation struct {
	Period int     `json:"period"`
	Stage  string  `json:"stage"`
	LP     float64 `json:"lp"`
	GP     float64 `json:"gp"`
}

// PartyTotals aggregates one side's outcome. Derived, never mutated after
// computation.
type PartyTotals struct {
	Contributed     float64           `json:"contributed"`
	ReturnOfCapital float64           `json:"return_of_capital"`
	Preferred       float64           `json:"preferred"`
	CatchUp         float64           `json:"catch_up"`
	Promote         float64           `json:"promote"` // Promote + remaining tiers
	Total           float64           `json:"total"`
	IRR             metrics.IRRResult `json:"irr"`
	EquityMultiple  float64           `json:"equity_multiple"`
}

// DistributionResult is the full outcome of a waterfall run.
type DistributionResult struct {
	LP          PartyTotals  `json:"lp"`
	GP          PartyTotals  `json:"gp"`
	Allocations []Allocation `json:"allocations"`
}
