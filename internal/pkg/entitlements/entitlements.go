package entitlements

import (
	"github.com/blackbrainhq/blackbrain/internal/pkg/plans"
)

// DenyReason classifies why access was refused.
type DenyReason string

const (
	ReasonUnknownPlan     DenyReason = "unknown_plan"
	ReasonUpgradeRequired DenyReason = "upgrade_required"
)

// Decision is the outcome of a feature authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Gate decides feature access from the plan catalog. It holds no mutable
// state and is safe for concurrent use.
type Gate struct {
	catalog *plans.Catalog
}

// NewGate creates a feature gate over the given catalog.
func NewGate(catalog *plans.Catalog) *Gate {
	return &Gate{catalog: catalog}
}

// Authorize decides whether a plan grants the requested feature.
// Unknown plans deny access rather than falling back to any default
// permission set.
func (g *Gate) Authorize(planCode, feature string) Decision {
	plan, ok := g.catalog.Lookup(planCode)
	if !ok {
		return Decision{Allowed: false, Reason: ReasonUnknownPlan}
	}
	if plan.HasFeature(feature) {
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, Reason: ReasonUpgradeRequired}
}
