package plans

import (
	"fmt"
	"time"
)

// FeatureAll is the sentinel feature that grants access to every mode.
const FeatureAll = "all"

// PlanDefinition describes a subscription tier. Definitions are immutable
// after catalog construction; changing billing terms requires a redeploy.
type PlanDefinition struct {
	Code         string
	Name         string
	PriceMinor   int64
	Duration     time.Duration // zero = perpetual (free tier)
	Features     []string
	featureIndex map[string]struct{}
}

// HasFeature reports whether the plan grants the given feature, either
// literally or via the "all" sentinel. Matching is exact, no hierarchy.
func (p *PlanDefinition) HasFeature(feature string) bool {
	if p.HasAllFeatures() {
		return true
	}
	_, ok := p.featureIndex[feature]
	return ok
}

// HasAllFeatures reports whether the plan carries the "all" sentinel.
func (p *PlanDefinition) HasAllFeatures() bool {
	_, ok := p.featureIndex[FeatureAll]
	return ok
}

// IsPerpetual reports whether the plan never expires.
func (p *PlanDefinition) IsPerpetual() bool {
	return p.Duration == 0
}

// IsMetered reports whether usage on this plan is subject to the daily
// quota: only unpaid plans without the "all" sentinel are metered.
func (p *PlanDefinition) IsMetered() bool {
	return p.PriceMinor == 0 && !p.HasAllFeatures()
}

// Catalog is the process-wide read-only plan registry. It is built once at
// startup and injected into every component that needs it.
type Catalog struct {
	plans map[string]*PlanDefinition
	order []string
}

// NewCatalog validates the given definitions and builds a catalog.
// An empty catalog, a negative price or a duplicate code is a
// configuration error the process must not start with.
func NewCatalog(defs []PlanDefinition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("plan catalog is empty")
	}

	c := &Catalog{
		plans: make(map[string]*PlanDefinition, len(defs)),
		order: make([]string, 0, len(defs)),
	}
	for i := range defs {
		def := defs[i]
		if def.Code == "" {
			return nil, fmt.Errorf("plan with empty code")
		}
		if def.PriceMinor < 0 {
			return nil, fmt.Errorf("plan %s has negative price %d", def.Code, def.PriceMinor)
		}
		if _, exists := c.plans[def.Code]; exists {
			return nil, fmt.Errorf("duplicate plan code %s", def.Code)
		}
		def.featureIndex = make(map[string]struct{}, len(def.Features))
		for _, f := range def.Features {
			def.featureIndex[f] = struct{}{}
		}
		c.plans[def.Code] = &def
		c.order = append(c.order, def.Code)
	}
	return c, nil
}

// Lookup returns the plan definition for the given code.
func (c *Catalog) Lookup(code string) (*PlanDefinition, bool) {
	p, ok := c.plans[code]
	return p, ok
}

// List returns all plan definitions in declaration order, for the public
// "available plans" listing.
func (c *Catalog) List() []*PlanDefinition {
	out := make([]*PlanDefinition, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, c.plans[code])
	}
	return out
}

// Default returns the built-in BlackBrain plan catalog.
func Default() []PlanDefinition {
	return []PlanDefinition{
		{
			Code:       "free",
			Name:       "Free",
			PriceMinor: 0,
			Features:   []string{"basic"},
		},
		{
			Code:       "pro_monthly",
			Name:       "Pro Monthly",
			PriceMinor: 199,
			Duration:   30 * 24 * time.Hour,
			Features:   []string{"basic", "decision", "study", "money"},
		},
		{
			Code:       "ultra_monthly",
			Name:       "Ultra Monthly",
			PriceMinor: 499,
			Duration:   30 * 24 * time.Hour,
			Features:   []string{"basic", "decision", "study", "money", "problem", "nobullshit"},
		},
		{
			Code:       "yearly",
			Name:       "Yearly",
			PriceMinor: 4999,
			Duration:   365 * 24 * time.Hour,
			Features:   []string{FeatureAll},
		},
	}
}

// MustDefaultCatalog builds the default catalog and panics on invalid
// configuration. Intended for process startup only.
func MustDefaultCatalog() *Catalog {
	c, err := NewCatalog(Default())
	if err != nil {
		panic(err)
	}
	return c
}
