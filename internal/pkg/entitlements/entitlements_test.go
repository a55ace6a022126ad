package entitlements

import (
	"testing"

	"github.com/blackbrainhq/blackbrain/internal/pkg/plans"
)

func TestAuthorize(t *testing.T) {
	gate := NewGate(plans.MustDefaultCatalog())

	tests := []struct {
		plan    string
		feature string
		allowed bool
		reason  DenyReason
	}{
		{plan: "free", feature: "basic", allowed: true},
		{plan: "free", feature: "decision", allowed: false, reason: ReasonUpgradeRequired},
		{plan: "free", feature: "nobullshit", allowed: false, reason: ReasonUpgradeRequired},
		{plan: "pro_monthly", feature: "decision", allowed: true},
		{plan: "pro_monthly", feature: "problem", allowed: false, reason: ReasonUpgradeRequired},
		{plan: "ultra_monthly", feature: "problem", allowed: true},
		{plan: "yearly", feature: "nobullshit", allowed: true},
		{plan: "", feature: "basic", allowed: false, reason: ReasonUnknownPlan},
		{plan: "no_such_plan", feature: "basic", allowed: false, reason: ReasonUnknownPlan},
	}

	for _, tt := range tests {
		got := gate.Authorize(tt.plan, tt.feature)
		if got.Allowed != tt.allowed {
			t.Fatalf("Authorize(%q, %q).Allowed = %v, want %v", tt.plan, tt.feature, got.Allowed, tt.allowed)
		}
		if !tt.allowed && got.Reason != tt.reason {
			t.Fatalf("Authorize(%q, %q).Reason = %q, want %q", tt.plan, tt.feature, got.Reason, tt.reason)
		}
	}
}

func TestAuthorizeUnknownFeatureDenied(t *testing.T) {
	gate := NewGate(plans.MustDefaultCatalog())

	// Unknown features deny on every plan except those carrying "all".
	if d := gate.Authorize("pro_monthly", "telepathy"); d.Allowed {
		t.Fatalf("expected unknown feature to be denied on pro_monthly")
	}
	if d := gate.Authorize("yearly", "telepathy"); !d.Allowed {
		t.Fatalf("expected yearly (all) to allow any feature")
	}
}
