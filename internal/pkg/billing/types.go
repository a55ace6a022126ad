package billing

import (
	"errors"
	"time"
)

// Closed set of expected activation outcomes. Storage failures are
// returned as-is and are retryable; these two are terminal for the
// request.
var (
	// ErrUnknownPlan signals a plan code that is not in the catalog.
	ErrUnknownPlan = errors.New("unknown plan")

	// ErrDenied covers every authenticity failure: bad signature, order
	// not found, order/user/plan mismatch. Deliberately indistinct so an
	// attacker probing the endpoint learns nothing about which check
	// failed.
	ErrDenied = errors.New("payment verification denied")
)

// ActivationInput carries one payment confirmation delivery.
type ActivationInput struct {
	UserID     uint
	OrderID    string
	PlanCode   string
	PaymentRef string
	Signature  string
}

// ActivationResult is the success shape of Activate. A replayed delivery
// of an already-consumed order returns the same shape with Replayed set.
type ActivationResult struct {
	OrderID   string     `json:"order_id"`
	PlanCode  string     `json:"plan_code"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Replayed  bool       `json:"-"`
}

// CheckoutOrder is returned to the client when a payment order is created.
type CheckoutOrder struct {
	OrderID     string `json:"order_id"`
	PlanCode    string `json:"plan_code"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	KeyID       string `json:"key_id"`
}

// SubscriptionStatus is the read model for the current subscription, with
// lazy expiry already applied.
type SubscriptionStatus struct {
	PlanCode  string     `json:"plan_code"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
