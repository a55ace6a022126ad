package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blackbrainhq/blackbrain/app/models"
	"github.com/blackbrainhq/blackbrain/internal/pkg/plans"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service orchestrates payment order creation, verification and the
// idempotent subscription activation.
type Service struct {
	repo     Repository
	catalog  *plans.Catalog
	verifier *Verifier
	keyID    string
	now      func() time.Time
}

// NewService creates a billing service from injected collaborators.
func NewService(repo Repository, catalog *plans.Catalog, verifier *Verifier, keyID string) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		verifier: verifier,
		keyID:    keyID,
		now:      time.Now,
	}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, catalog *plans.Catalog, verifier *Verifier, keyID string) *Service {
	return NewService(NewRepository(db), catalog, verifier, keyID)
}

// NewOrderID generates a unique server-side order identifier.
func NewOrderID() string {
	return "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// CreateOrder records a payment intention for a billable plan and returns
// the checkout data the client needs to start the provider flow.
func (s *Service) CreateOrder(ctx context.Context, userID uint, planCode string) (*CheckoutOrder, error) {
	_ = ctx
	plan, ok := s.catalog.Lookup(planCode)
	if !ok {
		return nil, ErrUnknownPlan
	}
	if plan.PriceMinor <= 0 {
		return nil, fmt.Errorf("plan %s is not billable", planCode)
	}

	order := &models.PaymentOrder{
		OrderID:     NewOrderID(),
		UserID:      userID,
		PlanCode:    plan.Code,
		AmountMinor: plan.PriceMinor,
		Currency:    "INR",
		Status:      models.ORDER_STATUS_CREATED,
	}
	if err := s.repo.CreateOrder(order); err != nil {
		return nil, err
	}
	if err := s.repo.MarkUserPlanPending(userID); err != nil {
		return nil, err
	}

	return &CheckoutOrder{
		OrderID:     order.OrderID,
		PlanCode:    order.PlanCode,
		AmountMinor: order.AmountMinor,
		Currency:    order.Currency,
		KeyID:       s.keyID,
	}, nil
}

// Activate applies one payment confirmation to the user's subscription,
// exactly once per order regardless of delivery count.
//
// Order state machine: created -> verified (signature passed) -> consumed
// (subscription write committed). A consumed order replays the original
// success result without any state change.
func (s *Service) Activate(ctx context.Context, in ActivationInput) (*ActivationResult, error) {
	_ = ctx

	// Catalog check comes first so an invalid plan can never consume an
	// order.
	plan, ok := s.catalog.Lookup(in.PlanCode)
	if !ok {
		return nil, ErrUnknownPlan
	}

	order, err := s.repo.GetOrderByOrderID(in.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDenied
		}
		return nil, err
	}
	if order.UserID != in.UserID || order.PlanCode != in.PlanCode {
		return nil, ErrDenied
	}

	if order.IsConsumed() {
		return s.replayResult(order)
	}

	if !s.verifier.Verify(in.OrderID, in.PaymentRef, in.Signature) {
		return nil, ErrDenied
	}

	if err := s.repo.MarkOrderVerified(in.OrderID, in.PaymentRef); err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if !plan.IsPerpetual() {
		t := s.now().UTC().Add(plan.Duration)
		expiresAt = &t
	}

	consumed, err := s.repo.ConsumeOrderAndActivate(in.OrderID, in.PaymentRef, in.UserID, plan.Code, expiresAt)
	if err != nil {
		return nil, err
	}
	if !consumed {
		// Lost the race against a concurrent delivery of the same order.
		order, err := s.repo.GetOrderByOrderID(in.OrderID)
		if err != nil {
			return nil, err
		}
		if !order.IsConsumed() {
			return nil, fmt.Errorf("order %s in unexpected state %s", order.OrderID, order.Status)
		}
		return s.replayResult(order)
	}

	return &ActivationResult{
		OrderID:   in.OrderID,
		PlanCode:  plan.Code,
		Status:    models.PLAN_STATUS_ACTIVE,
		ExpiresAt: expiresAt,
	}, nil
}

// replayResult rebuilds the original activation result for an
// already-consumed order, without touching any state.
func (s *Service) replayResult(order *models.PaymentOrder) (*ActivationResult, error) {
	result := &ActivationResult{
		OrderID:  order.OrderID,
		PlanCode: order.PlanCode,
		Status:   models.PLAN_STATUS_ACTIVE,
		Replayed: true,
	}
	user, err := s.repo.GetUser(order.UserID)
	if err != nil {
		return nil, err
	}
	if user.LastPaymentRef == order.OrderID {
		result.ExpiresAt = user.PlanExpiresAt
	}
	return result, nil
}

// Status returns the user's current subscription with lazy expiry applied:
// a stored active state whose expiry has passed reads as expired even
// before any sweep updates the row.
func (s *Service) Status(ctx context.Context, userID uint) (*SubscriptionStatus, error) {
	_ = ctx
	user, err := s.repo.GetUser(userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &SubscriptionStatus{
		PlanCode:  user.EffectivePlanCode(now),
		Status:    user.EffectivePlanStatus(now),
		ExpiresAt: user.PlanExpiresAt,
	}, nil
}
