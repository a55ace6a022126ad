package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/blackbrainhq/blackbrain/app/models"
	"github.com/blackbrainhq/blackbrain/internal/pkg/plans"
)

type fakeRepo struct {
	orders map[string]*models.PaymentOrder
	users  map[uint]*models.User

	// When set, ConsumeOrderAndActivate defers to this instead of the
	// in-memory transition. Used to simulate a lost race.
	consumeFn func() (bool, error)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders: make(map[string]*models.PaymentOrder),
		users:  make(map[uint]*models.User),
	}
}

func (f *fakeRepo) CreateOrder(order *models.PaymentOrder) error {
	f.orders[order.OrderID] = order
	return nil
}

func (f *fakeRepo) GetOrderByOrderID(orderID string) (*models.PaymentOrder, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeRepo) MarkOrderVerified(orderID, paymentRef string) error {
	order, ok := f.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if order.Status == models.ORDER_STATUS_CREATED {
		order.Status = models.ORDER_STATUS_VERIFIED
		order.PaymentRef = paymentRef
	}
	return nil
}

func (f *fakeRepo) ConsumeOrderAndActivate(orderID, paymentRef string, userID uint, planCode string, expiresAt *time.Time) (bool, error) {
	if f.consumeFn != nil {
		return f.consumeFn()
	}
	order, ok := f.orders[orderID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if order.Status != models.ORDER_STATUS_VERIFIED {
		return false, nil
	}
	now := time.Now().UTC()
	order.Status = models.ORDER_STATUS_CONSUMED
	order.PaymentRef = paymentRef
	order.ConsumedAt = &now

	user := f.users[userID]
	user.PlanCode = planCode
	user.PlanStatus = models.PLAN_STATUS_ACTIVE
	user.PlanExpiresAt = expiresAt
	user.LastPaymentRef = orderID
	return true, nil
}

func (f *fakeRepo) MarkUserPlanPending(userID uint) error {
	user, ok := f.users[userID]
	if !ok {
		return nil
	}
	if user.PlanStatus == models.PLAN_STATUS_FREE || user.PlanStatus == models.PLAN_STATUS_EXPIRED {
		user.PlanStatus = models.PLAN_STATUS_PENDING
	}
	return nil
}

func (f *fakeRepo) GetUser(userID uint) (*models.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func newTestService(repo Repository) *Service {
	verifier := NewVerifier("test-secret")
	s := NewService(repo, plans.MustDefaultCatalog(), verifier, "rzp_test_key")
	s.now = func() time.Time {
		return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	return s
}

func seedOrder(repo *fakeRepo, userID uint, planCode string) *models.PaymentOrder {
	order := &models.PaymentOrder{
		OrderID:     NewOrderID(),
		UserID:      userID,
		PlanCode:    planCode,
		AmountMinor: 199,
		Currency:    "INR",
		Status:      models.ORDER_STATUS_CREATED,
	}
	repo.orders[order.OrderID] = order
	repo.users[userID] = &models.User{
		ID:         userID,
		PlanCode:   models.FreePlanCode,
		PlanStatus: models.PLAN_STATUS_FREE,
	}
	return order
}

func TestActivateSuccess(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(repo)
	order := seedOrder(repo, 7, "pro_monthly")

	result, err := s.Activate(context.Background(), ActivationInput{
		UserID:     7,
		OrderID:    order.OrderID,
		PlanCode:   "pro_monthly",
		PaymentRef: "pay_123",
		Signature:  s.verifier.Sign(order.OrderID, "pay_123"),
	})
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if result.Status != models.PLAN_STATUS_ACTIVE {
		t.Fatalf("result status = %q, want active", result.Status)
	}
	if result.Replayed {
		t.Fatalf("first activation must not be a replay")
	}

	wantExpiry := time.Date(2025, 4, 9, 12, 0, 0, 0, time.UTC)
	if result.ExpiresAt == nil || !result.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("ExpiresAt = %v, want %v", result.ExpiresAt, wantExpiry)
	}

	user := repo.users[7]
	if user.PlanCode != "pro_monthly" || user.PlanStatus != models.PLAN_STATUS_ACTIVE {
		t.Fatalf("user not activated: plan=%q status=%q", user.PlanCode, user.PlanStatus)
	}
	if repo.orders[order.OrderID].Status != models.ORDER_STATUS_CONSUMED {
		t.Fatalf("order status = %q, want consumed", repo.orders[order.OrderID].Status)
	}
}

func TestActivateReplayDoesNotExtend(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(repo)
	order := seedOrder(repo, 7, "pro_monthly")

	in := ActivationInput{
		UserID:     7,
		OrderID:    order.OrderID,
		PlanCode:   "pro_monthly",
		PaymentRef: "pay_123",
		Signature:  s.verifier.Sign(order.OrderID, "pay_123"),
	}

	first, err := s.Activate(context.Background(), in)
	if err != nil {
		t.Fatalf("first Activate: %v", err)
	}

	// Pretend time passed between deliveries; the replay must not shift
	// the expiry forward.
	s.now = func() time.Time {
		return time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	}

	second, err := s.Activate(context.Background(), in)
	if err != nil {
		t.Fatalf("second Activate: %v", err)
	}
	if !second.Replayed {
		t.Fatalf("expected replay on redelivery")
	}
	if second.ExpiresAt == nil || !second.ExpiresAt.Equal(*first.ExpiresAt) {
		t.Fatalf("replay ExpiresAt = %v, want %v", second.ExpiresAt, first.ExpiresAt)
	}
	if !repo.users[7].PlanExpiresAt.Equal(*first.ExpiresAt) {
		t.Fatalf("replay changed stored expiry")
	}
}

func TestActivateReplayWithoutSignatureCheck(t *testing.T) {
	// A consumed order replays even when the redelivered signature is
	// garbage; the original verification already happened.
	repo := newFakeRepo()
	s := newTestService(repo)
	order := seedOrder(repo, 7, "pro_monthly")

	in := ActivationInput{
		UserID:     7,
		OrderID:    order.OrderID,
		PlanCode:   "pro_monthly",
		PaymentRef: "pay_123",
		Signature:  s.verifier.Sign(order.OrderID, "pay_123"),
	}
	if _, err := s.Activate(context.Background(), in); err != nil {
		t.Fatalf("first Activate: %v", err)
	}

	in.Signature = "deadbeef"
	result, err := s.Activate(context.Background(), in)
	if err != nil {
		t.Fatalf("replay Activate: %v", err)
	}
	if !result.Replayed {
		t.Fatalf("expected replay")
	}
}

func TestActivateUnknownPlan(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(repo)
	order := seedOrder(repo, 7, "pro_monthly")

	_, err := s.Activate(context.Background(), ActivationInput{
		UserID:     7,
		OrderID:    order.OrderID,
		PlanCode:   "no_such_plan",
		PaymentRef: "pay_123",
		Signature:  s.verifier.Sign(order.OrderID, "pay_123"),
	})
	if !errors.Is(err, ErrUnknownPlan) {
		t.Fatalf("expected ErrUnknownPlan, got %v", err)
	}
	if repo.orders[order.OrderID].Status != models.ORDER_STATUS_CREATED {
		t.Fatalf("unknown plan must not touch the order")
	}
}

func TestActivateDenied(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(repo)
	order := seedOrder(repo, 7, "pro_monthly")
	goodSig := s.verifier.Sign(order.OrderID, "pay_123")

	tests := []struct {
		name string
		in   ActivationInput
	}{
		{
			name: "order not found",
			in:   ActivationInput{UserID: 7, OrderID: "order_missing", PlanCode: "pro_monthly", PaymentRef: "pay_123", Signature: goodSig},
		},
		{
			name: "wrong user",
			in:   ActivationInput{UserID: 8, OrderID: order.OrderID, PlanCode: "pro_monthly", PaymentRef: "pay_123", Signature: goodSig},
		},
		{
			name: "wrong plan for order",
			in:   ActivationInput{UserID: 7, OrderID: order.OrderID, PlanCode: "ultra_monthly", PaymentRef: "pay_123", Signature: goodSig},
		},
		{
			name: "bad signature",
			in:   ActivationInput{UserID: 7, OrderID: order.OrderID, PlanCode: "pro_monthly", PaymentRef: "pay_123", Signature: "deadbeef"},
		},
	}

	for _, tt := range tests {
		if _, err := s.Activate(context.Background(), tt.in); !errors.Is(err, ErrDenied) {
			t.Fatalf("%s: expected ErrDenied, got %v", tt.name, err)
		}
	}

	if repo.orders[order.OrderID].Status == models.ORDER_STATUS_CONSUMED {
		t.Fatalf("denied activation must not consume the order")
	}
	if repo.users[7].PlanCode != models.FreePlanCode {
		t.Fatalf("denied activation must not change the plan")
	}
}

func TestActivateLostRaceReplays(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(repo)
	order := seedOrder(repo, 7, "pro_monthly")

	// The CAS reports a loss while the stored order is already consumed,
	// as it would be after a concurrent delivery won.
	expiry := time.Date(2025, 4, 9, 12, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	stored := repo.orders[order.OrderID]
	stored.Status = models.ORDER_STATUS_CONSUMED
	stored.PaymentRef = "pay_123"
	stored.ConsumedAt = &now
	repo.users[7].PlanCode = "pro_monthly"
	repo.users[7].PlanStatus = models.PLAN_STATUS_ACTIVE
	repo.users[7].PlanExpiresAt = &expiry
	repo.users[7].LastPaymentRef = order.OrderID
	repo.consumeFn = func() (bool, error) { return false, nil }

	result, err := s.Activate(context.Background(), ActivationInput{
		UserID:     7,
		OrderID:    order.OrderID,
		PlanCode:   "pro_monthly",
		PaymentRef: "pay_123",
		Signature:  s.verifier.Sign(order.OrderID, "pay_123"),
	})
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if !result.Replayed {
		t.Fatalf("expected lost race to return the replay result")
	}
	if result.ExpiresAt == nil || !result.ExpiresAt.Equal(expiry) {
		t.Fatalf("ExpiresAt = %v, want %v", result.ExpiresAt, expiry)
	}
}

func TestCreateOrder(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(repo)
	repo.users[7] = &models.User{ID: 7, PlanCode: models.FreePlanCode, PlanStatus: models.PLAN_STATUS_FREE}

	order, err := s.CreateOrder(context.Background(), 7, "ultra_monthly")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.AmountMinor != 499 || order.Currency != "INR" {
		t.Fatalf("order terms = %d %s, want 499 INR", order.AmountMinor, order.Currency)
	}
	if order.KeyID != "rzp_test_key" {
		t.Fatalf("order KeyID = %q", order.KeyID)
	}
	stored := repo.orders[order.OrderID]
	if stored == nil || stored.Status != models.ORDER_STATUS_CREATED {
		t.Fatalf("expected stored order in created state")
	}
	if repo.users[7].PlanStatus != models.PLAN_STATUS_PENDING {
		t.Fatalf("expected checkout to mark the user pending")
	}

	if _, err := s.CreateOrder(context.Background(), 7, "no_such_plan"); !errors.Is(err, ErrUnknownPlan) {
		t.Fatalf("expected ErrUnknownPlan, got %v", err)
	}
	if _, err := s.CreateOrder(context.Background(), 7, "free"); err == nil {
		t.Fatalf("expected error creating an order for the free plan")
	}
}

func TestStatusLazyExpiry(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(repo)

	expired := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	repo.users[7] = &models.User{
		ID:            7,
		PlanCode:      "pro_monthly",
		PlanStatus:    models.PLAN_STATUS_ACTIVE,
		PlanExpiresAt: &expired,
	}

	status, err := s.Status(context.Background(), 7)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.PlanCode != models.FreePlanCode || status.Status != models.PLAN_STATUS_EXPIRED {
		t.Fatalf("status = %q/%q, want free/expired", status.PlanCode, status.Status)
	}

	// Still in the future: reads as-is.
	future := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	repo.users[7].PlanExpiresAt = &future
	status, err = s.Status(context.Background(), 7)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.PlanCode != "pro_monthly" || status.Status != models.PLAN_STATUS_ACTIVE {
		t.Fatalf("status = %q/%q, want pro_monthly/active", status.PlanCode, status.Status)
	}
}
