package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserDefaults(t *testing.T) {
	user, err := CreateUser("test@example.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, ROLE_USER, user.Role)
	assert.Equal(t, STATUS_ACTIVE, user.Status)
	assert.Equal(t, FreePlanCode, user.PlanCode)
	assert.Equal(t, PLAN_STATUS_FREE, user.PlanStatus)
	assert.Nil(t, user.PlanExpiresAt)

	// Password is stored hashed, never verbatim.
	assert.NotEqual(t, "secret123", user.Password)
	assert.True(t, user.CheckPassword("secret123"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestCreateUserValidation(t *testing.T) {
	_, err := CreateUser("not-an-email", "secret123")
	assert.Error(t, err)

	_, err = CreateUser("test@example.com", "short")
	assert.Error(t, err)
}

func TestSubscriptionExpired(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		user User
		want bool
	}{
		{name: "free user never expires", user: User{PlanStatus: PLAN_STATUS_FREE}, want: false},
		{name: "active without expiry is perpetual", user: User{PlanStatus: PLAN_STATUS_ACTIVE}, want: false},
		{name: "active in the future", user: User{PlanStatus: PLAN_STATUS_ACTIVE, PlanExpiresAt: &future}, want: false},
		{name: "active in the past", user: User{PlanStatus: PLAN_STATUS_ACTIVE, PlanExpiresAt: &past}, want: true},
		{name: "exactly at expiry", user: User{PlanStatus: PLAN_STATUS_ACTIVE, PlanExpiresAt: &now}, want: true},
		{name: "pending never expires", user: User{PlanStatus: PLAN_STATUS_PENDING, PlanExpiresAt: &past}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.SubscriptionExpired(now))
		})
	}
}

func TestEffectivePlanLazyExpiry(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	live := User{PlanCode: "pro_monthly", PlanStatus: PLAN_STATUS_ACTIVE, PlanExpiresAt: &future}
	assert.Equal(t, "pro_monthly", live.EffectivePlanCode(now))
	assert.Equal(t, PLAN_STATUS_ACTIVE, live.EffectivePlanStatus(now))

	lapsed := User{PlanCode: "pro_monthly", PlanStatus: PLAN_STATUS_ACTIVE, PlanExpiresAt: &past}
	assert.Equal(t, FreePlanCode, lapsed.EffectivePlanCode(now))
	assert.Equal(t, PLAN_STATUS_EXPIRED, lapsed.EffectivePlanStatus(now))

	free := User{PlanCode: FreePlanCode, PlanStatus: PLAN_STATUS_FREE}
	assert.Equal(t, FreePlanCode, free.EffectivePlanCode(now))
	assert.Equal(t, PLAN_STATUS_FREE, free.EffectivePlanStatus(now))
}

func TestPaymentOrderIsConsumed(t *testing.T) {
	order := PaymentOrder{Status: ORDER_STATUS_CREATED}
	assert.False(t, order.IsConsumed())

	order.Status = ORDER_STATUS_VERIFIED
	assert.False(t, order.IsConsumed())

	order.Status = ORDER_STATUS_CONSUMED
	assert.True(t, order.IsConsumed())
}
