package models

import "time"

// Payment order states. A given order can reach CONSUMED at most once;
// that transition is the idempotency anchor for webhook and client
// retries.
const (
	ORDER_STATUS_CREATED  = "created"
	ORDER_STATUS_VERIFIED = "verified"
	ORDER_STATUS_CONSUMED = "consumed"
)

// PaymentOrder records a server-generated intention to pay for a plan and
// tracks its verification lifecycle.
type PaymentOrder struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	OrderID     string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	PlanCode    string     `gorm:"type:varchar(50);not null" json:"plan_code"`
	AmountMinor int64      `gorm:"not null" json:"amount_minor"`
	Currency    string     `gorm:"type:varchar(8);not null;default:'INR'" json:"currency"`
	Status      string     `gorm:"type:varchar(16);not null;default:'created';index" json:"status"`
	PaymentRef  string     `gorm:"type:varchar(191);default:''" json:"payment_ref"`
	ConsumedAt  *time.Time `gorm:"type:timestamp;default:null" json:"consumed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsConsumed reports whether the order already reached its terminal state.
func (o *PaymentOrder) IsConsumed() bool {
	return o.Status == ORDER_STATUS_CONSUMED
}
