package billing

import (
	"time"

	"github.com/blackbrainhq/blackbrain/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	CreateOrder(order *models.PaymentOrder) error
	GetOrderByOrderID(orderID string) (*models.PaymentOrder, error)
	MarkOrderVerified(orderID, paymentRef string) error
	// ConsumeOrderAndActivate performs the verified -> consumed transition
	// as one conditional update and, when it wins, writes the user's
	// subscription state in the same transaction. Returns false without
	// error when another call already consumed the order.
	ConsumeOrderAndActivate(orderID, paymentRef string, userID uint, planCode string, expiresAt *time.Time) (bool, error)
	MarkUserPlanPending(userID uint) error
	GetUser(userID uint) (*models.User, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateOrder(order *models.PaymentOrder) error {
	return r.db.Create(order).Error
}

func (r *gormRepository) GetOrderByOrderID(orderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	err := r.db.Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkOrderVerified records a passed signature check. Conditional on the
// order still being in its initial state; losing this race is harmless
// because the consume step re-checks.
func (r *gormRepository) MarkOrderVerified(orderID, paymentRef string) error {
	return r.db.Model(&models.PaymentOrder{}).
		Where("order_id = ? AND status = ?", orderID, models.ORDER_STATUS_CREATED).
		Updates(map[string]interface{}{
			"status":      models.ORDER_STATUS_VERIFIED,
			"payment_ref": paymentRef,
		}).Error
}

// ConsumeOrderAndActivate guards the terminal transition with a single
// compare-and-set UPDATE. Two racing activations cannot both observe
// RowsAffected > 0, so the subscription write applies at most once per
// order.
func (r *gormRepository) ConsumeOrderAndActivate(orderID, paymentRef string, userID uint, planCode string, expiresAt *time.Time) (bool, error) {
	consumed := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&models.PaymentOrder{}).
			Where("order_id = ? AND status = ?", orderID, models.ORDER_STATUS_VERIFIED).
			Updates(map[string]interface{}{
				"status":      models.ORDER_STATUS_CONSUMED,
				"payment_ref": paymentRef,
				"consumed_at": &now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		consumed = true

		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"plan_code":        planCode,
				"plan_status":      models.PLAN_STATUS_ACTIVE,
				"plan_expires_at":  expiresAt,
				"last_payment_ref": orderID,
			}).Error
	})
	if err != nil {
		return false, err
	}
	return consumed, nil
}

// MarkUserPlanPending flags a checkout in progress. Conditional so a live
// subscription is never downgraded by a renewal checkout.
func (r *gormRepository) MarkUserPlanPending(userID uint) error {
	return r.db.Model(&models.User{}).
		Where("id = ? AND plan_status IN ?", userID, []string{models.PLAN_STATUS_FREE, models.PLAN_STATUS_EXPIRED}).
		Update("plan_status", models.PLAN_STATUS_PENDING).Error
}

func (r *gormRepository) GetUser(userID uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
