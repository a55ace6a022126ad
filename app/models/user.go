package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_USER  = "user"
	ROLE_ADMIN = "admin"

	STATUS_ACTIVE   = "active"
	STATUS_DISABLED = "disabled"
)

// Subscription states stored on the user record. A stored ACTIVE state is
// only trusted after comparing PlanExpiresAt against the current time
// (lazy expiry); see EffectivePlanCode.
const (
	PLAN_STATUS_FREE    = "free"
	PLAN_STATUS_PENDING = "pending"
	PLAN_STATUS_ACTIVE  = "active"
	PLAN_STATUS_EXPIRED = "expired"
)

// FreePlanCode is the fallback plan for users without a live subscription.
const FreePlanCode = "free"

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Email    string `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Password string `gorm:"type:text" json:"-" validate:"required,min=6"`
	Role     string `gorm:"type:varchar(50);default:'user'" json:"role" validate:"oneof=user admin"`
	Status   string `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active disabled"`

	// Embedded subscription state.
	PlanCode       string     `gorm:"type:varchar(50);default:'free';index" json:"plan_code"`
	PlanStatus     string     `gorm:"type:varchar(16);default:'free'" json:"plan_status" validate:"oneof=free pending active expired"`
	PlanExpiresAt  *time.Time `gorm:"type:timestamp;default:null" json:"plan_expires_at"`
	LastPaymentRef string     `gorm:"type:varchar(191);default:null" json:"-"`

	QuestionCount int64 `gorm:"not null;default:0" json:"question_count"`

	LastLoginAt *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func CreateUser(email string, password string) (*User, error) {
	u := &User{
		Email:      email,
		Password:   password,
		Role:       ROLE_USER,
		Status:     STATUS_ACTIVE,
		PlanCode:   FreePlanCode,
		PlanStatus: PLAN_STATUS_FREE,
	}

	// Validate before hashing so the min length applies to the raw
	// password, not the bcrypt digest.
	if err := u.Validate(); err != nil {
		return nil, err
	}

	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u.Password = pw

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// SubscriptionExpired reports whether the stored subscription has lapsed at
// the given instant. No background sweeper is guaranteed to have run, so
// every reader must apply this check instead of trusting PlanStatus.
func (u *User) SubscriptionExpired(now time.Time) bool {
	if u.PlanStatus != PLAN_STATUS_ACTIVE {
		return false
	}
	return u.PlanExpiresAt != nil && !u.PlanExpiresAt.After(now)
}

// EffectivePlanCode returns the plan the user is entitled to at the given
// instant: the stored plan while the subscription is live, the free plan
// once it has lapsed or was never activated.
func (u *User) EffectivePlanCode(now time.Time) string {
	if u.PlanStatus == PLAN_STATUS_ACTIVE && !u.SubscriptionExpired(now) {
		return u.PlanCode
	}
	return FreePlanCode
}

// EffectivePlanStatus returns the subscription status with lazy expiry
// applied.
func (u *User) EffectivePlanStatus(now time.Time) string {
	if u.SubscriptionExpired(now) {
		return PLAN_STATUS_EXPIRED
	}
	return u.PlanStatus
}
