package repository

import (
	"time"

	"github.com/blackbrainhq/blackbrain/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	UpdateLastLogin(id uint, at time.Time) error
}

// BrainRequestRepository defines the interface for the append-only request log
type BrainRequestRepository interface {
	Create(entry *models.BrainRequest) error
	CountInRange(userID uint, from, to time.Time) (int64, error)
	ListByUser(userID uint, offset, limit int) ([]models.BrainRequest, error)
	DeleteByUser(userID uint) (int64, error)
}

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	BrainRequest BrainRequestRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		BrainRequest: NewBrainRequestRepository(db),
	}
}
