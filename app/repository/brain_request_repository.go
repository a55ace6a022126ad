package repository

import (
	"time"

	"github.com/blackbrainhq/blackbrain/app/models"
	"gorm.io/gorm"
)

// brainRequestRepository implements the BrainRequestRepository interface
type brainRequestRepository struct {
	db *gorm.DB
}

// NewBrainRequestRepository creates a new request log repository instance
func NewBrainRequestRepository(db *gorm.DB) BrainRequestRepository {
	return &brainRequestRepository{db: db}
}

// Create appends a new request log entry
func (r *brainRequestRepository) Create(entry *models.BrainRequest) error {
	return r.db.Create(entry).Error
}

// CountInRange counts a user's request log entries in [from, to)
func (r *brainRequestRepository) CountInRange(userID uint, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.BrainRequest{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Count(&count).Error
	return count, err
}

// ListByUser returns a user's request log entries, newest first
func (r *brainRequestRepository) ListByUser(userID uint, offset, limit int) ([]models.BrainRequest, error) {
	var entries []models.BrainRequest
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// DeleteByUser removes all request log entries for a user and returns the
// number of deleted rows. The same rows back the daily quota count, so
// clearing history also resets the remaining free-tier quota for the day.
func (r *brainRequestRepository) DeleteByUser(userID uint) (int64, error) {
	res := r.db.Where("user_id = ?", userID).Delete(&models.BrainRequest{})
	return res.RowsAffected, res.Error
}
