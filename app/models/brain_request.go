package models

import "time"

// BrainRequest is one append-only request log entry. The free-tier daily
// quota is recomputed from these rows per check; there is no separate
// counter to keep consistent.
type BrainRequest struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index:idx_brain_requests_user_created,priority:1" json:"user_id"`
	Question     string    `gorm:"type:text;not null" json:"question"`
	Mode         string    `gorm:"type:varchar(32);not null" json:"mode"`
	ResponseJSON string    `gorm:"type:longtext;not null" json:"response_json"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_brain_requests_user_created,priority:2" json:"created_at"`
}
