package schema

import (
	"time"

	"gorm.io/gorm"
)

// RefreshRun is the audit trail of one refresh cycle: it makes the failure
// fact and the revision of the last success observable after the in-memory
// snapshot has moved on.
type RefreshRun struct {
	ID         string  `gorm:"primaryKey;size:36"`
	ChainID    int     `gorm:"index"`
	Generation uint64  `gorm:"not null"`
	Revision   uint64  `gorm:"not null"`
	Success    bool    `gorm:"not null"`
	Superseded bool    `gorm:"default:false"`
	Error      string  `gorm:"type:text"`
	Counts     JSONMap `gorm:"type:jsonb"`
	DurationMs int64

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at"`
}
