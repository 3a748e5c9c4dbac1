package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lawyer status constants
const (
	LawyerStatusActive   = "active"
	LawyerStatusInactive = "inactive"
)

// Lawyer is an attorney who can be assigned lawsuits. The lawsuits it handles
// are queried through lawsuits.lawyer_id, never stored on the lawyer.
type Lawyer struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name           string `gorm:"size:100;not null" json:"name"`
	Email          string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone          string `gorm:"size:15;not null" json:"phone"`
	Specialization string `gorm:"size:100;not null;index" json:"specialization"`
	Status         string `gorm:"size:20;not null;default:active;index" json:"status"`
}

// BeforeCreate hook to generate UUID and default the status
func (l *Lawyer) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Status == "" {
		l.Status = LawyerStatusActive
	}
	return nil
}

// TableName specifies the table name for Lawyer model
func (Lawyer) TableName() string {
	return "lawyers"
}

// IsActive checks if the lawyer can take new assignments
func (l *Lawyer) IsActive() bool {
	return l.Status == LawyerStatusActive
}

// IsValidLawyerStatus checks if the status is valid
func IsValidLawyerStatus(status string) bool {
	return status == LawyerStatusActive || status == LawyerStatusInactive
}

// GetID returns the primary key
func (l *Lawyer) GetID() string {
	return l.ID
}
