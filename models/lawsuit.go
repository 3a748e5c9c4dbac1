package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lawsuit status constants
const (
	LawsuitStatusPending  = "pending"
	LawsuitStatusAssigned = "assigned"
	LawsuitStatusResolved = "resolved"
)

// Case type constants
const (
	CaseTypeCivil      = "civil"
	CaseTypeCriminal   = "criminal"
	CaseTypeLabor      = "labor"
	CaseTypeCommercial = "commercial"
)

// Lawsuit represents a legal case handled by at most one lawyer
type Lawsuit struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaseNumber string `gorm:"size:50;uniqueIndex;not null" json:"case_number"`
	Plaintiff  string `gorm:"size:200;not null" json:"plaintiff"`
	Defendant  string `gorm:"size:200;not null" json:"defendant"`
	CaseType   string `gorm:"size:20;not null;index" json:"case_type"`
	Status     string `gorm:"size:20;not null;default:pending;index" json:"status"`

	// Assignment. Cleared by the database when the lawyer row is removed.
	LawyerID *string `gorm:"type:uuid;index" json:"lawyer_id"`
	Lawyer   *Lawyer `gorm:"foreignKey:LawyerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"lawyer,omitempty"`
}

// BeforeCreate hook to generate UUID and default the status
func (l *Lawsuit) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Status == "" {
		l.Status = LawsuitStatusPending
	}
	return nil
}

// TableName specifies the table name for Lawsuit model
func (Lawsuit) TableName() string {
	return "lawsuits"
}

// IsAssigned checks if the lawsuit currently counts toward a lawyer's workload
func (l *Lawsuit) IsAssigned() bool {
	return l.Status == LawsuitStatusAssigned
}

// LawsuitStatuses lists the valid statuses in lifecycle order
func LawsuitStatuses() []string {
	return []string{LawsuitStatusPending, LawsuitStatusAssigned, LawsuitStatusResolved}
}

// CaseTypes lists the valid case types
func CaseTypes() []string {
	return []string{CaseTypeCivil, CaseTypeCriminal, CaseTypeLabor, CaseTypeCommercial}
}

// IsValidLawsuitStatus checks if the status is valid
func IsValidLawsuitStatus(status string) bool {
	for _, s := range LawsuitStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// IsValidCaseType checks if the case type is valid
func IsValidCaseType(caseType string) bool {
	for _, t := range CaseTypes() {
		if t == caseType {
			return true
		}
	}
	return false
}

// GetID returns the primary key
func (l *Lawsuit) GetID() string {
	return l.ID
}
