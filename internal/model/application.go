package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApplicationStatus represents the hiring pipeline stage of an application.
type ApplicationStatus string

const (
	StatusApplied            ApplicationStatus = "Applied"
	StatusUnderReview        ApplicationStatus = "Under Review"
	StatusInterviewScheduled ApplicationStatus = "Interview Scheduled"
	StatusRejected           ApplicationStatus = "Rejected"
	StatusOffer              ApplicationStatus = "Offer"
)

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusApplied, StatusUnderReview, StatusInterviewScheduled, StatusRejected, StatusOffer:
		return true
	}
	return false
}

// JobSource identifies the job board a posting came from.
type JobSource string

const (
	SourceAdzuna  JobSource = "Adzuna"
	SourceUSAJobs JobSource = "USAJOBS"
)

// Valid reports whether s is a supported job board.
func (s JobSource) Valid() bool {
	return s == SourceAdzuna || s == SourceUSAJobs
}

// Application is a user's logged submission to one external job posting.
type Application struct {
	ID                uuid.UUID         `json:"id" gorm:"type:char(36);primaryKey"`
	UserID            uuid.UUID         `json:"userId" gorm:"type:char(36);not null;index"`
	JobID             string            `json:"jobId" gorm:"size:128;not null"`
	Title             string            `json:"title" gorm:"size:255;not null"`
	Company           string            `json:"company" gorm:"size:255;not null"`
	Location          string            `json:"location,omitempty" gorm:"size:255"`
	Salary            string            `json:"salary,omitempty" gorm:"size:100"`
	AppliedDate       time.Time         `json:"appliedDate" gorm:"not null;index"`
	ConsiderationDate *time.Time        `json:"considerationDate,omitempty"`
	HiringManager     string            `json:"hiringManager,omitempty" gorm:"size:255"`
	ContactEmail      string            `json:"contactEmail,omitempty" gorm:"size:255"`
	ContactPhone      string            `json:"contactPhone,omitempty" gorm:"size:32"`
	Status            ApplicationStatus `json:"status" gorm:"type:varchar(32);not null;default:'Applied'"`
	Source            JobSource         `json:"source" gorm:"type:varchar(16);not null"`
	Notes             string            `json:"notes,omitempty" gorm:"type:text"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID, default status and applied date before creating the record.
func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = StatusApplied
	}
	if a.AppliedDate.IsZero() {
		a.AppliedDate = time.Now()
	}
	return nil
}
