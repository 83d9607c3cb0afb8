package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubscriptionStatus represents the entitlement state of a user.
type SubscriptionStatus string

const (
	SubscriptionFree      SubscriptionStatus = "free"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// User represents a registered job seeker.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FirstName    string    `json:"firstName" gorm:"size:100;not null"`
	LastName     string    `json:"lastName" gorm:"size:100;not null"`
	Phone        string    `json:"phone,omitempty" gorm:"size:32"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	ApplicationCount          int  `json:"applicationCount" gorm:"not null;default:0"`
	FreeApplicationsRemaining int  `json:"freeApplicationsRemaining" gorm:"not null"`
	AcknowledgedFees          bool `json:"acknowledgedFees" gorm:"not null;default:false"`

	Subscription Subscription `json:"subscription" gorm:"embedded;embeddedPrefix:subscription_"`
	Resume       *Resume      `json:"resume,omitempty" gorm:"serializer:json;type:text"`
}

// Subscription is the time-bounded entitlement that lifts the free quota.
type Subscription struct {
	Status        SubscriptionStatus `json:"status" gorm:"size:20;not null;default:'free'"`
	StartDate     *time.Time         `json:"startDate,omitempty"`
	EndDate       *time.Time         `json:"endDate,omitempty"`
	PaymentMethod PaymentMethod      `json:"paymentMethod" gorm:"embedded;embeddedPrefix:payment_"`
}

// PaymentMethod is the masked card descriptor. The full number and CVV are never stored.
type PaymentMethod struct {
	CardLast4  string `json:"cardLast4,omitempty" gorm:"size:4"`
	CardType   string `json:"cardType,omitempty" gorm:"size:20"`
	ExpiryDate string `json:"expiryDate,omitempty" gorm:"size:7"`
}

// Resume holds the extracted text and the structured parse of the latest upload.
type Resume struct {
	OriginalText string       `json:"originalText"`
	Parsed       ParsedResume `json:"parsed"`
	UploadedAt   time.Time    `json:"uploadedAt"`
}

// ParsedResume is the structured summary returned by the resume parser.
type ParsedResume struct {
	Skills     []string     `json:"skills"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Keywords   []string     `json:"keywords"`
}

// Experience is one work history entry.
type Experience struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Duration string `json:"duration"`
}

// Education is one education entry.
type Education struct {
	Degree string `json:"degree"`
	School string `json:"school"`
	Year   string `json:"year"`
}

// HasActiveSubscription reports whether the quota limit is lifted.
func (u *User) HasActiveSubscription() bool {
	return u.Subscription.Status == SubscriptionActive
}

// BeforeCreate sets UUID and subscription defaults before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Subscription.Status == "" {
		u.Subscription.Status = SubscriptionFree
	}
	return nil
}

// PublicView is the user shape returned with auth responses.
type PublicView struct {
	ID                        uuid.UUID    `json:"id"`
	Email                     string       `json:"email"`
	FirstName                 string       `json:"firstName"`
	LastName                  string       `json:"lastName"`
	ApplicationCount          int          `json:"applicationCount"`
	FreeApplicationsRemaining int          `json:"freeApplicationsRemaining"`
	Subscription              Subscription `json:"subscription"`
}

// Public builds the auth response view of the user.
func (u *User) Public() PublicView {
	return PublicView{
		ID:                        u.ID,
		Email:                     u.Email,
		FirstName:                 u.FirstName,
		LastName:                  u.LastName,
		ApplicationCount:          u.ApplicationCount,
		FreeApplicationsRemaining: u.FreeApplicationsRemaining,
		Subscription:              u.Subscription,
	}
}
