// Package models defines the domain entities for the claim tracker.
package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Claim statuses. "Pending Manager Review" is a legacy alias for
// "Pending Review" that still appears in persisted containers, so every
// pending-status check must accept both.
const (
	StatusDraft                = "Draft"
	StatusPendingReview        = "Pending Review"
	StatusPendingManagerReview = "Pending Manager Review"
	StatusApproved             = "Approved"
	StatusRejected             = "Rejected"
)

// Notification types.
const (
	NotificationTypeRejection = "Rejection"
	NotificationTypeApproval  = "Approval"
	NotificationTypeGeneral   = "General"
)

// File kinds recorded in the file registry.
const (
	FileTypeDocument = "Document"
	FileTypeImage    = "Image"
	FileTypeUnknown  = "Unknown"
)

// User types.
const (
	UserTypeLecturer        = "Lecturer"
	UserTypeAcademicManager = "Academic Manager"
)

// IsPending reports whether a status counts as awaiting manager action.
func IsPending(status string) bool {
	return status == StatusPendingReview || status == StatusPendingManagerReview
}

// IsTerminal reports whether a status is final from the lecturer's perspective.
func IsTerminal(status string) bool {
	return status == StatusApproved || status == StatusRejected
}

// Claim is a lecturer's request for payment for hours worked. The JSON tags
// match the field names of the persisted claims container.
type Claim struct {
	ClaimID              string          `json:"ClaimId"`
	ClaimNumber          int             `json:"ClaimNumber"`
	LecturerEmail        string          `json:"LecturerEmail" validate:"required,email"`
	LecturerName         string          `json:"LecturerName" validate:"required"`
	AssignedManagerEmail string          `json:"AssignedManagerEmail,omitempty"`
	AssignedManagerName  string          `json:"AssignedManagerName,omitempty"`
	SubmitDate           time.Time       `json:"SubmitDate"`
	StartDate            *time.Time      `json:"StartDate,omitempty"`
	EndDate              *time.Time      `json:"EndDate,omitempty"`
	Hours                int             `json:"Hours" validate:"gt=0"`
	HourlyRate           decimal.Decimal `json:"HourlyRate"`
	TotalAmount          decimal.Decimal `json:"TotalAmount"`
	Status               string          `json:"Status"`
	Description          string          `json:"Description"`
	LastUpdated          time.Time       `json:"LastUpdated"`
	AttachedDocuments    []string        `json:"AttachedDocuments"`
	ManagerComments      string          `json:"ManagerComments,omitempty"`
	ManagerActionDate    *time.Time      `json:"ManagerActionDate,omitempty"`
}

var validate = validator.New()

// Validate checks the lecturer-supplied fields of a claim before submission.
func (c *Claim) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid claim: %w", err)
	}
	if c.HourlyRate.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("invalid claim: hourly rate must be greater than zero")
	}
	return nil
}

// Notification is a message delivered to a user, usually as a side effect of
// a manager action on a claim.
type Notification struct {
	NotificationID string    `json:"NotificationId"`
	RecipientEmail string    `json:"RecipientEmail"`
	Title          string    `json:"Title"`
	Message        string    `json:"Message"`
	CreatedDate    time.Time `json:"CreatedDate"`
	IsRead         bool      `json:"IsRead"`
	Type           string    `json:"Type"`
	RelatedClaimID string    `json:"RelatedClaimId,omitempty"`
}

// FileRegistryEntry tracks one stored claim document.
type FileRegistryEntry struct {
	FileID           string    `json:"FileId"`
	ClaimID          string    `json:"ClaimId"`
	OriginalFileName string    `json:"OriginalFileName"`
	StoredFileName   string    `json:"StoredFileName"`
	StoragePath      string    `json:"StoragePath"`
	FileSize         int64     `json:"FileSize"`
	UploadDate       time.Time `json:"UploadDate"`
	FileType         string    `json:"FileType"`
}

// User is an account record from the users container. Consumed as-is; the
// plaintext password field is inherited from the existing container format.
type User struct {
	Email    string `json:"Email"`
	Name     string `json:"Name"`
	Password string `json:"Password"`
	UserType string `json:"UserType"`
	IsActive bool   `json:"IsActive"`
}

// ManagerStats summarizes a manager's assigned claims.
type ManagerStats struct {
	PendingClaims      int
	ApprovedThisMonth  int
	RejectedThisMonth  int
	TotalPendingAmount decimal.Decimal
}

// LecturerSummary summarizes a lecturer's own claims.
type LecturerSummary struct {
	PendingClaims  int
	ApprovedClaims int
	TotalEarnings  decimal.Decimal
}

// StorageStats aggregates the file registry.
type StorageStats struct {
	TotalFiles     int
	TotalSizeBytes int64
	FilesByType    map[string]int
	FilesByClaim   map[string]int
}
