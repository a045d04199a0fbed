// Package service composes the repositories and file storage into the claim
// workflow the dashboards drive: submission, manager review and cascaded
// cleanup.
package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/campusworks/claimflow/internal/logger"
	"gitlab.com/campusworks/claimflow/internal/models"
	"gitlab.com/campusworks/claimflow/internal/repository"
	"gitlab.com/campusworks/claimflow/internal/storage"
)

// Default manager comments applied when an action carries none.
const (
	approvedComments     = "Approved for payment"
	bulkApprovedComments = "Bulk approved for payment"
)

// ClaimService orchestrates claim lifecycle operations across the claim and
// notification repositories and the document store.
type ClaimService struct {
	claims        *repository.ClaimRepository
	notifications *repository.NotificationRepository
	files         *storage.FileStorage
}

// NewClaimService creates a new ClaimService.
func NewClaimService(
	claims *repository.ClaimRepository,
	notifications *repository.NotificationRepository,
	files *storage.FileStorage,
) *ClaimService {
	return &ClaimService{claims: claims, notifications: notifications, files: files}
}

// Submit validates and records a new claim, computing the total amount from
// hours and hourly rate, then attaches the given files best-effort. Returns
// the assigned claim id.
func (s *ClaimService) Submit(claim *models.Claim, attachmentPaths []string, asDraft bool) (string, error) {
	if asDraft {
		claim.Status = models.StatusDraft
	} else {
		claim.Status = models.StatusPendingReview
	}
	claim.TotalAmount = claim.HourlyRate.Mul(decimal.NewFromInt(int64(claim.Hours)))

	if err := claim.Validate(); err != nil {
		return "", err
	}

	claimID, err := s.claims.Add(claim)
	if err != nil {
		return "", err
	}

	if len(attachmentPaths) > 0 {
		claim.AttachedDocuments = s.files.SaveMultipleFiles(attachmentPaths, claimID)
		if err := s.claims.Update(claim); err != nil {
			return "", err
		}
	}

	logger.Log.Info().
		Str("claim_id", claimID).
		Str("lecturer", logger.HashEmail(claim.LecturerEmail)).
		Str("status", claim.Status).
		Int("attachments", len(claim.AttachedDocuments)).
		Msg("Claim submitted")
	return claimID, nil
}

// SubmitDraft moves a draft claim into review. Only drafts can be submitted.
func (s *ClaimService) SubmitDraft(claimID string) error {
	claim, ok := s.claims.GetByID(claimID)
	if !ok {
		return nil
	}
	if claim.Status != models.StatusDraft {
		return fmt.Errorf("claim %s is not a draft (status %q)", claimID, claim.Status)
	}
	claim.Status = models.StatusPendingReview
	return s.claims.Update(claim)
}

// UpdateDraft applies a lecturer's edit. Drafts are the only editable state.
func (s *ClaimService) UpdateDraft(claim *models.Claim) error {
	stored, ok := s.claims.GetByID(claim.ClaimID)
	if !ok {
		return nil
	}
	if stored.Status != models.StatusDraft {
		return fmt.Errorf("claim %s is not editable (status %q)", claim.ClaimID, stored.Status)
	}
	claim.Status = models.StatusDraft
	claim.TotalAmount = claim.HourlyRate.Mul(decimal.NewFromInt(int64(claim.Hours)))
	return s.claims.Update(claim)
}

// CanEdit reports whether the lecturer may still edit or delete the claim.
func (s *ClaimService) CanEdit(claim *models.Claim) bool {
	return claim.Status == models.StatusDraft
}

// Approve marks a pending claim approved with the given comments (or the
// standard comment when empty). A missing id is a silent no-op; approving a
// claim that is not pending is an error.
func (s *ClaimService) Approve(claimID, comments string) error {
	claim, ok := s.claims.GetByID(claimID)
	if !ok {
		return nil
	}
	if !models.IsPending(claim.Status) {
		return fmt.Errorf("claim %s is not awaiting review (status %q)", claimID, claim.Status)
	}

	if comments == "" {
		comments = approvedComments
	}
	now := time.Now()
	claim.Status = models.StatusApproved
	claim.ManagerComments = comments
	claim.ManagerActionDate = &now

	if err := s.claims.Update(claim); err != nil {
		return err
	}
	logger.Log.Info().Str("claim_id", claimID).Msg("Claim approved")
	return nil
}

// ApproveAll approves every pending claim in ids with a single persist.
// Returns the number approved.
func (s *ClaimService) ApproveAll(ids []string) (int, error) {
	var updates []models.Claim
	now := time.Now()
	for _, id := range ids {
		claim, ok := s.claims.GetByID(id)
		if !ok || !models.IsPending(claim.Status) {
			continue
		}
		claim.Status = models.StatusApproved
		claim.ManagerComments = bulkApprovedComments
		claim.ManagerActionDate = &now
		updates = append(updates, *claim)
	}
	if len(updates) == 0 {
		return 0, nil
	}
	if err := s.claims.BulkUpdate(updates); err != nil {
		return 0, err
	}
	logger.Log.Info().Int("count", len(updates)).Msg("Claims bulk approved")
	return len(updates), nil
}

// Reject marks a pending claim rejected and notifies the lecturer. A missing
// id is a silent no-op; rejecting a claim that is not pending is an error.
func (s *ClaimService) Reject(claimID, reason, managerName string) error {
	claim, ok := s.claims.GetByID(claimID)
	if !ok {
		return nil
	}
	if !models.IsPending(claim.Status) {
		return fmt.Errorf("claim %s is not awaiting review (status %q)", claimID, claim.Status)
	}

	now := time.Now()
	claim.Status = models.StatusRejected
	claim.ManagerComments = reason
	claim.ManagerActionDate = &now

	if err := s.claims.Update(claim); err != nil {
		return err
	}
	if err := s.notifications.CreateRejectionNotification(claim.LecturerEmail, claimID, reason, managerName); err != nil {
		return err
	}
	logger.Log.Info().
		Str("claim_id", claimID).
		Str("reason", logger.SanitizeText(reason)).
		Msg("Claim rejected")
	return nil
}

// RejectAll rejects every pending claim in ids with a single persist,
// notifying each lecturer. Returns the number rejected.
func (s *ClaimService) RejectAll(ids []string, reason, managerName string) (int, error) {
	var updates []models.Claim
	now := time.Now()
	for _, id := range ids {
		claim, ok := s.claims.GetByID(id)
		if !ok || !models.IsPending(claim.Status) {
			continue
		}
		claim.Status = models.StatusRejected
		claim.ManagerComments = fmt.Sprintf("Bulk rejection: %s", reason)
		claim.ManagerActionDate = &now
		updates = append(updates, *claim)
	}
	if len(updates) == 0 {
		return 0, nil
	}
	if err := s.claims.BulkUpdate(updates); err != nil {
		return 0, err
	}
	for i := range updates {
		if err := s.notifications.CreateRejectionNotification(
			updates[i].LecturerEmail, updates[i].ClaimID, reason, managerName); err != nil {
			return len(updates), err
		}
	}
	logger.Log.Info().Int("count", len(updates)).Msg("Claims bulk rejected")
	return len(updates), nil
}

// DeleteClaimCascade removes a claim's stored files, then the claim record.
// The two steps are sequential, not atomic.
func (s *ClaimService) DeleteClaimCascade(claimID string) error {
	s.files.DeleteClaimFiles(claimID)
	return s.claims.Delete(claimID)
}

// DeleteClaimsCascade removes multiple claims and their files, with a single
// claim-container persist.
func (s *ClaimService) DeleteClaimsCascade(ids []string) error {
	for _, id := range ids {
		s.files.DeleteClaimFiles(id)
	}
	return s.claims.BulkDelete(ids)
}

// CleanupOrphanedFiles removes registry entries whose claim no longer exists.
// Returns the count removed.
func (s *ClaimService) CleanupOrphanedFiles() int {
	claims := s.claims.GetAll()
	ids := make([]string, 0, len(claims))
	for i := range claims {
		ids = append(ids, claims[i].ClaimID)
	}
	return s.files.CleanupOrphanedFiles(ids)
}
