// Package repository implements load-modify-save record access over the JSON
// containers. Every mutating operation reloads the collection, changes it in
// memory and rewrites the whole container under a per-repository mutex, so a
// single process never interleaves two writers on the same container.
package repository

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/campusworks/claimflow/internal/models"
	"gitlab.com/campusworks/claimflow/internal/store"
)

// ClaimRepository handles claim record operations.
type ClaimRepository struct {
	mu    sync.Mutex
	store *store.Store[models.Claim]
}

// NewClaimRepository creates a new ClaimRepository.
func NewClaimRepository(s *store.Store[models.Claim]) *ClaimRepository {
	return &ClaimRepository{store: s}
}

// Add assigns identity and timestamps to a new claim, appends it and persists.
// Returns the assigned claim id. The claim number is derived from the current
// maximum under the repository lock, so numbers are strictly increasing and
// survive restarts without a separate counter.
func (r *ClaimRepository) Add(claim *models.Claim) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	claims := r.store.Load()

	next := 1
	for i := range claims {
		if claims[i].ClaimNumber >= next {
			next = claims[i].ClaimNumber + 1
		}
	}

	now := time.Now()
	claim.ClaimNumber = next
	claim.ClaimID = fmt.Sprintf("C%d-%03d", now.Year(), next)
	claim.SubmitDate = now
	claim.LastUpdated = now
	if claim.Status == "" {
		claim.Status = models.StatusPendingReview
	}

	claims = append(claims, *claim)
	if err := r.store.Save(claims); err != nil {
		return "", fmt.Errorf("failed to add claim: %w", err)
	}
	return claim.ClaimID, nil
}

// Update replaces the stored claim with the same id, refreshing LastUpdated.
// A missing id is a silent no-op.
func (r *ClaimRepository) Update(claim *models.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	claims := r.store.Load()
	for i := range claims {
		if claims[i].ClaimID == claim.ClaimID {
			claim.LastUpdated = time.Now()
			claims[i] = *claim
			if err := r.store.Save(claims); err != nil {
				return fmt.Errorf("failed to update claim %s: %w", claim.ClaimID, err)
			}
			return nil
		}
	}
	return nil
}

// BulkUpdate applies Update semantics per item with a single persist at the end.
func (r *ClaimRepository) BulkUpdate(updates []models.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	claims := r.store.Load()
	for u := range updates {
		for i := range claims {
			if claims[i].ClaimID == updates[u].ClaimID {
				updates[u].LastUpdated = time.Now()
				claims[i] = updates[u]
				break
			}
		}
	}
	if err := r.store.Save(claims); err != nil {
		return fmt.Errorf("failed to bulk update claims: %w", err)
	}
	return nil
}

// Delete removes the claim with the given id. A missing id is a silent no-op.
func (r *ClaimRepository) Delete(claimID string) error {
	return r.BulkDelete([]string{claimID})
}

// BulkDelete removes every claim whose id is in ids with a single persist.
func (r *ClaimRepository) BulkDelete(ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	claims := r.store.Load()
	kept := claims[:0]
	for i := range claims {
		if _, ok := drop[claims[i].ClaimID]; !ok {
			kept = append(kept, claims[i])
		}
	}
	if err := r.store.Save(kept); err != nil {
		return fmt.Errorf("failed to delete claims: %w", err)
	}
	return nil
}

// GetAll returns every claim in the container.
func (r *ClaimRepository) GetAll() []models.Claim {
	return r.store.Load()
}

// GetByID returns the claim with the given id.
func (r *ClaimRepository) GetByID(claimID string) (*models.Claim, bool) {
	claims := r.store.Load()
	for i := range claims {
		if claims[i].ClaimID == claimID {
			return &claims[i], true
		}
	}
	return nil, false
}

// GetByLecturer returns the claims whose lecturer email matches,
// case-insensitively.
func (r *ClaimRepository) GetByLecturer(lecturerEmail string) []models.Claim {
	var matched []models.Claim
	for _, c := range r.store.Load() {
		if strings.EqualFold(c.LecturerEmail, lecturerEmail) {
			matched = append(matched, c)
		}
	}
	return matched
}

// GetByManager returns the claims assigned to the given manager email,
// case-insensitively. Claims without an assigned manager never match.
func (r *ClaimRepository) GetByManager(managerEmail string) []models.Claim {
	var matched []models.Claim
	for _, c := range r.store.Load() {
		if c.AssignedManagerEmail != "" && strings.EqualFold(c.AssignedManagerEmail, managerEmail) {
			matched = append(matched, c)
		}
	}
	return matched
}

// Stats summarizes the manager's assigned claims: pending count, approvals
// and rejections whose LastUpdated falls in the current calendar month, and
// the total amount awaiting approval.
func (r *ClaimRepository) Stats(managerEmail string) models.ManagerStats {
	now := time.Now()
	stats := models.ManagerStats{TotalPendingAmount: decimal.Zero}

	for _, c := range r.GetByManager(managerEmail) {
		switch {
		case models.IsPending(c.Status):
			stats.PendingClaims++
			stats.TotalPendingAmount = stats.TotalPendingAmount.Add(c.TotalAmount)
		case c.Status == models.StatusApproved:
			if c.LastUpdated.Month() == now.Month() && c.LastUpdated.Year() == now.Year() {
				stats.ApprovedThisMonth++
			}
		case c.Status == models.StatusRejected:
			if c.LastUpdated.Month() == now.Month() && c.LastUpdated.Year() == now.Year() {
				stats.RejectedThisMonth++
			}
		}
	}
	return stats
}

// LecturerSummary summarizes a lecturer's own claims: drafts and pending
// submissions still in flight, approvals, and total approved earnings.
func (r *ClaimRepository) LecturerSummary(lecturerEmail string) models.LecturerSummary {
	summary := models.LecturerSummary{TotalEarnings: decimal.Zero}

	for _, c := range r.GetByLecturer(lecturerEmail) {
		switch {
		case c.Status == models.StatusDraft || models.IsPending(c.Status):
			summary.PendingClaims++
		case c.Status == models.StatusApproved:
			summary.ApprovedClaims++
			summary.TotalEarnings = summary.TotalEarnings.Add(c.TotalAmount)
		}
	}
	return summary
}
