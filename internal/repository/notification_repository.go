package repository

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gitlab.com/campusworks/claimflow/internal/models"
	"gitlab.com/campusworks/claimflow/internal/store"
)

// NotificationRepository handles notification record operations.
type NotificationRepository struct {
	mu    sync.Mutex
	store *store.Store[models.Notification]
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(s *store.Store[models.Notification]) *NotificationRepository {
	return &NotificationRepository{store: s}
}

// Add assigns an id and creation timestamp, appends and persists. The id is
// N{yyyyMMdd}-{seq} where seq is the collection length plus one at creation
// time, computed under the repository lock.
func (r *NotificationRepository) Add(n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notifications := r.store.Load()

	now := time.Now()
	n.NotificationID = fmt.Sprintf("N%s-%03d", now.Format("20060102"), len(notifications)+1)
	n.CreatedDate = now

	notifications = append(notifications, *n)
	if err := r.store.Save(notifications); err != nil {
		return fmt.Errorf("failed to add notification: %w", err)
	}
	return nil
}

// GetAll returns every notification in the container.
func (r *NotificationRepository) GetAll() []models.Notification {
	return r.store.Load()
}

// GetByUser returns the user's notifications, newest first.
func (r *NotificationRepository) GetByUser(userEmail string) []models.Notification {
	var matched []models.Notification
	for _, n := range r.store.Load() {
		if strings.EqualFold(n.RecipientEmail, userEmail) {
			matched = append(matched, n)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedDate.After(matched[j].CreatedDate)
	})
	return matched
}

// MarkAsRead flips the read flag on a notification. Idempotent; a missing id
// is a silent no-op.
func (r *NotificationRepository) MarkAsRead(notificationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notifications := r.store.Load()
	for i := range notifications {
		if notifications[i].NotificationID == notificationID {
			notifications[i].IsRead = true
			if err := r.store.Save(notifications); err != nil {
				return fmt.Errorf("failed to mark notification %s as read: %w", notificationID, err)
			}
			return nil
		}
	}
	return nil
}

// UnreadCount returns the number of unread notifications for a user.
func (r *NotificationRepository) UnreadCount(userEmail string) int {
	count := 0
	for _, n := range r.store.Load() {
		if strings.EqualFold(n.RecipientEmail, userEmail) && !n.IsRead {
			count++
		}
	}
	return count
}

// Delete removes a notification and reports whether it was found.
func (r *NotificationRepository) Delete(notificationID string) (bool, error) {
	return r.DeleteMany([]string{notificationID})
}

// DeleteMany removes every notification whose id is listed and reports
// whether any were removed.
func (r *NotificationRepository) DeleteMany(notificationIDs []string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	drop := make(map[string]struct{}, len(notificationIDs))
	for _, id := range notificationIDs {
		drop[id] = struct{}{}
	}

	notifications := r.store.Load()
	kept := notifications[:0]
	removed := false
	for i := range notifications {
		if _, ok := drop[notifications[i].NotificationID]; ok {
			removed = true
			continue
		}
		kept = append(kept, notifications[i])
	}
	if !removed {
		return false, nil
	}
	if err := r.store.Save(kept); err != nil {
		return false, fmt.Errorf("failed to delete notifications: %w", err)
	}
	return true, nil
}

// CreateRejectionNotification records a rejection message for the lecturer,
// using the fixed template the dashboards render.
func (r *NotificationRepository) CreateRejectionNotification(lecturerEmail, claimID, rejectionReason, managerName string) error {
	n := &models.Notification{
		RecipientEmail: lecturerEmail,
		Title:          "Claim Rejected",
		Message: fmt.Sprintf(
			"Your claim %s has been rejected by %s.\n\nReason: %s\n\nIf you have questions about this decision, please contact the Academic Manager.",
			claimID, managerName, rejectionReason),
		Type:           models.NotificationTypeRejection,
		RelatedClaimID: claimID,
	}
	return r.Add(n)
}
