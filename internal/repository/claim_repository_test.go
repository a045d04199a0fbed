package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"gitlab.com/campusworks/claimflow/internal/models"
	"gitlab.com/campusworks/claimflow/internal/store"
)

func setupClaimTest(t *testing.T) *ClaimRepository {
	t.Helper()
	s := store.New[models.Claim](filepath.Join(t.TempDir(), "claims.json"), "claims")
	return NewClaimRepository(s)
}

func newClaim(lecturerEmail string) *models.Claim {
	return &models.Claim{
		LecturerEmail: lecturerEmail,
		LecturerName:  "T. Lecturer",
		Hours:         10,
		HourlyRate:    decimal.NewFromFloat(450.00),
		TotalAmount:   decimal.NewFromFloat(4500.00),
		Description:   "Tutoring and marking",
	}
}

func TestClaimRepository_Add(t *testing.T) {
	repo := setupClaimTest(t)

	t.Run("assigns id, number and timestamps", func(t *testing.T) {
		claim := newClaim("lecturer@university.ac.za")
		id, err := repo.Add(claim)
		require.NoError(t, err)

		require.Equal(t, fmt.Sprintf("C%d-001", time.Now().Year()), id)
		require.Equal(t, 1, claim.ClaimNumber)
		require.Equal(t, models.StatusPendingReview, claim.Status)
		require.False(t, claim.SubmitDate.IsZero())
		require.False(t, claim.LastUpdated.IsZero())
	})

	t.Run("keeps an explicit draft status", func(t *testing.T) {
		claim := newClaim("lecturer@university.ac.za")
		claim.Status = models.StatusDraft
		_, err := repo.Add(claim)
		require.NoError(t, err)
		require.Equal(t, models.StatusDraft, claim.Status)
	})

	t.Run("numbers increase across adds", func(t *testing.T) {
		claim := newClaim("lecturer@university.ac.za")
		_, err := repo.Add(claim)
		require.NoError(t, err)
		require.Equal(t, 3, claim.ClaimNumber)
	})

	t.Run("derives the next number from the persisted maximum", func(t *testing.T) {
		repo := setupClaimTest(t)
		seeded := newClaim("lecturer@university.ac.za")
		seeded.ClaimNumber = 41
		seeded.ClaimID = "C2025-041"
		require.NoError(t, repo.store.Save([]models.Claim{*seeded}))

		claim := newClaim("lecturer@university.ac.za")
		id, err := repo.Add(claim)
		require.NoError(t, err)
		require.Equal(t, 42, claim.ClaimNumber)
		require.Contains(t, id, "-042")
	})
}

func TestClaimRepository_Update(t *testing.T) {
	repo := setupClaimTest(t)

	claim := newClaim("lecturer@university.ac.za")
	_, err := repo.Add(claim)
	require.NoError(t, err)

	t.Run("replaces the stored claim and refreshes LastUpdated", func(t *testing.T) {
		before := claim.LastUpdated
		time.Sleep(5 * time.Millisecond)

		claim.Status = models.StatusApproved
		claim.ManagerComments = "Approved for payment"
		require.NoError(t, repo.Update(claim))

		stored, ok := repo.GetByID(claim.ClaimID)
		require.True(t, ok)
		require.Equal(t, models.StatusApproved, stored.Status)
		require.Equal(t, "Approved for payment", stored.ManagerComments)
		require.True(t, stored.LastUpdated.After(before))
	})

	t.Run("is a silent no-op for a missing id", func(t *testing.T) {
		ghost := newClaim("lecturer@university.ac.za")
		ghost.ClaimID = "C2026-999"
		require.NoError(t, repo.Update(ghost))

		_, ok := repo.GetByID("C2026-999")
		require.False(t, ok)
		require.Len(t, repo.GetAll(), 1)
	})
}

func TestClaimRepository_BulkUpdate(t *testing.T) {
	repo := setupClaimTest(t)

	first := newClaim("a@university.ac.za")
	second := newClaim("b@university.ac.za")
	_, err := repo.Add(first)
	require.NoError(t, err)
	_, err = repo.Add(second)
	require.NoError(t, err)

	t.Run("updates every matching claim in one persist", func(t *testing.T) {
		first.Status = models.StatusApproved
		second.Status = models.StatusApproved
		missing := newClaim("c@university.ac.za")
		missing.ClaimID = "C2026-777"

		require.NoError(t, repo.BulkUpdate([]models.Claim{*first, *second, *missing}))

		for _, id := range []string{first.ClaimID, second.ClaimID} {
			stored, ok := repo.GetByID(id)
			require.True(t, ok)
			require.Equal(t, models.StatusApproved, stored.Status)
		}
		require.Len(t, repo.GetAll(), 2)
	})
}

func TestClaimRepository_Delete(t *testing.T) {
	repo := setupClaimTest(t)

	claim := newClaim("lecturer@university.ac.za")
	id, err := repo.Add(claim)
	require.NoError(t, err)

	t.Run("removes the claim from the container", func(t *testing.T) {
		require.NoError(t, repo.Delete(id))

		_, ok := repo.GetByID(id)
		require.False(t, ok)
		require.Empty(t, repo.GetByLecturer("lecturer@university.ac.za"))
	})

	t.Run("is a silent no-op for a missing id", func(t *testing.T) {
		require.NoError(t, repo.Delete("C2026-404"))
	})
}

func TestClaimRepository_BulkDelete(t *testing.T) {
	repo := setupClaimTest(t)

	var ids []string
	for range 3 {
		claim := newClaim("lecturer@university.ac.za")
		id, err := repo.Add(claim)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, repo.BulkDelete(ids[:2]))

	remaining := repo.GetAll()
	require.Len(t, remaining, 1)
	require.Equal(t, ids[2], remaining[0].ClaimID)
}

func TestClaimRepository_GetByLecturer(t *testing.T) {
	repo := setupClaimTest(t)

	mine := newClaim("Lecturer@University.ac.za")
	other := newClaim("someone.else@university.ac.za")
	_, err := repo.Add(mine)
	require.NoError(t, err)
	_, err = repo.Add(other)
	require.NoError(t, err)

	t.Run("matches case-insensitively", func(t *testing.T) {
		claims := repo.GetByLecturer("lecturer@university.ac.za")
		require.Len(t, claims, 1)
		require.Equal(t, mine.ClaimID, claims[0].ClaimID)
	})

	t.Run("returns empty for unknown lecturer", func(t *testing.T) {
		require.Empty(t, repo.GetByLecturer("nobody@university.ac.za"))
	})
}

func TestClaimRepository_GetByManager(t *testing.T) {
	repo := setupClaimTest(t)

	assigned := newClaim("lecturer@university.ac.za")
	assigned.AssignedManagerEmail = "Manager@University.ac.za"
	unassigned := newClaim("lecturer@university.ac.za")
	_, err := repo.Add(assigned)
	require.NoError(t, err)
	_, err = repo.Add(unassigned)
	require.NoError(t, err)

	t.Run("matches assigned manager case-insensitively", func(t *testing.T) {
		claims := repo.GetByManager("manager@university.ac.za")
		require.Len(t, claims, 1)
		require.Equal(t, assigned.ClaimID, claims[0].ClaimID)
	})

	t.Run("never matches claims without an assigned manager", func(t *testing.T) {
		require.Empty(t, repo.GetByManager(""))
	})
}

func TestClaimRepository_Stats(t *testing.T) {
	repo := setupClaimTest(t)
	manager := "manager@university.ac.za"

	pending1 := newClaim("a@university.ac.za")
	pending1.AssignedManagerEmail = manager
	pending1.TotalAmount = decimal.NewFromFloat(4500.00)

	pending2 := newClaim("b@university.ac.za")
	pending2.AssignedManagerEmail = manager
	pending2.Status = models.StatusPendingManagerReview
	pending2.TotalAmount = decimal.NewFromFloat(1500.00)

	approved := newClaim("c@university.ac.za")
	approved.AssignedManagerEmail = manager
	approved.Status = models.StatusApproved

	rejected := newClaim("d@university.ac.za")
	rejected.AssignedManagerEmail = manager
	rejected.Status = models.StatusRejected

	otherManager := newClaim("e@university.ac.za")
	otherManager.AssignedManagerEmail = "other@university.ac.za"

	for _, c := range []*models.Claim{pending1, pending2, approved, rejected, otherManager} {
		_, err := repo.Add(c)
		require.NoError(t, err)
	}

	stats := repo.Stats(manager)
	require.Equal(t, 2, stats.PendingClaims)
	require.Equal(t, 1, stats.ApprovedThisMonth)
	require.Equal(t, 1, stats.RejectedThisMonth)
	require.True(t, stats.TotalPendingAmount.Equal(decimal.NewFromFloat(6000.00)),
		"got %s", stats.TotalPendingAmount)
}

func TestClaimRepository_StatsExcludesPastMonths(t *testing.T) {
	repo := setupClaimTest(t)
	manager := "manager@university.ac.za"

	old := newClaim("a@university.ac.za")
	old.AssignedManagerEmail = manager
	_, err := repo.Add(old)
	require.NoError(t, err)

	// Push the approval into a past month directly in the container.
	stored := repo.GetAll()
	stored[0].Status = models.StatusApproved
	stored[0].LastUpdated = time.Now().AddDate(0, -2, 0)
	require.NoError(t, repo.store.Save(stored))

	stats := repo.Stats(manager)
	require.Zero(t, stats.ApprovedThisMonth)
}

func TestClaimRepository_LecturerSummary(t *testing.T) {
	repo := setupClaimTest(t)
	lecturer := "lecturer@university.ac.za"

	draft := newClaim(lecturer)
	draft.Status = models.StatusDraft

	pending := newClaim(lecturer)

	approved := newClaim(lecturer)
	approved.Status = models.StatusApproved
	approved.TotalAmount = decimal.NewFromFloat(9000.00)

	for _, c := range []*models.Claim{draft, pending, approved} {
		_, err := repo.Add(c)
		require.NoError(t, err)
	}

	summary := repo.LecturerSummary(lecturer)
	require.Equal(t, 2, summary.PendingClaims)
	require.Equal(t, 1, summary.ApprovedClaims)
	require.True(t, summary.TotalEarnings.Equal(decimal.NewFromFloat(9000.00)))
}

// Claim numbers are strictly increasing and ids unique for any sequence of adds.
func TestClaimRepository_AddMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dir, err := os.MkdirTemp("", "claims-rapid")
		if err != nil {
			t.Fatalf("tempdir: %v", err)
		}
		defer os.RemoveAll(dir)

		s := store.New[models.Claim](filepath.Join(dir, "claims.json"), "claims")
		repo := NewClaimRepository(s)

		count := rapid.IntRange(1, 12).Draw(t, "count")
		seen := make(map[string]struct{}, count)
		last := 0
		for i := 0; i < count; i++ {
			claim := newClaim("lecturer@university.ac.za")
			id, err := repo.Add(claim)
			if err != nil {
				t.Fatalf("add: %v", err)
			}
			if claim.ClaimNumber <= last {
				t.Fatalf("claim number %d not greater than previous %d", claim.ClaimNumber, last)
			}
			if _, dup := seen[id]; dup {
				t.Fatalf("duplicate claim id %s", id)
			}
			seen[id] = struct{}{}
			last = claim.ClaimNumber
		}
	})
}
