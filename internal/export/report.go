package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/campusworks/claimflow/internal/models"
)

// ManagerReport renders the plain-text claims report a manager exports:
// status counts followed by one line per claim.
func ManagerReport(claims []models.Claim, managerEmail string) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Claims Report - %s\n", managerEmail)
	fmt.Fprintf(&buf, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04"))

	pending, approved, rejected := 0, 0, 0
	pendingAmount := decimal.Zero
	for i := range claims {
		switch {
		case models.IsPending(claims[i].Status):
			pending++
			pendingAmount = pendingAmount.Add(claims[i].TotalAmount)
		case claims[i].Status == models.StatusApproved:
			approved++
		case claims[i].Status == models.StatusRejected:
			rejected++
		}
	}

	fmt.Fprintf(&buf, "Pending: %d (R%s)\n", pending, pendingAmount.StringFixed(2))
	fmt.Fprintf(&buf, "Approved: %d\n", approved)
	fmt.Fprintf(&buf, "Rejected: %d\n\n", rejected)

	for i := range claims {
		fmt.Fprintf(&buf, "%s, %s, R%s, %s, %s\n",
			claims[i].ClaimID,
			claims[i].LecturerName,
			claims[i].TotalAmount.StringFixed(2),
			claims[i].Status,
			claims[i].SubmitDate.Format("2006-01-02"))
	}

	return buf.Bytes()
}
