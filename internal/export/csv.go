// Package export renders claim collections for reporting: CSV, a plain-text
// manager report and PNG breakdown charts.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"gitlab.com/campusworks/claimflow/internal/models"
)

// ClaimsCSV generates a CSV document from a list of claims.
func ClaimsCSV(claims []models.Claim) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"ClaimID", "Lecturer", "SubmitDate", "Hours", "HourlyRate", "TotalAmount", "Status", "Description"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range claims {
		row := []string{
			claims[i].ClaimID,
			claims[i].LecturerName,
			claims[i].SubmitDate.Format("2006-01-02 15:04:05"),
			strconv.Itoa(claims[i].Hours),
			claims[i].HourlyRate.StringFixed(2),
			claims[i].TotalAmount.StringFixed(2),
			claims[i].Status,
			claims[i].Description,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}
