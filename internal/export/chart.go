package export

import (
	"fmt"

	"github.com/go-analyze/charts"
	"github.com/shopspring/decimal"

	"gitlab.com/campusworks/claimflow/internal/models"
)

// StatusChart creates a pie chart of claim totals grouped by status.
// Returns PNG image as bytes.
func StatusChart(claims []models.Claim, title string) ([]byte, error) {
	if len(claims) == 0 {
		return nil, fmt.Errorf("no claims to chart")
	}

	totals := aggregateByStatus(claims)

	var values []float64
	var labels []string
	for status, total := range totals {
		labels = append(labels, status)
		values = append(values, total.InexactFloat64())
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{Text: title}),
		charts.LegendLabelsOptionFunc(labels),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf, nil
}

// StorageChart creates a pie chart of stored file counts by file kind.
// Returns PNG image as bytes.
func StorageChart(stats models.StorageStats, title string) ([]byte, error) {
	if stats.TotalFiles == 0 {
		return nil, fmt.Errorf("no stored files to chart")
	}

	var values []float64
	var labels []string
	for kind, count := range stats.FilesByType {
		labels = append(labels, kind)
		values = append(values, float64(count))
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{Text: title}),
		charts.LegendLabelsOptionFunc(labels),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf, nil
}

// aggregateByStatus groups claims and returns per-status amount totals.
// The legacy pending alias is folded into the canonical pending status.
func aggregateByStatus(claims []models.Claim) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for i := range claims {
		status := claims[i].Status
		if models.IsPending(status) {
			status = models.StatusPendingReview
		}
		if existing, ok := totals[status]; ok {
			totals[status] = existing.Add(claims[i].TotalAmount)
		} else {
			totals[status] = claims[i].TotalAmount
		}
	}
	return totals
}
