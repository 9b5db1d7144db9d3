package main

import (
	"fmt"
	"time"

	"FinDash/internal/domain/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorBorder = lipgloss.Color("#575653")
	colorAccent = lipgloss.Color("#3AA99F")
	colorGreen  = lipgloss.Color("#879A39")

	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
	numberStyle    = cellStyle.Align(lipgloss.Right)
	predictedStyle = numberStyle.Foreground(colorGreen).Bold(true)
)

// renderForecast prints one row per month with the actual revenue, the
// regression line and the prediction.
func renderForecast(f *models.RevenueForecast) string {
	rows := make([][]string, 0, len(f.Rows))
	for _, r := range f.Rows {
		rows = append(rows, []string{r.Label, money(r.Actual), money(r.Fitted), money(r.Predicted)})
	}
	last := len(rows) - 1

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers("Month", "Actual", "Regression", "Predicted").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == last && col == 3:
				return predictedStyle
			case col == 0:
				return cellStyle
			default:
				return numberStyle
			}
		}).
		String()
}

func renderHistory(recs []models.ForecastRecord) string {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			r.ComputedAt.Local().Format(time.DateTime),
			r.TargetLabel,
			fmt.Sprintf("%.2f", r.Predicted),
			fmt.Sprintf("%.4f", r.RSquared),
			fmt.Sprintf("%d", r.Observations),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers("Computed", "Target", "Predicted", "R2", "Months").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col < 2 {
				return cellStyle
			}
			return numberStyle
		}).
		String()
}

func money(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}
