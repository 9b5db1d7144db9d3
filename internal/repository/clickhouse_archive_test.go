package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"FinDash/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockArchive(t *testing.T) (*CHForecastArchive, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return newCHForecastArchive(db, "findash", nil), mock
}

func TestCHArchiveSave(t *testing.T) {
	a, mock := newMockArchive(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO findash.revenue_forecasts (computed_at, slope, intercept, future_offset, observations, target_label, predicted, r_squared) VALUES (?, ?, ?, ?, ?, ?, ?, ?)").
		WithArgs(at, 2.0, 5.0, int32(12), uint32(12), "december +1y", 51.0, 0.97).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := a.Save(context.Background(), models.ForecastRecord{
		ComputedAt:   at,
		Slope:        2,
		Intercept:    5,
		Offset:       12,
		Observations: 12,
		TargetLabel:  "december +1y",
		Predicted:    51,
		RSquared:     0.97,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCHArchiveHistory(t *testing.T) {
	a, mock := newMockArchive(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(strings.Split(forecastColumns, ", ")).
		AddRow(at, 2.0, 5.0, int64(12), int64(12), "december +1y", 51.0, 0.97).
		AddRow(at.Add(-time.Hour), 1.5, 4.0, int64(6), int64(11), "may +1y", 20.5, 0.8)
	mock.ExpectQuery("SELECT computed_at, slope, intercept, future_offset, observations, target_label, predicted, r_squared FROM findash.revenue_forecasts ORDER BY computed_at DESC LIMIT ?").
		WithArgs(5).
		WillReturnRows(rows)

	recs, err := a.History(context.Background(), 5)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	first := recs[0]
	if !first.ComputedAt.Equal(at) || first.Offset != 12 || first.Observations != 12 ||
		first.TargetLabel != "december +1y" || first.Predicted != 51 || first.RSquared != 0.97 {
		t.Fatalf("first record = %+v", first)
	}
	if recs[1].Offset != 6 || recs[1].Slope != 1.5 {
		t.Fatalf("second record = %+v", recs[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCHArchiveHistoryQueryError(t *testing.T) {
	a, mock := newMockArchive(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery(a.historyQuery()).WithArgs(3).WillReturnError(boom)

	if _, err := a.History(context.Background(), 3); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped query error, got %v", err)
	}
}

func TestCHArchiveSchemaMatchesColumns(t *testing.T) {
	a := newCHForecastArchive(nil, "findash", nil)
	stmts := a.schema()
	if len(stmts) != 2 || !strings.Contains(stmts[1], "findash.revenue_forecasts") {
		t.Fatalf("unexpected schema: %v", stmts)
	}

	var cols []string
	for _, line := range strings.Split(stmts[1], "\n") {
		fields := strings.Fields(line)
		// column lines start with a lower-case name; keywords are upper-case
		if len(fields) >= 2 && fields[0] == strings.ToLower(fields[0]) {
			cols = append(cols, fields[0])
		}
	}
	if got := strings.Join(cols, ", "); got != forecastColumns {
		t.Fatalf("table columns %q, queries use %q", got, forecastColumns)
	}
}
