package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FinDash/internal/domain/models"
	pkgch "FinDash/pkg/clickhouse"
	applogger "FinDash/pkg/logger"
)

const forecastTable = "revenue_forecasts"

// forecastColumns is the column order shared by Save and History.
const forecastColumns = "computed_at, slope, intercept, future_offset, observations, target_label, predicted, r_squared"

// CHForecastArchive implements ForecastArchive backed by ClickHouse.
type CHForecastArchive struct {
	client   *pkgch.Client
	db       *sql.DB
	database string
	table    string
	l        *applogger.Logger
}

func NewCHForecastArchive(ch *pkgch.Client, l *applogger.Logger) *CHForecastArchive {
	a := newCHForecastArchive(ch.DB(), ch.Database(), l)
	a.client = ch
	return a
}

func newCHForecastArchive(db *sql.DB, database string, l *applogger.Logger) *CHForecastArchive {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHForecastArchive{
		db:       db,
		database: database,
		table:    fmt.Sprintf("%s.%s", database, forecastTable),
		l:        l,
	}
}

func (a *CHForecastArchive) Init(ctx context.Context) error {
	return a.client.InitSchema(ctx, a.schema())
}

func (a *CHForecastArchive) schema() []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, a.database),
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            computed_at   DateTime64(3, 'UTC'),
            slope         Float64,
            intercept     Float64,
            future_offset Int32,
            observations  UInt32,
            target_label  String,
            predicted     Float64,
            r_squared     Float64
        )
        ENGINE = MergeTree
        ORDER BY computed_at
    `, a.table),
	}
}

func (a *CHForecastArchive) insertQuery() string {
	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, a.table, forecastColumns)
}

func (a *CHForecastArchive) historyQuery() string {
	return fmt.Sprintf(`SELECT %s FROM %s ORDER BY computed_at DESC LIMIT ?`, forecastColumns, a.table)
}

func (a *CHForecastArchive) Save(ctx context.Context, rec models.ForecastRecord) error {
	_, err := a.db.ExecContext(ctx, a.insertQuery(),
		rec.ComputedAt.UTC(),
		rec.Slope,
		rec.Intercept,
		int32(rec.Offset),
		uint32(rec.Observations),
		rec.TargetLabel,
		rec.Predicted,
		rec.RSquared,
	)
	if err != nil {
		a.l.Error("clickhouse save forecast error", applogger.String("table", a.table), applogger.Error(err))
		return fmt.Errorf("save forecast: %w", err)
	}
	return nil
}

func (a *CHForecastArchive) History(ctx context.Context, limit int) ([]models.ForecastRecord, error) {
	start := time.Now()
	rows, err := a.db.QueryContext(ctx, a.historyQuery(), limit)
	if err != nil {
		a.l.Error("clickhouse forecast history query error", applogger.String("table", a.table), applogger.Error(err))
		return nil, fmt.Errorf("forecast history: %w", err)
	}
	defer rows.Close()

	out := make([]models.ForecastRecord, 0, limit)
	for rows.Next() {
		var (
			r      models.ForecastRecord
			offset int32
			obs    uint32
		)
		if err := rows.Scan(&r.ComputedAt, &r.Slope, &r.Intercept, &offset, &obs, &r.TargetLabel, &r.Predicted, &r.RSquared); err != nil {
			return nil, fmt.Errorf("scan forecast: %w", err)
		}
		r.Offset = int(offset)
		r.Observations = int(obs)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	a.l.Debug("clickhouse forecast history ok",
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}
