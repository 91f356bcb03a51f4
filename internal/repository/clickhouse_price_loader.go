package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"SectorVol/internal/domain/models"
	domrepo "SectorVol/internal/domain/repository"
	pkgch "SectorVol/pkg/clickhouse"
	applogger "SectorVol/pkg/logger"
	"SectorVol/pkg/util"
)

var _ domrepo.PriceLoader = (*CHPriceLoader)(nil)

type rowQuerier interface {
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// CHPriceLoader implements PriceLoader over a ClickHouse table of daily
// adjusted closes keyed by (ticker, date).
type CHPriceLoader struct {
	db      rowQuerier
	table   string
	l       *applogger.Logger
	metrics domrepo.Metrics
}

func NewCHPriceLoader(ch *pkgch.Client, table string, l *applogger.Logger, metrics domrepo.Metrics) *CHPriceLoader {
	if l == nil {
		l = applogger.Nop()
	}
	if metrics == nil {
		metrics = domrepo.NoopMetrics{}
	}
	return &CHPriceLoader{db: ch, table: table, l: l, metrics: metrics}
}

// SchemaStatements returns the DDL for the price table.
func SchemaStatements(table string) []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            date      Date,
            ticker    LowCardinality(String),
            adj_close Float64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (ticker, date)
    `, table)}
}

type priceRow struct {
	Date     time.Time
	Ticker   string
	AdjClose float64
}

func (s *CHPriceLoader) Load(ctx context.Context, tickers []string, start, end time.Time) (models.Series, error) {
	if len(tickers) == 0 {
		return models.NewSeries(tickers), nil
	}
	began := time.Now()

	q, args := priceQuery(s.table, tickers, start, end)
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		s.metrics.RecordFetch("clickhouse", "error")
		s.l.Error("clickhouse load_prices query error",
			applogger.String("table", s.table),
			applogger.Strings("tickers", tickers),
			applogger.Error(err),
		)
		return models.Series{}, fmt.Errorf("load prices: %w: %w", models.ErrProviderUnavailable, err)
	}
	defer rows.Close()

	out := make([]priceRow, 0, 1024)
	for rows.Next() {
		var r priceRow
		if err := rows.Scan(&r.Date, &r.Ticker, &r.AdjClose); err != nil {
			s.metrics.RecordFetch("clickhouse", "error")
			return models.Series{}, fmt.Errorf("scan price: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		s.metrics.RecordFetch("clickhouse", "error")
		return models.Series{}, fmt.Errorf("rows: %w: %w", models.ErrProviderUnavailable, err)
	}

	prices := pivotRows(tickers, out)
	s.metrics.RecordFetch("clickhouse", "ok")
	s.metrics.RecordLatency("load_prices", time.Since(began).Seconds())
	s.l.Info("clickhouse load_prices ok",
		applogger.String("table", s.table),
		applogger.Strings("tickers", tickers),
		applogger.Int("rows", len(out)),
		applogger.Int("dates", prices.Len()),
		applogger.Duration("duration_ms", time.Since(began)),
	)
	return prices, nil
}

// priceQuery selects [start, end) for the given tickers.
func priceQuery(table string, tickers []string, start, end time.Time) (string, []any) {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(tickers)), ", ")
	q := fmt.Sprintf(`
        SELECT date, ticker, adj_close
        FROM %s FINAL
        WHERE ticker IN (%s) AND date >= ? AND date < ?
        ORDER BY date ASC
    `, table, marks)

	args := make([]any, 0, len(tickers)+2)
	for _, t := range tickers {
		args = append(args, t)
	}
	args = append(args, util.TruncateDay(start), util.TruncateDay(end))
	return q, args
}

func pivotRows(tickers []string, rows []priceRow) models.Series {
	col := make(map[string]int, len(tickers))
	closes := make([]map[time.Time]float64, len(tickers))
	for i, t := range tickers {
		col[t] = i
		closes[i] = make(map[time.Time]float64)
	}
	for _, r := range rows {
		if i, ok := col[r.Ticker]; ok {
			closes[i][util.TruncateDay(r.Date)] = r.AdjClose
		}
	}
	return models.AlignPrices(tickers, closes)
}
