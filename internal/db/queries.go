package db

import (
	"context"
	"fmt"
	"time"

	"github.com/j-veylop/smart-anesthesia-tui/internal/logger"
	"github.com/j-veylop/smart-anesthesia-tui/internal/models"
)

// InsertEvent appends an event and returns its row id.
func (db *DB) InsertEvent(event models.Event) (int64, error) {
	query := `
		INSERT INTO events (accepted_at, item, qty, unit, category)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := db.ExecContext(context.Background(), query,
		event.Timestamp.Unix(),
		event.Item,
		event.Quantity,
		event.Unit,
		string(event.Category),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}

	return result.LastInsertId()
}

// ListEvents returns every event, newest first.
func (db *DB) ListEvents() ([]models.Event, error) {
	query := `
		SELECT accepted_at, item, qty, unit, category
		FROM events
		ORDER BY id DESC
	`

	rows, err := db.QueryContext(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]models.Event, 0)
	for rows.Next() {
		var (
			e        models.Event
			accepted int64
			category string
		)
		if err := rows.Scan(&accepted, &e.Item, &e.Quantity, &e.Unit, &category); err != nil {
			logger.Error("failed to scan event", "error", err)
			continue
		}
		e.Timestamp = time.Unix(accepted, 0)
		e.Category = models.Category(category)
		events = append(events, e)
	}

	return events, rows.Err()
}

// CountEvents returns the number of stored events.
func (db *DB) CountEvents() (int, error) {
	var n int
	err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM events").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

// GetMetrics computes session metrics with SQL aggregates.
func (db *DB) GetMetrics() (models.Metrics, error) {
	m := models.Metrics{
		CategoryCounts: make(map[models.Category]int),
		NarcoticSeries: make([]float64, 0),
	}

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN category = ? THEN qty ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN category = ? THEN 1 ELSE 0 END), 0)
		FROM events
	`
	err := db.QueryRowContext(context.Background(), query,
		string(models.CategoryNarcotic),
		string(models.CategoryCriticalEvent),
	).Scan(&m.TotalCount, &m.NarcoticSum, &m.CriticalCount)
	if err != nil {
		return m, fmt.Errorf("failed to query totals: %w", err)
	}

	counts, err := db.categoryCounts()
	if err != nil {
		return m, err
	}
	m.CategoryCounts = counts

	series, err := db.narcoticSeries()
	if err != nil {
		return m, err
	}
	m.NarcoticSeries = series

	return m, nil
}

func (db *DB) categoryCounts() (map[models.Category]int, error) {
	rows, err := db.QueryContext(context.Background(),
		"SELECT category, COUNT(*) FROM events GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to query category counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[models.Category]int)
	for rows.Next() {
		var (
			category string
			n        int
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts[models.Category(category)] = n
	}

	return counts, rows.Err()
}

// narcoticSeries returns the running narcotic total after each event,
// oldest first.
func (db *DB) narcoticSeries() ([]float64, error) {
	query := `
		SELECT SUM(CASE WHEN category = ? THEN qty ELSE 0 END)
			OVER (ORDER BY id ROWS UNBOUNDED PRECEDING)
		FROM events
		ORDER BY id
	`

	rows, err := db.QueryContext(context.Background(), query, string(models.CategoryNarcotic))
	if err != nil {
		return nil, fmt.Errorf("failed to query narcotic series: %w", err)
	}
	defer func() { _ = rows.Close() }()

	series := make([]float64, 0)
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan narcotic series: %w", err)
		}
		series = append(series, v)
	}

	return series, rows.Err()
}
