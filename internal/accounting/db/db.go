package db

import (
	"context"
	"time"

	"shop-bot/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// InsertLog → append one immutable log row. There is deliberately no
// update or delete counterpart in this layer.
func (d *DB) InsertLog(log models.PurchaseLog) error {
	_, err := d.Bun.NewInsert().Model(&log).Exec(context.Background())
	return err
}

// SummaryByUser recomputes a customer's lifetime spend and
// transaction count from the full log history. Always derived fresh,
// never kept as a running counter.
func (d *DB) SummaryByUser(userID int64) (*models.CustomerSummary, error) {
	var logs []models.PurchaseLog
	err := d.Bun.NewSelect().
		Model(&logs).
		Where("user_id = ?", userID).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}

	summary := &models.CustomerSummary{UserID: userID, Transactions: len(logs)}
	for _, log := range logs {
		summary.TotalSpent += log.ItemPrice
	}
	return summary, nil
}

// LogsByUser → full purchase history for a customer
func (d *DB) LogsByUser(userID int64) ([]models.PurchaseLog, error) {
	var logs []models.PurchaseLog
	err := d.Bun.NewSelect().
		Model(&logs).
		Where("user_id = ?", userID).
		Order("created_at").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// TotalSince sums the price snapshots of every log written at or
// after the given time, used for the daily bookkeeping total.
func (d *DB) TotalSince(since time.Time) (int64, error) {
	var logs []models.PurchaseLog
	err := d.Bun.NewSelect().
		Model(&logs).
		Where("created_at >= ?", since).
		Scan(context.Background())
	if err != nil {
		return 0, err
	}

	var total int64
	for _, log := range logs {
		total += log.ItemPrice
	}
	return total, nil
}

// Totals returns the all-time sales count and earnings for the stats
// counters.
func (d *DB) Totals() (int, int64, error) {
	var logs []models.PurchaseLog
	err := d.Bun.NewSelect().
		Model(&logs).
		Scan(context.Background())
	if err != nil {
		return 0, 0, err
	}

	var earnings int64
	for _, log := range logs {
		earnings += log.ItemPrice
	}
	return len(logs), earnings, nil
}
