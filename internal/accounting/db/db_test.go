package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"shop-bot/internal/accounting/db"
	"shop-bot/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.PurchaseLog)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create logs table: %v", err)
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func newLog(userID int64, price int64) models.PurchaseLog {
	return models.PurchaseLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Username:  "buyer",
		ItemName:  "Sword",
		ItemPrice: price,
		CreatedAt: time.Now(),
	}
}

func TestInsertAndSummary(t *testing.T) {
	logsDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	assert.NoError(t, logsDB.InsertLog(newLog(42, 30)))
	assert.NoError(t, logsDB.InsertLog(newLog(42, 70)))
	assert.NoError(t, logsDB.InsertLog(newLog(99, 500)))

	summary, err := logsDB.SummaryByUser(42)
	assert.NoError(t, err)
	assert.Equal(t, int64(100), summary.TotalSpent)
	assert.Equal(t, 2, summary.Transactions)
}

func TestSummaryIsRecomputedNotCached(t *testing.T) {
	logsDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	assert.NoError(t, logsDB.InsertLog(newLog(42, 50)))

	first, err := logsDB.SummaryByUser(42)
	assert.NoError(t, err)
	assert.Equal(t, int64(50), first.TotalSpent)

	// Recomputing twice without writes must give identical results;
	// a new row must show up in the next recompute.
	again, err := logsDB.SummaryByUser(42)
	assert.NoError(t, err)
	assert.Equal(t, first, again)

	assert.NoError(t, logsDB.InsertLog(newLog(42, 25)))

	updated, err := logsDB.SummaryByUser(42)
	assert.NoError(t, err)
	assert.Equal(t, int64(75), updated.TotalSpent)
	assert.Equal(t, 2, updated.Transactions)
}

func TestSummaryForUnknownUser(t *testing.T) {
	logsDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	summary, err := logsDB.SummaryByUser(1234)
	assert.NoError(t, err)
	assert.Zero(t, summary.TotalSpent)
	assert.Zero(t, summary.Transactions)
}

func TestLogsByUserOrdered(t *testing.T) {
	logsDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	older := newLog(42, 10)
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := newLog(42, 20)

	assert.NoError(t, logsDB.InsertLog(newer))
	assert.NoError(t, logsDB.InsertLog(older))

	logs, err := logsDB.LogsByUser(42)
	assert.NoError(t, err)
	assert.Len(t, logs, 2)
	assert.Equal(t, older.ID, logs[0].ID)
	assert.Equal(t, newer.ID, logs[1].ID)
}

func TestTotals(t *testing.T) {
	logsDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	assert.NoError(t, logsDB.InsertLog(newLog(1, 100)))
	assert.NoError(t, logsDB.InsertLog(newLog(2, 250)))

	count, earnings, err := logsDB.Totals()
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, int64(350), earnings)
}

func TestTotalSince(t *testing.T) {
	logsDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	old := newLog(1, 100)
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	recent := newLog(1, 40)

	assert.NoError(t, logsDB.InsertLog(old))
	assert.NoError(t, logsDB.InsertLog(recent))

	total, err := logsDB.TotalSince(time.Now().Add(-24 * time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, int64(40), total)
}
