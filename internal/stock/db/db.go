package db

import (
	"context"
	"database/sql"
	"errors"

	"shop-bot/internal/database"
	"shop-bot/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// GetItemByID → fetch one stock item by its ID
func (d *DB) GetItemByID(id string) (*models.StockItem, error) {
	var item models.StockItem
	err := d.Bun.NewSelect().
		Model(&item).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetItemByName → fetch one stock item by its name
func (d *DB) GetItemByName(name string) (*models.StockItem, error) {
	var item models.StockItem
	err := d.Bun.NewSelect().
		Model(&item).
		Where("name = ?", name).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindInSet → fetch an item by (set, name), used for duplicate checks
func (d *DB) FindInSet(set, name string) (*models.StockItem, error) {
	var item models.StockItem
	query := d.Bun.NewSelect().
		Model(&item).
		Where("name = ?", name).
		Limit(1)

	if set == "" {
		query = query.Where("item_set IS NULL OR item_set = ''")
	} else {
		query = query.Where("item_set = ?", set)
	}

	err := query.Scan(context.Background())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// DecrementStock reduces quantity by n as one conditional update:
// it only applies while quantity >= n, so concurrent purchases of the
// last unit cannot drive the count negative. Returns ErrOutOfStock
// when the condition fails for an existing item.
func (d *DB) DecrementStock(id string, n int) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.StockItem)(nil)).
		Set("quantity = quantity - ?", n).
		Where("id = ?", id).
		Where("quantity >= ?", n).
		Exec(context.Background())
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Either the item is missing or the remaining quantity is
		// below n; look it up to report which.
		if _, err := d.GetItemByID(id); err != nil {
			return err
		}
		return database.ErrOutOfStock
	}
	return nil
}

// IncrementStock → restock by n, no upper bound
func (d *DB) IncrementStock(id string, n int) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.StockItem)(nil)).
		Set("quantity = quantity + ?", n).
		Where("id = ?", id).
		Exec(context.Background())
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return database.ErrItemNotFound
	}
	return nil
}

// ListItems → all stock items ordered by set then price
func (d *DB) ListItems() ([]models.StockItem, error) {
	var items []models.StockItem
	err := d.Bun.NewSelect().
		Model(&items).
		Order("item_set", "price").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CreateItem → insert new stock item
func (d *DB) CreateItem(item models.StockItem) error {
	_, err := d.Bun.NewInsert().Model(&item).Exec(context.Background())
	return err
}

// UpdateItem → update allowed fields
func (d *DB) UpdateItem(item models.StockItem) error {
	res, err := d.Bun.NewUpdate().
		Model(&item).
		Column("item_set", "name", "price", "quantity").
		Where("id = ?", item.ID).
		Exec(context.Background())
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return database.ErrItemNotFound
	}
	return nil
}

// RemoveItem → delete a stock item by ID. Log rows keep their own
// name/price snapshots, so removal never rewrites history.
func (d *DB) RemoveItem(id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.StockItem)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return database.ErrItemNotFound
	}
	return nil
}

// SetAllQuantities → owner-level fill/clear of every item's quantity
func (d *DB) SetAllQuantities(n int) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.StockItem)(nil)).
		Set("quantity = ?", n).
		Where("1 = 1").
		Exec(context.Background())
	return err
}
