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

// GetTicketByChannel → ticket row for a conversation channel
func (d *DB) GetTicketByChannel(channelID int64) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("channel_id = ?", channelID).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// FindOpenTicket returns the user's open ticket in a category, or
// ErrTicketNotFound when they have none. At most one row can match.
func (d *DB) FindOpenTicket(userID int64, category string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("user_id = ?", userID).
		Where("category = ?", category).
		Where("open = ?", true).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (d *DB) InsertTicket(ticket models.Ticket) error {
	_, err := d.Bun.NewInsert().Model(&ticket).Exec(context.Background())
	return err
}

// SetOpen flips a ticket's open flag by channel id.
func (d *DB) SetOpen(channelID int64, open bool) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("open = ?", open).
		Where("channel_id = ?", channelID).
		Exec(context.Background())
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return database.ErrTicketNotFound
	}
	return nil
}

// ClearPayload drops a Purchase ticket's captured selection once it
// has been committed to the ledger. A reopened ticket closing again
// then finds nothing left to log.
func (d *DB) ClearPayload(channelID int64) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("payment_method = NULL").
		Set("item_ids = NULL").
		Where("channel_id = ?", channelID).
		Exec(context.Background())
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return database.ErrTicketNotFound
	}
	return nil
}

// DeleteTicket removes the row once the channel itself is gone.
func (d *DB) DeleteTicket(channelID int64) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Ticket)(nil)).
		Where("channel_id = ?", channelID).
		Exec(context.Background())
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return database.ErrTicketNotFound
	}
	return nil
}

// CountTickets returns how many tickets have ever been recorded; the
// next ticket number is one past it.
func (d *DB) CountTickets() (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Ticket)(nil)).
		Count(context.Background())
}

// ListTickets returns every ticket, optionally only open ones.
func (d *DB) ListTickets(openOnly bool) ([]models.Ticket, error) {
	var tickets []models.Ticket
	q := d.Bun.NewSelect().
		Model(&tickets).
		Order("created_at")
	if openOnly {
		q = q.Where("open = ?", true)
	}
	if err := q.Scan(context.Background()); err != nil {
		return nil, err
	}
	return tickets, nil
}
