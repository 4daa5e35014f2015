package sheets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"shop-bot/internal/config"
	"shop-bot/internal/utils"
)

// Client posts one bookkeeping row per logged item to the spreadsheet
// webhook. Rows mirror the ledger; the sheet is never read back.
type Client struct {
	HTTP       *http.Client
	WebhookURL string
}

func NewClient(cfg config.ExternalConfig) *Client {
	return &Client{
		HTTP:       &http.Client{Timeout: 10 * time.Second},
		WebhookURL: cfg.SheetsWebhook,
	}
}

type row struct {
	Date     string `json:"date"`
	Username string `json:"username"`
	UserID   string `json:"user_id"`
	Item     string `json:"item"`
	Amount   string `json:"amount"`
}

// AppendRow posts a single row. A blank webhook URL disables
// bookkeeping entirely.
func (c *Client) AppendRow(username string, userID int64, item string, price int64) error {
	if c.WebhookURL == "" {
		return nil
	}

	body, err := json.Marshal(row{
		Date:     time.Now().Format("01/02/06"),
		Username: username,
		UserID:   fmt.Sprintf("%d", userID),
		Item:     item,
		Amount:   utils.FormatPrice(price),
	})
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Post(c.WebhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to post bookkeeping row: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("bookkeeping webhook returned %s", resp.Status)
	}
	return nil
}
