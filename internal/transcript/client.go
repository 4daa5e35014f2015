package transcript

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"shop-bot/internal/config"
)

// Client talks to the transcript archiver. Saves are fire-and-forget:
// a ticket close or delete never waits on, or fails because of, the
// archive.
type Client struct {
	HTTP    *http.Client
	BaseURL string
}

func NewClient(cfg config.ExternalConfig) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		BaseURL: cfg.TranscriptURL,
	}
}

// Save asks the archiver to snapshot the channel's conversation. Runs
// in its own goroutine; errors are logged to stdout and dropped.
func (c *Client) Save(channelID int64, category string) {
	go func() {
		saveURL := fmt.Sprintf("%s/save?channel_id=%d&category=%s", c.BaseURL, channelID, url.QueryEscape(category))
		resp, err := c.HTTP.Get(saveURL)
		if err != nil {
			fmt.Printf("Transcript save error for channel %d: %v\n", channelID, err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			fmt.Printf("Transcript save for channel %d returned %s\n", channelID, resp.Status)
		}
	}()
}

func (c *Client) ViewURL(channelID int64) string {
	return fmt.Sprintf("%s/view?channel_id=%d", c.BaseURL, channelID)
}

func (c *Client) DownloadURL(channelID int64) string {
	return fmt.Sprintf("%s/download?channel_id=%d", c.BaseURL, channelID)
}
