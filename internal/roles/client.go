package roles

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"shop-bot/internal/config"
)

// Client asks the gateway to grant a guild role to a member. Grants
// are best-effort; the caller decides whether a failure matters.
type Client struct {
	HTTP       *http.Client
	GatewayURL string
}

func NewClient(cfg config.ExternalConfig) *Client {
	return &Client{
		HTTP:       &http.Client{Timeout: 10 * time.Second},
		GatewayURL: cfg.GatewayURL,
	}
}

type grantRequest struct {
	UserID int64  `json:"user_id"`
	RoleID int64  `json:"role_id"`
	Reason string `json:"reason"`
}

func (c *Client) GrantRole(userID, roleID int64, reason string) error {
	if c.GatewayURL == "" {
		return nil
	}

	body, err := json.Marshal(grantRequest{UserID: userID, RoleID: roleID, Reason: reason})
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Post(c.GatewayURL+"/roles/grant", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to reach role gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("role gateway returned %s", resp.Status)
	}
	return nil
}
