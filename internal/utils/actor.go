package utils

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"shop-bot/internal/models"
)

// ActorFromRequest reads the validated identity headers the command
// front-end attaches to every request. The front-end already verified
// the user; these headers only relay who they are and which roles
// they hold.
func ActorFromRequest(r *http.Request) (models.Actor, error) {
	rawID := r.Header.Get("X-Actor-ID")
	if rawID == "" {
		return models.Actor{}, fmt.Errorf("missing X-Actor-ID header")
	}
	userID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return models.Actor{}, fmt.Errorf("invalid X-Actor-ID header: %w", err)
	}

	actor := models.Actor{
		UserID:   userID,
		Username: r.Header.Get("X-Actor-Username"),
	}

	for _, part := range strings.Split(r.Header.Get("X-Actor-Roles"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		roleID, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return models.Actor{}, fmt.Errorf("invalid X-Actor-Roles header: %w", err)
		}
		actor.RoleIDs = append(actor.RoleIDs, roleID)
	}

	return actor, nil
}
