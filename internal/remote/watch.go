package remote

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	ws "github.com/coder/websocket"
	"github.com/sethvargo/go-retry"

	"github.com/jtroost/packmule/internal/websocket"
)

// WatchGroup subscribes to a group's change feed and invokes onEvent for
// every notification. Each dial uses capped exponential backoff; once a
// session is established the backoff starts over, so a long-lived watch
// that drops reconnects quickly. Blocks until ctx is cancelled.
func (c *Client) WatchGroup(ctx context.Context, groupID string, onEvent func(websocket.Event)) error {
	wsURL := httpToWS(c.cfg.BaseURL) + "/api/groups/" + url.PathEscape(groupID) +
		"/watch?token=" + url.QueryEscape(c.cfg.Token)

	for {
		conn, err := c.dialWatch(ctx, wsURL, groupID)
		if err != nil {
			return err
		}

		err = c.readEvents(ctx, conn, onEvent)
		conn.Close(ws.StatusNormalClosure, "")
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("group watch disconnected, reconnecting", "group", groupID, "error", err)
	}
}

func (c *Client) dialWatch(ctx context.Context, wsURL, groupID string) (*ws.Conn, error) {
	var conn *ws.Conn
	backoff := retry.WithCappedDuration(30*time.Second, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		conn, _, err = ws.Dial(ctx, wsURL, nil)
		if err != nil {
			c.logger.Debug("group watch dial failed", "group", groupID, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("group watch connected", "group", groupID)
	return conn, nil
}

func (c *Client) readEvents(ctx context.Context, conn *ws.Conn, onEvent func(websocket.Event)) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var ev websocket.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			c.logger.Warn("malformed watch event", "error", err)
			continue
		}
		onEvent(ev)
	}
}

func httpToWS(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://")
	}
	return baseURL
}
