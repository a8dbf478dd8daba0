package api

import (
	"context"
	"fmt"
	"io"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/bookrag/internal/errors"
	"github.com/diogo/bookrag/internal/models"
)

// FetchHistory returns the server-side history for the current credentials
func (c *Client) FetchHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	if c.IsClosed() {
		return nil, apierrors.ErrClientClosed
	}

	req, err := c.newRequest(ctx, "GET", models.PathHistory, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", models.ContentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.NewNetworkError("history", models.PathHistory, err)
	}
	defer closeBody(resp)

	if err := checkStatus(resp, models.PathHistory, "history request"); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.NewNetworkError("history", models.PathHistory, err)
	}

	return parseHistory(body)
}

func parseHistory(body []byte) ([]models.HistoryEntry, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid history response: not JSON")
	}

	root := gjson.ParseBytes(body)
	if msg := root.Get(PathErrorMessage); root.IsObject() && msg.Exists() {
		return nil, fmt.Errorf("history request failed: %s", msg.String())
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("invalid history response: expected array")
	}

	entries := make([]models.HistoryEntry, 0, len(root.Array()))
	root.ForEach(func(_, item gjson.Result) bool {
		content := item.Get(PathEntryContent)
		if !content.Exists() {
			return true
		}
		entries = append(entries, models.HistoryEntry{
			Role:    models.Role(item.Get(PathEntryRole).String()),
			Content: content.String(),
		})
		return true
	})

	return entries, nil
}
