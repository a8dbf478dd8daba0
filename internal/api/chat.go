package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	apierrors "github.com/diogo/bookrag/internal/errors"
	"github.com/diogo/bookrag/internal/models"
	"github.com/diogo/bookrag/internal/stream"
)

// StreamResult summarizes a chat stream that reached end of body.
// A stream that closes without frames is reported with Frames == 0; the
// protocol has no terminal frame, so that case cannot be told apart from an
// interrupted answer.
type StreamResult struct {
	Content      string
	Frames       int
	AnswerFrames int
	ErrorFrames  int
	Dropped      int
	Duration     time.Duration
}

// Empty reports whether the stream carried no frames at all
func (r *StreamResult) Empty() bool {
	return r.Frames == 0
}

// StreamChat sends query for sessionID and folds the NDJSON response into one
// growing answer. onUpdate receives the full accumulated content after every
// frame, so each call replaces the previous one.
//
// In-band error frames are appended as an annotation and the stream goes on.
// A transport failure (no response, non-2xx status, or a read error) calls
// onUpdate exactly once more with models.FallbackMessage, discarding any
// partial content, and returns a typed error.
func (c *Client) StreamChat(ctx context.Context, query, sessionID string, onUpdate func(content string)) (*StreamResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apierrors.ErrEmptyQuery
	}
	if c.IsClosed() {
		return nil, apierrors.ErrClientClosed
	}
	if onUpdate == nil {
		onUpdate = func(string) {}
	}

	start := time.Now()
	log := c.log.With().Str("session_id", sessionID).Logger()

	fail := func(err error) (*StreamResult, error) {
		log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("chat stream failed")
		onUpdate(models.FallbackMessage)
		return nil, err
	}

	payload, err := json.Marshal(chatRequest{Query: query, SessionID: sessionID})
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, "POST", models.PathChat, strings.NewReader(string(payload)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", models.ContentTypeNDJSON)

	log.Debug().Str("endpoint", models.PathChat).Int("query_len", len(query)).Msg("chat stream started")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(apierrors.NewNetworkError("chat", models.PathChat, err))
	}
	defer closeBody(resp)

	if err := checkStatus(resp, models.PathChat, "chat request"); err != nil {
		return fail(err)
	}

	var (
		acc    strings.Builder
		result StreamResult
	)

	reader := stream.NewReader(resp.Body, stream.WithLogger(c.log))
	for {
		frame, err := reader.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(apierrors.NewStreamError(models.PathChat, reader.Count(), err))
		}

		if frame.IsError() {
			result.ErrorFrames++
			acc.WriteString(frame.Annotation())
		} else {
			result.AnswerFrames++
			acc.WriteString(frame.Text)
		}
		onUpdate(acc.String())
	}

	result.Content = acc.String()
	result.Frames = reader.Count()
	result.Dropped = reader.Dropped()
	result.Duration = time.Since(start)

	event := log.Debug()
	if result.Empty() {
		event = log.Warn()
	}
	event.Int("frames", result.Frames).
		Int("errors", result.ErrorFrames).
		Int("dropped", result.Dropped).
		Dur("duration", result.Duration).
		Msg("chat stream finished")

	return &result, nil
}
