// Package stream decodes the newline-delimited JSON body of a chat response
// into protocol frames.
package stream

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/bookrag/internal/errors"
	"github.com/diogo/bookrag/internal/logging"
	"github.com/diogo/bookrag/internal/models"
)

// JSON keys recognized on a frame line
const (
	KeyAnswer = "answer"
	KeyError  = "error"
)

// Option configures a Decoder or Reader
type Option func(*options)

type options struct {
	logger     zerolog.Logger
	bufferSize int
}

// WithLogger sets the logger used to report dropped lines
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithBufferSize sets the size of each raw read performed by a Reader
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:     logging.Component("stream"),
		bufferSize: 4096,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Decoder turns text chunks into frames. It keeps the trailing partial line
// of each chunk and prepends it to the next one, so frames may be split at
// any point across chunks.
//
// A Decoder is not safe for concurrent use and serves a single stream.
type Decoder struct {
	residual string
	dropped  int
	closed   bool
	log      zerolog.Logger
}

// NewDecoder creates a Decoder with an empty buffer
func NewDecoder(opts ...Option) *Decoder {
	o := buildOptions(opts)
	return &Decoder{log: o.logger}
}

// Feed consumes one chunk of text and returns the frames completed by it, in
// order. Lines that are not valid frames are logged and dropped.
func (d *Decoder) Feed(chunk string) []models.Frame {
	if d.closed {
		return nil
	}

	pieces := strings.Split(d.residual+chunk, "\n")
	d.residual = pieces[len(pieces)-1]

	var frames []models.Frame
	for _, line := range pieces[:len(pieces)-1] {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		frame, err := ParseLine(line)
		if err != nil {
			d.dropped++
			d.log.Debug().Err(err).Msg("dropping stream line")
			continue
		}
		frames = append(frames, frame)
	}
	return frames
}

// Close ends the stream. An unterminated final line is discarded, never parsed.
func (d *Decoder) Close() {
	if d.closed {
		return
	}
	d.closed = true
	if strings.TrimSpace(d.residual) != "" {
		d.dropped++
		d.log.Debug().
			Err(apierrors.NewFrameError(d.residual, "unterminated final line")).
			Msg("discarding stream residual")
	}
	d.residual = ""
}

// Residual returns the buffered partial line
func (d *Decoder) Residual() string {
	return d.residual
}

// Dropped returns the number of lines discarded so far
func (d *Decoder) Dropped() int {
	return d.dropped
}

// ParseLine parses one complete line into a frame. A non-empty "error" string
// wins over "answer", matching the service's web client.
func ParseLine(line string) (models.Frame, error) {
	if !gjson.Valid(line) {
		return models.Frame{}, apierrors.NewFrameError(line, "invalid json")
	}

	parsed := gjson.Parse(line)
	if !parsed.IsObject() {
		return models.Frame{}, apierrors.NewFrameError(line, "not an object")
	}

	if errField := parsed.Get(KeyError); errField.Type == gjson.String && errField.Str != "" {
		return models.ErrorFrame(errField.Str), nil
	}

	if answer := parsed.Get(KeyAnswer); answer.Type == gjson.String {
		return models.AnswerFrame(answer.Str), nil
	}

	return models.Frame{}, apierrors.NewFrameError(line, "no answer or error key")
}
