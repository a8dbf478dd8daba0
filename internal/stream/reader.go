package stream

import (
	"context"
	"errors"
	"io"
	"iter"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/diogo/bookrag/internal/models"
)

// Reader pulls frames from a byte stream. Each raw read is decoded as UTF-8
// with code points split across reads carried over to the next read, then
// fed to a Decoder.
//
// Reads happen strictly one at a time on the caller's goroutine; Next blocks
// only inside the underlying Read. A Reader cannot be restarted.
type Reader struct {
	src     io.Reader
	dec     *Decoder
	buf     []byte
	pending []models.Frame
	frames  int
	done    bool
	err     error
	log     zerolog.Logger
}

// NewReader wraps r, typically an HTTP response body
func NewReader(r io.Reader, opts ...Option) *Reader {
	o := buildOptions(opts)
	return &Reader{
		src: transform.NewReader(r, unicode.UTF8.NewDecoder()),
		dec: NewDecoder(opts...),
		buf: make([]byte, o.bufferSize),
		log: o.logger,
	}
}

// Next returns the next frame. It returns io.EOF once the stream has ended
// and every complete frame has been delivered. Any other error is a read
// failure and is returned again by later calls.
func (r *Reader) Next(ctx context.Context) (models.Frame, error) {
	for len(r.pending) == 0 {
		if r.err != nil {
			return models.Frame{}, r.err
		}
		if r.done {
			return models.Frame{}, io.EOF
		}
		if err := ctx.Err(); err != nil {
			r.err = err
			return models.Frame{}, err
		}

		n, err := r.src.Read(r.buf)
		if n > 0 {
			r.pending = append(r.pending, r.dec.Feed(string(r.buf[:n]))...)
		}
		switch {
		case errors.Is(err, io.EOF):
			r.dec.Close()
			r.done = true
		case err != nil:
			r.log.Debug().Err(err).Int("frames", r.frames).Msg("stream read failed")
			r.err = err
		}
	}

	frame := r.pending[0]
	r.pending = r.pending[1:]
	r.frames++
	return frame, nil
}

// Frames returns an iterator over the remaining frames. Iteration stops at
// end of stream; a read failure is yielded once as the final element.
func (r *Reader) Frames(ctx context.Context) iter.Seq2[models.Frame, error] {
	return func(yield func(models.Frame, error) bool) {
		for {
			frame, err := r.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(models.Frame{}, err)
				return
			}
			if !yield(frame, nil) {
				return
			}
		}
	}
}

// Count returns the number of frames delivered so far
func (r *Reader) Count() int {
	return r.frames
}

// Dropped returns the number of lines discarded so far
func (r *Reader) Dropped() int {
	return r.dec.Dropped()
}

// DecodeAll reads r to the end and returns every frame
func DecodeAll(ctx context.Context, r io.Reader, opts ...Option) ([]models.Frame, error) {
	var frames []models.Frame
	for frame, err := range NewReader(r, opts...).Frames(ctx) {
		if err != nil {
			return frames, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}
