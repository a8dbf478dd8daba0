// Package render turns answer markdown into styled terminal output.
// It is a presentation step only: callers keep the raw text.
package render

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/diogo/bookrag/internal/config"
)

// Options configures the markdown renderer
type Options struct {
	Width            int
	Style            string // glamour style name or path to a JSON style
	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions returns options matching config.DefaultMarkdownConfig
func DefaultOptions() Options {
	return FromConfig(config.DefaultMarkdownConfig(), 80)
}

// FromConfig builds options from the markdown section of the user config.
// GLAMOUR_STYLE overrides the configured style.
func FromConfig(md config.MarkdownConfig, width int) Options {
	opts := Options{
		Width:            width,
		Style:            md.Style,
		EnableEmoji:      md.EnableEmoji,
		PreserveNewLines: md.PreserveNewLines,
		TableWrap:        md.TableWrap,
		InlineTableLinks: md.InlineTableLinks,
	}
	if opts.Style == "" {
		opts.Style = StyleDark
	}
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	return opts
}

// WithWidth returns a copy with the given wrap width
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

func (o Options) key() string {
	return fmt.Sprintf("%s:%d:%t:%t:%t:%t",
		o.Style, o.Width, o.EnableEmoji, o.PreserveNewLines, o.TableWrap, o.InlineTableLinks)
}

// glamour.TermRenderer is not safe for concurrent Render calls, so renderers
// are pooled per option set and never shared
var (
	poolsMu sync.Mutex
	pools   = make(map[string]*sync.Pool)
)

func newRenderer(opts Options) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}
	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(rendererOpts...)
}

func pool(opts Options) *sync.Pool {
	key := opts.key()

	poolsMu.Lock()
	defer poolsMu.Unlock()

	p, ok := pools[key]
	if !ok {
		p = &sync.Pool{}
		pools[key] = p
	}
	return p
}

// Markdown renders content with opts
func Markdown(content string, opts Options) (string, error) {
	p := pool(opts)

	r, _ := p.Get().(*glamour.TermRenderer)
	if r == nil {
		var err error
		if r, err = newRenderer(opts); err != nil {
			return "", fmt.Errorf("failed to create renderer: %w", err)
		}
	}
	defer p.Put(r)

	return r.Render(content)
}

// Answer renders an assistant answer for display. Rendering failures fall
// back to the raw text, so a partial answer always shows.
func Answer(content string, opts Options) string {
	if strings.TrimSpace(content) == "" {
		return content
	}
	out, err := Markdown(content, opts)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

// PoolCount returns the number of distinct option sets rendered so far
func PoolCount() int {
	poolsMu.Lock()
	defer poolsMu.Unlock()
	return len(pools)
}

// Reset drops all pooled renderers
func Reset() {
	poolsMu.Lock()
	defer poolsMu.Unlock()
	pools = make(map[string]*sync.Pool)
}
