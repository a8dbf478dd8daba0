package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/diogo/bookrag/internal/chat"
	apierrors "github.com/diogo/bookrag/internal/errors"
	"github.com/diogo/bookrag/internal/models"
	"github.com/diogo/bookrag/internal/render"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"),
	lipgloss.Color("#feca57"),
	lipgloss.Color("#48dbfb"),
	lipgloss.Color("#ff9ff3"),
	lipgloss.Color("#54a0ff"),
	lipgloss.Color("#1dd1a1"),
}

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorPrimary  = lipgloss.Color("#7aa2f7")
	colorError    = lipgloss.Color("#f7768e")
)

var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginBottom(1)
)

// spinner handles the animated progress line on stderr
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// setMessage replaces the text shown next to the animation
func (s *spinner) setMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

	spin := lipgloss.NewStyle().
		Foreground(gradientColors[s.frame%len(gradientColors)]).
		Bold(true).
		Render(chars[s.frame%len(chars)])

	var bar strings.Builder
	for i := 0; i < 12; i++ {
		style := lipgloss.NewStyle().Foreground(gradientColors[(i+s.frame)%len(gradientColors)])
		bar.WriteString(style.Render("▪"))
	}

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dots.WriteString(lipgloss.NewStyle().Foreground(gradientColors[(s.frame+i)%len(gradientColors)]).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
	fmt.Fprintf(s.out, "\r\033[K%s %s %s %s", spin, bar.String(), msg, dots.String())
}

func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// deltaWriter prints successive snapshots of a growing answer. Only the
// suffix a snapshot adds to the printed text is written. Text already on
// the stream cannot be taken back, so a snapshot that does not extend it
// (the fallback after a failure) is dropped.
type deltaWriter struct {
	out     io.Writer
	printed string
}

func (w *deltaWriter) update(content string) {
	if !strings.HasPrefix(content, w.printed) {
		return
	}
	fmt.Fprint(w.out, content[len(w.printed):])
	w.printed = content
}

func (w *deltaWriter) finish() {
	if w.printed != "" && !strings.HasSuffix(w.printed, "\n") {
		fmt.Fprintln(w.out)
	}
}

// runQuery asks a single question. In raw mode the answer streams to stdout
// as plain text; otherwise progress is shown on stderr and the final answer
// is rendered as markdown.
func runQuery(ctx context.Context, deps *Dependencies, question string, rawOutput bool) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return apierrors.ErrEmptyQuery
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := deps.newChat()
	if err != nil {
		return err
	}

	deps.Log.Debug().Str("base_url", deps.Config.BaseURL).Str("session_id", c.SessionID()).Msg("one-shot query")

	streamToStdout := rawOutput && outputFlag == ""
	writer := &deltaWriter{out: deps.Out}

	var spin *spinner
	if !rawOutput {
		spin = newSpinner(deps.Err, "Searching your documents")
		spin.start()
	}

	var answer string
	start := time.Now()
	err = c.Send(ctx, question, func(e chat.Event) {
		answer = e.Content
		if streamToStdout && e.Status != models.StatusErrored {
			writer.update(e.Content)
		}
		if spin != nil && e.Status == models.StatusStreaming {
			spin.setMessage(fmt.Sprintf("Receiving answer (%d chars)", len(e.Content)))
		}
	})
	elapsed := time.Since(start)

	if streamToStdout {
		writer.finish()
	}

	if err != nil {
		switch {
		case spin != nil:
			spin.stopWithError()
			fmt.Fprintln(deps.Err, assistantBubbleStyle.BorderForeground(colorError).Render(answer))
		case streamToStdout:
			// stdout keeps only the partial answer
			fmt.Fprintln(deps.Err, answer)
		}
		return err
	}
	if spin != nil {
		spin.stopWithSuccess(fmt.Sprintf("Done in %s", elapsed.Round(time.Millisecond)))
	}

	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, []byte(answer), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !rawOutput {
			fmt.Fprintln(deps.Err, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Answer saved to "+outputFlag))
		}
	}

	if rawOutput {
		return nil
	}

	if deps.Config.CopyToClipboard {
		if err := clipboard.WriteAll(answer); err != nil {
			fmt.Fprintln(deps.Err, lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else {
			fmt.Fprintln(deps.Err, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	if outputFlag != "" {
		return nil
	}

	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}

	opts := render.FromConfig(deps.Config.Markdown, bubbleWidth-4)
	fmt.Fprintln(deps.Out, assistantLabelStyle.Render("✦ "+models.RoleAssistant.DisplayName()))
	fmt.Fprintln(deps.Out, assistantBubbleStyle.Width(bubbleWidth).Render(render.Answer(answer, opts)))

	return nil
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// formatErrorMessage formats an error with hints drawn from the typed errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	switch {
	case apierrors.IsAuthError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: run 'bookrag import-cookies --browser auto' after logging in to the web interface"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: check that the server is running and base_url is correct"))
	case apierrors.IsTransportError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: the answer stream was interrupted, try again"))
	}

	return sb.String()
}
