package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/bookrag/internal/chat"
	"github.com/diogo/bookrag/internal/models"
	"github.com/diogo/bookrag/internal/render"
)

// Commands typed into the input box
const (
	cmdNew  = "/new"
	cmdQuit = "/quit"
	cmdExit = "/exit"
)

// Animation tick message
type animationTickMsg time.Time

// Messages delivered from the streaming goroutine. gen identifies the
// submission so that events from a stream abandoned by a new chat do not
// change the current state.
type (
	streamEventMsg struct {
		gen   int
		event chat.Event
		ch    <-chan tea.Msg
	}
	streamDoneMsg struct {
		gen int
		err error
	}
)

// Options configures the chat interface
type Options struct {
	BaseURL string
	Render  render.Options
}

// Model represents the TUI state
type Model struct {
	chat *chat.Chat
	ctx  context.Context
	opts Options

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	streaming      bool
	gen            int
	ready          bool
	err            error
	notice         string
	animationFrame int

	width  int
	height int
}

// NewChatModel creates a chat model driving c
func NewChatModel(ctx context.Context, c *chat.Chat, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask a question about your documents..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		chat:     c,
		ctx:      ctx,
		opts:     opts,
		textarea: ta,
		spinner:  s,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

func animationTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+n":
			m.newChat()
			return m, nil

		case "ctrl+y":
			m.copyLastAnswer()
			return m, nil

		case "enter":
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			switch input {
			case cmdQuit, cmdExit:
				return m, tea.Quit
			case cmdNew:
				m.textarea.Reset()
				m.newChat()
				return m, nil
			}
			if m.streaming {
				m.notice = "Wait for the current answer to finish"
				return m, nil
			}

			m.textarea.Reset()
			m.streaming = true
			m.err = nil
			m.notice = ""
			m.animationFrame = 0
			m.gen++

			return m, tea.Batch(m.send(input), m.spinner.Tick, animationTick())
		}

	case streamEventMsg:
		if msg.gen == m.gen {
			m.refresh()
		}
		cmds = append(cmds, waitForStream(msg.ch))

	case streamDoneMsg:
		if msg.gen == m.gen {
			m.streaming = false
			m.err = msg.err
			m.refresh()
		}

	case spinner.TickMsg:
		if m.streaming {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.streaming {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if _, ok := msg.(tea.KeyMsg); ok && !m.streaming {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	const (
		headerHeight = 3
		inputHeight  = 5
		statusHeight = 1
		padding      = 3
	)

	vpHeight := height - headerHeight - inputHeight - statusHeight - padding
	if vpHeight < 5 {
		vpHeight = 5
	}
	contentWidth := width - 4

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.refresh()
}

// newChat starts a fresh conversation; an answer still streaming is dropped
func (m *Model) newChat() {
	id, err := m.chat.NewChat()
	if err != nil {
		m.err = err
		return
	}
	m.gen++
	m.streaming = false
	m.err = nil
	m.notice = "New chat " + id
	m.refresh()
}

func (m *Model) copyLastAnswer() {
	msgs := m.chat.Conversation().Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == models.RoleAssistant && msgs[i].Status == models.StatusComplete {
			if err := clipboard.WriteAll(msgs[i].Content); err != nil {
				m.notice = "Copy failed: " + err.Error()
				return
			}
			m.notice = "Answer copied to clipboard"
			return
		}
	}
}

// send starts the exchange on its own goroutine and returns a command that
// delivers its events one at a time
func (m Model) send(text string) tea.Cmd {
	ch := make(chan tea.Msg, 16)
	gen := m.gen
	c := m.chat
	ctx := m.ctx

	go func() {
		defer close(ch)
		err := c.Send(ctx, text, func(e chat.Event) {
			select {
			case ch <- streamEventMsg{gen: gen, event: e, ch: ch}:
			case <-ctx.Done():
			}
		})
		select {
		case ch <- streamDoneMsg{gen: gen, err: err}:
		case <-ctx.Done():
		}
	}()

	return waitForStream(ch)
}

// waitForStream reads the next message from a stream goroutine
func waitForStream(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	var sections []string

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ BookRAG"),
		subtitleStyle.Render("  •  "+m.opts.BaseURL),
		subtitleStyle.Render("  •  "+m.chat.SessionID()),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(header))

	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View()))

	var input string
	if m.streaming {
		input = m.renderLoadingAnimation()
	} else {
		input = lipgloss.JoinVertical(lipgloss.Left,
			inputLabelStyle.Render(models.RoleUser.DisplayName()),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(input))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	} else if m.notice != "" {
		sections = append(sections, noticeStyle.Render(m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderLoadingAnimation renders the animated indicator shown while streaming
func (m Model) renderLoadingAnimation() string {
	frame := m.animationFrame

	bar := make([]string, 0, 16)
	for i := 0; i < 16; i++ {
		color := gradientColors[(i+frame)%len(gradientColors)]
		bar = append(bar, lipgloss.NewStyle().Foreground(color).Render("▪"))
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" Searching your documents")
	dots := strings.Repeat(".", (frame/3)%4)

	return fmt.Sprintf("%s %s%s%s", m.spinner.View(), strings.Join(bar, ""), text, dots)
}

func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+N", "New chat"},
		{"Ctrl+Y", "Copy answer"},
		{"↑↓", "Scroll"},
		{"Esc", "Quit"},
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// refresh rebuilds the viewport from the conversation snapshot
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages(m.chat.Conversation().Messages()))
	m.viewport.GotoBottom()
}

func (m Model) renderMessages(msgs []models.Message) string {
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}
	renderOpts := m.opts.Render.WithWidth(bubbleWidth - 4)

	var content strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.IsUser() {
			content.WriteString(userLabelStyle.Render("⬤ " + msg.Role.DisplayName()))
			content.WriteString("\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Content))
			content.WriteString("\n")
			continue
		}

		content.WriteString(assistantLabelStyle.Render("✦ " + msg.Role.DisplayName()))
		content.WriteString("\n")

		switch msg.Status {
		case models.StatusPending:
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(m.spinner.View()))
		case models.StatusErrored:
			content.WriteString(erroredBubbleStyle.Width(bubbleWidth).Render(msg.Content))
		default:
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(render.Answer(msg.Content, renderOpts)))
		}
		content.WriteString("\n")
	}

	return content.String()
}

// RunChat starts the chat TUI
func RunChat(ctx context.Context, c *chat.Chat, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(
		NewChatModel(ctx, c, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
