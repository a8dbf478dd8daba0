package commands

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/diogo/bookrag/internal/api"
	"github.com/diogo/bookrag/internal/chat"
	"github.com/diogo/bookrag/internal/config"
	"github.com/diogo/bookrag/internal/models"
	"github.com/diogo/bookrag/internal/session"
	"github.com/diogo/bookrag/internal/tui"
)

// fakeClient replays cumulative snapshots and records what it was asked
type fakeClient struct {
	mu        sync.Mutex
	snapshots []string
	err       error
	history   []models.HistoryEntry
	histErr   error
	queries   []string
	sessions  []string
	closed    bool
}

func (f *fakeClient) StreamChat(ctx context.Context, query, sessionID string, onUpdate func(string)) (*api.StreamResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.sessions = append(f.sessions, sessionID)
	f.mu.Unlock()

	var last string
	for _, s := range f.snapshots {
		last = s
		onUpdate(s)
	}
	if f.err != nil {
		onUpdate(models.FallbackMessage)
		return nil, f.err
	}
	return &api.StreamResult{Content: last, Frames: len(f.snapshots), AnswerFrames: len(f.snapshots)}, nil
}

func (f *fakeClient) FetchHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	return f.history, f.histErr
}

func (f *fakeClient) BaseURL() string { return "http://books.test" }

func (f *fakeClient) Close() { f.closed = true }

// fakeTUI records the chat it was handed instead of opening a terminal
type fakeTUI struct {
	chat *chat.Chat
	opts tui.Options
	err  error
}

func (f *fakeTUI) RunChat(ctx context.Context, c *chat.Chat, opts tui.Options) error {
	f.chat = c
	f.opts = opts
	return f.err
}

type testDeps struct {
	*Dependencies
	out *bytes.Buffer
	err *bytes.Buffer
}

// newTestDeps builds dependencies over an in-memory session store whose
// ids are "s1", "s2", ...
func newTestDeps(t *testing.T, client api.ChatClient) testDeps {
	t.Helper()

	n := 0
	manager, err := session.NewManager(session.NewMemoryStore(), session.WithIDGenerator(func() string {
		n++
		return "s" + string(rune('0'+n))
	}))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return testDeps{
		Dependencies: &Dependencies{
			Config:   config.DefaultConfig(),
			Client:   client,
			Sessions: manager,
			TUI:      &fakeTUI{},
			Log:      zerolog.Nop(),
			Out:      out,
			Err:      errOut,
		},
		out: out,
		err: errOut,
	}
}

// resetFlags restores package-level flag values after a test
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		baseURLFlag, logLevelFlag, verboseFlag, ephemeralFlag = "", "", false, false
		outputFlag, fileFlag, rawFlag = "", "", false
		historyFullFlag = false
		importBrowserFlag, listBrowsersFlag = "", false
	})
}
