package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apierrors "github.com/diogo/bookrag/internal/errors"
	"github.com/diogo/bookrag/internal/models"
)

func TestDeltaWriter(t *testing.T) {
	tests := []struct {
		name      string
		snapshots []string
		want      string
	}{
		{
			name:      "growing answer prints suffixes",
			snapshots: []string{"Hel", "Hello", "Hello, world"},
			want:      "Hello, world\n",
		},
		{
			name:      "repeated snapshot prints nothing new",
			snapshots: []string{"Hi", "Hi", "Hi"},
			want:      "Hi\n",
		},
		{
			name:      "snapshot that does not extend the output is dropped",
			snapshots: []string{"Partial", models.FallbackMessage},
			want:      "Partial\n",
		},
		{
			name:      "trailing newline is not doubled",
			snapshots: []string{"line\n"},
			want:      "line\n",
		},
		{
			name: "nothing streamed",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := &deltaWriter{out: &buf}
			for _, s := range tt.snapshots {
				w.update(s)
			}
			w.finish()
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestRunQuery_RawStreamsAnswer(t *testing.T) {
	resetFlags(t)
	client := &fakeClient{snapshots: []string{"The book", "The book has 12 chapters."}}
	deps := newTestDeps(t, client)

	if err := runQuery(context.Background(), deps.Dependencies, "  How many chapters?  ", true); err != nil {
		t.Fatalf("runQuery() error = %v", err)
	}

	if got := deps.out.String(); got != "The book has 12 chapters.\n" {
		t.Errorf("stdout = %q", got)
	}
	if len(client.queries) != 1 || client.queries[0] != "How many chapters?" {
		t.Errorf("queries = %v, want trimmed question", client.queries)
	}
	if client.sessions[0] != "s1" {
		t.Errorf("session = %q, want s1", client.sessions[0])
	}
}

func TestRunQuery_TransportFailure(t *testing.T) {
	resetFlags(t)
	streamErr := apierrors.NewStreamError("/api/chat", 1, errors.New("connection reset"))
	client := &fakeClient{snapshots: []string{"Half an"}, err: streamErr}
	deps := newTestDeps(t, client)

	err := runQuery(context.Background(), deps.Dependencies, "question", true)
	if !errors.Is(err, streamErr) {
		t.Fatalf("runQuery() error = %v, want stream error", err)
	}
	if got := deps.out.String(); got != "Half an\n" {
		t.Errorf("stdout = %q, want only the partial answer", got)
	}
	if !strings.Contains(deps.err.String(), models.FallbackMessage) {
		t.Errorf("stderr = %q, want fallback message", deps.err.String())
	}
}

func TestRunQuery_EmptyQuestion(t *testing.T) {
	resetFlags(t)
	client := &fakeClient{}
	deps := newTestDeps(t, client)

	err := runQuery(context.Background(), deps.Dependencies, "   ", true)
	if !errors.Is(err, apierrors.ErrEmptyQuery) {
		t.Errorf("runQuery() error = %v, want ErrEmptyQuery", err)
	}
	if len(client.queries) != 0 {
		t.Error("empty question should not reach the server")
	}
}

func TestRunQuery_OutputFile(t *testing.T) {
	resetFlags(t)
	outputFlag = filepath.Join(t.TempDir(), "answer.md")
	client := &fakeClient{snapshots: []string{"# Answer"}}
	deps := newTestDeps(t, client)

	if err := runQuery(context.Background(), deps.Dependencies, "q", true); err != nil {
		t.Fatalf("runQuery() error = %v", err)
	}

	data, err := os.ReadFile(outputFlag)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "# Answer" {
		t.Errorf("file = %q, want %q", data, "# Answer")
	}
	if deps.out.Len() != 0 {
		t.Errorf("stdout = %q, want nothing when writing a file", deps.out.String())
	}
}

func TestRunQuery_Rendered(t *testing.T) {
	resetFlags(t)
	t.Setenv("GLAMOUR_STYLE", "")
	client := &fakeClient{snapshots: []string{"Chapter **three**"}}
	deps := newTestDeps(t, client)

	if err := runQuery(context.Background(), deps.Dependencies, "q", false); err != nil {
		t.Fatalf("runQuery() error = %v", err)
	}
	if !strings.Contains(deps.out.String(), "three") {
		t.Errorf("stdout = %q, want rendered answer", deps.out.String())
	}
	if !strings.Contains(deps.err.String(), "Done in") {
		t.Errorf("stderr = %q, want spinner success line", deps.err.String())
	}
}

func TestReadQuestion(t *testing.T) {
	resetFlags(t)

	t.Run("argument", func(t *testing.T) {
		got, err := readQuestion([]string{"what?"}, nil)
		if err != nil || got != "what?" {
			t.Errorf("readQuestion() = %q, %v", got, err)
		}
	})

	t.Run("file wins over argument", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "q.md")
		if err := os.WriteFile(path, []byte("from file"), 0o644); err != nil {
			t.Fatal(err)
		}
		fileFlag = path
		defer func() { fileFlag = "" }()

		got, err := readQuestion([]string{"arg"}, nil)
		if err != nil || got != "from file" {
			t.Errorf("readQuestion() = %q, %v", got, err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		fileFlag = filepath.Join(t.TempDir(), "nope.md")
		defer func() { fileFlag = "" }()

		if _, err := readQuestion(nil, nil); err == nil {
			t.Error("readQuestion() should fail for a missing file")
		}
	})

	t.Run("piped stdin", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "stdin")
		if err := os.WriteFile(path, []byte("piped"), 0o644); err != nil {
			t.Fatal(err)
		}
		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()

		got, err := readQuestion([]string{"arg"}, f)
		if err != nil || got != "piped" {
			t.Errorf("readQuestion() = %q, %v", got, err)
		}
	})

	t.Run("nothing", func(t *testing.T) {
		got, err := readQuestion(nil, nil)
		if err != nil || got != "" {
			t.Errorf("readQuestion() = %q, %v", got, err)
		}
	})
}
