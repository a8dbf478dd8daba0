package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestSpinnerLifecycle_StopWithSuccess(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Searching")
	s.start()
	time.Sleep(50 * time.Millisecond)
	s.stopWithSuccess("done")

	if !strings.Contains(buf.String(), "done") {
		t.Errorf("output = %q, want success message", buf.String())
	}
}

func TestSpinnerLifecycle_StopWithError(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Searching")
	s.start()
	time.Sleep(30 * time.Millisecond)
	s.stopWithError()
	// A second stop must not panic on the closed channel
	s.stopOnce()
}

func TestSpinnerSetMessage(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "one")
	s.setMessage("two")
	s.render()

	if !strings.Contains(buf.String(), "two") {
		t.Errorf("output = %q, want updated message", buf.String())
	}
}
