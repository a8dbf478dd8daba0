package models

// FrameKind distinguishes the two protocol frames
type FrameKind int

const (
	FrameAnswer FrameKind = iota
	FrameError
)

// String returns the JSON key carrying the frame payload
func (k FrameKind) String() string {
	switch k {
	case FrameAnswer:
		return "answer"
	case FrameError:
		return "error"
	default:
		return "unknown"
	}
}

// Frame is one decoded unit of the NDJSON chat stream:
// either {"answer": "..."} or {"error": "..."}.
type Frame struct {
	Kind FrameKind
	Text string
}

// AnswerFrame builds an answer frame
func AnswerFrame(text string) Frame {
	return Frame{Kind: FrameAnswer, Text: text}
}

// ErrorFrame builds an in-band error frame
func ErrorFrame(text string) Frame {
	return Frame{Kind: FrameError, Text: text}
}

// IsError reports whether the frame is an in-band application error
func (f Frame) IsError() bool {
	return f.Kind == FrameError
}

// Annotation renders an in-band error frame as the markdown block appended
// to the answer
func (f Frame) Annotation() string {
	return "\n\n> **Error:** " + f.Text + "\n\n"
}
