package render

import (
	"bytes"
	"io"
	"os"
	"sync"
)

// Sink is a redirectable output stream. Writes go to the writer on top of the
// stack; every restore returns the stack to the depth it had when its Push
// was made.
//
// Push redirects the sink for every caller, so it suits single-goroutine
// programs. Capture never touches the stack and is safe to use concurrently.
type Sink struct {
	mu    sync.Mutex
	stack []io.Writer
}

var (
	defaultSinkOnce sync.Once
	defaultSink     *Sink
)

// DefaultSink returns the process-wide sink writing to os.Stdout.
func DefaultSink() *Sink {
	defaultSinkOnce.Do(func() {
		defaultSink = NewSink(os.Stdout)
	})
	return defaultSink
}

// NewSink creates a sink whose base writer is base. A nil base discards.
func NewSink(base io.Writer) *Sink {
	if base == nil {
		base = io.Discard
	}
	return &Sink{stack: []io.Writer{base}}
}

// Write writes p to the current writer.
func (s *Sink) Write(p []byte) (int, error) {
	return s.Current().Write(p)
}

// WriteString writes str to the current writer.
func (s *Sink) WriteString(str string) (int, error) {
	return io.WriteString(s.Current(), str)
}

// Current returns the writer on top of the stack.
func (s *Sink) Current() io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack[len(s.stack)-1]
}

// Depth reports how many writers are stacked, the base included.
func (s *Sink) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stack)
}

// Push redirects output to w until the returned restore func is called.
// Restoring drops w and anything pushed after it; calling it twice is a
// no-op.
func (s *Sink) Push(w io.Writer) (restore func()) {
	s.mu.Lock()
	depth := len(s.stack)
	s.stack = append(s.stack, w)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if len(s.stack) > depth {
				s.stack = s.stack[:depth]
			}
		})
	}
}

// Capture runs fn with a buffer private to the call and returns what fn wrote
// to it. Nested and concurrent captures each get their own buffer.
func Capture(fn func(w io.Writer) error) (string, error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
