// Package notify carries user-facing success and error messages from the cart
// store to whatever surface displays them.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/angelmondragon/cartsync/pkg/logger"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notice is a single message for the shopper.
type Notice struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

func Success(text string) Notice { return Notice{Kind: KindSuccess, Text: text} }

func Error(text string) Notice { return Notice{Kind: KindError, Text: text} }

// Sink accepts notices. Implementations must be safe for concurrent use.
type Sink interface {
	Notify(ctx context.Context, n Notice)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, n Notice)

func (f SinkFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// Discard drops every notice.
var Discard Sink = SinkFunc(func(context.Context, Notice) {})

// LogSink writes notices to the structured logger.
type LogSink struct {
	logg *logger.Logger
}

func NewLogSink(logg *logger.Logger) *LogSink {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogSink{logg: logg}
}

func (s *LogSink) Notify(ctx context.Context, n Notice) {
	ctx = s.logg.WithFields(ctx, map[string]any{"notice_kind": string(n.Kind), "notice": n.Text})
	if n.Kind == KindError {
		s.logg.Warn(ctx, "notify.error")
		return
	}
	s.logg.Info(ctx, "notify.success")
}

// WriterSink prints one human-readable line per notice.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Notify(_ context.Context, n Notice) {
	prefix := "ok"
	if n.Kind == KindError {
		prefix = "error"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "[%s] %s\n", prefix, n.Text)
}

// Recorder keeps every notice in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices in arrival order.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last returns the most recent notice, if any.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}

// Multi fans a notice out to every non-nil sink.
func Multi(sinks ...Sink) Sink {
	filtered := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return SinkFunc(func(ctx context.Context, n Notice) {
		for _, s := range filtered {
			s.Notify(ctx, n)
		}
	})
}
