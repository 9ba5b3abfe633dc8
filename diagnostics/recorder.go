// Package diagnostics records what a browser session did so a failing
// scenario can print it.
package diagnostics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/playwright-community/playwright-go"
)

// Kind classifies a recorded entry.
type Kind string

const (
	KindConsole   Kind = "console"
	KindPageError Kind = "pageerror"
	KindResponse  Kind = "response"
	KindLog       Kind = "log"
)

// Entry is one recorded event.
type Entry struct {
	Time time.Time
	Kind Kind
	Text string
	// Body is an optional payload, highlighted when it is JSON.
	Body string
}

// Recorder keeps the most recent entries of one session.
type Recorder struct {
	buffer *RingBuffer[Entry]
	now    func() time.Time

	// MaxBodySize caps each recorded body in bytes; <= 0 keeps bodies whole.
	MaxBodySize int
}

// NewRecorder creates a recorder keeping up to capacity entries.
func NewRecorder(capacity uint64) *Recorder {
	return &Recorder{
		buffer:      NewRingBuffer[Entry](capacity),
		now:         time.Now,
		MaxBodySize: DefaultMaxBodySize,
	}
}

// Record adds an entry stamped with the current time.
func (r *Recorder) Record(kind Kind, text, body string) {
	r.buffer.Add(Entry{
		Time: r.now(),
		Kind: kind,
		Text: text,
		Body: truncateBody(body, r.MaxBodySize),
	})
}

// Entries returns all retained entries, oldest first.
func (r *Recorder) Entries() []Entry {
	return r.buffer.All()
}

// Attach subscribes to console messages, uncaught page errors and responses
// of page. Dialogs are left alone: a dialog listener would stop playwright from
// dismissing unexpected ones. Only responses whose URL contains one of responsePaths
// are recorded; the request payload is kept as body.
func (r *Recorder) Attach(page playwright.Page, responsePaths ...string) {
	page.OnConsole(func(msg playwright.ConsoleMessage) {
		r.Record(KindConsole, fmt.Sprintf("[%s] %s", msg.Type(), msg.Text()), "")
	})
	page.OnPageError(func(err error) {
		r.Record(KindPageError, err.Error(), "")
	})
	page.OnResponse(func(resp playwright.Response) {
		if !matchesAny(resp.URL(), responsePaths) {
			return
		}
		body, _ := resp.Request().PostData()
		r.Record(KindResponse, fmt.Sprintf("%d %s", resp.Status(), resp.URL()), body)
	})
}

func matchesAny(url string, paths []string) bool {
	for _, p := range paths {
		if p != "" && strings.Contains(url, p) {
			return true
		}
	}
	return false
}

// DumpOptions controls Dump output.
type DumpOptions struct {
	// Color enables terminal syntax highlighting of JSON bodies.
	Color bool
	// Style is the chroma style name. Default: "monokai"
	Style string
}

// Dump writes all retained entries to w.
func (r *Recorder) Dump(w io.Writer, opts DumpOptions) error {
	if opts.Style == "" {
		opts.Style = "monokai"
	}

	entries := r.Entries()
	header := fmt.Sprintf("--- diagnostics: %d entries", len(entries))
	if dropped := r.buffer.Dropped(); dropped > 0 {
		header += fmt.Sprintf(", %d dropped", dropped)
	}
	if _, err := fmt.Fprintln(w, header+" ---"); err != nil {
		return err
	}

	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s %-9s %s\n", e.Time.Format("15:04:05.000"), e.Kind, e.Text); err != nil {
			return err
		}
		if e.Body == "" {
			continue
		}
		if err := writeBody(w, e.Body, opts); err != nil {
			return err
		}
	}
	return nil
}

func writeBody(w io.Writer, body string, opts DumpOptions) error {
	var indented bytes.Buffer
	if err := json.Indent(&indented, []byte(body), "  ", "  "); err != nil {
		_, err = fmt.Fprintf(w, "  %s\n", body)
		return err
	}

	text := "  " + indented.String() + "\n"
	if !opts.Color {
		_, err := io.WriteString(w, text)
		return err
	}
	return quick.Highlight(w, text, "json", "terminal256", opts.Style)
}

// Handler returns a slog.Handler that records log records at or above level.
func (r *Recorder) Handler(level slog.Leveler) slog.Handler {
	return &logHandler{recorder: r, level: level}
}

type logHandler struct {
	recorder *Recorder
	level    slog.Leveler
	attrs    []slog.Attr
	group    string
}

func (h *logHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *logHandler) Handle(_ context.Context, record slog.Record) error {
	var sb strings.Builder
	sb.WriteString(record.Level.String())
	sb.WriteString(" ")
	sb.WriteString(record.Message)
	for _, a := range h.attrs {
		writeAttr(&sb, "", a)
	}
	record.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, h.group, a)
		return true
	})
	h.recorder.Record(KindLog, sb.String(), "")
	return nil
}

func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(sb, key, ga)
		}
		return
	}
	fmt.Fprintf(sb, " %s=%v", key, a.Value.Any())
}

func (h *logHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefixed := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	prefixed = append(prefixed, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		prefixed = append(prefixed, a)
	}
	return &logHandler{recorder: h.recorder, level: h.level, attrs: prefixed, group: h.group}
}

func (h *logHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &logHandler{recorder: h.recorder, level: h.level, attrs: h.attrs, group: group}
}
