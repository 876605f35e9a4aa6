package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// consoleHandler writes one line per record:
//
//	[TAG]<tabs> <message>[ key=value...]
//
// Short tags get two tabs so messages line up in a terminal.
type consoleHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	pre   string // rendered attributes from WithAttrs
	group string
}

func newConsoleHandler(w io.Writer) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w}
}

// prefix returns the bracketed tag with its column padding.
func prefix(lvl slog.Level) string {
	tag := levelTag(lvl)
	if len(tag) < 6 {
		return "[" + tag + "]\t\t"
	}
	return "[" + tag + "]\t"
}

func (h *consoleHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(prefix(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(h.pre)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.group, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.pre)
	for _, a := range attrs {
		appendAttr(&b, h.group, a)
	}
	return &consoleHandler{mu: h.mu, w: h.w, pre: b.String(), group: h.group}
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &consoleHandler{mu: h.mu, w: h.w, pre: h.pre, group: joinKey(h.group, name)}
}

// appendAttr renders a as " key=value", flattening groups into dotted keys.
func appendAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := group
		if a.Key != "" {
			inner = joinKey(group, a.Key)
		}
		for _, ga := range a.Value.Group() {
			appendAttr(b, inner, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(joinKey(group, a.Key))
	b.WriteByte('=')
	b.WriteString(a.Value.String())
}

func joinKey(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}
