package logs

import (
	"context"
	"log/slog"
)

type processKey struct{}

// Process identifies the simulated process a record is about.
type Process struct {
	PID  int
	Name string
}

// WithProcess returns a context whose records carry the process.
func WithProcess(ctx context.Context, pid int, name string) context.Context {
	return context.WithValue(ctx, processKey{}, Process{PID: pid, Name: name})
}

// Handler adds the process of the context to every record.
type Handler struct {
	slog.Handler
}

func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if v, ok := ctx.Value(processKey{}).(Process); ok {
		record.AddAttrs(slog.Int("pid", v.PID), slog.String("proc", v.Name))
	}
	return h.Handler.Handle(ctx, record)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{Handler: h.Handler.WithGroup(name)}
}
