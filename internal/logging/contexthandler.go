package logging

import (
	"context"
	"log/slog"
)

// ContextProvider returns host-wide attributes added to every record.
type ContextProvider func() []slog.Attr

type matchKey struct{}

type matchScope struct {
	gameID    uint32
	authority string
}

// WithMatch scopes ctx to one match action. Records logged with the
// returned context carry gameID and authority.
func WithMatch(ctx context.Context, gameID uint32, authority string) context.Context {
	return context.WithValue(ctx, matchKey{}, matchScope{gameID: gameID, authority: authority})
}

// MatchFromContext returns the match scope set by WithMatch.
func MatchFromContext(ctx context.Context) (gameID uint32, authority string, ok bool) {
	if ctx == nil {
		return 0, "", false
	}
	s, ok := ctx.Value(matchKey{}).(matchScope)
	return s.gameID, s.authority, ok
}

// ContextHandler adds provider and match attributes before delegating.
type ContextHandler struct {
	inner    slog.Handler
	provider ContextProvider
}

// NewContextHandler wraps inner. provider may be nil.
func NewContextHandler(inner slog.Handler, provider ContextProvider) *ContextHandler {
	return &ContextHandler{inner: inner, provider: provider}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider != nil {
		r.AddAttrs(h.provider()...)
	}
	if gameID, authority, ok := MatchFromContext(ctx); ok {
		r.AddAttrs(slog.Uint64("gameID", uint64(gameID)))
		if authority != "" {
			r.AddAttrs(slog.String("authority", authority))
		}
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewContextHandler(h.inner.WithAttrs(attrs), h.provider)
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return NewContextHandler(h.inner.WithGroup(name), h.provider)
}
