package logs

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
)

// Span identifies a unit of work across log records.
type Span string

type spanKey struct{}

var SpanKey spanKey

type attrsKey struct{}

// With returns a context whose log records carry the given attributes.
func With(ctx context.Context, args ...any) context.Context {
	var attrs []slog.Attr
	if v := ctx.Value(attrsKey{}); v != nil {
		attrs = append(attrs, v.([]slog.Attr)...)
	}
	attrs = append(attrs, argsToAttrs(args)...)
	return context.WithValue(ctx, attrsKey{}, attrs)
}

func argsToAttrs(args []any) (ret []slog.Attr) {
	for len(args) > 0 {
		switch v := args[0].(type) {
		case slog.Attr:
			ret = append(ret, v)
			args = args[1:]
		case string:
			if len(args) == 1 {
				ret = append(ret, slog.Any("!BADKEY", v))
				return
			}
			ret = append(ret, slog.Any(v, args[1]))
			args = args[2:]
		default:
			ret = append(ret, slog.Any("!BADKEY", v))
			args = args[1:]
		}
	}
	return
}

// NewSpan starts a span under parent, or under the span of ctx when parent is empty.
// args are attached to every record logged with the returned context.
type NewSpan func(ctx context.Context, parent Span, args ...any) (context.Context, Span)

func (Module) NewSpan(
	logger Logger,
) NewSpan {
	return func(ctx context.Context, parent Span, args ...any) (context.Context, Span) {
		var creator Span
		if v := ctx.Value(SpanKey); v != nil {
			creator = v.(Span)
		}
		if parent == "" {
			parent = creator
		}

		span := Span(rand.Text())
		ctx = context.WithValue(ctx, SpanKey, span)
		if len(args) > 0 {
			ctx = With(ctx, args...)
		}

		var logArgs []any
		if creator != "" && creator != parent {
			logArgs = append(logArgs, "creator", creator)
		}
		if parent != "" {
			logArgs = append(logArgs, "parent", parent)
		}
		logger.DebugContext(ctx, "new span", logArgs...)

		return ctx, span
	}
}

type SpanError struct {
	Span Span
	Err  error
}

func (s *SpanError) Error() string {
	return fmt.Sprintf("%v (span %s)", s.Err, s.Span)
}

func (s *SpanError) Unwrap() error {
	return s.Err
}

// WrapSpan tags err with the span of ctx, if any.
func WrapSpan(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	v := ctx.Value(SpanKey)
	if v == nil {
		return err
	}
	return &SpanError{
		Span: v.(Span),
		Err:  err,
	}
}
