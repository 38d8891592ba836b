package logging

import (
	"context"
	"log/slog"
	"time"
)

// Op times a single store or crypto call within a request.
type Op struct {
	name   string
	logger *slog.Logger
	start  time.Time
}

// StartOp begins timing the named operation using the request logger from ctx.
func StartOp(ctx context.Context, name string) *Op {
	return &Op{
		name:   name,
		logger: FromContext(ctx),
		start:  time.Now(),
	}
}

// End emits a debug entry with the operation duration, or a warning carrying
// err when the operation failed.
func (o *Op) End(err error) {
	if o == nil {
		return
	}
	attrs := []any{
		slog.String("op", o.name),
		slog.Duration("duration", time.Since(o.start)),
	}
	if err != nil {
		o.logger.Warn("operation failed", append(attrs, slog.Any("error", err))...)
		return
	}
	o.logger.Debug("operation completed", attrs...)
}
