package logger

import "context"

type contextKey string

const (
	loggerKey    contextKey = "medrec.logger"
	operationKey contextKey = "medrec.operation"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithOperation records the user-facing operation (menu entry or command)
// in the context.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

// OperationFromContext returns the operation name, if any.
func OperationFromContext(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey).(string); ok {
		return op
	}
	return ""
}

// L returns the context logger enriched with the operation name.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	if op := OperationFromContext(ctx); op != "" {
		l = l.With("op", op)
	}
	return l
}
