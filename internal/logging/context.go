// internal/logging/context.go
package logging

import (
	"context"

	"github.com/juancollazo-ch/autoreturn/internal/contextkeys"
	"go.uber.org/zap"
)

// FieldsFromContext extrae los campos de logging (run_id, source_file)
// del contexto y los devuelve como un slice de zap.Field.
func FieldsFromContext(ctx context.Context) []zap.Field {
	fields := []zap.Field{}
	if id, ok := ctx.Value(contextkeys.RunIDKey).(string); ok && id != "" {
		fields = append(fields, zap.String("run_id", id))
	}
	if src, ok := ctx.Value(contextkeys.SourceFileKey).(string); ok && src != "" {
		fields = append(fields, zap.String("source_file", src))
	}
	return fields
}

// WithLoggingFields añade run_id y source_file al contexto si están presentes.
func WithLoggingFields(ctx context.Context, runID, sourceFile string) context.Context {
	if runID != "" {
		ctx = context.WithValue(ctx, contextkeys.RunIDKey, runID)
	}
	if sourceFile != "" {
		ctx = context.WithValue(ctx, contextkeys.SourceFileKey, sourceFile)
	}
	return ctx
}

// FromContext devuelve el logger con los campos del contexto ya agregados
func FromContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if logger == nil {
		logger = zap.L()
	}
	return logger.With(FieldsFromContext(ctx)...)
}
