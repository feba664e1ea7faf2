// SPDX-License-Identifier: MIT

// Package log provides structured logging utilities.
package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey string

const (
	storeKey  ctxKey = "store"
	scanIDKey ctxKey = "scan_id"
)

// ContextWithStore stores the logical store name (global, game, catalog, ...)
// in the context.
func ContextWithStore(ctx context.Context, name string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, storeKey, name)
}

// ContextWithScanID stores the provided catalog scan ID in the context.
func ContextWithScanID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scanIDKey, id)
}

// StoreFromContext extracts the store name from context if present.
func StoreFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(storeKey).(string); ok {
		return v
	}
	return ""
}

// ScanIDFromContext extracts the scan ID from context if present.
func ScanIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(scanIDKey).(string); ok {
		return v
	}
	return ""
}

// WithContext enriches the supplied logger with fields carried by ctx.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	if ctx == nil {
		return logger
	}
	builder := logger.With()
	added := false
	if s := StoreFromContext(ctx); s != "" {
		builder = builder.Str(FieldStore, s)
		added = true
	}
	if id := ScanIDFromContext(ctx); id != "" {
		builder = builder.Str(FieldScanID, id)
		added = true
	}
	if !added {
		return logger
	}
	return builder.Logger()
}

// WithComponentFromContext returns a logger that is annotated with the component
// name and enriched with the fields carried by ctx.
func WithComponentFromContext(ctx context.Context, component string) zerolog.Logger {
	l := WithContext(ctx, *FromContext(ctx))
	return l.With().Str(FieldComponent, component).Logger()
}

// FromContext returns a logger from the context, or the base logger if none
// is attached.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return L()
	}
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return L()
	}
	return l
}
