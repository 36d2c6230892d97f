package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

// GenerateRunID creates a new unique run ID using UUID v4
func GenerateRunID() string {
	return uuid.New().String()
}

// WithRunID adds a run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDContextKey, runID)
}

// GetRunID retrieves the run ID from context
func GetRunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if runID, ok := ctx.Value(RunIDContextKey).(string); ok {
		return runID
	}
	return ""
}

// EnsureRunID ensures the context has a run ID, generating one if needed
func EnsureRunID(ctx context.Context) context.Context {
	if GetRunID(ctx) == "" {
		return WithRunID(ctx, GenerateRunID())
	}
	return ctx
}

// WithComponent tags the context with the component doing the work
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, ComponentContextKey, component)
}

// GetComponent retrieves the component name from context
func GetComponent(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if c, ok := ctx.Value(ComponentContextKey).(string); ok {
		return c
	}
	return ""
}
