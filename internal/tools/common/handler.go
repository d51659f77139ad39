package common

import (
	"context"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jjwjr94/google-drive-mcp/internal/google"
	"github.com/jjwjr94/google-drive-mcp/internal/instrumentation"
)

// Handler executes a tool against an authenticated client. Handlers report
// every failure through the returned Result.
type Handler func(ctx context.Context, client *google.Client, args Arguments) Result

// Tool pairs a tool definition with its handler.
type Tool struct {
	// Definition carries the name, description and input schema.
	Definition mcp.Tool

	// API is the Google operation the handler performs, for metrics.
	API instrumentation.APIOperation

	Handler Handler
}

// Name returns the tool name.
func (t Tool) Name() string {
	return t.Definition.Name
}

// Arguments are the decoded "arguments" object of a tool call.
type Arguments map[string]any

// String returns a non-empty string argument.
func (a Arguments) String(key string) (string, bool) {
	s, ok := a[key].(string)
	return s, ok && s != ""
}

// Require returns a required string argument or an error naming it.
func (a Arguments) Require(key string) (string, error) {
	s, ok := a.String(key)
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

// StringOr returns a string argument or def.
func (a Arguments) StringOr(key, def string) string {
	if s, ok := a.String(key); ok {
		return s
	}
	return def
}

// BoolOr returns a boolean argument or def.
func (a Arguments) BoolOr(key string, def bool) bool {
	if b, ok := a[key].(bool); ok {
		return b
	}
	return def
}

// IntOr returns a numeric argument truncated to int, or def.
// JSON numbers decode as float64.
func (a Arguments) IntOr(key string, def int) int {
	switch v := a[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return def
		}
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return def
}

// Value returns an argument of any type.
func (a Arguments) Value(key string) (any, bool) {
	v, ok := a[key]
	return v, ok && v != nil
}
