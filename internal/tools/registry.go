// Package tools holds the registry of tools exposed by the server.
package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jjwjr94/google-drive-mcp/internal/google"
	"github.com/jjwjr94/google-drive-mcp/internal/instrumentation"
	"github.com/jjwjr94/google-drive-mcp/internal/tools/common"
	"github.com/jjwjr94/google-drive-mcp/internal/tools/drive_tools"
	"github.com/jjwjr94/google-drive-mcp/internal/tools/sheets_tools"
)

// ErrToolNotFound is returned when no tool has the requested name.
var ErrToolNotFound = errors.New("tool not found")

// Descriptor is the public view of a tool, without its handler.
type Descriptor struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	InputSchema mcp.ToolInputSchema `json:"inputSchema"`
}

// Registry is an ordered, immutable set of tools.
type Registry struct {
	tools  []common.Tool
	byName map[string]int
}

// NewRegistry creates a registry. Tool names must be unique.
func NewRegistry(tools ...common.Tool) (*Registry, error) {
	r := &Registry{byName: make(map[string]int, len(tools))}
	for _, t := range tools {
		if t.Name() == "" {
			return nil, fmt.Errorf("tool without a name")
		}
		if t.Handler == nil {
			return nil, fmt.Errorf("tool %s has no handler", t.Name())
		}
		if _, dup := r.byName[t.Name()]; dup {
			return nil, fmt.Errorf("duplicate tool %s", t.Name())
		}
		r.byName[t.Name()] = len(r.tools)
		r.tools = append(r.tools, t)
	}
	return r, nil
}

// DefaultTools returns every tool in the order they are listed to clients.
func DefaultTools() []common.Tool {
	driveRead := drive_tools.ReadTools()

	all := make([]common.Tool, 0, 8)
	all = append(all, driveRead...)
	all = append(all, sheets_tools.Tools()...)
	all = append(all, drive_tools.WriteTools()...)
	return all
}

// Default returns the registry of all Drive and Sheets tools.
func Default() *Registry {
	r, err := NewRegistry(DefaultTools()...)
	if err != nil {
		panic(fmt.Sprintf("invalid default tool set: %v", err))
	}
	return r
}

// WithInstrumentation returns a registry whose handlers record spans,
// metrics and audit lines.
func (r *Registry) WithInstrumentation(metrics *instrumentation.Metrics, audit *instrumentation.AuditLogger) *Registry {
	wrapped := make([]common.Tool, len(r.tools))
	for i, t := range r.tools {
		t.Handler = common.Instrumented(t, metrics, audit)
		wrapped[i] = t
	}
	return &Registry{tools: wrapped, byName: r.byName}
}

// List returns the descriptors of all tools in registration order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, Descriptor{
			Name:        t.Definition.Name,
			Description: t.Definition.Description,
			InputSchema: t.Definition.InputSchema,
		})
	}
	return out
}

// Find returns the tool named name.
func (r *Registry) Find(name string) (common.Tool, bool) {
	i, ok := r.byName[name]
	if !ok {
		return common.Tool{}, false
	}
	return r.tools[i], true
}

// Tools returns the registered tools.
func (r *Registry) Tools() []common.Tool {
	return append([]common.Tool(nil), r.tools...)
}

// Invoke runs the tool named name. The only error is ErrToolNotFound;
// tool failures are reported in the Result.
func (r *Registry) Invoke(ctx context.Context, name string, client *google.Client, args common.Arguments) (common.Result, error) {
	t, ok := r.Find(name)
	if !ok {
		return common.Result{}, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	if args == nil {
		args = common.Arguments{}
	}
	return t.Handler(ctx, client, args), nil
}
