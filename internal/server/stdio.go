package server

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jjwjr94/google-drive-mcp/internal/logging"
	"github.com/jjwjr94/google-drive-mcp/internal/tools/common"
)

// NewMCPServer registers every tool of the registry on an MCP server, for
// transports served by mcp-go.
func NewMCPServer(sc *ServerContext) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(ServiceName, sc.version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)

	for _, tool := range sc.tools.Tools() {
		s.AddTool(tool.Definition, sc.mcpToolHandler(tool))
	}
	return s
}

func (sc *ServerContext) mcpToolHandler(tool common.Tool) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, err := sc.holder.Resolve(ctx, "")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		callID := uuid.NewString()
		ctx = common.WithCallInfo(ctx, common.CallInfo{ID: callID, Transport: TransportStdio})

		args := request.GetArguments()
		if args == nil {
			args = map[string]any{}
		}
		result := tool.Handler(ctx, client, common.Arguments(args))

		sc.logger.Debug("tool call finished",
			logging.Tool(tool.Name()), logging.CallID(callID), logging.Transport(TransportStdio),
			logging.Status(resultStatus(result)))

		return toCallToolResult(result), nil
	}
}

func toCallToolResult(r common.Result) *mcp.CallToolResult {
	out := &mcp.CallToolResult{IsError: r.IsError}
	for _, c := range r.Content {
		out.Content = append(out.Content, mcp.NewTextContent(c.Text))
	}
	return out
}

// ServeStdio serves the registry over stdin and stdout until ctx is done
// or stdin is closed.
func ServeStdio(ctx context.Context, sc *ServerContext) error {
	stdio := mcpserver.NewStdioServer(NewMCPServer(sc))
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}
