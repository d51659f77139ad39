package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jjwjr94/google-drive-mcp/internal/google"
	"github.com/jjwjr94/google-drive-mcp/internal/instrumentation"
	"github.com/jjwjr94/google-drive-mcp/internal/logging"
	"github.com/jjwjr94/google-drive-mcp/internal/tools/common"
)

const (
	// MaxRequestBody limits the size of a JSON-RPC request.
	MaxRequestBody = 1 << 20

	ndjsonContentType = "application/x-ndjson"

	// TransportHTTP labels calls made through POST /mcp.
	TransportHTTP = "http"
	// TransportREST labels calls made through the REST surface.
	TransportREST = "rest"
	// TransportStdio labels calls made over stdio.
	TransportStdio = "stdio"

	callStatusStarted = "started"
)

// ndjsonWriter writes one JSON document per line and flushes each one.
type ndjsonWriter struct {
	w       http.ResponseWriter
	enc     *json.Encoder
	flusher http.Flusher
	started bool
}

func newNDJSONWriter(w http.ResponseWriter) *ndjsonWriter {
	flusher, _ := w.(http.Flusher)
	return &ndjsonWriter{w: w, enc: json.NewEncoder(w), flusher: flusher}
}

func (n *ndjsonWriter) write(resp rpcResponse) error {
	if !n.started {
		n.w.Header().Set("Content-Type", ndjsonContentType)
		n.w.Header().Set("Cache-Control", "no-cache")
		n.w.WriteHeader(http.StatusOK)
		n.started = true
	}

	resp.JSONRPC = JSONRPCVersion
	if err := n.enc.Encode(resp); err != nil {
		return err
	}
	if n.flusher != nil {
		n.flusher.Flush()
	}
	return nil
}

func (n *ndjsonWriter) writeError(id json.RawMessage, code int, message string) error {
	return n.write(rpcResponse{ID: id, Error: &rpcError{Code: code, Message: message}})
}

// handleMCP serves JSON-RPC requests on POST /mcp.
func (sc *ServerContext) handleMCP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out := newNDJSONWriter(w)

	req, err := decodeRPCRequest(r)
	if err != nil {
		sc.logger.Debug("rejected JSON-RPC request", logging.Err(err))
		sc.metrics.RecordRPCRequest(ctx, MethodUnknown.String(), CodeParseError)
		_ = out.writeError(nil, CodeParseError, "Parse error: "+err.Error())
		return
	}

	method := ParseMethod(req.Method)
	ctx, span := instrumentation.StartRPCSpan(ctx, method.String())
	defer span.End()

	code := 0
	defer func() {
		if rec := recover(); rec != nil {
			code = CodeInternalError
			msg := fmt.Sprint(rec)
			sc.logger.Error("panic during JSON-RPC dispatch",
				logging.Method(req.Method), "panic", msg)
			instrumentation.SetSpanError(span, fmt.Errorf("panic: %s", msg))
			_ = out.writeError(req.ID, CodeInternalError, "Internal error: "+msg)
		}
		sc.metrics.RecordRPCRequest(ctx, method.String(), code)
	}()

	if req.JSONRPC != JSONRPCVersion {
		code = CodeInvalidRequest
		_ = out.writeError(req.ID, code, fmt.Sprintf("Invalid Request: jsonrpc must be %q", JSONRPCVersion))
		return
	}

	r = r.WithContext(ctx)
	switch method {
	case MethodInitialize:
		_ = out.write(rpcResponse{ID: req.ID, Result: sc.initializeResult()})
	case MethodToolsList:
		_ = out.write(rpcResponse{ID: req.ID, Result: map[string]any{"tools": sc.tools.List()}})
	case MethodToolsCall:
		code = sc.handleToolsCall(r, out, req)
	case MethodUnknown:
		code = CodeMethodNotFound
		_ = out.writeError(req.ID, code, "method not found: "+req.Method)
	}

	if code != 0 {
		instrumentation.SetSpanError(span, fmt.Errorf("JSON-RPC error %d", code))
	} else {
		instrumentation.SetSpanSuccess(span)
	}
}

func decodeRPCRequest(r *http.Request) (*rpcRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(body) > MaxRequestBody {
		return nil, fmt.Errorf("request body exceeds %d bytes", MaxRequestBody)
	}

	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (sc *ServerContext) initializeResult() initializeResult {
	return initializeResult{
		ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
		Capabilities:    map[string]any{"tools": map[string]any{}},
		ServerInfo:      serverInfo{Name: ServiceName, Version: sc.version},
	}
}

// handleToolsCall runs a tool and writes the started and result chunks.
// It returns the JSON-RPC error code written, or 0.
func (sc *ServerContext) handleToolsCall(r *http.Request, out *ndjsonWriter, req *rpcRequest) int {
	ctx := r.Context()

	var params toolCallParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			_ = out.writeError(req.ID, CodeInvalidParams, "Invalid params: "+err.Error())
			return CodeInvalidParams
		}
	}
	if params.Name == "" {
		_ = out.writeError(req.ID, CodeInvalidParams, "Invalid params: name is required")
		return CodeInvalidParams
	}

	if params.AccessToken == "" && !sc.holder.HasToken() {
		_ = out.writeError(req.ID, CodeCredentialsRequired, google.ErrCredentialsUnavailable.Error())
		return CodeCredentialsRequired
	}

	tool, ok := sc.tools.Find(params.Name)
	if !ok {
		_ = out.writeError(req.ID, CodeMethodNotFound, "tool not found: "+params.Name)
		return CodeMethodNotFound
	}

	client, err := sc.holder.Resolve(ctx, params.AccessToken)
	if err != nil {
		if errors.Is(err, google.ErrCredentialsUnavailable) {
			_ = out.writeError(req.ID, CodeCredentialsRequired, err.Error())
			return CodeCredentialsRequired
		}
		sc.logger.Error("failed to resolve Google client", logging.Tool(params.Name), logging.Err(err))
		_ = out.writeError(req.ID, CodeInternalError, "Internal error: "+err.Error())
		return CodeInternalError
	}

	args := params.Arguments
	if args == nil {
		args = map[string]any{}
	}
	callID := uuid.NewString()

	if err := out.write(rpcResponse{
		ID:     req.ID,
		Method: MethodToolsCall.String(),
		Params: callStarted{CallID: callID, Name: tool.Name(), Arguments: args, Status: callStatusStarted},
	}); err != nil {
		sc.logger.Debug("client went away before tool call", logging.CallID(callID), logging.Err(err))
	}

	ctx = common.WithCallInfo(ctx, common.CallInfo{ID: callID, Transport: TransportHTTP})
	result := tool.Handler(ctx, client, common.Arguments(args))

	sc.logger.Debug("tool call finished",
		logging.Tool(tool.Name()), logging.CallID(callID), logging.Transport(TransportHTTP),
		logging.Status(resultStatus(result)))

	_ = out.write(rpcResponse{ID: req.ID, Method: MethodToolsCall.String(), Result: result})
	return 0
}

func resultStatus(r common.Result) string {
	if r.IsError {
		return logging.StatusError
	}
	return logging.StatusSuccess
}
