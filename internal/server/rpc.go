package server

import (
	"encoding/json"
)

// JSONRPCVersion is the only protocol version accepted.
const JSONRPCVersion = "2.0"

// JSON-RPC error codes.
const (
	CodeParseError          = -32700
	CodeInvalidRequest      = -32600
	CodeMethodNotFound      = -32601
	CodeInvalidParams       = -32602
	CodeInternalError       = -32603
	CodeCredentialsRequired = -32001
)

// Method is a JSON-RPC method the server understands.
type Method int

const (
	MethodUnknown Method = iota
	MethodInitialize
	MethodToolsList
	MethodToolsCall
)

var methodNames = map[Method]string{
	MethodInitialize: "initialize",
	MethodToolsList:  "tools/list",
	MethodToolsCall:  "tools/call",
}

// ParseMethod maps a method name to a Method. Unknown names yield MethodUnknown.
func ParseMethod(name string) Method {
	for m, n := range methodNames {
		if n == name {
			return m
		}
	}
	return MethodUnknown
}

func (m Method) String() string {
	if n, ok := methodNames[m]; ok {
		return n
	}
	return "unknown"
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// rpcResponse is one NDJSON chunk. A nil ID is written as null.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method,omitempty"`
	Params  any             `json:"params,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type toolCallParams struct {
	Name        string         `json:"name"`
	Arguments   map[string]any `json:"arguments"`
	AccessToken string         `json:"accessToken"`
}

// callStarted is the params of the first tools/call chunk.
type callStarted struct {
	CallID    string         `json:"callId"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	Status    string         `json:"status"`
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      serverInfo     `json:"serverInfo"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
