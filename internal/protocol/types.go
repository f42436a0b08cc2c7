// Package protocol serves the agent tool-call protocol over stdio as
// newline-delimited JSON-RPC 2.0.
//
// The wire surface is deliberately small: initialize, ping, tools/list,
// and tools/call. Everything an individual tool can get wrong comes back
// inside a tools/call result with isError set; only protocol-level bugs
// (unknown method, unknown tool, malformed JSON) become JSON-RPC errors.
package protocol

import "encoding/json"

const protocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes used on this wire.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

type request struct {
	JSONRPC string `json:"jsonrpc"`

	// ID is echoed back verbatim; absent for notifications.
	ID json.RawMessage `json:"id,omitempty"`

	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

func (r *request) isNotification() bool { return len(r.ID) == 0 }

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// callParams is the tools/call parameter shape: a tool name and a mapping
// of arguments.
type callParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// toolDescriptor is one entry of a tools/list reply.
type toolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema inputSchemaJSON `json:"inputSchema"`
}

// inputSchemaJSON renders a tool schema as a JSON Schema object.
type inputSchemaJSON struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required"`
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
