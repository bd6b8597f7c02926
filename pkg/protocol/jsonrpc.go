package protocol

import (
	"encoding/json"
	"fmt"
)

/**
MCP over JSON-RPC 2.0, see https://modelcontextprotocol.info/specification/draft/basic/lifecycle/
Flow:
	The client starts the server process and sends 'initialize':
	  {"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"client","version":"0.1.0"}},"jsonrpc":"2.0","id":0}
	We answer with our capabilities and server info:
	  {"jsonrpc":"2.0","id":0,"result":{"protocolVersion":"2024-11-05","capabilities":{"tools":{}},"serverInfo":{"name":"betscout","version":"1.0.0"}}}
	The client acknowledges with the notification {"method":"notifications/initialized","jsonrpc":"2.0"}
	and then lists our tools with {"method":"tools/list","params":{},"jsonrpc":"2.0","id":1}.
	Each fixture analysis is then a 'tools/call' with the tool name and its arguments:
	  {"method":"tools/call","params":{"name":"analyse_fixture","arguments":{"fixture_id":1035037}},"jsonrpc":"2.0","id":2}
*/

// MethodType is a JSON-RPC method name the server answers
type MethodType string

const (
	MethodInitialize  MethodType = "initialize"
	MethodInitialized MethodType = "initialized"
	MethodPing        MethodType = "ping"
	MethodToolsList   MethodType = "tools/list"
	MethodToolsCall   MethodType = "tools/call"
	MethodShutdown    MethodType = "shutdown"
)

const JsonRpcVersion = "2.0"

// JsonRpcRequest is one incoming call. A nil ID marks a notification.
type JsonRpcRequest struct {
	JsonRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// JsonRpcResponse carries exactly one of Result or Error. ID echoes the request and is null
// when the request could not be read.
type JsonRpcResponse struct {
	JsonRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JsonRpcError   `json:"error,omitempty"`
	ID      any             `json:"id"`
}

type JsonRpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error codes. Tool failures use the first implementation-defined server code.
const (
	ErrParse               = -32700
	ErrInvalidRequest      = -32600
	ErrMethodNotFound      = -32601
	ErrInvalidParams       = -32602
	ErrInternal            = -32603
	ErrToolExecutionFailed = -32000
)

// NewInvalidParamsError is returned by handlers that reject their arguments
func NewInvalidParamsError(format string, args ...any) *JsonRpcError {
	return &JsonRpcError{Code: ErrInvalidParams, Message: fmt.Sprintf(format, args...)}
}

func (e *JsonRpcError) Error() string {
	return fmt.Sprintf("jsonrpc error: code=%d message=%s", e.Code, e.Message)
}

// NewJsonRpcRequest marshals params into a request; a nil id makes it a notification
func NewJsonRpcRequest(method string, params any, id any) (*JsonRpcRequest, error) {
	req := &JsonRpcRequest{JsonRPC: JsonRpcVersion, Method: method, ID: id}
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		req.Params = b
	}
	return req, nil
}

// NewJsonRpcResponse marshals result into a success response
func NewJsonRpcResponse(result any, id any) (*JsonRpcResponse, error) {
	resp := &JsonRpcResponse{JsonRPC: JsonRpcVersion, ID: id}
	if result != nil {
		b, err := json.Marshal(result)
		if err != nil {
			return nil, err
		}
		resp.Result = b
	}
	return resp, nil
}

func NewJsonRpcErrorResponse(code int, message string, data any, id any) *JsonRpcResponse {
	return &JsonRpcResponse{
		JsonRPC: JsonRpcVersion,
		Error:   &JsonRpcError{Code: code, Message: message, Data: data},
		ID:      id,
	}
}

// ParseJsonRpcRequest decodes one request and rejects any version other than 2.0
func ParseJsonRpcRequest(data []byte) (*JsonRpcRequest, error) {
	var req JsonRpcRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	if req.JsonRPC != JsonRpcVersion {
		return nil, fmt.Errorf("invalid JSON-RPC version: %q", req.JsonRPC)
	}
	return &req, nil
}
