// Package processor runs a single tool call outside an MCP session, for the query command.
package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/richard-senior/betscout/internal/logger"
	"github.com/richard-senior/betscout/pkg/protocol"
	"github.com/richard-senior/betscout/pkg/server"
)

// Request is one tool invocation
type Request struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
}

// Response carries either the tool's structured result or an error
type Response struct {
	RequestID string          `json:"requestId,omitempty"`
	Tool      string          `json:"tool,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     *ErrorBody      `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseArgs turns "tool key=value ..." into a request. Whole numbers and booleans are passed
// as JSON numbers and booleans, everything else as strings.
func ParseArgs(args []string) (*Request, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no tool named")
	}
	params := map[string]any{}
	for _, a := range args[1:] {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("argument %q is not key=value", a)
		}
		if n, err := strconv.Atoi(v); err == nil {
			params[k] = n
		} else if b, err := strconv.ParseBool(v); err == nil {
			params[k] = b
		} else {
			params[k] = v
		}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return &Request{Tool: args[0], Arguments: raw, RequestID: fmt.Sprintf("cli-%s", uuid.NewString()[:8])}, nil
}

func errorResponse(code, message, requestID string) ([]byte, error) {
	return json.MarshalIndent(Response{RequestID: requestID, Error: &ErrorBody{Code: code, Message: message}}, "", "  ")
}

// ProcessRequest decodes input as a Request, dispatches it to the server as a tools/call and
// returns the indented JSON response. Failures are reported inside the response; the returned
// error is only set when the response itself cannot be built.
func ProcessRequest(ctx context.Context, s *server.Server, input []byte) ([]byte, error) {
	var req Request
	if err := json.Unmarshal(input, &req); err != nil {
		logger.Error("Failed to parse input JSON", err)
		return errorResponse("invalid_request", fmt.Sprintf("Invalid JSON: %v", err), "")
	}
	if req.Tool == "" {
		return errorResponse("invalid_request", "tool is required", req.RequestID)
	}
	if req.RequestID == "" {
		req.RequestID = "cli"
	}
	logger.Info("Processing request", req.RequestID, "for tool", req.Tool)

	call, err := protocol.NewJsonRpcRequest(string(protocol.MethodToolsCall), protocol.ToolCallParams{
		Name:      req.Tool,
		Arguments: req.Arguments,
	}, req.RequestID)
	if err != nil {
		return errorResponse("invalid_request", err.Error(), req.RequestID)
	}

	resp := s.Handle(ctx, call)
	if resp == nil {
		return errorResponse("internal_error", "no response", req.RequestID)
	}
	if resp.Error != nil {
		return errorResponse(codeName(resp.Error.Code), resp.Error.Message, req.RequestID)
	}

	var tr protocol.ToolResult
	if err := json.Unmarshal(resp.Result, &tr); err != nil {
		return errorResponse("internal_error", err.Error(), req.RequestID)
	}
	text := "null"
	if len(tr.Content) > 0 && tr.Content[0].Text != "" {
		text = tr.Content[0].Text
	}
	if tr.IsError {
		return errorResponse("tool_error", text, req.RequestID)
	}
	return json.MarshalIndent(Response{RequestID: req.RequestID, Tool: req.Tool, Result: json.RawMessage(text)}, "", "  ")
}

func codeName(code int) string {
	switch code {
	case protocol.ErrInvalidParams:
		return "invalid_params"
	case protocol.ErrMethodNotFound:
		return "not_found"
	case protocol.ErrInternal:
		return "internal_error"
	default:
		return "tool_failed"
	}
}
