package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/richard-senior/betscout/internal/logger"
	"github.com/richard-senior/betscout/pkg/protocol"
	"github.com/richard-senior/betscout/pkg/transport"
)

const (
	Name    = "betscout"
	Version = "1.0.0"
)

// Server represents an MCP server
type Server struct {
	transport transport.Transport
	mu        sync.RWMutex
	handlers  map[string]HandlerFunc
	tools     map[string]HandlerFunc
	toolList  []protocol.Tool
}

// HandlerFunc handles the params of one request. Returning a *protocol.JsonRpcError selects the
// error code sent back, any other error is reported as a server error.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Singleton instance
var (
	instance *Server
	once     sync.Once
)

// InitInstance initializes the singleton instance of the Server with the specified transport
func InitInstance(t transport.Transport) *Server {
	once.Do(func() {
		instance = NewServer(t)
	})
	return instance
}

// GetInstance returns the singleton instance of the Server
func GetInstance() *Server {
	if instance == nil {
		logger.Warn("Server instance requested but not initialized, using stdio")
		return InitInstance(transport.NewStdioTransport())
	}
	return instance
}

// NewServer creates a server with the built-in MCP methods registered and no tools
func NewServer(t transport.Transport) *Server {
	s := &Server{
		transport: t,
		handlers:  make(map[string]HandlerFunc),
		tools:     make(map[string]HandlerFunc),
	}
	s.handlers[string(protocol.MethodInitialize)] = s.handleInitialize
	s.handlers[string(protocol.MethodInitialized)] = s.handleInitialized
	s.handlers[string(protocol.MethodPing)] = s.handlePing
	s.handlers[string(protocol.MethodToolsList)] = s.handleToolsList
	s.handlers[string(protocol.MethodToolsCall)] = s.handleToolsCall
	s.handlers[string(protocol.MethodShutdown)] = s.handlePing
	return s
}

// RegisterTool registers a tool with the server
func (s *Server) RegisterTool(tool protocol.Tool, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tools[tool.Name]; !exists {
		s.toolList = append(s.toolList, tool)
	}
	s.tools[tool.Name] = handler
	logger.Info("Registered tool:", tool.Name)
}

// GetTools returns the list of registered tools
func (s *Server) GetTools() []protocol.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]protocol.Tool, len(s.toolList))
	copy(out, s.toolList)
	return out
}

// Start processes requests until the transport closes, ctx is cancelled or a signal arrives
func (s *Server) Start(ctx context.Context) error {
	logger.Info("Starting MCP server")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.ProcessRequests(ctx)
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down:", context.Cause(ctx))
		return nil
	}
}

// ProcessRequests continuously reads requests and writes their responses
func (s *Server) ProcessRequests(ctx context.Context) error {
	if s.transport == nil {
		return fmt.Errorf("server has no transport")
	}
	for {
		req, err := s.transport.ReadRequest()
		var parseErr *transport.ParseError
		if errors.As(err, &parseErr) {
			resp := protocol.NewJsonRpcErrorResponse(protocol.ErrParse, parseErr.Error(), nil, nil)
			if err := s.transport.WriteResponse(resp); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		// nil is not an error, it is just that no response is required
		resp := s.Handle(ctx, req)
		if resp == nil {
			continue
		}
		if err := s.transport.WriteResponse(resp); err != nil {
			return err
		}
	}
}

// Handle processes one request and returns its response, or nil for notifications
func (s *Server) Handle(ctx context.Context, req *protocol.JsonRpcRequest) *protocol.JsonRpcResponse {
	start := time.Now()
	logger.Info(">> ", req.Method)

	if strings.HasPrefix(req.Method, "notifications/") || (req.ID == nil && req.Method == string(protocol.MethodInitialized)) {
		logger.Debug("Received notification:", req.Method)
		observeRequest(req.Method, "notification", start)
		return nil
	}
	if req.JsonRPC != protocol.JsonRpcVersion {
		observeRequest(req.Method, "invalid", start)
		return protocol.NewJsonRpcErrorResponse(protocol.ErrInvalidRequest, "jsonrpc must be \"2.0\"", nil, req.ID)
	}

	s.mu.RLock()
	handler := s.handlers[req.Method]
	s.mu.RUnlock()
	if handler == nil {
		observeRequest(req.Method, "not_found", start)
		return protocol.NewJsonRpcErrorResponse(protocol.ErrMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil, req.ID)
	}

	result, err := s.invoke(ctx, handler, req.Params)
	if err != nil {
		observeRequest(req.Method, "error", start)
		return errorResponse(err, req.ID)
	}
	resp, err := protocol.NewJsonRpcResponse(result, req.ID)
	if err != nil {
		observeRequest(req.Method, "error", start)
		return protocol.NewJsonRpcErrorResponse(protocol.ErrInternal, "Failed to marshal result: "+err.Error(), nil, req.ID)
	}
	if resp.Result == nil {
		// a result member is required on success
		resp.Result = json.RawMessage("{}")
	}
	observeRequest(req.Method, "ok", start)
	logger.Debug("<< ", req.Method, time.Since(start).String())
	return resp
}

// invoke runs a handler and turns a panic into an internal error
func (s *Server) invoke(ctx context.Context, handler HandlerFunc, params json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Handler panicked:", fmt.Sprint(r))
			err = &protocol.JsonRpcError{Code: protocol.ErrInternal, Message: fmt.Sprintf("internal error: %v", r)}
		}
	}()
	return handler(ctx, params)
}

func errorResponse(err error, id any) *protocol.JsonRpcResponse {
	var rpcErr *protocol.JsonRpcError
	if errors.As(err, &rpcErr) {
		return &protocol.JsonRpcResponse{JsonRPC: protocol.JsonRpcVersion, Error: rpcErr, ID: id}
	}
	logger.Warn("Request failed:", err)
	return protocol.NewJsonRpcErrorResponse(protocol.ErrToolExecutionFailed, err.Error(), nil, id)
}

// handleInitialize answers with the requested protocol version and the server capabilities
func (s *Server) handleInitialize(_ context.Context, params json.RawMessage) (any, error) {
	version := protocol.ProtocolVersion
	if len(params) > 0 {
		var p struct {
			ProtocolVersion string `json:"protocolVersion"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, protocol.NewInvalidParamsError("invalid initialize parameters: %v", err)
		}
		if p.ProtocolVersion != "" {
			version = p.ProtocolVersion
		}
	}
	logger.Info("Handling initialize request with", len(s.GetTools()), "tools, protocol", version)

	capabilities := map[string]any{}
	if len(s.GetTools()) > 0 {
		capabilities["tools"] = map[string]any{"listChanged": false}
	}
	return protocol.InitializeResult{
		ProtocolVersion: version,
		Capabilities:    capabilities,
		ServerInfo:      protocol.ServerInfo{Name: Name, Version: Version},
	}, nil
}

// 'initialized' sent as a request still gets an empty acknowledgement
func (s *Server) handleInitialized(_ context.Context, _ json.RawMessage) (any, error) {
	return struct{}{}, nil
}

func (s *Server) handlePing(_ context.Context, _ json.RawMessage) (any, error) {
	return struct{}{}, nil
}

func (s *Server) handleToolsList(_ context.Context, _ json.RawMessage) (any, error) {
	return protocol.ToolsResponse{Tools: s.GetTools()}, nil
}

// handleToolsCall dispatches to a registered tool. Plain results are wrapped as tool results,
// a tool that already built a *protocol.ToolResult (e.g. an isError result) is passed through.
func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (any, error) {
	var call protocol.ToolCallParams
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, protocol.NewInvalidParamsError("invalid tools/call parameters: %v", err)
	}
	if call.Name == "" {
		return nil, protocol.NewInvalidParamsError("missing tool name")
	}

	s.mu.RLock()
	handler := s.tools[call.Name]
	s.mu.RUnlock()
	if handler == nil {
		return nil, protocol.NewInvalidParamsError("tool not found: %s", call.Name)
	}

	logger.Info("Tool call requested for:", call.Name)
	args := call.Arguments
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}
	result, err := handler(ctx, args)
	if err != nil {
		return nil, err
	}
	if tr, ok := result.(*protocol.ToolResult); ok {
		return tr, nil
	}
	return protocol.NewToolResult(result)
}
