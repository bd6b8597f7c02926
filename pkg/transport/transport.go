package transport

import (
	"github.com/richard-senior/betscout/pkg/protocol"
)

// Transport defines the interface for communication methods
type Transport interface {
	ReadRequest() (*protocol.JsonRpcRequest, error)
	WriteResponse(*protocol.JsonRpcResponse) error
}

// ParseError is returned by ReadRequest when a complete message was read but is not a valid
// JSON-RPC request. The stream is still usable.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "invalid request: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
