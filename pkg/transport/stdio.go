package transport

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/richard-senior/betscout/internal/logger"
	"github.com/richard-senior/betscout/pkg/protocol"
)

// StdioTransport implements communication over a pair of streams, normally stdin/stdout.
// Writes are serialised so concurrent handlers cannot interleave responses.
type StdioTransport struct {
	reader *bufio.Reader
	writer *bufio.Writer
	mu     sync.Mutex
}

// NewStdioTransport creates a new transport that uses stdin/stdout
func NewStdioTransport() *StdioTransport {
	return NewStreamTransport(os.Stdin, os.Stdout)
}

// NewStreamTransport creates a transport over arbitrary streams
func NewStreamTransport(r io.Reader, w io.Writer) *StdioTransport {
	return &StdioTransport{
		reader: bufio.NewReader(r),
		writer: bufio.NewWriter(w),
	}
}

// ReadRequest reads one JSON object from the stream by tracking brace depth outside
// string literals, so requests need not be newline delimited
func (t *StdioTransport) ReadRequest() (*protocol.JsonRpcRequest, error) {
	var requestData []byte
	var depth int
	var inString, escapeNext, started bool

	for {
		b, err := t.reader.ReadByte()
		if err != nil {
			if err == io.EOF {
				logger.Info("Received EOF on stdin, client disconnected")
			} else {
				logger.Error("Error reading from stdin:", err)
			}
			return nil, err
		}
		if !started && b != '{' {
			// whitespace or stray bytes between messages
			continue
		}
		started = true
		requestData = append(requestData, b)

		if inString {
			switch {
			case escapeNext:
				escapeNext = false
			case b == '\\':
				escapeNext = true
			case b == '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			break
		}
	}

	requestStr := strings.TrimSpace(string(requestData))
	logger.Debug("Received raw request:", requestStr)

	request, err := protocol.ParseJsonRpcRequest([]byte(requestStr))
	if err != nil {
		logger.Error("Failed to parse JSON-RPC request:", err)
		return nil, &ParseError{Err: err}
	}
	return request, nil
}

// WriteResponse writes one JSON-RPC response followed by a newline
func (t *StdioTransport) WriteResponse(response *protocol.JsonRpcResponse) error {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		logger.Error("Failed to marshal response:", err)
		return err
	}
	responseBytes = append(responseBytes, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.writer.Write(responseBytes); err != nil {
		logger.Error("Failed to write response:", err)
		return err
	}
	if err := t.writer.Flush(); err != nil {
		logger.Error("Failed to flush response:", err)
		return err
	}
	logger.Debug("Sending response:", string(responseBytes))
	return nil
}
