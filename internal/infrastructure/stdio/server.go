// Package stdio serves the toolset as newline-delimited JSON over a pair of
// streams, one request per line and one response per line.
package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/tools"
)

const maxLineBytes = 4 << 20

// Dispatcher runs one tool call.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, args json.RawMessage) tools.Response
	List() []tools.Info
}

// Request is one line of input.
type Request struct {
	ID        json.RawMessage `json:"id,omitempty"`
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Reply is one line of output.
type Reply struct {
	ID json.RawMessage `json:"id,omitempty"`
	tools.Response
}

// listTools is answered by the server itself.
const listTools = "list_tools"

// Server reads requests from in and writes replies to out.
type Server struct {
	tools  Dispatcher
	logger *slog.Logger

	mu  sync.Mutex
	enc *json.Encoder
	in  io.Reader
}

// NewServer builds a server over the given streams.
func NewServer(d Dispatcher, in io.Reader, out io.Writer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{tools: d, logger: logger.With("component", "stdio"), enc: json.NewEncoder(out), in: in}
}

// Serve handles requests in order until in is exhausted or ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	sc := bufio.NewScanner(s.in)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for sc.Scan() {
			line := append([]byte(nil), sc.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil && !errors.Is(err, io.EOF) {
						return fmt.Errorf("read requests: %w", err)
					}
				default:
				}
				return nil
			}
			if len(line) == 0 {
				continue
			}
			if err := s.write(s.handle(ctx, line)); err != nil {
				return err
			}
		}
	}
}

func (s *Server) handle(ctx context.Context, line []byte) Reply {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Warn("malformed request", "error", err)
		return Reply{Response: tools.Response{
			Status: tools.StatusError,
			Error: &tools.ErrorBody{
				Code:       domain.CodeInvalidParameter,
				Message:    fmt.Sprintf("malformed request: %v", err),
				Suggestion: `send {"id": 1, "tool": "get_latest_news", "arguments": {}}`,
			},
		}}
	}
	if req.Tool == listTools {
		return Reply{ID: req.ID, Response: tools.Response{Status: tools.StatusSuccess, Data: s.tools.List()}}
	}
	return Reply{ID: req.ID, Response: s.tools.Dispatch(ctx, req.Tool, req.Arguments)}
}

func (s *Server) write(r Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(r); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}
	return nil
}
