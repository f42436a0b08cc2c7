package protocol

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vmbridge/internal/tools"
)

// Server reads requests from in and writes responses to out. In production
// in/out are the process's stdin/stdout; stdout is the wire, so all
// logging goes elsewhere (stderr via zap).
type Server struct {
	name    string
	version string
	reg     *tools.Registry
	log     *zap.Logger

	in  io.Reader
	out io.Writer

	// writeMu serializes response writes; tool calls complete on their
	// own goroutines and must not interleave bytes on the wire.
	writeMu sync.Mutex
}

// NewServer creates a protocol server over the given streams. The registry
// must be fully populated before Serve is called; the server only reads it.
func NewServer(name, version string, reg *tools.Registry, in io.Reader, out io.Writer, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		name:    name,
		version: version,
		reg:     reg,
		log:     log,
		in:      in,
		out:     out,
	}
}

// Serve runs the read loop until in is exhausted or ctx is canceled.
// tools/call requests are handled on their own goroutines so a call that
// is blocked on the controller subprocess does not stall the loop; all
// in-flight calls are drained before Serve returns.
func (s *Server) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("malformed request line", zap.Error(err))
			s.writeError(json.RawMessage("null"), codeParseError, "parse error")
			continue
		}

		s.handle(ctx, g, &req)
	}

	err := scanner.Err()
	if gerr := g.Wait(); gerr != nil && err == nil {
		err = gerr
	}
	if errors.Is(err, io.ErrClosedPipe) {
		err = nil
	}
	return err
}

// handle routes one decoded request. Everything except tools/call is
// answered inline; tool calls may suspend at the subprocess boundary and
// run on the group.
func (s *Server) handle(ctx context.Context, g *errgroup.Group, req *request) {
	switch req.Method {
	case "initialize":
		s.writeResult(req.ID, initializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      serverInfo{Name: s.name, Version: s.version},
		})

	case "notifications/initialized":
		// Notification, nothing to answer.

	case "ping":
		s.writeResult(req.ID, map[string]any{})

	case "tools/list":
		s.writeResult(req.ID, map[string]any{"tools": s.describeTools()})

	case "tools/call":
		var params callParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.writeError(req.ID, codeInvalidParams, "invalid tools/call params")
			return
		}
		id := req.ID
		g.Go(func() error {
			s.call(ctx, id, params)
			return nil
		})

	default:
		if req.isNotification() {
			s.log.Debug("ignoring notification", zap.String("method", req.Method))
			return
		}
		s.writeError(req.ID, codeMethodNotFound, "method not found: "+req.Method)
	}
}

// call dispatches one tool invocation and writes its response.
func (s *Server) call(ctx context.Context, id json.RawMessage, params callParams) {
	args := params.Arguments
	if args == nil {
		args = map[string]any{}
	}

	res, err := s.reg.Dispatch(ctx, params.Name, args)
	if err != nil {
		// The one dispatcher-level failure: the caller asked for a tool
		// that was never registered. That is a protocol-level rejection,
		// not a content payload.
		s.writeError(id, codeInvalidParams, err.Error())
		return
	}
	s.writeResult(id, res)
}

func (s *Server) describeTools() []toolDescriptor {
	all := s.reg.All()
	descriptors := make([]toolDescriptor, 0, len(all))
	for _, t := range all {
		props := make(map[string]any, len(t.Schema.Properties))
		for name, p := range t.Schema.Properties {
			props[name] = p
		}
		required := t.Schema.Required
		if required == nil {
			required = []string{}
		}
		descriptors = append(descriptors, toolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: inputSchemaJSON{
				Type:       "object",
				Properties: props,
				Required:   required,
			},
		})
	}
	return descriptors
}

func (s *Server) writeResult(id json.RawMessage, result any) {
	s.write(response{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) writeError(id json.RawMessage, code int, message string) {
	s.write(response{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}})
}

func (s *Server) write(resp response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("failed to marshal response", zap.Error(err))
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.out.Write(append(data, '\n')); err != nil {
		s.log.Warn("failed to write response", zap.Error(err))
	}
}
