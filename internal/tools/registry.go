package tools

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Registry routes tool calls to handlers by name.
//
// Its lifecycle has two phases: registration, which happens sequentially
// during startup, and dispatch, which only reads. Nothing mutates the
// registry after the first Dispatch, so dispatch needs no locking. That
// ordering is the caller's contract; it is not enforced at runtime.
type Registry struct {
	tools map[string]*Tool

	// order remembers registration order for capability discovery.
	order []string

	log *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		tools: make(map[string]*Tool),
		log:   log,
	}
}

// Register adds a tool. Registering a name twice overwrites the earlier
// entry: the caller owns registration ordering, so last wins. Only a
// structurally broken tool (no name, no handler) is rejected.
func (r *Registry) Register(t *Tool) error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Handler == nil {
		return fmt.Errorf("%w: %s", ErrToolHandlerNil, t.Name)
	}

	if _, exists := r.tools[t.Name]; !exists {
		r.order = append(r.order, t.Name)
	}
	r.tools[t.Name] = t

	r.log.Debug("registered tool", zap.String("name", t.Name))
	return nil
}

// MustRegister registers a tool and panics on error. Registration happens
// at startup with static definitions, so a failure is a programming bug.
func (r *Registry) MustRegister(t *Tool) {
	if err := r.Register(t); err != nil {
		panic(fmt.Sprintf("failed to register tool %s: %v", t.Name, err))
	}
}

// Get returns a tool by name, or nil if not registered.
func (r *Registry) Get(name string) *Tool {
	return r.tools[name]
}

// Names returns all registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// All returns all registered tools in registration order.
func (r *Registry) All() []*Tool {
	result := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name])
	}
	return result
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	return len(r.tools)
}

// Dispatch routes a call to the named tool.
//
// An unregistered name fails with ErrUnknownTool: the caller requested a
// capability that does not exist, which is a protocol bug, not an
// application failure. For a registered tool the arguments are first
// checked against the tool's schema; a violation comes back as an
// error-shaped Result naming the field. Past validation, Dispatch returns
// whatever the handler returns without intercepting anything.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (*Result, error) {
	tool := r.tools[name]
	if tool == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if res := validateArgs(tool.Schema, args); res != nil {
		r.log.Debug("rejected tool call",
			zap.String("name", name),
			zap.String("reason", res.Content[0].Text))
		return res, nil
	}

	start := time.Now()
	res := tool.Handler(ctx, args)
	r.log.Debug("dispatched tool call",
		zap.String("name", name),
		zap.Bool("is_error", res != nil && res.IsError),
		zap.Duration("elapsed", time.Since(start)))

	if res == nil {
		// A handler returning nil is a bug in that handler; keep the
		// error-shape contract for the caller anyway.
		return Errorf("tool %s returned no result", name), nil
	}
	return res, nil
}
