package tools

import "errors"

// Registry errors.
var (
	// ErrUnknownTool is returned by Dispatch for a name that was never
	// registered. It is the only error the dispatcher raises itself;
	// everything else a tool call can go wrong with comes back as an
	// error-shaped Result from the handler.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrToolNameEmpty is returned when registering a tool with no name.
	ErrToolNameEmpty = errors.New("tool name cannot be empty")

	// ErrToolHandlerNil is returned when registering a tool with no handler.
	ErrToolHandlerNil = errors.New("tool handler cannot be nil")
)
