// Package tools holds the tool registry and the shapes shared by every
// tool handler: the declarative argument schema, the handler signature,
// and the content/error result contract of the tool-call protocol.
package tools

import (
	"context"
	"fmt"
)

// Property describes one argument in a tool's input schema. Constraints
// are evaluated before the handler body runs; a violation produces an
// error-shaped Result naming the field, never a Go error.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`

	// MinLength/MaxLength apply to string arguments. Zero means no bound.
	MinLength int `json:"minLength,omitempty"`
	MaxLength int `json:"maxLength,omitempty"`

	// Enum restricts the argument to a fixed set of values.
	Enum []any `json:"enum,omitempty"`
}

// Schema is the declarative argument contract for one tool.
type Schema struct {
	Required   []string            `json:"required"`
	Properties map[string]Property `json:"properties"`
}

// HandlerFunc executes a tool call. Handlers own their failure modes: an
// execution or formatting problem comes back as an error-shaped Result,
// never as a panic or a Go error. Arguments have already passed schema
// validation by the time a handler runs.
type HandlerFunc func(ctx context.Context, args map[string]any) *Result

// Tool pairs a protocol-visible name with its schema and handler.
type Tool struct {
	Name        string
	Description string
	Schema      Schema
	Handler     HandlerFunc
}

// Content is one block of a tool result. Only text blocks exist today.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is what a tool call returns to the protocol layer.
type Result struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Text builds a successful single-block result.
func Text(s string) *Result {
	return &Result{Content: []Content{{Type: "text", Text: s}}}
}

// Textf builds a successful single-block result from a format string.
func Textf(format string, a ...any) *Result {
	return Text(fmt.Sprintf(format, a...))
}

// Errorf builds an error-shaped result. The rendered text always begins
// with the error marker so callers can spot failures without inspecting
// the IsError flag.
func Errorf(format string, a ...any) *Result {
	return &Result{
		Content: []Content{{Type: "text", Text: "Error: " + fmt.Sprintf(format, a...)}},
		IsError: true,
	}
}
