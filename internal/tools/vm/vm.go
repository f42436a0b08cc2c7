// Package vm registers the virtual-machine tool surface: lifecycle
// operations and snapshot management, all backed by the controller CLI.
//
// Every handler follows the same shape: pull arguments (already schema
// validated), sanitize any identifier headed for the argument vector,
// invoke the Runner, parse or relay the output, and convert every failure
// into an error-shaped result. Handlers never return Go errors and never
// panic; the dispatcher passes whatever they produce straight through.
package vm

import (
	"go.uber.org/zap"

	"vmbridge/internal/prlctl"
	"vmbridge/internal/tools"
)

// toolset carries the shared collaborators handlers close over.
type toolset struct {
	runner prlctl.Runner
	log    *zap.Logger
}

// RegisterAll registers the full VM tool surface on reg. Call once during
// startup, before the first dispatch.
func RegisterAll(reg *tools.Registry, runner prlctl.Runner, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	ts := &toolset{runner: runner, log: log}

	reg.MustRegister(ts.listVMs())
	reg.MustRegister(ts.createVM())
	reg.MustRegister(ts.startVM())
	reg.MustRegister(ts.stopVM())
	reg.MustRegister(ts.suspendVM())
	reg.MustRegister(ts.resumeVM())
	reg.MustRegister(ts.deleteVM())
	reg.MustRegister(ts.listSnapshots())
	reg.MustRegister(ts.takeSnapshot())
	reg.MustRegister(ts.restoreSnapshot())
	reg.MustRegister(ts.deleteSnapshot())
}

// vmIDProperty is the schema fragment shared by every tool that addresses
// a machine.
func vmIDProperty() tools.Property {
	return tools.Property{
		Type:        "string",
		Description: "Virtual machine name or braced UUID",
		MinLength:   1,
		MaxLength:   256,
	}
}
