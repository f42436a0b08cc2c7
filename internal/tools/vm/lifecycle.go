package vm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"vmbridge/internal/prlctl"
	"vmbridge/internal/sanitize"
	"vmbridge/internal/tools"
)

func (ts *toolset) listVMs() *tools.Tool {
	return &tools.Tool{
		Name:        "listVMs",
		Description: "List all virtual machines with their status and IP address",
		Schema:      tools.Schema{Required: []string{}},
		Handler: func(ctx context.Context, args map[string]any) *tools.Result {
			out, err := ts.runner.Run(ctx, "list", "--all")
			if err != nil {
				return tools.Errorf("failed to list VMs: %v", err)
			}
			return tools.Text(formatVMList(prlctl.ParseVMList(out.Stdout)))
		},
	}
}

func (ts *toolset) createVM() *tools.Tool {
	return &tools.Tool{
		Name:        "createVM",
		Description: "Create a new virtual machine",
		Schema: tools.Schema{
			Required: []string{"name"},
			Properties: map[string]tools.Property{
				"name": {Type: "string", Description: "Name for the new virtual machine", MinLength: 1, MaxLength: 256},
				"distribution": {
					Type:        "string",
					Description: "Guest OS distribution to preconfigure",
					MaxLength:   64,
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) *tools.Result {
			name := sanitize.Identifier(tools.String(args, "name"))
			argv := []string{"create", name}
			if distro := sanitize.Identifier(tools.String(args, "distribution")); distro != "" {
				argv = append(argv, "--distribution", distro)
			}

			out, err := ts.runner.Run(ctx, argv...)
			if err != nil {
				return tools.Errorf("failed to create VM %q: %v", name, err)
			}
			ts.log.Info("created VM", zap.String("name", name))
			return tools.Textf("Created VM %q.\n%s", name, strings.TrimSpace(out.Stdout))
		},
	}
}

func (ts *toolset) startVM() *tools.Tool {
	return ts.lifecycleTool("startVM", "Start a virtual machine", "start", "Started")
}

func (ts *toolset) suspendVM() *tools.Tool {
	return ts.lifecycleTool("suspendVM", "Suspend a running virtual machine", "suspend", "Suspended")
}

func (ts *toolset) resumeVM() *tools.Tool {
	return ts.lifecycleTool("resumeVM", "Resume a suspended virtual machine", "resume", "Resumed")
}

func (ts *toolset) deleteVM() *tools.Tool {
	return ts.lifecycleTool("deleteVM", "Delete a virtual machine permanently", "delete", "Deleted")
}

// lifecycleTool builds the single-identifier operations that differ only
// in the controller verb.
func (ts *toolset) lifecycleTool(name, description, verb, done string) *tools.Tool {
	return &tools.Tool{
		Name:        name,
		Description: description,
		Schema: tools.Schema{
			Required:   []string{"vmId"},
			Properties: map[string]tools.Property{"vmId": vmIDProperty()},
		},
		Handler: func(ctx context.Context, args map[string]any) *tools.Result {
			id := sanitize.Identifier(tools.String(args, "vmId"))
			if id == "" {
				return tools.Errorf("argument %q is empty after sanitization", "vmId")
			}

			out, err := ts.runner.Run(ctx, verb, id)
			if err != nil {
				return tools.Errorf("failed to %s VM %q: %v", verb, id, err)
			}
			ts.log.Info("vm lifecycle operation",
				zap.String("verb", verb),
				zap.String("vm", id))

			msg := fmt.Sprintf("%s VM %q.", done, id)
			if s := strings.TrimSpace(out.Stdout); s != "" {
				msg += "\n" + s
			}
			return tools.Text(msg)
		},
	}
}

func (ts *toolset) stopVM() *tools.Tool {
	return &tools.Tool{
		Name:        "stopVM",
		Description: "Stop a virtual machine, optionally killing it immediately",
		Schema: tools.Schema{
			Required: []string{"vmId"},
			Properties: map[string]tools.Property{
				"vmId":  vmIDProperty(),
				"force": {Type: "boolean", Description: "Kill the VM instead of a graceful shutdown"},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) *tools.Result {
			id := sanitize.Identifier(tools.String(args, "vmId"))
			if id == "" {
				return tools.Errorf("argument %q is empty after sanitization", "vmId")
			}

			argv := []string{"stop", id}
			if tools.Bool(args, "force") {
				argv = append(argv, "--kill")
			}

			out, err := ts.runner.Run(ctx, argv...)
			if err != nil {
				return tools.Errorf("failed to stop VM %q: %v", id, err)
			}
			ts.log.Info("stopped VM", zap.String("vm", id), zap.Bool("force", tools.Bool(args, "force")))

			msg := fmt.Sprintf("Stopped VM %q.", id)
			if s := strings.TrimSpace(out.Stdout); s != "" {
				msg += "\n" + s
			}
			return tools.Text(msg)
		},
	}
}

// formatVMList renders parsed records as readable text for the caller.
func formatVMList(records []prlctl.VMRecord) string {
	if len(records) == 0 {
		return "No virtual machines found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d virtual machine(s):\n", len(records))
	for _, r := range records {
		ip := "no IP"
		if r.HasIP() {
			ip = r.IP
		}
		name := r.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(&b, "- %s %s [%s] %s\n", name, r.UUID, r.Status, ip)
	}
	return strings.TrimRight(b.String(), "\n")
}
