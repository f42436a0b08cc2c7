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

func (ts *toolset) listSnapshots() *tools.Tool {
	return &tools.Tool{
		Name:        "listSnapshots",
		Description: "List snapshots of a virtual machine",
		Schema: tools.Schema{
			Required:   []string{"vmId"},
			Properties: map[string]tools.Property{"vmId": vmIDProperty()},
		},
		Handler: func(ctx context.Context, args map[string]any) *tools.Result {
			id := sanitize.Identifier(tools.String(args, "vmId"))
			if id == "" {
				return tools.Errorf("argument %q is empty after sanitization", "vmId")
			}

			out, err := ts.runner.Run(ctx, "snapshot-list", id)
			if err != nil {
				return tools.Errorf("failed to list snapshots of %q: %v", id, err)
			}
			return tools.Text(formatSnapshotList(id, prlctl.ParseSnapshotList(out.Stdout)))
		},
	}
}

func (ts *toolset) takeSnapshot() *tools.Tool {
	return &tools.Tool{
		Name:        "takeSnapshot",
		Description: "Take a snapshot of a virtual machine",
		Schema: tools.Schema{
			Required: []string{"vmId", "name"},
			Properties: map[string]tools.Property{
				"vmId": vmIDProperty(),
				"name": {Type: "string", Description: "Snapshot name", MinLength: 1, MaxLength: 256},
				"description": {
					Type:        "string",
					Description: "Optional snapshot description",
					MaxLength:   1024,
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) *tools.Result {
			id := sanitize.Identifier(tools.String(args, "vmId"))
			name := sanitize.Identifier(tools.String(args, "name"))
			if id == "" || name == "" {
				return tools.Errorf("identifier arguments are empty after sanitization")
			}

			argv := []string{"snapshot", id, "--name", name}
			if desc := sanitize.Identifier(tools.String(args, "description")); desc != "" {
				argv = append(argv, "--description", desc)
			}

			out, err := ts.runner.Run(ctx, argv...)
			if err != nil {
				return tools.Errorf("failed to take snapshot of %q: %v", id, err)
			}
			ts.log.Info("took snapshot", zap.String("vm", id), zap.String("snapshot", name))

			msg := fmt.Sprintf("Took snapshot %q of VM %q.", name, id)
			if s := strings.TrimSpace(out.Stdout); s != "" {
				msg += "\n" + s
			}
			return tools.Text(msg)
		},
	}
}

func (ts *toolset) restoreSnapshot() *tools.Tool {
	return ts.snapshotByIDTool("restoreSnapshot",
		"Restore a virtual machine to a snapshot",
		"snapshot-switch", "Restored")
}

func (ts *toolset) deleteSnapshot() *tools.Tool {
	return ts.snapshotByIDTool("deleteSnapshot",
		"Delete a snapshot of a virtual machine",
		"snapshot-delete", "Deleted")
}

func (ts *toolset) snapshotByIDTool(name, description, verb, done string) *tools.Tool {
	return &tools.Tool{
		Name:        name,
		Description: description,
		Schema: tools.Schema{
			Required: []string{"vmId", "snapshotId"},
			Properties: map[string]tools.Property{
				"vmId": vmIDProperty(),
				"snapshotId": {
					Type:        "string",
					Description: "Braced snapshot UUID",
					MinLength:   1,
					MaxLength:   64,
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) *tools.Result {
			id := sanitize.Identifier(tools.String(args, "vmId"))
			snapID := sanitize.Identifier(tools.String(args, "snapshotId"))
			if id == "" || snapID == "" {
				return tools.Errorf("identifier arguments are empty after sanitization")
			}

			out, err := ts.runner.Run(ctx, verb, id, "--id", snapID)
			if err != nil {
				return tools.Errorf("failed to %s snapshot %s of %q: %v", verb, snapID, id, err)
			}
			ts.log.Info("snapshot operation",
				zap.String("verb", verb),
				zap.String("vm", id),
				zap.String("snapshot", snapID))

			msg := fmt.Sprintf("%s snapshot %s of VM %q.", done, snapID, id)
			if s := strings.TrimSpace(out.Stdout); s != "" {
				msg += "\n" + s
			}
			return tools.Text(msg)
		},
	}
}

func formatSnapshotList(vmID string, records []prlctl.SnapshotRecord) string {
	if len(records) == 0 {
		return fmt.Sprintf("VM %q has no snapshots.", vmID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d snapshot(s) of VM %q:\n", len(records), vmID)
	for _, r := range records {
		marker := " "
		if r.Current {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %s %s", marker, r.ID, r.Name)
		if r.Date != "" {
			fmt.Fprintf(&b, " (%s)", r.Date)
		}
		b.WriteByte('\n')
	}
	b.WriteString("(* marks the current snapshot)")
	return b.String()
}
