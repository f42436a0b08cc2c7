// Package prlctl talks to the external virtualization controller CLI.
//
// It owns the argument-vector boundary (Runner), the typed records the
// controller's tabular output is parsed into, and the parsers themselves.
// Records are built fresh per parse call and never mutated.
package prlctl

// Status is the closed set of machine states the controller reports.
type Status string

const (
	StatusRunning   Status = "running"
	StatusStopped   Status = "stopped"
	StatusSuspended Status = "suspended"
	StatusPaused    Status = "paused"
	StatusUnknown   Status = "unknown"
)

// statusFromToken maps a raw status column token onto the closed set.
// Anything unrecognized collapses to StatusUnknown rather than failing
// the line.
func statusFromToken(tok string) Status {
	switch Status(tok) {
	case StatusRunning, StatusStopped, StatusSuspended, StatusPaused:
		return Status(tok)
	}
	return StatusUnknown
}

// VMRecord is one row of `list --all` output.
type VMRecord struct {
	// UUID is the controller's braced identifier, {8-4-4-4-12}.
	UUID string

	// Status is the machine state, normalized to the closed set.
	Status Status

	// IP is the guest address. Empty when the controller reported the
	// "-" placeholder, meaning no address is assigned.
	IP string

	// Name is the display name exactly as the controller printed it,
	// including spaces. It has NOT been sanitized.
	Name string
}

// HasIP reports whether the controller reported an address for the machine.
func (r VMRecord) HasIP() bool { return r.IP != "" }

// SnapshotRecord is one row of `snapshot-list` output.
type SnapshotRecord struct {
	ID   string
	Name string

	// Date is kept verbatim; it is display data, never reparsed.
	Date string

	// Current is true for at most one record per parsed list.
	Current bool
}
