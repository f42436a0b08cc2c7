package prlctl

import (
	"strings"

	"vmbridge/internal/sanitize"
)

// ParseVMList parses `list --all` output into VMRecords, preserving source
// line order.
//
// The column header line (UUID STATUS IP_ADDR NAME) is skipped. Every
// other line is split on runs of whitespace into at most
// four leading fields; everything after the third delimiter is the name,
// which may contain spaces. A line that cannot produce at least a UUID and
// a status is malformed and silently dropped; one corrupt line never
// fails the whole call. Empty input yields an empty slice.
func ParseVMList(raw string) []VMRecord {
	var records []VMRecord

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := splitColumns(line, 4)
		if len(fields) < 2 || fields[0] == "UUID" {
			continue
		}

		rec := VMRecord{
			UUID:   fields[0],
			Status: statusFromToken(fields[1]),
		}
		if len(fields) > 2 && fields[2] != "-" {
			rec.IP = fields[2]
		}
		if len(fields) > 3 {
			rec.Name = fields[3]
		}
		records = append(records, rec)
	}

	return records
}

// ParseSnapshotList parses `snapshot-list` output into SnapshotRecords.
//
// A record line is: an optional "*" current-marker glyph, a braced
// snapshot ID, a name (quoted names may contain spaces), and the rest of
// the line as an opaque date string. Lines without at least an ID and a
// name are dropped, same tolerance as ParseVMList.
//
// At most one returned record has Current set. The text format does not
// structurally prevent multiple markers; if that happens the first one
// wins and later markers are ignored. This is a defined tie-break, not an
// error.
func ParseSnapshotList(raw string) []SnapshotRecord {
	var records []SnapshotRecord
	sawCurrent := false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		marked := false
		if strings.HasPrefix(line, "*") {
			marked = true
			line = strings.TrimSpace(line[1:])
		}

		id, rest := nextField(line)
		if id == "" || !sanitize.IsBracedUUID(id) {
			continue
		}

		name, rest := nextName(rest)
		if name == "" {
			continue
		}

		rec := SnapshotRecord{
			ID:   id,
			Name: name,
			Date: strings.TrimSpace(rest),
		}
		if marked && !sawCurrent {
			rec.Current = true
			sawCurrent = true
		}
		records = append(records, rec)
	}

	return records
}

// splitColumns splits line on runs of whitespace into at most max fields.
// The last field keeps the remainder of the line verbatim (trimmed), so a
// trailing multi-word column survives intact.
func splitColumns(line string, max int) []string {
	var fields []string
	rest := line
	for len(fields) < max-1 {
		var f string
		f, rest = nextField(rest)
		if f == "" {
			return fields
		}
		fields = append(fields, f)
	}
	if rest = strings.TrimSpace(rest); rest != "" {
		fields = append(fields, rest)
	}
	return fields
}

// nextField returns the first whitespace-delimited token of s and the
// remainder after it.
func nextField(s string) (field, rest string) {
	s = strings.TrimLeft(s, " \t")
	end := strings.IndexAny(s, " \t")
	if end < 0 {
		return s, ""
	}
	return s[:end], s[end:]
}

// nextName returns the next name token of s. A name wrapped in double
// quotes may contain spaces; the quotes are not part of the name.
func nextName(s string) (name, rest string) {
	s = strings.TrimLeft(s, " \t")
	if strings.HasPrefix(s, `"`) {
		if end := strings.Index(s[1:], `"`); end >= 0 {
			return s[1 : end+1], s[end+2:]
		}
		// Unterminated quote: take the rest of the line.
		return s[1:], ""
	}
	return nextField(s)
}
