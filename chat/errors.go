package chat

import "errors"

var (
	// ErrMalformed is returned by ParseFrame when a line is not valid JSON.
	ErrMalformed = errors.New("malformed frame")
	// ErrNotObject is returned by ParseFrame when a line is valid JSON but not an object.
	ErrNotObject = errors.New("frame is not a JSON object")
)

// DropReason records why the processor produced no output for an input line.
type DropReason int

const (
	// DropNone means the line was rendered.
	DropNone DropReason = iota
	// DropEmpty is a blank line.
	DropEmpty
	// DropKeepalive is the upstream keepalive sentinel.
	DropKeepalive
	// DropMalformed is a line that failed to parse as JSON.
	DropMalformed
	// DropNotObject is valid JSON whose top-level value is not an object.
	DropNotObject
	// DropFiltered is a frame whose source did not match the platform filter.
	DropFiltered
	// DropOversize is a line longer than the configured maximum.
	DropOversize
)

// dropReasons lists every reason a line can be dropped, in declaration order.
var dropReasons = []DropReason{DropEmpty, DropKeepalive, DropMalformed, DropNotObject, DropFiltered, DropOversize}

// String returns the metric/log label for the reason.
func (r DropReason) String() string {
	switch r {
	case DropNone:
		return "none"
	case DropEmpty:
		return "empty"
	case DropKeepalive:
		return "keepalive"
	case DropMalformed:
		return "malformed"
	case DropNotObject:
		return "not_object"
	case DropFiltered:
		return "filtered"
	case DropOversize:
		return "oversize"
	default:
		return "unknown"
	}
}

// ClassifyParseError maps a ParseFrame error onto its drop reason.
func ClassifyParseError(err error) DropReason {
	switch {
	case err == nil:
		return DropNone
	case errors.Is(err, ErrNotObject):
		return DropNotObject
	default:
		return DropMalformed
	}
}
