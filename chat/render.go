package chat

import (
	"strings"

	"github.com/onnwee/chatfilter/config"
)

// Filter is the platform predicate. The zero value passes every frame.
type Filter struct {
	platform string
}

// NewFilter builds a filter for platform. Empty (after trimming) disables filtering.
func NewFilter(platform string) Filter {
	return Filter{platform: config.NormalizePlatform(platform)}
}

// Platform returns the normalized platform, or "" when filtering is off.
func (f Filter) Platform() string { return f.platform }

// Allows reports whether a frame with the given source passes the filter.
func (f Filter) Allows(source string) bool {
	if f.platform == "" {
		return true
	}
	return strings.ToLower(strings.TrimSpace(source)) == f.platform
}

// Line holds the display fields of an accepted frame.
type Line struct {
	Source  string
	Author  string
	Message string
}

// LineFromFrame extracts the display fields of f. Case is preserved.
func LineFromFrame(f *Frame) Line {
	return Line{
		Source:  f.Field(SourceKeys...),
		Author:  f.Field(AuthorKeys...),
		Message: f.Field(MessageKeys...),
	}
}

// String renders the line as "[source] author: message", with "?" standing in
// for an empty source.
func (l Line) String() string {
	source := l.Source
	if source == "" {
		source = "?"
	}
	var b strings.Builder
	b.Grow(len(source) + len(l.Author) + len(l.Message) + 5)
	b.WriteByte('[')
	b.WriteString(source)
	b.WriteString("] ")
	b.WriteString(l.Author)
	b.WriteString(": ")
	b.WriteString(l.Message)
	return b.String()
}
