package chat

import (
	"fmt"
	"strings"

	"github.com/valyala/fastjson"
)

// KeepaliveSentinel is written by upstream producers to keep idle connections open.
const KeepaliveSentinel = "__keepalive__"

// Candidate keys for each logical field, in lookup order.
var (
	SourceKeys  = []string{"source", "Source"}
	AuthorKeys  = []string{"author", "Author"}
	MessageKeys = []string{"message", "Message"}
)

// Frame is one decoded chat object. It borrows memory from the parser that
// produced it and is only valid until that parser parses again.
type Frame struct {
	v *fastjson.Value
}

// ParseFrame decodes line as a JSON object. It returns ErrMalformed for invalid
// JSON and ErrNotObject for any other top-level JSON value.
func ParseFrame(p *fastjson.Parser, line []byte) (*Frame, error) {
	v, err := p.ParseBytes(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("%w: got %s", ErrNotObject, v.Type())
	}
	return &Frame{v: v}, nil
}

// Unwrap replaces an envelope frame {"type": ..., "data": {...}} with its data
// object. Frames without an object-valued data key are returned unchanged.
func (f *Frame) Unwrap() *Frame {
	if f.v.Get("type") == nil {
		return f
	}
	data := f.v.Get("data")
	if data == nil || data.Type() != fastjson.TypeObject {
		return f
	}
	return &Frame{v: data}
}

// Field returns the first present value among keys, coerced to text and
// whitespace-trimmed. A key is present when it holds a truthy value: null, false,
// zero, "", [] and {} all fall through to the next key. Missing fields yield "".
func (f *Frame) Field(keys ...string) string {
	for _, key := range keys {
		if text, ok := coerce(f.v.Get(key)); ok {
			return strings.TrimSpace(text)
		}
	}
	return ""
}

// coerce renders a truthy JSON value as text. Strings are unescaped; numbers keep
// the literal form they had in the input; true stays true; objects and arrays are
// re-encoded as compact JSON. Falsy values report false.
func coerce(v *fastjson.Value) (string, bool) {
	if v == nil {
		return "", false
	}
	switch v.Type() {
	case fastjson.TypeNull, fastjson.TypeFalse:
		return "", false
	case fastjson.TypeString:
		b, err := v.StringBytes()
		if err != nil || len(b) == 0 {
			return "", false
		}
		return string(b), true
	case fastjson.TypeNumber:
		if f, err := v.Float64(); err == nil && f == 0 {
			return "", false
		}
	case fastjson.TypeArray:
		if a, _ := v.Array(); len(a) == 0 {
			return "", false
		}
	case fastjson.TypeObject:
		if o, _ := v.Object(); o == nil || o.Len() == 0 {
			return "", false
		}
	}
	return v.String(), true
}
