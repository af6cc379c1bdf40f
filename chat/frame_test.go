package chat

import (
	"errors"
	"testing"

	"github.com/valyala/fastjson"
)

func mustFrame(t *testing.T, p *fastjson.Parser, line string) *Frame {
	t.Helper()
	f, err := ParseFrame(p, []byte(line))
	if err != nil {
		t.Fatalf("ParseFrame(%q) error: %v", line, err)
	}
	return f
}

func TestParseFrameErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"garbage", "not json", ErrMalformed},
		{"truncated object", `{"source":"twitch"`, ErrMalformed},
		{"trailing data", `{"a":1} {"b":2}`, ErrMalformed},
		{"array", `[1,2,3]`, ErrNotObject},
		{"string", `"hello"`, ErrNotObject},
		{"number", `42`, ErrNotObject},
		{"null", `null`, ErrNotObject},
	}
	var p fastjson.Parser
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFrame(&p, []byte(tt.line))
			if !errors.Is(err, tt.want) {
				t.Fatalf("ParseFrame(%q) error = %v, want %v", tt.line, err, tt.want)
			}
			if ClassifyParseError(err) == DropNone {
				t.Errorf("ClassifyParseError(%v) = none", err)
			}
		})
	}
}

func TestFieldFallbackAndCoercion(t *testing.T) {
	tests := []struct {
		name string
		line string
		keys []string
		want string
	}{
		{"lowercase preferred", `{"source":"a","Source":"B"}`, SourceKeys, "a"},
		{"capitalized fallback", `{"Source":"X"}`, SourceKeys, "X"},
		{"empty string falls back", `{"source":"","Source":"X"}`, SourceKeys, "X"},
		{"null falls back", `{"author":null,"Author":"A"}`, AuthorKeys, "A"},
		{"missing", `{"other":"x"}`, MessageKeys, ""},
		{"trimmed", `{"message":"  hi there \n"}`, MessageKeys, "hi there"},
		{"whitespace only is present", `{"source":"   ","Source":"X"}`, SourceKeys, ""},
		{"integer", `{"source":42}`, SourceKeys, "42"},
		{"number literal kept", `{"source":4.50}`, SourceKeys, "4.50"},
		{"exponent literal kept", `{"source":1e3}`, SourceKeys, "1e3"},
		{"zero falls back", `{"source":0,"Source":"X"}`, SourceKeys, "X"},
		{"float zero falls back", `{"source":-0.0,"Source":"X"}`, SourceKeys, "X"},
		{"false falls back", `{"source":false,"Source":"X"}`, SourceKeys, "X"},
		{"false alone is missing", `{"author":false}`, AuthorKeys, ""},
		{"true", `{"author":true}`, AuthorKeys, "true"},
		{"empty object falls back", `{"source":{},"Source":"X"}`, SourceKeys, "X"},
		{"empty array is missing", `{"source":[]}`, SourceKeys, ""},
		{"small number is present", `{"source":0.5}`, SourceKeys, "0.5"},
		{"object compact", `{"message":{ "b" : 1, "a" : [true, null] }}`, MessageKeys, `{"b":1,"a":[true,null]}`},
		{"array compact", `{"message":[ 1, "two" ]}`, MessageKeys, `[1,"two"]`},
		{"escaped string", `{"message":"café \"quoted\""}`, MessageKeys, `café "quoted"`},
		{"keys are case-sensitive", `{"SOURCE":"x"}`, SourceKeys, ""},
	}
	var p fastjson.Parser
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFrame(t, &p, tt.line)
			if got := f.Field(tt.keys...); got != tt.want {
				t.Errorf("Field(%v) = %q, want %q", tt.keys, got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	var p fastjson.Parser

	f := mustFrame(t, &p, `{"type":"chat","data":{"source":"YouTube","author":"a","message":"m"}}`).Unwrap()
	if got := f.Field(SourceKeys...); got != "YouTube" {
		t.Errorf("unwrapped source = %q, want YouTube", got)
	}

	plain := mustFrame(t, &p, `{"source":"twitch","data":{"source":"inner"}}`)
	if got := plain.Unwrap().Field(SourceKeys...); got != "twitch" {
		t.Errorf("frame without type should not unwrap, got source %q", got)
	}

	scalar := mustFrame(t, &p, `{"type":"ping","data":"x","source":"twitch"}`)
	if got := scalar.Unwrap().Field(SourceKeys...); got != "twitch" {
		t.Errorf("non-object data should not unwrap, got source %q", got)
	}
}
