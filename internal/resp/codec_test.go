package resp

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func decode(t *testing.T, wire string) Frame {
	t.Helper()
	f, err := NewReader(strings.NewReader(wire)).ReadFrame()
	if err != nil {
		t.Fatalf("decode %q: %v", wire, err)
	}
	return f
}

func encode(t *testing.T, f Frame) string {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteFrame(f); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return buf.String()
}

func TestDecodeVariants(t *testing.T) {
	tests := []struct {
		name string
		wire string
		want Frame
	}{
		{name: "simple string", wire: "+OK\r\n", want: Simple("OK")},
		{name: "error", wire: "-ERR oops\r\n", want: Err("ERR oops")},
		{name: "integer", wire: ":-42\r\n", want: Integer(-42)},
		{name: "bulk string", wire: "$5\r\nhello\r\n", want: BulkString("hello")},
		{name: "empty bulk", wire: "$0\r\n\r\n", want: BulkString("")},
		{name: "null bulk", wire: "$-1\r\n", want: Null()},
		{name: "null array", wire: "*-1\r\n", want: Null()},
		{name: "empty array", wire: "*0\r\n", want: Array()},
		{
			name: "command array",
			wire: "*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n",
			want: Array(BulkString("GET"), BulkString("foo")),
		},
		{
			name: "nested array",
			wire: "*2\r\n:1\r\n*1\r\n+x\r\n",
			want: Array(Integer(1), Array(Simple("x"))),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decode(t, tt.wire)
			if !Equal(got, tt.want) {
				t.Fatalf("decoded %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	frames := []Frame{
		Simple("PONG"),
		Err("ERR unknown command 'frobnicate'"),
		Integer(1234567890),
		Bulk([]byte{0x00, '\r', '\n', 0xff}),
		Null(),
		Array(BulkString("SET"), BulkString("k"), Bulk([]byte("v")), BulkString("EX"), Integer(10)),
	}
	for _, f := range frames {
		wire := encode(t, f)
		got := decode(t, wire)
		if !Equal(got, f) {
			t.Fatalf("round trip of %s: got %v, want %v", f.TypeName(), got, f)
		}
	}
}

func TestNullEncodesAsNullBulk(t *testing.T) {
	if got := encode(t, Null()); got != "$-1\r\n" {
		t.Fatalf("expected $-1, got %q", got)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		wire string
	}{
		{name: "unknown type byte", wire: "?3\r\nabc\r\n"},
		{name: "bulk missing terminator", wire: "$3\r\nabcXY"},
		{name: "bulk bad length", wire: "$abc\r\n"},
		{name: "bulk negative length", wire: "$-2\r\n"},
		{name: "oversized bulk", wire: "$1048577\r\n"},
		{name: "oversized array", wire: "*1048577\r\n"},
		{name: "line missing cr", wire: "+OK\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tt.wire)).ReadFrame()
			if !errors.Is(err, ErrMalformedFrame) {
				t.Fatalf("expected malformed frame error, got %v", err)
			}
		})
	}
}

func TestDecodeTruncatedStream(t *testing.T) {
	for _, wire := range []string{"", "$5\r\nhe", "*2\r\n$3\r\nGET\r\n"} {
		if _, err := NewReader(strings.NewReader(wire)).ReadFrame(); err == nil {
			t.Fatalf("decode %q: expected error on truncated input", wire)
		}
	}
}
