package command

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/loganszeto/respkv/internal/resp"
)

// ErrProtocol marks every malformed-request condition detected during
// parsing: wrong top-level shape, wrong frame type for a field, missing or
// trailing arguments. Callers convert it into an error response for the
// client; it never aborts the connection by itself.
var ErrProtocol = errors.New("protocol error")

// errEndOfFrame reports that the cursor has consumed every element. It is a
// ProtocolError subkind, but kept distinct so parsers with optional trailing
// arguments can tell "nothing left" apart from "wrong thing left".
var errEndOfFrame = fmt.Errorf("%w: unexpected end of frame", ErrProtocol)

// Parse is a one-shot forward cursor over the elements of an array frame.
// It is owned by a single request for its entire lifetime and never reused.
type Parse struct {
	frames []resp.Frame
	pos    int
}

// NewParse wraps an array frame. Any other frame shape is not a command
// request at all and fails immediately.
func NewParse(f resp.Frame) (*Parse, error) {
	if f.Type != resp.TypeArray {
		return nil, fmt.Errorf("%w: expected array frame, got %s", ErrProtocol, f.TypeName())
	}
	return &Parse{frames: f.Array}, nil
}

// NextFrame returns the next unconsumed element and advances the cursor.
func (p *Parse) NextFrame() (resp.Frame, error) {
	if p.pos >= len(p.frames) {
		return resp.Frame{}, errEndOfFrame
	}
	f := p.frames[p.pos]
	p.pos++
	return f, nil
}

// NextString reads the next element as text. Command names and string
// arguments arrive as bulk or simple strings.
func (p *Parse) NextString() (string, error) {
	f, err := p.NextFrame()
	if err != nil {
		return "", err
	}
	switch f.Type {
	case resp.TypeBulkString:
		return string(f.Bulk), nil
	case resp.TypeSimpleString:
		return f.Str, nil
	default:
		return "", fmt.Errorf("%w: expected string frame, got %s", ErrProtocol, f.TypeName())
	}
}

// NextBytes reads the next element preserving raw bytes, for binary-safe
// values.
func (p *Parse) NextBytes() ([]byte, error) {
	f, err := p.NextFrame()
	if err != nil {
		return nil, err
	}
	switch f.Type {
	case resp.TypeBulkString:
		return f.Bulk, nil
	case resp.TypeSimpleString:
		return []byte(f.Str), nil
	default:
		return nil, fmt.Errorf("%w: expected string frame, got %s", ErrProtocol, f.TypeName())
	}
}

// NextInt reads the next element as a signed 64-bit integer. Integer frames
// are taken directly; string frames are parsed, so clients that send every
// argument as a bulk string still work.
func (p *Parse) NextInt() (int64, error) {
	f, err := p.NextFrame()
	if err != nil {
		return 0, err
	}
	switch f.Type {
	case resp.TypeInteger:
		return f.Int, nil
	case resp.TypeBulkString, resp.TypeSimpleString:
		s := f.Str
		if f.Type == resp.TypeBulkString {
			s = string(f.Bulk)
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid integer %q", ErrProtocol, s)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: expected integer frame, got %s", ErrProtocol, f.TypeName())
	}
}

// Finish succeeds only if every element has been consumed. A recognized
// command that leaves elements behind was given too many arguments.
func (p *Parse) Finish() error {
	if p.pos < len(p.frames) {
		return fmt.Errorf("%w: %d trailing elements", ErrProtocol, len(p.frames)-p.pos)
	}
	return nil
}
