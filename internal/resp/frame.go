package resp

import "fmt"

// FrameType is the RESP type byte identifying a frame variant.
type FrameType byte

const (
	TypeSimpleString FrameType = '+'
	TypeError        FrameType = '-'
	TypeInteger      FrameType = ':'
	TypeBulkString   FrameType = '$'
	TypeArray        FrameType = '*'
	// TypeNull is the RESP2 null, encoded on the wire as "$-1\r\n".
	TypeNull FrameType = '0'
)

// Frame is one decoded protocol value. Exactly one payload field is
// meaningful, selected by Type.
type Frame struct {
	Type  FrameType
	Str   string
	Int   int64
	Bulk  []byte
	Array []Frame
}

func Simple(s string) Frame {
	return Frame{Type: TypeSimpleString, Str: s}
}

func Err(msg string) Frame {
	return Frame{Type: TypeError, Str: msg}
}

func Integer(n int64) Frame {
	return Frame{Type: TypeInteger, Int: n}
}

func Bulk(b []byte) Frame {
	return Frame{Type: TypeBulkString, Bulk: b}
}

func BulkString(s string) Frame {
	return Frame{Type: TypeBulkString, Bulk: []byte(s)}
}

func Null() Frame {
	return Frame{Type: TypeNull}
}

func Array(elems ...Frame) Frame {
	return Frame{Type: TypeArray, Array: elems}
}

// TypeName returns a printable name for diagnostics and error messages.
func (f Frame) TypeName() string {
	switch f.Type {
	case TypeSimpleString:
		return "simple string"
	case TypeError:
		return "error"
	case TypeInteger:
		return "integer"
	case TypeBulkString:
		return "bulk string"
	case TypeArray:
		return "array"
	case TypeNull:
		return "null"
	default:
		return fmt.Sprintf("unknown(%q)", byte(f.Type))
	}
}

// Equal reports deep equality of two frames.
func Equal(a, b Frame) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeSimpleString, TypeError:
		return a.Str == b.Str
	case TypeInteger:
		return a.Int == b.Int
	case TypeBulkString:
		return string(a.Bulk) == string(b.Bulk)
	case TypeArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !Equal(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
