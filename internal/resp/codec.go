package resp

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

var terminator = []byte("\r\n")

const (
	// Decode guards. Oversized frames are rejected before allocation so a
	// hostile peer cannot make the server reserve arbitrary memory.
	maxBulkLen  = 1 << 20
	maxArrayLen = 1 << 16
)

var ErrMalformedFrame = errors.New("malformed frame")

// Reader decodes frames from an underlying stream.
type Reader struct {
	br *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &Reader{br: br}
	}
	return &Reader{br: bufio.NewReader(r)}
}

// ReadFrame decodes the next frame, recursing into arrays.
func (r *Reader) ReadFrame() (Frame, error) {
	typeByte, err := r.br.ReadByte()
	if err != nil {
		return Frame{}, err
	}

	switch FrameType(typeByte) {
	case TypeSimpleString:
		line, err := r.readLine()
		if err != nil {
			return Frame{}, err
		}
		return Simple(line), nil
	case TypeError:
		line, err := r.readLine()
		if err != nil {
			return Frame{}, err
		}
		return Err(line), nil
	case TypeInteger:
		n, err := r.readInt()
		if err != nil {
			return Frame{}, err
		}
		return Integer(n), nil
	case TypeBulkString:
		return r.readBulk()
	case TypeArray:
		return r.readArray()
	default:
		return Frame{}, errors.Wrapf(ErrMalformedFrame, "unknown frame type %q", typeByte)
	}
}

func (r *Reader) readBulk() (Frame, error) {
	n, err := r.readInt()
	if err != nil {
		return Frame{}, err
	}
	if n == -1 {
		return Null(), nil
	}
	if n < 0 || n > maxBulkLen {
		return Frame{}, errors.Wrapf(ErrMalformedFrame, "bulk length %d out of range", n)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return Frame{}, errors.Wrap(err, "failed to read bulk payload")
	}
	if err := r.expectTerminator(); err != nil {
		return Frame{}, err
	}
	return Bulk(buf), nil
}

func (r *Reader) readArray() (Frame, error) {
	n, err := r.readInt()
	if err != nil {
		return Frame{}, err
	}
	if n == -1 {
		return Null(), nil
	}
	if n < 0 || n > maxArrayLen {
		return Frame{}, errors.Wrapf(ErrMalformedFrame, "array length %d out of range", n)
	}

	elems := make([]Frame, 0, n)
	for i := int64(0); i < n; i++ {
		elem, err := r.ReadFrame()
		if err != nil {
			return Frame{}, err
		}
		elems = append(elems, elem)
	}
	return Frame{Type: TypeArray, Array: elems}, nil
}

func (r *Reader) readLine() (string, error) {
	line, err := r.br.ReadString('\n')
	if err != nil {
		return "", errors.Wrap(err, "failed to read line")
	}
	if len(line) < 2 || line[len(line)-2] != '\r' {
		return "", errors.Wrap(ErrMalformedFrame, "line missing CRLF terminator")
	}
	return line[:len(line)-2], nil
}

func (r *Reader) readInt() (int64, error) {
	line, err := r.readLine()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedFrame, "invalid length %q", line)
	}
	return n, nil
}

func (r *Reader) expectTerminator() error {
	term := make([]byte, len(terminator))
	if _, err := io.ReadFull(r.br, term); err != nil {
		return errors.Wrap(err, "failed to read terminator")
	}
	if !bytes.Equal(term, terminator) {
		return errors.Wrap(ErrMalformedFrame, "bulk payload missing CRLF terminator")
	}
	return nil
}

// Writer encodes frames onto an underlying stream. WriteFrame buffers;
// callers flush once per response.
type Writer struct {
	bw *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	if bw, ok := w.(*bufio.Writer); ok {
		return &Writer{bw: bw}
	}
	return &Writer{bw: bufio.NewWriter(w)}
}

func (w *Writer) WriteFrame(f Frame) error {
	switch f.Type {
	case TypeSimpleString:
		return w.writeLine(byte(TypeSimpleString), f.Str)
	case TypeError:
		return w.writeLine(byte(TypeError), f.Str)
	case TypeInteger:
		return w.writeLine(byte(TypeInteger), strconv.FormatInt(f.Int, 10))
	case TypeBulkString:
		if err := w.writeLine(byte(TypeBulkString), strconv.Itoa(len(f.Bulk))); err != nil {
			return err
		}
		if _, err := w.bw.Write(f.Bulk); err != nil {
			return err
		}
		_, err := w.bw.Write(terminator)
		return err
	case TypeNull:
		return w.writeLine(byte(TypeBulkString), "-1")
	case TypeArray:
		if err := w.writeLine(byte(TypeArray), strconv.Itoa(len(f.Array))); err != nil {
			return err
		}
		for _, elem := range f.Array {
			if err := w.WriteFrame(elem); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Wrapf(ErrMalformedFrame, "cannot encode frame type %q", byte(f.Type))
	}
}

func (w *Writer) Flush() error {
	return w.bw.Flush()
}

func (w *Writer) writeLine(typeByte byte, s string) error {
	if err := w.bw.WriteByte(typeByte); err != nil {
		return err
	}
	if _, err := w.bw.WriteString(s); err != nil {
		return err
	}
	_, err := w.bw.Write(terminator)
	return err
}
