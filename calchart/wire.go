package calchart

import (
	"math"

	"golang.org/x/exp/constraints"
)

// scalar is the closed set of fixed-width wire types the Reader/Writer know
// how to codec.
type scalar interface {
	constraints.Integer | ~float32
}

// sizeOf returns the wire width in bytes of a scalar type, selected by a
// zero value of T.
func sizeOf[T scalar]() int {
	var v T
	switch any(v).(type) {
	case uint8, int8:
		return 1
	case uint16, int16:
		return 2
	case uint32, int32, float32:
		return 4
	case uint64, int64:
		return 8
	default:
		return 0
	}
}

// Reader walks an immutable byte span with a read cursor. It never mutates
// the underlying slice; First/Subspan return new Readers over sub-slices so
// callers can fan out without copying.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for reading. The Reader does not take ownership of
// data in the sense of mutating it, but callers should not mutate data while
// a Reader is in use.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int { return len(r.data) - r.pos }

// Peek reads a scalar without advancing the cursor.
func Peek[T scalar](r *Reader) (T, error) {
	var zero T
	n := sizeOf[T]()
	if r.Len() < n {
		return zero, newErr(ErrDecodeTruncated, "peek: need %d bytes, have %d", n, r.Len())
	}
	return decodeScalar[T](r.data[r.pos : r.pos+n]), nil
}

// Get reads a scalar and advances the cursor by sizeof(T).
func Get[T scalar](r *Reader) (T, error) {
	v, err := Peek[T](r)
	if err != nil {
		return v, err
	}
	r.pos += sizeOf[T]()
	return v, nil
}

// GetByte reads a single byte, a convenience over Get[byte] used throughout
// the show decoder for length/flag bytes.
func (r *Reader) GetByte() (byte, error) {
	return Get[byte](r)
}

// GetVec reads a BE uint32 length prefix followed by that many T values.
func GetVec[T scalar](r *Reader) ([]T, error) {
	n, err := Get[uint32](r)
	if err != nil {
		return nil, wrapErr(err, "get_vec: length prefix")
	}
	width := sizeOf[T]()
	if r.Len() < int(n)*width {
		return nil, newErr(ErrDecodeTruncated, "get_vec: need %d bytes, have %d", int(n)*width, r.Len())
	}
	out := make([]T, n)
	for i := range out {
		v, err := Get[T](r)
		if err != nil {
			return nil, wrapErr(err, "get_vec: element %d", i)
		}
		out[i] = v
	}
	return out, nil
}

// GetString reads a NUL-terminated byte string, stopping at (and consuming)
// the first 0x00. It returns an error if no NUL is found before the end of
// the span.
func (r *Reader) GetString() (string, error) {
	idx := -1
	for i := r.pos; i < len(r.data); i++ {
		if r.data[i] == 0 {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", newErr(ErrDecodeTruncated, "get_string: no NUL before end of span")
	}
	s := string(r.data[r.pos:idx])
	r.pos = idx + 1
	return s, nil
}

// First returns a sub-reader over the first n bytes and advances this
// reader's cursor past them.
func (r *Reader) First(n int) (*Reader, error) {
	if r.Len() < n {
		return nil, newErr(ErrDecodeTruncated, "first(%d): have %d", n, r.Len())
	}
	sub := NewReader(r.data[r.pos : r.pos+n])
	r.pos += n
	return sub, nil
}

// Subspan returns a reader over the bytes remaining after skipping n bytes,
// without consuming them from this reader.
func (r *Reader) Subspan(n int) (*Reader, error) {
	if r.Len() < n {
		return nil, newErr(ErrDecodeTruncated, "subspan(%d): have %d", n, r.Len())
	}
	return NewReader(r.data[r.pos+n:]), nil
}

// Remaining returns the unread tail of the span without advancing.
func (r *Reader) Remaining() []byte {
	return r.data[r.pos:]
}

func decodeScalar[T scalar](b []byte) T {
	var v T
	switch p := any(&v).(type) {
	case *uint8:
		*p = b[0]
	case *int8:
		*p = int8(b[0])
	case *uint16:
		*p = uint16(b[0])<<8 | uint16(b[1])
	case *int16:
		*p = int16(uint16(b[0])<<8 | uint16(b[1]))
	case *uint32:
		*p = uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	case *int32:
		*p = int32(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
	case *uint64:
		var u uint64
		for i := 0; i < 8; i++ {
			u = u<<8 | uint64(b[i])
		}
		*p = u
	case *int64:
		var u uint64
		for i := 0; i < 8; i++ {
			u = u<<8 | uint64(b[i])
		}
		*p = int64(u)
	case *float32:
		bits := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
		*p = math.Float32frombits(bits)
	}
	return v
}

func encodeScalar[T scalar](v T) []byte {
	n := sizeOf[T]()
	b := make([]byte, n)
	switch x := any(v).(type) {
	case uint8:
		b[0] = x
	case int8:
		b[0] = byte(x)
	case uint16:
		b[0], b[1] = byte(x>>8), byte(x)
	case int16:
		u := uint16(x)
		b[0], b[1] = byte(u>>8), byte(u)
	case uint32:
		b[0], b[1], b[2], b[3] = byte(x>>24), byte(x>>16), byte(x>>8), byte(x)
	case int32:
		u := uint32(x)
		b[0], b[1], b[2], b[3] = byte(u>>24), byte(u>>16), byte(u>>8), byte(u)
	case uint64:
		for i := 0; i < 8; i++ {
			b[7-i] = byte(x >> (8 * i))
		}
	case int64:
		u := uint64(x)
		for i := 0; i < 8; i++ {
			b[7-i] = byte(u >> (8 * i))
		}
	case float32:
		u := math.Float32bits(x)
		b[0], b[1], b[2], b[3] = byte(u>>24), byte(u>>16), byte(u>>8), byte(u)
	}
	return b
}

// Writer is an append-only byte sink.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated output.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Append writes a scalar in big-endian order.
func Append[T scalar](w *Writer, v T) {
	w.buf = append(w.buf, encodeScalar(v)...)
}

// AppendBytes appends raw bytes verbatim.
func (w *Writer) AppendBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// AppendVec writes a BE uint32 length prefix followed by each element.
func AppendVec[T scalar](w *Writer, vs []T) {
	Append(w, uint32(len(vs)))
	for _, v := range vs {
		Append(w, v)
	}
}

// AppendNullTerminatedString appends s followed by a single 0x00 byte.
func (w *Writer) AppendNullTerminatedString(s string) {
	w.buf = append(w.buf, []byte(s)...)
	w.buf = append(w.buf, 0)
}
