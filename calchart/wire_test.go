package calchart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalarRoundTrip(t *testing.T) {
	w := NewWriter()
	Append(w, uint8(0xAB))
	Append(w, uint16(0x1234))
	Append(w, uint32(0xDEADBEEF))
	Append(w, int16(-1))
	Append(w, float32(3.5))

	r := NewReader(w.Bytes())
	u8, err := Get[uint8](r)
	require.NoError(t, err)
	require.Equal(t, uint8(0xAB), u8)

	u16, err := Get[uint16](r)
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), u16)

	u32, err := Get[uint32](r)
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), u32)

	i16, err := Get[int16](r)
	require.NoError(t, err)
	require.Equal(t, int16(-1), i16)

	f32, err := Get[float32](r)
	require.NoError(t, err)
	require.Equal(t, float32(3.5), f32)

	require.Equal(t, 0, r.Len())
}

func TestPeekDoesNotAdvance(t *testing.T) {
	w := NewWriter()
	Append(w, uint32(42))
	r := NewReader(w.Bytes())

	v1, err := Peek[uint32](r)
	require.NoError(t, err)
	require.Equal(t, uint32(42), v1)
	require.Equal(t, 4, r.Len())

	v2, err := Get[uint32](r)
	require.NoError(t, err)
	require.Equal(t, v1, v2)
	require.Equal(t, 0, r.Len())
}

func TestGetTruncated(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	_, err := Get[uint32](r)
	require.Error(t, err)
	require.True(t, Is(err, ErrDecodeTruncated))
}

func TestGetVecRoundTrip(t *testing.T) {
	w := NewWriter()
	AppendVec(w, []uint16{10, 20, 30})
	r := NewReader(w.Bytes())
	got, err := GetVec[uint16](r)
	require.NoError(t, err)
	require.Equal(t, []uint16{10, 20, 30}, got)
}

func TestNullTerminatedString(t *testing.T) {
	w := NewWriter()
	w.AppendNullTerminatedString("hello")
	w.AppendNullTerminatedString("")
	r := NewReader(w.Bytes())
	s1, err := r.GetString()
	require.NoError(t, err)
	require.Equal(t, "hello", s1)
	s2, err := r.GetString()
	require.NoError(t, err)
	require.Equal(t, "", s2)
}

func TestGetStringNoNulFails(t *testing.T) {
	r := NewReader([]byte("no nul here"))
	_, err := r.GetString()
	require.Error(t, err)
	require.True(t, Is(err, ErrDecodeTruncated))
}

func TestFirstAndSubspan(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4, 5})
	first, err := r.First(2)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, first.Remaining())
	require.Equal(t, 3, r.Len())

	rest := NewReader([]byte{1, 2, 3, 4, 5})
	sub, err := rest.Subspan(2)
	require.NoError(t, err)
	require.Equal(t, []byte{3, 4, 5}, sub.Remaining())
	require.Equal(t, 5, rest.Len())
}
