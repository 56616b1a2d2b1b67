package calchart

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestValueRoundTrip(t *testing.T) {
	cases := []Value{
		Num(4),
		Dir(90),
		Point(2),
		NextPoint(1),
		Var('Q'),
	}
	for _, v := range cases {
		w := NewWriter()
		encodeValue(w, v)
		got, err := decodeValue(NewReader(w.Bytes()))
		require.NoError(t, err)
		if diff := cmp.Diff(v, got); diff != "" {
			t.Errorf("value round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestDecodeValueUnknownKind(t *testing.T) {
	_, err := decodeValue(NewReader([]byte{0xFF}))
	require.Error(t, err)
	require.True(t, Is(err, ErrDecodeTagMismatch))
}

func TestProcedureRoundTrip(t *testing.T) {
	procs := []Procedure{
		{Kind: ProcMarkTime, Beats: Num(4), Direction: Dir(90)},
		{Kind: ProcClose, Beats: Num(2), Point: Point(0)},
		{Kind: ProcFountainMarch, StepsX: Num(4), DirectionX: Dir(90), StepsY: Num(2), DirectionY: Dir(180)},
		{Kind: ProcGridSnap},
		{Kind: ProcSet, Variable: 'A', VarValue: Num(7)},
	}
	encoded := EncodeProcedures(procs)
	decoded, err := DecodeProcedures(NewReader(encoded))
	require.NoError(t, err)
	if diff := cmp.Diff(procs, decoded); diff != "" {
		t.Errorf("procedure round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeProcedureUnknownKind(t *testing.T) {
	w := NewWriter()
	Append(w, byte(0xFE))
	_, err := decodeProcedure(NewReader(w.Bytes()))
	require.Error(t, err)
	require.True(t, Is(err, ErrDecodeTagMismatch))
}

func TestEncodeDecodeContinuityParsed(t *testing.T) {
	cont := FromProcedures([]Procedure{{Kind: ProcMarkTime, Beats: Num(4), Direction: Dir(90)}})
	encoded := EncodeContinuity(cont)

	labels := ParseOutLabels(NewReader(encoded))
	require.Len(t, labels, 1)
	require.Equal(t, tagCONT, labels[0].Tag)

	decoded, err := DecodeContinuity(NewReader(encoded))
	require.NoError(t, err)
	require.True(t, decoded.Parsed)
	require.Equal(t, cont.Procedures, decoded.Procedures)
}

func TestEncodeDecodeContinuityLegacyText(t *testing.T) {
	cont := FromLegacyText("MT 4 E")
	encoded := EncodeContinuity(cont)

	labels := ParseOutLabels(NewReader(encoded))
	require.Len(t, labels, 1)
	require.Equal(t, tagECNT, labels[0].Tag)

	decoded, err := DecodeContinuity(NewReader(encoded))
	require.NoError(t, err)
	require.False(t, decoded.Parsed)
	require.Equal(t, "MT 4 E", decoded.Text)
}

func TestEncodeDecodeEVCTRoundTrip(t *testing.T) {
	cont := FromProcedures([]Procedure{{Kind: ProcEvenMarch, Steps: Num(8), Direction: Dir(90)}})
	block := EncodeEVCT(SymbolSol, cont)

	labels := ParseOutLabels(NewReader(block))
	require.Len(t, labels, 1)
	require.Equal(t, tagEVCT, labels[0].Tag)

	sym, decoded, err := DecodeEVCT(labels[0].Reader)
	require.NoError(t, err)
	require.Equal(t, SymbolSol, sym)
	require.Equal(t, cont.Procedures, decoded.Procedures)
}
