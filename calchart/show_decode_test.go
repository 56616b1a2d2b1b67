package calchart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// legacySheetSpec describes one SHET block for buildLegacyShow, using the
// 3.3-and-earlier parallel-array layout (spec.md §4.3 "Legacy 3.3-and-earlier
// dialect"): POS / REFP / SYMB / TYPE / LABL arrays instead of PNTS entries.
type legacySheetSpec struct {
	name       string
	beats      uint32
	positions  []Coord
	refs       [][numRefPositions]Coord // nil writes no REFP block; marchers past its length get no REFP entry
	symbols    []SymbolKind
	contIndex  []byte
	flips      []byte
}

// buildLegacyShow hand-assembles a literal GURK-carrier legacy show file,
// since this implementation has no legacy encoder to round-trip against.
func buildLegacyShow(t *testing.T, numMarchers int, labels []string, sheets []legacySheetSpec) []byte {
	t.Helper()

	sizeW := NewWriter()
	Append(sizeW, uint32(numMarchers))
	sizeBlock := ConstructBlock(tagSIZE, sizeW.Bytes())

	lablW := NewWriter()
	for _, l := range labels {
		lablW.AppendNullTerminatedString(l)
	}
	lablBlock := ConstructBlock(tagLABL, lablW.Bytes())

	showPayload := append([]byte{}, sizeBlock...)
	showPayload = append(showPayload, lablBlock...)

	for _, s := range sheets {
		nameW := NewWriter()
		nameW.AppendNullTerminatedString(s.name)
		nameBlock := ConstructBlock(tagNAME, nameW.Bytes())

		duraW := NewWriter()
		Append(duraW, s.beats)
		duraBlock := ConstructBlock(tagDURA, duraW.Bytes())

		posW := NewWriter()
		for _, p := range s.positions {
			Append(posW, p.X)
			Append(posW, p.Y)
		}
		posBlock := ConstructBlock(tagPOS, posW.Bytes())

		symbW := NewWriter()
		for _, sym := range s.symbols {
			Append(symbW, byte(sym))
		}
		symbBlock := ConstructBlock(tagSYMB, symbW.Bytes())

		typeW := NewWriter()
		for _, idx := range s.contIndex {
			Append(typeW, idx)
		}
		typeBlock := ConstructBlock(tagTYPE, typeW.Bytes())

		flipW := NewWriter()
		for _, f := range s.flips {
			Append(flipW, f)
		}
		flipBlock := ConstructBlock(tagLABL, flipW.Bytes())

		sheetPayload := append([]byte{}, nameBlock...)
		sheetPayload = append(sheetPayload, duraBlock...)
		sheetPayload = append(sheetPayload, posBlock...)
		sheetPayload = append(sheetPayload, symbBlock...)
		sheetPayload = append(sheetPayload, typeBlock...)
		sheetPayload = append(sheetPayload, flipBlock...)

		if s.refs != nil {
			refpW := NewWriter()
			for _, refs := range s.refs {
				for _, r := range refs {
					Append(refpW, r.X)
					Append(refpW, r.Y)
				}
			}
			sheetPayload = append(sheetPayload, ConstructBlock(tagREFP, refpW.Bytes())...)
		}

		showPayload = append(showPayload, ConstructBlock(tagSHET, sheetPayload)...)
	}

	showBlock := ConstructBlock(tagSHOW, showPayload)

	data := append([]byte{}, []byte("INGL")...)
	data = append(data, []byte("GURK")...)
	data = append(data, showBlock...)
	return data
}

func TestDecodeLegacyShow(t *testing.T) {
	refs := [numRefPositions]Coord{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}
	data := buildLegacyShow(t, 2, []string{"alice", "bob"}, []legacySheetSpec{
		{
			name:      "opener",
			beats:     8,
			positions: []Coord{{X: 10, Y: 20}, {X: -5, Y: 0}},
			refs:      [][numRefPositions]Coord{refs},
			symbols:   []SymbolKind{SymbolPlain, SymbolX},
			contIndex: []byte{0, 1},
			flips:     []byte{1, 0},
		},
	})

	show, err := Decode(data, DecodeOptions{})
	require.NoError(t, err)

	require.Equal(t, 2, show.NumMarchers)
	require.Equal(t, "alice", show.Labels[0].Label)
	require.Equal(t, "bob", show.Labels[1].Label)
	require.Equal(t, DefaultInstrument, show.Labels[0].Instrument)

	require.Len(t, show.Sheets, 1)
	sheet := show.Sheets[0]
	require.Equal(t, "opener", sheet.Name)
	require.Equal(t, uint32(8), sheet.Beats)
	require.Len(t, sheet.Marchers, 2)

	m0 := sheet.Marchers[0]
	require.Equal(t, Coord{X: 10, Y: 20}, m0.Position)
	require.Equal(t, SymbolPlain, m0.Symbol)
	require.True(t, m0.Flags.LabelFlipped)
	require.Equal(t, refs, m0.RefPositions)

	m1 := sheet.Marchers[1]
	require.Equal(t, Coord{X: -5, Y: 0}, m1.Position)
	require.Equal(t, SymbolX, m1.Symbol)
	require.False(t, m1.Flags.LabelFlipped)
	// No REFP entry for this marcher: RefPositions keep NewMarcher's
	// all-slots-at-primary-position default rather than {0,0}.
	require.Equal(t, [numRefPositions]Coord{m1.Position, m1.Position, m1.Position}, m1.RefPositions)

	require.Contains(t, sheet.ContinuityBySymbol, SymbolPlain)
	require.Contains(t, sheet.ContinuityBySymbol, SymbolX)
}

func TestDecodeLegacyShowContinuityInconsistency(t *testing.T) {
	data := buildLegacyShow(t, 2, []string{"alice", "bob"}, []legacySheetSpec{
		{
			name:      "opener",
			beats:     4,
			positions: []Coord{{X: 0, Y: 0}, {X: 1, Y: 1}},
			symbols:   []SymbolKind{SymbolPlain, SymbolPlain},
			contIndex: []byte{0, 1},
			flips:     []byte{0, 0},
		},
	})

	_, err := Decode(data, DecodeOptions{})
	require.Error(t, err)
	require.True(t, Is(err, ErrContinuityInconsistency))
}
