package calchart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func twoMarcherCollisionShow() *Show {
	sheet := NewSheet("1", 8, 2)
	sheet.Marchers[0] = NewMarcher(Coord{0, 0})
	sheet.Marchers[0].Symbol = SymbolPlain
	sheet.Marchers[1] = NewMarcher(Coord{32, 0})
	sheet.Marchers[1].Symbol = SymbolSol
	sheet.ContinuityBySymbol[SymbolPlain] = FromLegacyText("EM 8 E")
	sheet.ContinuityBySymbol[SymbolSol] = FromLegacyText("MT 8 E")
	return &Show{
		NumMarchers: 2,
		Labels: []LabelAndInstrument{
			{Label: "A", Instrument: DefaultInstrument},
			{Label: "B", Instrument: DefaultInstrument},
		},
		Sheets: []Sheet{sheet},
		Mode:   DefaultStandardMode(),
	}
}

func TestCompileAndSeekNoCollisionMidway(t *testing.T) {
	show := twoMarcherCollisionShow()
	anim, errs := Compile(show, DefaultConfig())
	require.Empty(t, errs)

	states, err := anim.Seek(0, 4)
	require.NoError(t, err)
	require.Equal(t, Coord{16, 0}, states[0].Position)
	require.Equal(t, Coord{32, 0}, states[1].Position)
	require.False(t, states[0].Colliding)
	require.False(t, states[1].Colliding)
}

func TestCompileAndSeekCollisionAtMerge(t *testing.T) {
	show := twoMarcherCollisionShow()
	anim, errs := Compile(show, DefaultConfig())
	require.Empty(t, errs)

	states, err := anim.Seek(0, 8)
	require.NoError(t, err)
	require.Equal(t, Coord{32, 0}, states[0].Position)
	require.Equal(t, Coord{32, 0}, states[1].Position)
	require.True(t, states[0].Colliding)
	require.True(t, states[1].Colliding)
}

func TestZeroBeatPivotTakesPositionFromPriorCommandAndFacingFromNext(t *testing.T) {
	cmds := []Command{
		Move{Start: Coord{0, 0}, Beats: 0, Movement: Coord{0, 0}, Facing: 90},
		Still{Start: Coord{0, 0}, Beats: 4, Facing: 0},
	}
	prefix := buildPrefix(cmds)
	pos, facing, style := resolveAtBeat(cmds, prefix, 0)
	require.Equal(t, Coord{0, 0}, pos)
	require.Equal(t, Degree(0), facing)
	require.Equal(t, StepStyleMarkTime, style)
}

func TestSeekClampsBeatToSheetLength(t *testing.T) {
	show := twoMarcherCollisionShow()
	anim, errs := Compile(show, DefaultConfig())
	require.Empty(t, errs)

	states, err := anim.Seek(0, 999)
	require.NoError(t, err)
	require.Equal(t, Coord{32, 0}, states[0].Position)
}

func TestSeekRejectsOutOfRangeSheet(t *testing.T) {
	show := twoMarcherCollisionShow()
	anim, _ := Compile(show, DefaultConfig())
	_, err := anim.Seek(5, 0)
	require.Error(t, err)
	require.True(t, Is(err, ErrRange))
}

func TestForwardAndBackwardTraversalAgree(t *testing.T) {
	show := twoMarcherCollisionShow()
	anim, errs := Compile(show, DefaultConfig())
	require.Empty(t, errs)

	beat0, err := anim.Seek(0, 0)
	require.NoError(t, err)
	var forwardToBeat8 []BeatState
	for i := 0; i < 8; i++ {
		forwardToBeat8, err = anim.NextBeat()
		require.NoError(t, err)
	}

	beat8, err := anim.Seek(0, 8)
	require.NoError(t, err)
	require.Equal(t, beat8, forwardToBeat8)

	var backwardToBeat0 []BeatState
	for i := 0; i < 8; i++ {
		backwardToBeat0, err = anim.PrevBeat()
		require.NoError(t, err)
	}
	require.Equal(t, beat0, backwardToBeat0)
}

func TestTotalBeatsSumsAllSheets(t *testing.T) {
	show := twoMarcherCollisionShow()
	show.Sheets = append(show.Sheets, show.Sheets[0].Clone())
	anim, errs := Compile(show, DefaultConfig())
	require.Empty(t, errs)
	require.Equal(t, uint32(16), anim.TotalBeats())
}
