package calchart

import (
	"sort"

	"github.com/golang/glog"
)

// SheetTimeline is the compiled form of one Sheet: every marcher's Command
// stream and its beat prefix-sum vector for O(log n) beat lookup
// (spec.md §4.5).
type SheetTimeline struct {
	Name     string
	Beats    uint32
	Commands [][]Command
	prefix   [][]uint32
}

func buildPrefix(cmds []Command) []uint32 {
	prefix := make([]uint32, len(cmds)+1)
	for i, c := range cmds {
		prefix[i+1] = prefix[i] + c.NumBeats()
	}
	return prefix
}

// CollisionPair is one pair of marcher indices (A < B) within collision
// radius of each other at a queried beat.
type CollisionPair struct {
	A, B int
}

// BeatState is one marcher's resolved state at a queried beat.
type BeatState struct {
	Position  Coord
	Facing    Degree
	Style     StepStyle
	Colliding bool
}

// Animation is the compiled, navigable timeline produced by Compile. It
// owns its own data independent of the source Show (spec.md §3:
// "Compilation produces a separate Animation that owns its timeline; the
// source Show is not modified").
type Animation struct {
	Config       Config
	NumMarchers  int
	Sheets       []SheetTimeline
	CurrentSheet int
	CurrentBeat  uint32
}

// Compile evaluates every marcher's continuity on every sheet of show,
// carrying each marcher's variable bank forward sheet-to-sheet, and
// returns the resulting Animation plus any continuity errors collected
// along the way. Compilation never aborts on the first error (spec.md
// §7): a marcher whose continuity fails still gets a best-effort command
// stream so the rest of the show remains animatable.
func Compile(show *Show, cfg Config) (*Animation, []*ContinuityError) {
	anim := &Animation{
		Config:      cfg,
		NumMarchers: show.NumMarchers,
		Sheets:      make([]SheetTimeline, len(show.Sheets)),
	}
	var allErrs []*ContinuityError

	vars := make([]map[byte]float64, show.NumMarchers)
	for i := range vars {
		vars[i] = make(map[byte]float64)
	}

	for si := range show.Sheets {
		sheet := &show.Sheets[si]
		tl := SheetTimeline{
			Name:     sheet.Name,
			Beats:    sheet.Beats,
			Commands: make([][]Command, show.NumMarchers),
			prefix:   make([][]uint32, show.NumMarchers),
		}
		for mi, m := range sheet.Marchers {
			var procs []Procedure
			if cont, ok := sheet.ContinuityBySymbol[m.Symbol]; ok {
				p, err := cont.EnsureParsed(nil)
				if err != nil {
					allErrs = append(allErrs, &ContinuityError{SheetIndex: si, MarcherIndex: mi, Symbol: m.Symbol, Err: err})
				} else {
					procs = p
				}
			}
			cmds, errs := Evaluate(EvalContext{Show: show, SheetIndex: si, MarcherIndex: mi, Vars: vars[mi]}, procs)
			for _, e := range errs {
				allErrs = append(allErrs, &ContinuityError{SheetIndex: si, MarcherIndex: mi, Symbol: m.Symbol, Err: e})
			}
			tl.Commands[mi] = cmds
			tl.prefix[mi] = buildPrefix(cmds)
		}
		anim.Sheets[si] = tl
		glog.Infof("compiled sheet %d (%q): %d marchers, %d beats", si, sheet.Name, show.NumMarchers, sheet.Beats)
	}
	return anim, allErrs
}

// resolveAtBeat finds the command active at beat g of the sheet within cmds and
// returns its resolved position, facing, and step style, applying the
// zero-beat pivot rule (spec.md §4.4/§4.5): landing exactly on a boundary
// whose preceding command is zero-beat takes position from that
// preceding command's end, but facing (and style) from the command that
// begins at g.
func resolveAtBeat(cmds []Command, prefix []uint32, g uint32) (Coord, Degree, StepStyle) {
	if len(cmds) == 0 {
		return Coord{}, 0, StepStyleMarkTime
	}
	idx := sort.Search(len(cmds), func(i int) bool { return prefix[i+1] > g })
	if idx == len(cmds) {
		idx = len(cmds) - 1
	}
	local := g - prefix[idx]
	if local == 0 && idx > 0 && cmds[idx-1].NumBeats() == 0 {
		return cmds[idx-1].End(), cmds[idx].FacingAtBeat(0), cmds[idx].StepStyle()
	}
	return cmds[idx].PositionAtBeat(local), cmds[idx].FacingAtBeat(local), cmds[idx].StepStyle()
}

func (a *Animation) collisionsAt(states []BeatState) []CollisionPair {
	var pairs []CollisionPair
	threshold := a.Config.CollisionRadiusCoordUnits * a.Config.CollisionRadiusCoordUnits
	for i := 0; i < len(states); i++ {
		for j := i + 1; j < len(states); j++ {
			if states[i].Position.ChebyshevDistSq(states[j].Position) <= threshold {
				pairs = append(pairs, CollisionPair{A: i, B: j})
			}
		}
	}
	return pairs
}

// Seek moves the timeline cursor to (sheetIndex, beat) and returns every
// marcher's resolved state there, including collision flags computed in
// O(M^2) over the marcher count (spec.md §4.5). beat is clamped to the
// sheet's beat count.
func (a *Animation) Seek(sheetIndex int, beat uint32) ([]BeatState, error) {
	if sheetIndex < 0 || sheetIndex >= len(a.Sheets) {
		return nil, newErr(ErrRange, "sheet index %d out of range (%d sheets)", sheetIndex, len(a.Sheets))
	}
	tl := a.Sheets[sheetIndex]
	if beat > tl.Beats {
		beat = tl.Beats
	}
	a.CurrentSheet = sheetIndex
	a.CurrentBeat = beat

	states := make([]BeatState, a.NumMarchers)
	for mi := 0; mi < a.NumMarchers; mi++ {
		pos, facing, style := resolveAtBeat(tl.Commands[mi], tl.prefix[mi], beat)
		states[mi] = BeatState{Position: pos, Facing: facing, Style: style}
	}
	for _, p := range a.collisionsAt(states) {
		states[p.A].Colliding = true
		states[p.B].Colliding = true
	}
	return states, nil
}

// NextBeat advances the cursor by one beat within the current sheet, or
// to beat 0 of the next sheet at a sheet boundary; on the final sheet's
// final beat it clamps in place (spec.md §4.5).
func (a *Animation) NextBeat() ([]BeatState, error) {
	sheet := a.Sheets[a.CurrentSheet]
	if a.CurrentBeat < sheet.Beats {
		return a.Seek(a.CurrentSheet, a.CurrentBeat+1)
	}
	if a.CurrentSheet+1 < len(a.Sheets) {
		return a.Seek(a.CurrentSheet+1, 0)
	}
	return a.Seek(a.CurrentSheet, a.CurrentBeat)
}

// PrevBeat is the symmetric inverse of NextBeat: stepping back over a
// sheet boundary lands on the previous sheet's final beat.
func (a *Animation) PrevBeat() ([]BeatState, error) {
	if a.CurrentBeat > 0 {
		return a.Seek(a.CurrentSheet, a.CurrentBeat-1)
	}
	if a.CurrentSheet > 0 {
		prev := a.Sheets[a.CurrentSheet-1]
		return a.Seek(a.CurrentSheet-1, prev.Beats)
	}
	return a.Seek(a.CurrentSheet, a.CurrentBeat)
}

// GotoSheet jumps the cursor to beat 0 of sheetIndex.
func (a *Animation) GotoSheet(sheetIndex int) ([]BeatState, error) {
	return a.Seek(sheetIndex, 0)
}

// TotalBeats returns the sum of every sheet's beat count, the length of
// the full concatenated timeline.
func (a *Animation) TotalBeats() uint32 {
	var total uint32
	for _, s := range a.Sheets {
		total += s.Beats
	}
	return total
}
