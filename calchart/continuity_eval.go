package calchart

import (
	"math"

	"github.com/golang/glog"
)

// evenMarchStepCoordUnits is how many coord-units a single march step covers
// in EvenMarch, FountainMarch and ExpandedMarch (at Expansion 1.0), one beat
// per step.
const evenMarchStepCoordUnits = 4.0

// EvalContext is the fixed per-marcher, per-sheet input to Evaluate: which
// marcher on which sheet of which show, and the variable bank ('A'..'Z')
// that carries forward from one sheet's continuity to the next for this
// same marcher.
type EvalContext struct {
	Show         *Show
	SheetIndex   int
	MarcherIndex int
	Vars         map[byte]float64
}

// Evaluate runs procs against ctx, producing the marcher's Command stream
// for this sheet. It enforces the per-sheet beat-budget invariant: a short
// program is padded with a trailing mark-time, a long one is truncated and
// flagged with ErrBudgetOverrun. Errors are collected rather than aborting
// the walk, so a marcher that fails partway still gets a best-effort
// command stream for the remaining beats.
func Evaluate(ctx EvalContext, procs []Procedure) ([]Command, []error) {
	if ctx.Vars == nil {
		ctx.Vars = make(map[byte]float64)
	}
	sheet := ctx.Show.Sheets[ctx.SheetIndex]
	cur := sheet.Marchers[ctx.MarcherIndex]

	var next Marcher
	haveNext := ctx.SheetIndex+1 < len(ctx.Show.Sheets)
	if haveNext {
		next = ctx.Show.Sheets[ctx.SheetIndex+1].Marchers[ctx.MarcherIndex]
	}

	var commands []Command
	var errs []error
	pos := cur.Position
	var facing Degree
	var totalBeats uint32

	for _, proc := range procs {
		if proc.Kind == ProcSet {
			v, err := resolveNumber(proc.VarValue, ctx.Vars)
			if err != nil {
				errs = append(errs, wrapErr(err, "marcher %d sheet %d", ctx.MarcherIndex, ctx.SheetIndex))
				continue
			}
			ctx.Vars[proc.Variable] = v
			continue
		}
		cmds, err := evalProcedure(proc, pos, facing, cur, next, haveNext, ctx.Vars)
		if err != nil {
			errs = append(errs, wrapErr(err, "marcher %d sheet %d", ctx.MarcherIndex, ctx.SheetIndex))
			continue
		}
		for _, c := range cmds {
			commands = append(commands, c)
			totalBeats += c.NumBeats()
			pos = c.End()
			facing = c.FacingAtBeat(c.NumBeats())
		}
	}

	budget := sheet.Beats
	switch {
	case totalBeats < budget:
		pad := budget - totalBeats
		glog.Warningf("marcher %d sheet %d: continuity produced %d of %d beats, padding with %d-beat mark-time",
			ctx.MarcherIndex, ctx.SheetIndex, totalBeats, budget, pad)
		commands = append(commands, Still{Start: pos, Beats: pad, Style: StepStyleMarkTime, Facing: facing})
	case totalBeats > budget:
		errs = append(errs, newErr(ErrBudgetOverrun, "marcher %d sheet %d: continuity produced %d beats, sheet budget is %d",
			ctx.MarcherIndex, ctx.SheetIndex, totalBeats, budget))
		commands = truncateToBeats(commands, budget)
	}

	return commands, errs
}

// truncateToBeats drops or clips trailing commands so the stream sums to
// exactly beats.
func truncateToBeats(commands []Command, beats uint32) []Command {
	var out []Command
	var used uint32
	for _, c := range commands {
		remaining := beats - used
		if remaining == 0 {
			break
		}
		if c.NumBeats() <= remaining {
			out = append(out, c)
			used += c.NumBeats()
			continue
		}
		out = append(out, clipCommand(c, remaining))
		used += remaining
		break
	}
	return out
}

// clipCommand returns c shortened to beats, preserving its start and its
// trajectory up to that point (so a clipped Move ends where the original
// would have been at that beat, not where it was originally headed).
func clipCommand(c Command, beats uint32) Command {
	switch v := c.(type) {
	case Still:
		v.Beats = beats
		return v
	case Move:
		v.Movement = v.PositionAtBeat(beats).Sub(v.Start)
		v.Beats = beats
		return v
	case Rotate:
		v.AngEnd = v.angleAtBeat(beats)
		v.Beats = beats
		return v
	default:
		return c
	}
}

func resolveNumber(v Value, vars map[byte]float64) (float64, error) {
	switch v.Kind {
	case ValNumber:
		return v.Number, nil
	case ValVariable:
		return vars[v.Variable], nil
	default:
		return 0, newErr(ErrContinuitySyntax, "expected a number argument, got a %v value", v.Kind)
	}
}

func resolveDirection(v Value, vars map[byte]float64) (Degree, error) {
	switch v.Kind {
	case ValDirection:
		return v.Direction, nil
	case ValVariable:
		return Degree(vars[v.Variable]).Normalize(), nil
	default:
		return 0, newErr(ErrContinuitySyntax, "expected a direction argument, got a %v value", v.Kind)
	}
}

// resolvePoint resolves a ValPoint Value against the marcher's current-sheet
// or following-sheet reference positions. When NextSheet is requested but
// there is no following sheet (the marcher's last sheet), it falls back to
// the current sheet's reference position rather than erroring, so a
// continuity authored to look ahead still evaluates on a show's final sheet.
func resolvePoint(v Value, cur, next Marcher, haveNext bool) (Coord, error) {
	if v.Kind != ValPoint {
		return Coord{}, newErr(ErrContinuitySyntax, "expected a point argument, got a %v value", v.Kind)
	}
	m := cur
	if v.NextSheet && haveNext {
		m = next
	}
	return m.RefPosition(v.RefIndex)
}

// directionVector returns the unit displacement for facing d, using the
// same north-is-up/clockwise convention as Coord.DirectionTo.
func directionVector(d Degree) (dx, dy float64) {
	rad := float64(d) * math.Pi / 180
	return math.Sin(rad), -math.Cos(rad)
}

func vectorScale(d Degree, dist float64) Coord {
	dx, dy := directionVector(d)
	return Coord{X: int16(dx * dist), Y: int16(dy * dist)}
}

func roundToStep(v int16) int16 {
	f := float64(v) / StepsPerCoordUnit
	return int16(math.Round(f) * StepsPerCoordUnit)
}

// evalProcedure evaluates a single non-Set Procedure starting at pos/facing,
// returning the Command(s) it produces.
func evalProcedure(proc Procedure, pos Coord, facing Degree, cur, next Marcher, haveNext bool, vars map[byte]float64) ([]Command, error) {
	switch proc.Kind {
	case ProcMarkTime:
		beats, err := resolveNumber(proc.Beats, vars)
		if err != nil {
			return nil, err
		}
		dir, err := resolveDirection(proc.Direction, vars)
		if err != nil {
			return nil, err
		}
		return []Command{Still{Start: pos, Beats: uint32(beats), Style: StepStyleMarkTime, Facing: dir}}, nil

	case ProcClose:
		beats, err := resolveNumber(proc.Beats, vars)
		if err != nil {
			return nil, err
		}
		pt, err := resolvePoint(proc.Point, cur, next, haveNext)
		if err != nil {
			return nil, err
		}
		return []Command{Move{Start: pos, Beats: uint32(beats), Movement: pt.Sub(pos), Facing: pos.DirectionTo(pt), Style: StepStyleClose}}, nil

	case ProcEvenMarch:
		steps, err := resolveNumber(proc.Steps, vars)
		if err != nil {
			return nil, err
		}
		dir, err := resolveDirection(proc.Direction, vars)
		if err != nil {
			return nil, err
		}
		movement := vectorScale(dir, steps*evenMarchStepCoordUnits)
		return []Command{Move{Start: pos, Beats: uint32(steps), Movement: movement, Facing: dir, Style: StepStyleMarkTime}}, nil

	case ProcFountainMarch:
		sx, err := resolveNumber(proc.StepsX, vars)
		if err != nil {
			return nil, err
		}
		dx, err := resolveDirection(proc.DirectionX, vars)
		if err != nil {
			return nil, err
		}
		sy, err := resolveNumber(proc.StepsY, vars)
		if err != nil {
			return nil, err
		}
		dy, err := resolveDirection(proc.DirectionY, vars)
		if err != nil {
			return nil, err
		}
		leg1 := Move{Start: pos, Beats: uint32(sx), Movement: vectorScale(dx, sx*evenMarchStepCoordUnits), Facing: dx, Style: StepStyleMarkTime}
		leg2 := Move{Start: leg1.End(), Beats: uint32(sy), Movement: vectorScale(dy, sy*evenMarchStepCoordUnits), Facing: dy, Style: StepStyleMarkTime}
		return []Command{leg1, leg2}, nil

	case ProcCountermarch:
		pt, err := resolvePoint(proc.Point, cur, next, haveNext)
		if err != nil {
			return nil, err
		}
		totalBeats, err := resolveNumber(proc.Beats, vars)
		if err != nil {
			return nil, err
		}
		dir, err := resolveDirection(proc.Direction, vars)
		if err != nil {
			return nil, err
		}
		totalBeatsU := uint32(totalBeats)
		travelBeats := uint32(math.Ceil(pos.Distance(pt) / evenMarchStepCoordUnits))
		if travelBeats > totalBeatsU {
			travelBeats = totalBeatsU
		}
		move := Move{Start: pos, Beats: travelBeats, Movement: pt.Sub(pos), Facing: pos.DirectionTo(pt), Style: StepStyleMarkTime}
		still := Still{Start: pt, Beats: totalBeatsU - travelBeats, Style: StepStyleMarkTime, Facing: dir}
		return []Command{move, still}, nil

	case ProcFlowTo:
		pt, err := resolvePoint(proc.Point, cur, next, haveNext)
		if err != nil {
			return nil, err
		}
		beats, err := resolveNumber(proc.Beats, vars)
		if err != nil {
			return nil, err
		}
		return []Command{Move{Start: pos, Beats: uint32(beats), Movement: pt.Sub(pos), Facing: pos.DirectionTo(pt), Style: StepStyleMarkTime}}, nil

	case ProcMagicMove:
		pt, err := resolvePoint(proc.Point, cur, next, haveNext)
		if err != nil {
			return nil, err
		}
		beats, err := resolveNumber(proc.Beats, vars)
		if err != nil {
			return nil, err
		}
		return []Command{Move{Start: pos, Beats: uint32(beats), Movement: pt.Sub(pos), Facing: pos.DirectionTo(pt), Style: StepStyleStandAndPlay}}, nil

	case ProcExpandedMarch:
		steps, err := resolveNumber(proc.Steps, vars)
		if err != nil {
			return nil, err
		}
		dir, err := resolveDirection(proc.Direction, vars)
		if err != nil {
			return nil, err
		}
		exp, err := resolveNumber(proc.Expansion, vars)
		if err != nil {
			return nil, err
		}
		movement := vectorScale(dir, steps*evenMarchStepCoordUnits*exp)
		return []Command{Move{Start: pos, Beats: uint32(steps), Movement: movement, Facing: dir, Style: StepStyleMarkTime}}, nil

	case ProcGridSnap:
		snapped := Coord{X: roundToStep(pos.X), Y: roundToStep(pos.Y)}
		return []Command{Move{Start: pos, Beats: 0, Movement: snapped.Sub(pos), Facing: facing, Style: StepStyleMarkTime}}, nil

	case ProcDiagonalMilitary:
		pt, err := resolvePoint(proc.Point, cur, next, haveNext)
		if err != nil {
			return nil, err
		}
		beats, err := resolveNumber(proc.Beats, vars)
		if err != nil {
			return nil, err
		}
		dir, err := resolveDirection(proc.Direction, vars)
		if err != nil {
			return nil, err
		}
		return []Command{Move{Start: pos, Beats: uint32(beats), Movement: pt.Sub(pos), Facing: dir, Style: StepStyleMarkTime}}, nil

	default:
		return nil, newErr(ErrContinuitySyntax, "unhandled procedure kind %v", proc.Kind)
	}
}
