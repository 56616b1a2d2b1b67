package calchart

// LabelAndInstrument pairs a marcher's display label (e.g. "1", "T3") with
// the instrument they carry. Both are positionally aligned with marcher
// indices across every sheet in the show (spec.md §3).
type LabelAndInstrument struct {
	Label      string
	Instrument string
}

// DefaultInstrument is the sentinel instrument name that causes the INST
// block to be omitted entirely on encode when every marcher carries it
// (spec.md §4.3 emit sequence).
const DefaultInstrument = "default"

// Show is the root of the drill document: marcher roster, description, the
// ordered sheets, the editor's current-sheet/selection cursor state, and
// field geometry.
type Show struct {
	NumMarchers  int
	Labels       []LabelAndInstrument
	Description  string
	Sheets       []Sheet
	CurrentSheet int
	Selection    map[int]bool
	Mode         ShowMode
}

// CreateNewOptions configures Show.CreateNew.
type CreateNewOptions struct {
	Mode    ShowMode
	Labels  []LabelAndInstrument
}

// CreateNew returns a fresh show with one blank sheet sized to the given
// mode and labels (spec.md §6: "Show::create_new ... Show (one blank
// sheet, sized)"). The sheet's marchers all use SymbolPlain, which gets an
// empty continuity so the show passes Validate.
func CreateNew(opts CreateNewOptions) *Show {
	n := len(opts.Labels)
	sheet := NewSheet("1", 0, n)
	if n > 0 {
		sheet.ContinuityBySymbol[SymbolPlain] = FromProcedures(nil)
	}
	return &Show{
		NumMarchers:  n,
		Labels:       append([]LabelAndInstrument(nil), opts.Labels...),
		Sheets:       []Sheet{sheet},
		CurrentSheet: 0,
		Selection:    make(map[int]bool),
		Mode:         opts.Mode,
	}
}

// Validate checks the show-level invariants from spec.md §3: every sheet's
// marcher count matches NumMarchers, and CurrentSheet is in range when
// sheets is non-empty.
func (s *Show) Validate() error {
	for i := range s.Sheets {
		if err := s.Sheets[i].Validate(s.NumMarchers); err != nil {
			return wrapErr(err, "sheet %d", i)
		}
	}
	if len(s.Sheets) > 0 && s.CurrentSheet >= len(s.Sheets) {
		return newErr(ErrRange, "current_sheet_index %d >= %d sheets", s.CurrentSheet, len(s.Sheets))
	}
	if len(s.Labels) != s.NumMarchers {
		return newErr(ErrRange, "%d labels, show declares %d marchers", len(s.Labels), s.NumMarchers)
	}
	return nil
}

// Clone returns a deep copy of the show (spec.md §3: "A Show exclusively
// owns its Sheets").
func (s *Show) Clone() *Show {
	out := *s
	out.Labels = append([]LabelAndInstrument(nil), s.Labels...)
	out.Sheets = make([]Sheet, len(s.Sheets))
	for i := range s.Sheets {
		out.Sheets[i] = s.Sheets[i].Clone()
	}
	out.Selection = make(map[int]bool, len(s.Selection))
	for k, v := range s.Selection {
		out.Selection[k] = v
	}
	return &out
}
