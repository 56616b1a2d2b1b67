package calchart

// PrintContinuity is the free-text continuity description shown on a
// printed stuntsheet — distinct from the machine-evaluated Continuity
// attached per-symbol. Printing itself is out of scope (spec.md §1); the
// core only carries the two strings through encode/decode.
type PrintContinuity struct {
	Number string
	Body   string
}
