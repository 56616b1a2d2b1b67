package calchart

// VersionMismatchHandler is consulted when a file declares a modern-dialect
// version newer than CurrentMajorVersion/CurrentMinorVersion. Returning
// true means "proceed" (attempt to parse with the current schema anyway);
// false means "abort" (decode fails with ErrDecodeUnknownVersion).
//
// A nil handler always aborts, which is the non-interactive default (spec.md
// §9: "implementers may pass no-op structs when non-interactive").
type VersionMismatchHandler func(major, minor int) (proceed bool)

// ContinuityCorrectionHandler is consulted by ParseContinuityText (and
// Continuity.EnsureParsed) when legacy continuity text fails to parse. Its
// parameters are a sheet index, a symbol, the original source text, and a
// diagnostic message; ParseContinuityText has no sheet or symbol context and
// always passes sheet index 0 and SymbolPlain. It may return replacement
// text to retry parsing with. A nil handler, or one that returns ("",
// false), leaves the parse failure as a ContinuitySyntax error.
type ContinuityCorrectionHandler func(sheetIndex int, symbol SymbolKind, original, diagnostic string) (replacement string, ok bool)

// DecodeOptions bundles the optional recovery callbacks spec.md §6 calls
// the "Parse-error handler surface". Decode consults OnVersionMismatch only;
// it does not parse continuity text, so OnContinuityError is not called
// during Decode.
type DecodeOptions struct {
	OnVersionMismatch VersionMismatchHandler
	OnContinuityError ContinuityCorrectionHandler
}
