package calchart

// ImageInfo describes one background image placed on a sheet. The image
// bytes themselves are opaque to the core (spec.md §1 Non-goals: "image/
// background assets beyond their byte layout" are out of scope) — only the
// placement and the raw byte payload are modeled here.
type ImageInfo struct {
	Left, Top       int16
	ScaledWidth     int16
	ScaledHeight    int16
	Data            []byte
}
