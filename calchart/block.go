package calchart

import (
	"github.com/golang/glog"
)

// Tag is a 4-byte ASCII block identifier, e.g. "SHOW" or "SHET". The zero
// value is not a valid tag.
type Tag [4]byte

func (t Tag) String() string { return string(t[:]) }

// tagEnd is the sentinel that closes every block's payload.
var tagEnd = newTag("END ")

func newTag(s string) Tag {
	var t Tag
	copy(t[:], s)
	return t
}

// Label pairs a block's tag with a Reader positioned at the start of its
// payload, as produced by ParseOutLabels.
type Label struct {
	Tag    Tag
	Reader *Reader
}

// ConstructBlock frames payload as tag || BE32(len(payload)) || payload ||
// "END " || tag, the format every SHOW/SHET/... block in the file uses.
func ConstructBlock(tag Tag, payload []byte) []byte {
	w := NewWriter()
	w.AppendBytes(tag[:])
	Append(w, uint32(len(payload)))
	w.AppendBytes(payload)
	w.AppendBytes(tagEnd[:])
	w.AppendBytes(tag[:])
	return w.Bytes()
}

// ParseOutLabels repeatedly reads (tag, size) header pairs from r and
// returns an ordered list of (tag, sub-reader-over-payload). It tolerates a
// truncated trailing block by returning everything parsed so far instead of
// erroring, per spec: "If fewer than size+8 bytes remain, return what was
// parsed (partial tolerance)."
func ParseOutLabels(r *Reader) []Label {
	var out []Label
	for {
		if r.Len() < 8 {
			return out
		}
		tagBytes, err := r.First(4)
		if err != nil {
			return out
		}
		var tag Tag
		copy(tag[:], tagBytes.Remaining())
		size, err := Get[uint32](r)
		if err != nil {
			return out
		}
		if r.Len() < int(size)+8 {
			return out
		}
		sub, err := r.First(int(size))
		if err != nil {
			return out
		}
		endTagBytes, err := r.First(4)
		if err != nil {
			return out
		}
		closeTagBytes, err := r.First(4)
		if err != nil {
			return out
		}
		var endTag, closeTag Tag
		copy(endTag[:], endTagBytes.Remaining())
		copy(closeTag[:], closeTagBytes.Remaining())
		if endTag != tagEnd || closeTag != tag {
			glog.V(1).Infof("block: END sentinel mismatch for tag %q, stopping", tag)
			return out
		}
		out = append(out, Label{Tag: tag, Reader: sub})
	}
}

// FindLabel returns the first label in labels matching tag, or false.
func FindLabel(labels []Label, tag Tag) (*Reader, bool) {
	for _, l := range labels {
		if l.Tag == tag {
			return l.Reader, true
		}
	}
	return nil, false
}

// logUnknownTags reports, at verbose level, any label whose tag is not in
// known — this is how forward-compatible skipping becomes observable without
// being treated as an error (spec: "unknown tags are silently ignored").
func logUnknownTags(context string, labels []Label, known map[Tag]bool) {
	for _, l := range labels {
		if !known[l.Tag] {
			glog.V(1).Infof("%s: skipping unknown block %q (%d bytes)", context, l.Tag, l.Reader.Len())
		}
	}
}
