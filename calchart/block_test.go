package calchart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstructBlockRoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	block := ConstructBlock(tagNAME, payload)

	r := NewReader(block)
	labels := ParseOutLabels(r)
	require.Len(t, labels, 1)
	require.Equal(t, tagNAME, labels[0].Tag)
	require.Equal(t, payload, labels[0].Reader.Remaining())
}

func TestParseOutLabelsMultiple(t *testing.T) {
	w := NewWriter()
	w.AppendBytes(ConstructBlock(tagNAME, []byte("sheet 1")))
	w.AppendBytes(ConstructBlock(tagDURA, []byte{0, 0, 0, 8}))

	labels := ParseOutLabels(NewReader(w.Bytes()))
	require.Len(t, labels, 2)
	require.Equal(t, tagNAME, labels[0].Tag)
	require.Equal(t, tagDURA, labels[1].Tag)
}

func TestParseOutLabelsSkipsUnknownViaFindLabel(t *testing.T) {
	w := NewWriter()
	w.AppendBytes(ConstructBlock(newTag("ZZZZ"), []byte("future field")))
	w.AppendBytes(ConstructBlock(tagNAME, []byte("known")))

	labels := ParseOutLabels(NewReader(w.Bytes()))
	require.Len(t, labels, 2)

	sub, ok := FindLabel(labels, tagNAME)
	require.True(t, ok)
	require.Equal(t, "known", string(sub.Remaining()))

	_, ok = FindLabel(labels, tagDESC)
	require.False(t, ok)
}

func TestParseOutLabelsTruncatedTrailingBlock(t *testing.T) {
	full := ConstructBlock(tagNAME, []byte("complete"))
	partial := ConstructBlock(tagDURA, []byte{0, 0, 0, 1})
	// Chop the second block off mid-payload: partial tolerance should
	// still return the first, complete block.
	truncated := append(append([]byte{}, full...), partial[:len(partial)-3]...)

	labels := ParseOutLabels(NewReader(truncated))
	require.Len(t, labels, 1)
	require.Equal(t, tagNAME, labels[0].Tag)
}

func TestParseOutLabelsEndSentinelMismatch(t *testing.T) {
	block := ConstructBlock(tagNAME, []byte("x"))
	// Corrupt the closing tag so it no longer matches the opening tag.
	corrupt := append([]byte{}, block...)
	corrupt[len(corrupt)-1] = 'Q'

	labels := ParseOutLabels(NewReader(corrupt))
	require.Empty(t, labels)
}
