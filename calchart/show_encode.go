package calchart

import "sort"

// Encode serializes show into the modern-dialect binary format (spec.md
// §4.3 "Emit sequence. Modern only."). The INST block is omitted when every
// marcher carries Config.DefaultInstrument; DESC is omitted when empty.
func (s *Show) Encode(cfg Config) []byte {
	w := NewWriter()
	w.AppendBytes(tagINGL[:])
	w.AppendBytes(encodeVersionCarrier())
	w.AppendBytes(ConstructBlock(tagSHOW, encodeShowBody(s, cfg)))
	return w.Bytes()
}

// encodeVersionCarrier writes "GU" followed by the current major/minor
// digits, the modern-dialect form of the GURK word (spec.md §6: "'G','U',
// major_digit,minor_digit in modern").
func encodeVersionCarrier() []byte {
	return []byte{'G', 'U', byte('0' + CurrentMajorVersion), byte('0' + CurrentMinorVersion)}
}

func encodeShowBody(s *Show, cfg Config) []byte {
	w := NewWriter()

	sizeBody := NewWriter()
	Append(sizeBody, uint32(s.NumMarchers))
	w.AppendBytes(ConstructBlock(tagSIZE, sizeBody.Bytes()))

	labl := NewWriter()
	for _, li := range s.Labels {
		labl.AppendNullTerminatedString(li.Label)
	}
	w.AppendBytes(ConstructBlock(tagLABL, labl.Bytes()))

	allDefault := true
	for _, li := range s.Labels {
		if li.Instrument != cfg.DefaultInstrument {
			allDefault = false
			break
		}
	}
	if !allDefault {
		inst := NewWriter()
		for _, li := range s.Labels {
			inst.AppendNullTerminatedString(li.Instrument)
		}
		w.AppendBytes(ConstructBlock(tagINST, inst.Bytes()))
	}

	if s.Description != "" {
		desc := NewWriter()
		desc.AppendNullTerminatedString(s.Description)
		w.AppendBytes(ConstructBlock(tagDESC, desc.Bytes()))
	}

	for i := range s.Sheets {
		w.AppendBytes(ConstructBlock(tagSHET, encodeSheetBody(&s.Sheets[i])))
	}

	if len(s.Selection) > 0 {
		indices := make([]uint32, 0, len(s.Selection))
		for idx := range s.Selection {
			indices = append(indices, uint32(idx))
		}
		sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
		sele := NewWriter()
		AppendVec(sele, indices)
		w.AppendBytes(ConstructBlock(tagSELE, sele.Bytes()))
	}

	curr := NewWriter()
	Append(curr, uint32(s.CurrentSheet))
	w.AppendBytes(ConstructBlock(tagCURR, curr.Bytes()))

	w.AppendBytes(ConstructBlock(tagMODE, encodeMode(s.Mode)))

	return w.Bytes()
}

func encodeSheetBody(s *Sheet) []byte {
	w := NewWriter()

	name := NewWriter()
	name.AppendNullTerminatedString(s.Name)
	w.AppendBytes(ConstructBlock(tagNAME, name.Bytes()))

	dura := NewWriter()
	Append(dura, s.Beats)
	w.AppendBytes(ConstructBlock(tagDURA, dura.Bytes()))

	pnts := NewWriter()
	for _, m := range s.Marchers {
		pnts.AppendBytes(encodeMarcherEntry(m))
	}
	w.AppendBytes(ConstructBlock(tagPNTS, pnts.Bytes()))

	symbols := make([]SymbolKind, 0, len(s.ContinuityBySymbol))
	for sym := range s.ContinuityBySymbol {
		symbols = append(symbols, sym)
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i] < symbols[j] })
	vcnt := NewWriter()
	for _, sym := range symbols {
		vcnt.AppendBytes(EncodeEVCT(sym, s.ContinuityBySymbol[sym]))
	}
	w.AppendBytes(ConstructBlock(tagVCNT, vcnt.Bytes()))

	pcnt := NewWriter()
	pcnt.AppendNullTerminatedString(s.PrintContinuity.Number)
	pcnt.AppendNullTerminatedString(s.PrintContinuity.Body)
	w.AppendBytes(ConstructBlock(tagPCNT, pcnt.Bytes()))

	back := NewWriter()
	Append(back, uint32(len(s.Backgrounds)))
	for _, img := range s.Backgrounds {
		back.AppendBytes(encodeImageInfo(img))
	}
	w.AppendBytes(ConstructBlock(tagBACK, back.Bytes()))

	curv := NewWriter()
	Append(curv, uint32(len(s.Curves)))
	for _, ca := range s.Curves {
		curv.AppendBytes(encodeCurve(ca.Curve))
	}
	w.AppendBytes(ConstructBlock(tagCURV, curv.Bytes()))

	cass := NewWriter()
	Append(cass, uint32(len(s.Curves)))
	for _, ca := range s.Curves {
		indices := make([]uint32, len(ca.MarcherIndices))
		for i, idx := range ca.MarcherIndices {
			indices[i] = uint32(idx)
		}
		AppendVec(cass, indices)
	}
	w.AppendBytes(ConstructBlock(tagCASS, cass.Bytes()))

	return w.Bytes()
}

// encodeMarcherEntry writes BE8(len) || pos || ref_count || refs ||
// symbol || flags (spec.md §4.3 "Marcher entry"). The length prefix lets a
// future reader with more known fields skip ones it doesn't recognize;
// this writer always emits all numRefPositions reference slots.
func encodeMarcherEntry(m Marcher) []byte {
	body := NewWriter()
	Append(body, m.Position.X)
	Append(body, m.Position.Y)
	Append(body, byte(numRefPositions))
	for i := 0; i < numRefPositions; i++ {
		Append(body, byte(i+1))
		Append(body, m.RefPositions[i].X)
		Append(body, m.RefPositions[i].Y)
	}
	Append(body, byte(m.Symbol))
	var flags byte
	if m.Flags.LabelFlipped {
		flags |= 1
	}
	if m.Flags.LabelInvisible {
		flags |= 2
	}
	Append(body, flags)

	out := NewWriter()
	Append(out, byte(body.Len()))
	out.AppendBytes(body.Bytes())
	return out.Bytes()
}

func encodeImageInfo(img ImageInfo) []byte {
	w := NewWriter()
	Append(w, img.Left)
	Append(w, img.Top)
	Append(w, img.ScaledWidth)
	Append(w, img.ScaledHeight)
	Append(w, uint32(len(img.Data)))
	w.AppendBytes(img.Data)
	return w.Bytes()
}

func encodeCurve(c Curve) []byte {
	w := NewWriter()
	Append(w, uint32(len(c.Points)))
	for _, p := range c.Points {
		Append(w, p.X)
		Append(w, p.Y)
	}
	return w.Bytes()
}

func encodeMode(m ShowMode) []byte {
	w := NewWriter()
	Append(w, byte(m.Kind))
	Append(w, m.FieldSize.X)
	Append(w, m.FieldSize.Y)
	Append(w, m.FieldOffset.X)
	Append(w, m.FieldOffset.Y)
	Append(w, m.HashW)
	Append(w, m.HashE)
	switch m.Kind {
	case ModeSpringShow:
		for _, s := range m.SpringLines {
			w.AppendNullTerminatedString(s)
		}
	default:
		for _, s := range m.YardLines {
			w.AppendNullTerminatedString(s)
		}
	}
	return w.Bytes()
}
