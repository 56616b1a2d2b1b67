package calchart

import "github.com/golang/glog"

// Decode ingests a binary show file, dispatching to the modern block
// schema or the legacy 3.3-and-earlier dialect per the version carrier
// (spec.md §4.3 "Ingest sequence").
func Decode(data []byte, opts DecodeOptions) (*Show, error) {
	r := NewReader(data)
	magic, err := r.First(4)
	if err != nil {
		return nil, wrapErr(err, "decode: magic")
	}
	if string(magic.Remaining()) != "INGL" {
		return nil, newErr(ErrDecodeTagMismatch, "decode: missing INGL magic")
	}
	gurk, err := r.First(4)
	if err != nil {
		return nil, wrapErr(err, "decode: version carrier")
	}
	legacy, major, minor := decodeVersionCarrier(gurk.Remaining())
	if legacy {
		return decodeLegacyShow(r, opts)
	}
	if (major<<8)|minor > (CurrentMajorVersion<<8)|CurrentMinorVersion {
		proceed := false
		if opts.OnVersionMismatch != nil {
			proceed = opts.OnVersionMismatch(major, minor)
		}
		if !proceed {
			return nil, newErr(ErrDecodeUnknownVersion, "file version %d.%d newer than supported %d.%d",
				major, minor, CurrentMajorVersion, CurrentMinorVersion)
		}
		glog.Infof("decode: proceeding with unsupported version %d.%d per host override", major, minor)
	}
	return decodeModernShow(r, opts)
}

// decodeVersionCarrier reads the 4 bytes following INGL: literally "GURK"
// in legacy files, or "GU"+major digit+minor digit in modern ones. 0x0303
// and earlier selects the legacy dialect (spec.md §4.3 ingest step 2).
func decodeVersionCarrier(b []byte) (legacy bool, major, minor int) {
	if len(b) == 4 && b[2] == 'R' && b[3] == 'K' {
		return true, 0, 0
	}
	major = int(b[2] - '0')
	minor = int(b[3] - '0')
	combined := (major << 8) | minor
	return combined <= legacyVersionThreshold, major, minor
}

var modernShowKnownTags = map[Tag]bool{
	tagSIZE: true, tagLABL: true, tagINST: true, tagDESC: true,
	tagSHET: true, tagSELE: true, tagCURR: true, tagMODE: true,
}

func decodeModernShow(r *Reader, opts DecodeOptions) (*Show, error) {
	topLabels := ParseOutLabels(r)
	logUnknownTags("top level", topLabels, map[Tag]bool{tagSHOW: true})
	showR, ok := FindLabel(topLabels, tagSHOW)
	if !ok {
		return nil, newErr(ErrDecodeTruncated, "decode: missing SHOW block")
	}
	return decodeShowBody(showR, opts)
}

func decodeShowBody(r *Reader, opts DecodeOptions) (*Show, error) {
	labels := ParseOutLabels(r)
	logUnknownTags("show", labels, modernShowKnownTags)

	sizeR, ok := FindLabel(labels, tagSIZE)
	if !ok {
		return nil, newErr(ErrDecodeTruncated, "show: missing SIZE block")
	}
	numMarchers, err := Get[uint32](sizeR)
	if err != nil {
		return nil, wrapErr(err, "show: SIZE")
	}

	lablR, ok := FindLabel(labels, tagLABL)
	if !ok {
		return nil, newErr(ErrDecodeTruncated, "show: missing LABL block")
	}
	labelStrings := readNullStrings(lablR)

	var instrumentStrings []string
	if instR, ok := FindLabel(labels, tagINST); ok {
		instrumentStrings = readNullStrings(instR)
	}

	var description string
	if descR, ok := FindLabel(labels, tagDESC); ok {
		description, err = descR.GetString()
		if err != nil {
			return nil, wrapErr(err, "show: DESC")
		}
	}

	var sheets []Sheet
	for _, l := range labels {
		if l.Tag != tagSHET {
			continue
		}
		sheet, err := decodeSheetBody(l.Reader, int(numMarchers))
		if err != nil {
			return nil, wrapErr(err, "show: SHET %d", len(sheets))
		}
		sheets = append(sheets, sheet)
	}

	selection := make(map[int]bool)
	if seleR, ok := FindLabel(labels, tagSELE); ok {
		indices, err := GetVec[uint32](seleR)
		if err != nil {
			return nil, wrapErr(err, "show: SELE")
		}
		for _, idx := range indices {
			selection[int(idx)] = true
		}
	}

	currR, ok := FindLabel(labels, tagCURR)
	if !ok {
		return nil, newErr(ErrDecodeTruncated, "show: missing CURR block")
	}
	current, err := Get[uint32](currR)
	if err != nil {
		return nil, wrapErr(err, "show: CURR")
	}

	modeR, ok := FindLabel(labels, tagMODE)
	if !ok {
		return nil, newErr(ErrDecodeTruncated, "show: missing MODE block")
	}
	mode, err := decodeMode(modeR)
	if err != nil {
		return nil, wrapErr(err, "show: MODE")
	}

	labelsAndInstruments := make([]LabelAndInstrument, numMarchers)
	for i := range labelsAndInstruments {
		li := LabelAndInstrument{Instrument: DefaultInstrument}
		if i < len(labelStrings) {
			li.Label = labelStrings[i]
		}
		if i < len(instrumentStrings) {
			li.Instrument = instrumentStrings[i]
		}
		labelsAndInstruments[i] = li
	}

	return &Show{
		NumMarchers:  int(numMarchers),
		Labels:       labelsAndInstruments,
		Description:  description,
		Sheets:       sheets,
		CurrentSheet: int(current),
		Selection:    selection,
		Mode:         mode,
	}, nil
}

var sheetKnownTags = map[Tag]bool{
	tagNAME: true, tagDURA: true, tagPNTS: true, tagVCNT: true,
	tagPCNT: true, tagBACK: true, tagCURV: true, tagCASS: true,
}

func decodeSheetBody(r *Reader, numMarchers int) (Sheet, error) {
	labels := ParseOutLabels(r)
	logUnknownTags("sheet", labels, sheetKnownTags)

	nameR, ok := FindLabel(labels, tagNAME)
	if !ok {
		return Sheet{}, newErr(ErrDecodeTruncated, "sheet: missing NAME block")
	}
	name, err := nameR.GetString()
	if err != nil {
		return Sheet{}, wrapErr(err, "sheet: NAME")
	}

	duraR, ok := FindLabel(labels, tagDURA)
	if !ok {
		return Sheet{}, newErr(ErrDecodeTruncated, "sheet: missing DURA block")
	}
	beats, err := Get[uint32](duraR)
	if err != nil {
		return Sheet{}, wrapErr(err, "sheet: DURA")
	}

	pntsR, ok := FindLabel(labels, tagPNTS)
	if !ok {
		return Sheet{}, newErr(ErrDecodeTruncated, "sheet: missing PNTS block")
	}
	marchers := make([]Marcher, numMarchers)
	for i := 0; i < numMarchers; i++ {
		m, err := decodeMarcherEntry(pntsR)
		if err != nil {
			return Sheet{}, wrapErr(err, "sheet: PNTS entry %d", i)
		}
		marchers[i] = m
	}

	contBySymbol := make(map[SymbolKind]*Continuity)
	if vcntR, ok := FindLabel(labels, tagVCNT); ok {
		for _, l := range ParseOutLabels(vcntR) {
			if l.Tag != tagEVCT {
				continue
			}
			sym, cont, err := DecodeEVCT(l.Reader)
			if err != nil {
				return Sheet{}, wrapErr(err, "sheet: VCNT")
			}
			contBySymbol[sym] = cont
		}
	}

	var pc PrintContinuity
	if pcntR, ok := FindLabel(labels, tagPCNT); ok {
		pc.Number, err = pcntR.GetString()
		if err != nil {
			return Sheet{}, wrapErr(err, "sheet: PCNT number")
		}
		pc.Body, err = pcntR.GetString()
		if err != nil {
			return Sheet{}, wrapErr(err, "sheet: PCNT body")
		}
	}

	var backgrounds []ImageInfo
	if backR, ok := FindLabel(labels, tagBACK); ok {
		n, err := Get[uint32](backR)
		if err != nil {
			return Sheet{}, wrapErr(err, "sheet: BACK count")
		}
		backgrounds = make([]ImageInfo, n)
		for i := range backgrounds {
			backgrounds[i], err = decodeImageInfo(backR)
			if err != nil {
				return Sheet{}, wrapErr(err, "sheet: BACK entry %d", i)
			}
		}
	}

	var curves []Curve
	if curvR, ok := FindLabel(labels, tagCURV); ok {
		n, err := Get[uint32](curvR)
		if err != nil {
			return Sheet{}, wrapErr(err, "sheet: CURV count")
		}
		curves = make([]Curve, n)
		for i := range curves {
			curves[i], err = decodeCurve(curvR)
			if err != nil {
				return Sheet{}, wrapErr(err, "sheet: CURV entry %d", i)
			}
		}
	}

	var curveAssignments []CurveAssignment
	if cassR, ok := FindLabel(labels, tagCASS); ok {
		n, err := Get[uint32](cassR)
		if err != nil {
			return Sheet{}, wrapErr(err, "sheet: CASS count")
		}
		curveAssignments = make([]CurveAssignment, n)
		for i := range curveAssignments {
			indices, err := GetVec[uint32](cassR)
			if err != nil {
				return Sheet{}, wrapErr(err, "sheet: CASS entry %d", i)
			}
			idxInts := make([]int, len(indices))
			for j, idx := range indices {
				idxInts[j] = int(idx)
			}
			ca := CurveAssignment{MarcherIndices: idxInts}
			if i < len(curves) {
				ca.Curve = curves[i]
			}
			curveAssignments[i] = ca
		}
	}

	return Sheet{
		Name:               name,
		Beats:              beats,
		Marchers:           marchers,
		ContinuityBySymbol: contBySymbol,
		PrintContinuity:    pc,
		Backgrounds:        backgrounds,
		Curves:             curveAssignments,
	}, nil
}

func readNullStrings(r *Reader) []string {
	var out []string
	for r.Len() > 0 {
		s, err := r.GetString()
		if err != nil {
			break
		}
		out = append(out, s)
	}
	return out
}

// decodeMarcherEntry reads BE8(len) || pos || ref_count || refs || symbol
// || flags (spec.md §4.3 "Marcher entry"). Reading stops at the known
// field set regardless of len, so a future writer's additional trailing
// fields are silently skipped, per the length byte's stated purpose.
func decodeMarcherEntry(r *Reader) (Marcher, error) {
	lenByte, err := r.GetByte()
	if err != nil {
		return Marcher{}, wrapErr(err, "marcher: length byte")
	}
	sub, err := r.First(int(lenByte))
	if err != nil {
		return Marcher{}, wrapErr(err, "marcher: body")
	}
	x, err := Get[int16](sub)
	if err != nil {
		return Marcher{}, wrapErr(err, "marcher: position.x")
	}
	y, err := Get[int16](sub)
	if err != nil {
		return Marcher{}, wrapErr(err, "marcher: position.y")
	}
	m := NewMarcher(Coord{X: x, Y: y})

	refCount, err := sub.GetByte()
	if err != nil {
		return Marcher{}, wrapErr(err, "marcher: ref count")
	}
	for i := 0; i < int(refCount); i++ {
		which, err := sub.GetByte()
		if err != nil {
			return Marcher{}, wrapErr(err, "marcher: ref %d which", i)
		}
		rx, err := Get[int16](sub)
		if err != nil {
			return Marcher{}, wrapErr(err, "marcher: ref %d x", i)
		}
		ry, err := Get[int16](sub)
		if err != nil {
			return Marcher{}, wrapErr(err, "marcher: ref %d y", i)
		}
		if idx := int(which); idx >= 1 && idx <= numRefPositions {
			m.RefPositions[idx-1] = Coord{X: rx, Y: ry}
		}
	}

	symByte, err := sub.GetByte()
	if err != nil {
		return Marcher{}, wrapErr(err, "marcher: symbol")
	}
	m.Symbol = SymbolKind(symByte)

	flags, err := sub.GetByte()
	if err != nil {
		return Marcher{}, wrapErr(err, "marcher: flags")
	}
	m.Flags.LabelFlipped = flags&1 != 0
	m.Flags.LabelInvisible = flags&2 != 0

	return m, nil
}

func decodeImageInfo(r *Reader) (ImageInfo, error) {
	left, err := Get[int16](r)
	if err != nil {
		return ImageInfo{}, wrapErr(err, "image: left")
	}
	top, err := Get[int16](r)
	if err != nil {
		return ImageInfo{}, wrapErr(err, "image: top")
	}
	w, err := Get[int16](r)
	if err != nil {
		return ImageInfo{}, wrapErr(err, "image: width")
	}
	h, err := Get[int16](r)
	if err != nil {
		return ImageInfo{}, wrapErr(err, "image: height")
	}
	n, err := Get[uint32](r)
	if err != nil {
		return ImageInfo{}, wrapErr(err, "image: data length")
	}
	sub, err := r.First(int(n))
	if err != nil {
		return ImageInfo{}, wrapErr(err, "image: data")
	}
	return ImageInfo{
		Left: left, Top: top, ScaledWidth: w, ScaledHeight: h,
		Data: append([]byte(nil), sub.Remaining()...),
	}, nil
}

func decodeCurve(r *Reader) (Curve, error) {
	n, err := Get[uint32](r)
	if err != nil {
		return Curve{}, wrapErr(err, "curve: point count")
	}
	pts := make([]CurvePoint, n)
	for i := range pts {
		x, err := Get[int16](r)
		if err != nil {
			return Curve{}, wrapErr(err, "curve: point %d x", i)
		}
		y, err := Get[int16](r)
		if err != nil {
			return Curve{}, wrapErr(err, "curve: point %d y", i)
		}
		pts[i] = CurvePoint{X: x, Y: y}
	}
	return Curve{Points: pts}, nil
}

func decodeMode(r *Reader) (ShowMode, error) {
	kindByte, err := r.GetByte()
	if err != nil {
		return ShowMode{}, wrapErr(err, "mode: kind")
	}
	m := ShowMode{Kind: ModeKind(kindByte)}
	if m.FieldSize.X, err = Get[int16](r); err != nil {
		return ShowMode{}, wrapErr(err, "mode: field size x")
	}
	if m.FieldSize.Y, err = Get[int16](r); err != nil {
		return ShowMode{}, wrapErr(err, "mode: field size y")
	}
	if m.FieldOffset.X, err = Get[int16](r); err != nil {
		return ShowMode{}, wrapErr(err, "mode: field offset x")
	}
	if m.FieldOffset.Y, err = Get[int16](r); err != nil {
		return ShowMode{}, wrapErr(err, "mode: field offset y")
	}
	if m.HashW, err = Get[int16](r); err != nil {
		return ShowMode{}, wrapErr(err, "mode: hash w")
	}
	if m.HashE, err = Get[int16](r); err != nil {
		return ShowMode{}, wrapErr(err, "mode: hash e")
	}
	switch m.Kind {
	case ModeSpringShow:
		for i := range m.SpringLines {
			s, err := r.GetString()
			if err != nil {
				return ShowMode{}, wrapErr(err, "mode: spring line %d", i)
			}
			m.SpringLines[i] = s
		}
	default:
		for i := range m.YardLines {
			s, err := r.GetString()
			if err != nil {
				return ShowMode{}, wrapErr(err, "mode: yard line %d", i)
			}
			m.YardLines[i] = s
		}
	}
	return m, nil
}

// decodeLegacyShow decodes the 3.3-and-earlier dialect: parallel POS /
// REFP / SYMB / TYPE / LABL arrays instead of the modern PNTS marcher
// entries, and a symbol-to-continuity-index consistency check (spec.md
// §9 "Legacy continuity consistency check"). REFP decodes into each
// marcher's RefPositions; a marcher with no REFP entry keeps
// NewMarcher's all-slots-at-primary-position default. Per-index legacy
// continuity text is not reconstructed here (the dialect's index→text
// table layout is not specified); affected symbols decode with an empty
// continuity, which still lets the consistency check and the rest of
// the show load.
func decodeLegacyShow(r *Reader, opts DecodeOptions) (*Show, error) {
	topLabels := ParseOutLabels(r)
	showR, ok := FindLabel(topLabels, tagSHOW)
	if !ok {
		return nil, newErr(ErrDecodeTruncated, "legacy decode: missing SHOW block")
	}
	labels := ParseOutLabels(showR)

	sizeR, ok := FindLabel(labels, tagSIZE)
	if !ok {
		return nil, newErr(ErrDecodeTruncated, "legacy decode: missing SIZE block")
	}
	numMarchers, err := Get[uint32](sizeR)
	if err != nil {
		return nil, wrapErr(err, "legacy decode: SIZE")
	}

	var labelStrings []string
	if lablR, ok := FindLabel(labels, tagLABL); ok {
		labelStrings = readNullStrings(lablR)
	}

	var description string
	if descR, ok := FindLabel(labels, tagDESC); ok {
		description, _ = descR.GetString()
	}

	var sheets []Sheet
	for _, l := range labels {
		if l.Tag != tagSHET {
			continue
		}
		sheet, err := decodeLegacySheetBody(l.Reader, int(numMarchers))
		if err != nil {
			return nil, wrapErr(err, "legacy decode: SHET %d", len(sheets))
		}
		sheets = append(sheets, sheet)
	}

	labelsAndInstruments := make([]LabelAndInstrument, numMarchers)
	for i := range labelsAndInstruments {
		li := LabelAndInstrument{Instrument: DefaultInstrument}
		if i < len(labelStrings) {
			li.Label = labelStrings[i]
		}
		labelsAndInstruments[i] = li
	}

	return &Show{
		NumMarchers:  int(numMarchers),
		Labels:       labelsAndInstruments,
		Description:  description,
		Sheets:       sheets,
		CurrentSheet: 0,
		Selection:    make(map[int]bool),
		Mode:         DefaultStandardMode(),
	}, nil
}

func decodeLegacySheetBody(r *Reader, numMarchers int) (Sheet, error) {
	labels := ParseOutLabels(r)

	var name string
	if nameR, ok := FindLabel(labels, tagNAME); ok {
		name, _ = nameR.GetString()
	}
	var beats uint32
	if duraR, ok := FindLabel(labels, tagDURA); ok {
		beats, _ = Get[uint32](duraR)
	}

	var positions []Coord
	if posR, ok := FindLabel(labels, tagPOS); ok {
		for posR.Len() >= 4 {
			x, _ := Get[int16](posR)
			y, _ := Get[int16](posR)
			positions = append(positions, Coord{X: x, Y: y})
		}
	}
	var symbols []SymbolKind
	if symbR, ok := FindLabel(labels, tagSYMB); ok {
		for symbR.Len() >= 1 {
			b, _ := symbR.GetByte()
			symbols = append(symbols, SymbolKind(b))
		}
	}
	var contIndices []byte
	if typeR, ok := FindLabel(labels, tagTYPE); ok {
		for typeR.Len() >= 1 {
			b, _ := typeR.GetByte()
			contIndices = append(contIndices, b)
		}
	}
	var flips []byte
	if lablR, ok := FindLabel(labels, tagLABL); ok {
		for lablR.Len() >= 1 {
			b, _ := lablR.GetByte()
			flips = append(flips, b)
		}
	}

	// REFP holds numRefPositions (x,y) pairs per marcher, in marcher-index
	// order — the same marcher-major parallel layout as POS/SYMB/TYPE/LABL,
	// since spec.md doesn't spell out REFP's legacy layout beyond naming
	// the tag.
	var refPositions [][numRefPositions]Coord
	if refpR, ok := FindLabel(labels, tagREFP); ok {
		for refpR.Len() >= 4*numRefPositions {
			var refs [numRefPositions]Coord
			for j := 0; j < numRefPositions; j++ {
				x, _ := Get[int16](refpR)
				y, _ := Get[int16](refpR)
				refs[j] = Coord{X: x, Y: y}
			}
			refPositions = append(refPositions, refs)
		}
	}

	marchers := make([]Marcher, numMarchers)
	for i := 0; i < numMarchers; i++ {
		var pos Coord
		if i < len(positions) {
			pos = positions[i]
		}
		m := NewMarcher(pos)
		if i < len(symbols) {
			m.Symbol = symbols[i]
		}
		if i < len(flips) {
			m.Flags.LabelFlipped = flips[i] != 0
		}
		if i < len(refPositions) {
			m.RefPositions = refPositions[i]
		}
		marchers[i] = m
	}

	bySymbolIndex := make(map[SymbolKind]byte)
	for i, m := range marchers {
		if i >= len(contIndices) {
			continue
		}
		idx := contIndices[i]
		if existing, ok := bySymbolIndex[m.Symbol]; ok && existing != idx {
			return Sheet{}, newErr(ErrContinuityInconsistency,
				"sheet %q: symbol %s maps to continuity indices %d and %d", name, m.Symbol, existing, idx)
		}
		bySymbolIndex[m.Symbol] = idx
	}

	contBySymbol := make(map[SymbolKind]*Continuity)
	for sym := range bySymbolIndex {
		contBySymbol[sym] = FromLegacyText("")
	}

	return Sheet{
		Name:               name,
		Beats:              beats,
		Marchers:           marchers,
		ContinuityBySymbol: contBySymbol,
	}, nil
}
