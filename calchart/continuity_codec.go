package calchart

// Binary encoding of a Continuity, carried inside an EVCT block's payload
// (spec.md §4.3: "block(VCNT, { block(EVCT, symbol_byte || continuity_bytes) }*)").
// continuity_bytes is itself one nested block: CONT wraps a structured
// procedure list, ECNT wraps a legacy text blob not yet parsed — the two
// tags spec.md's §4.3 tag table lists but whose layout the sheet-data BNF
// leaves to the CONT/ECNT blocks themselves.

func encodeValue(w *Writer, v Value) {
	Append(w, byte(v.Kind))
	switch v.Kind {
	case ValNumber:
		Append(w, float32(v.Number))
	case ValDirection:
		Append(w, float32(v.Direction))
	case ValPoint:
		Append(w, byte(v.RefIndex))
		if v.NextSheet {
			Append(w, byte(1))
		} else {
			Append(w, byte(0))
		}
	case ValVariable:
		Append(w, v.Variable)
	}
}

func decodeValue(r *Reader) (Value, error) {
	kindByte, err := r.GetByte()
	if err != nil {
		return Value{}, wrapErr(err, "value: kind byte")
	}
	switch ValueKind(kindByte) {
	case ValNumber:
		n, err := Get[float32](r)
		if err != nil {
			return Value{}, wrapErr(err, "value: number")
		}
		return Num(float64(n)), nil
	case ValDirection:
		d, err := Get[float32](r)
		if err != nil {
			return Value{}, wrapErr(err, "value: direction")
		}
		return Dir(Degree(d)), nil
	case ValPoint:
		ref, err := r.GetByte()
		if err != nil {
			return Value{}, wrapErr(err, "value: point ref index")
		}
		nextSheet, err := r.GetByte()
		if err != nil {
			return Value{}, wrapErr(err, "value: point next-sheet flag")
		}
		if nextSheet != 0 {
			return NextPoint(int(ref)), nil
		}
		return Point(int(ref)), nil
	case ValVariable:
		v, err := r.GetByte()
		if err != nil {
			return Value{}, wrapErr(err, "value: variable name")
		}
		return Var(v), nil
	default:
		return Value{}, newErr(ErrDecodeTagMismatch, "value: unknown kind byte %d", kindByte)
	}
}

// procedureFields lists, in wire order, which Value-typed fields a
// Procedure of the given kind carries. Variable/VarValue (ProcSet) are
// handled separately since Variable is a bare byte, not a Value.
func procedureFields(kind ProcKind) []func(*Procedure) *Value {
	field := func(get func(*Procedure) *Value) func(*Procedure) *Value { return get }
	switch kind {
	case ProcMarkTime:
		return []func(*Procedure) *Value{
			field(func(p *Procedure) *Value { return &p.Beats }),
			field(func(p *Procedure) *Value { return &p.Direction }),
		}
	case ProcClose:
		return []func(*Procedure) *Value{
			field(func(p *Procedure) *Value { return &p.Beats }),
			field(func(p *Procedure) *Value { return &p.Point }),
		}
	case ProcEvenMarch:
		return []func(*Procedure) *Value{
			field(func(p *Procedure) *Value { return &p.Steps }),
			field(func(p *Procedure) *Value { return &p.Direction }),
		}
	case ProcFountainMarch:
		return []func(*Procedure) *Value{
			field(func(p *Procedure) *Value { return &p.StepsX }),
			field(func(p *Procedure) *Value { return &p.DirectionX }),
			field(func(p *Procedure) *Value { return &p.StepsY }),
			field(func(p *Procedure) *Value { return &p.DirectionY }),
		}
	case ProcCountermarch:
		return []func(*Procedure) *Value{
			field(func(p *Procedure) *Value { return &p.Point }),
			field(func(p *Procedure) *Value { return &p.Beats }),
			field(func(p *Procedure) *Value { return &p.Direction }),
		}
	case ProcFlowTo:
		return []func(*Procedure) *Value{
			field(func(p *Procedure) *Value { return &p.Point }),
			field(func(p *Procedure) *Value { return &p.Beats }),
		}
	case ProcMagicMove:
		return []func(*Procedure) *Value{
			field(func(p *Procedure) *Value { return &p.Point }),
			field(func(p *Procedure) *Value { return &p.Beats }),
		}
	case ProcExpandedMarch:
		return []func(*Procedure) *Value{
			field(func(p *Procedure) *Value { return &p.Steps }),
			field(func(p *Procedure) *Value { return &p.Direction }),
			field(func(p *Procedure) *Value { return &p.Expansion }),
		}
	case ProcGridSnap:
		return nil
	case ProcDiagonalMilitary:
		return []func(*Procedure) *Value{
			field(func(p *Procedure) *Value { return &p.Point }),
			field(func(p *Procedure) *Value { return &p.Beats }),
			field(func(p *Procedure) *Value { return &p.Direction }),
		}
	default:
		return nil
	}
}

func encodeProcedure(w *Writer, proc Procedure) error {
	Append(w, byte(proc.Kind))
	if proc.Kind == ProcSet {
		Append(w, proc.Variable)
		encodeValue(w, proc.VarValue)
		return nil
	}
	if proc.Kind >= numProcKinds {
		return newErr(ErrDecodeTagMismatch, "encode continuity: unknown procedure kind %d", proc.Kind)
	}
	fields := procedureFields(proc.Kind)
	for _, get := range fields {
		encodeValue(w, *get(&proc))
	}
	return nil
}

func decodeProcedure(r *Reader) (Procedure, error) {
	kindByte, err := r.GetByte()
	if err != nil {
		return Procedure{}, wrapErr(err, "procedure: kind byte")
	}
	kind := ProcKind(kindByte)
	proc := Procedure{Kind: kind}
	if kind == ProcSet {
		v, err := r.GetByte()
		if err != nil {
			return Procedure{}, wrapErr(err, "procedure: set variable name")
		}
		val, err := decodeValue(r)
		if err != nil {
			return Procedure{}, wrapErr(err, "procedure: set value")
		}
		proc.Variable = v
		proc.VarValue = val
		return proc, nil
	}
	if kind >= numProcKinds {
		return Procedure{}, newErr(ErrDecodeTagMismatch, "decode continuity: unknown procedure kind %d", kindByte)
	}
	fields := procedureFields(kind)
	for i, get := range fields {
		v, err := decodeValue(r)
		if err != nil {
			return Procedure{}, wrapErr(err, "procedure: field %d", i)
		}
		*get(&proc) = v
	}
	return proc, nil
}

// EncodeProcedures serializes a structured procedure list as BE32(count)
// followed by each procedure's wire encoding.
func EncodeProcedures(procs []Procedure) []byte {
	w := NewWriter()
	Append(w, uint32(len(procs)))
	for _, p := range procs {
		if err := encodeProcedure(w, p); err != nil {
			// Every Procedure built via the parser or AST constructors has a
			// kind this function knows how to encode; reaching here means a
			// caller hand-built an invalid Procedure.
			panic(err)
		}
	}
	return w.Bytes()
}

// DecodeProcedures is the inverse of EncodeProcedures.
func DecodeProcedures(r *Reader) ([]Procedure, error) {
	n, err := Get[uint32](r)
	if err != nil {
		return nil, wrapErr(err, "procedures: count")
	}
	out := make([]Procedure, n)
	for i := range out {
		p, err := decodeProcedure(r)
		if err != nil {
			return nil, wrapErr(err, "procedures: entry %d", i)
		}
		out[i] = p
	}
	return out, nil
}

// EncodeContinuity wraps cont in a CONT block (structured) or an ECNT
// block (unparsed legacy text), whichever form cont currently holds.
func EncodeContinuity(cont *Continuity) []byte {
	if cont.Parsed {
		return ConstructBlock(tagCONT, EncodeProcedures(cont.Procedures))
	}
	w := NewWriter()
	w.AppendNullTerminatedString(cont.Text)
	return ConstructBlock(tagECNT, w.Bytes())
}

// DecodeContinuity reads one CONT or ECNT block from r's labels (exactly
// one is expected) and returns the resulting Continuity.
func DecodeContinuity(r *Reader) (*Continuity, error) {
	labels := ParseOutLabels(r)
	if sub, ok := FindLabel(labels, tagCONT); ok {
		procs, err := DecodeProcedures(sub)
		if err != nil {
			return nil, wrapErr(err, "CONT")
		}
		return FromProcedures(procs), nil
	}
	if sub, ok := FindLabel(labels, tagECNT); ok {
		text, err := sub.GetString()
		if err != nil {
			return nil, wrapErr(err, "ECNT")
		}
		return FromLegacyText(text), nil
	}
	return nil, newErr(ErrDecodeTruncated, "continuity: no CONT or ECNT block present")
}

// EncodeEVCT wraps (symbol, continuity) as one EVCT block's worth of bytes
// (spec.md §4.3: "symbol_byte || continuity_bytes").
func EncodeEVCT(symbol SymbolKind, cont *Continuity) []byte {
	w := NewWriter()
	Append(w, byte(symbol))
	w.AppendBytes(EncodeContinuity(cont))
	return ConstructBlock(tagEVCT, w.Bytes())
}

// DecodeEVCT is the inverse of EncodeEVCT, operating on an EVCT label's
// payload reader.
func DecodeEVCT(payload *Reader) (SymbolKind, *Continuity, error) {
	symByte, err := payload.GetByte()
	if err != nil {
		return 0, nil, wrapErr(err, "EVCT: symbol byte")
	}
	cont, err := DecodeContinuity(payload)
	if err != nil {
		return 0, nil, wrapErr(err, "EVCT")
	}
	return SymbolKind(symByte), cont, nil
}
