package calchart

// ModeKind distinguishes the two field-geometry variants a ShowMode may be.
type ModeKind byte

const (
	ModeStandard ModeKind = iota
	ModeSpringShow
)

// NumYardLines is the fixed size of the yard-line text array (every 5-yard
// mark across a football-field-derived layout, end zone to end zone plus
// the border entries).
const NumYardLines = 53

// NumSpringLines is the fixed size of the spring-show alternate line-text
// array.
const NumSpringLines = 5

// ShowMode describes field geometry: overall size, the offset of the
// show's coordinate origin within that field, the east/west hash
// positions, and the text labels drawn along yard lines (or, for spring
// shows, the spring-show line set).
type ShowMode struct {
	Kind        ModeKind
	FieldSize   Coord
	FieldOffset Coord
	HashW       int16
	HashE       int16
	YardLines   [NumYardLines]string
	SpringLines [NumSpringLines]string
}

// DefaultStandardMode returns the stock college-field geometry used when a
// new show doesn't specify one.
func DefaultStandardMode() ShowMode {
	m := ShowMode{
		Kind:      ModeStandard,
		FieldSize: Coord{X: 160 * StepsPerCoordUnit, Y: 84 * StepsPerCoordUnit},
		HashW:     32 * StepsPerCoordUnit,
		HashE:     52 * StepsPerCoordUnit,
	}
	for i := range m.YardLines {
		m.YardLines[i] = yardLineLabel(i)
	}
	return m
}

// yardLineLabel derives the standard "0 5 10 ... 50 ... 10 5 0" yard-line
// text sequence for entry i of 53 (goal line to goal line at 5 steps each
// with end-zone borders).
func yardLineLabel(i int) string {
	yard := i * 5
	if yard > 50 {
		yard = 100 - yard
	}
	return itoa(yard)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [8]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
