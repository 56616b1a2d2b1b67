package calchart

// Block tags used throughout the modern and legacy file dialects
// (spec.md §4.3). Every tag is exactly 4 ASCII bytes.
var (
	tagINGL = newTag("INGL") // magic
	tagGURK = newTag("GURK") // version carrier
	tagSHOW = newTag("SHOW")
	tagSHET = newTag("SHET")
	tagSIZE = newTag("SIZE")
	tagLABL = newTag("LABL")
	tagINST = newTag("INST")
	tagDESC = newTag("DESC")
	tagMODE = newTag("MODE")
	tagNAME = newTag("NAME")
	tagDURA = newTag("DURA")
	tagPNTS = newTag("PNTS")
	tagCONT = newTag("CONT")
	tagECNT = newTag("ECNT")
	tagVCNT = newTag("VCNT")
	tagEVCT = newTag("EVCT")
	tagPCNT = newTag("PCNT")
	tagBACK = newTag("BACK")
	tagCURV = newTag("CURV")
	tagCASS = newTag("CASS")
	tagSELE = newTag("SELE")
	tagCURR = newTag("CURR")

	// Legacy-dialect-only tags (spec.md §4.3 "Legacy 3.3-and-earlier dialect").
	tagPOS  = newTag("POS ")
	tagREFP = newTag("REFP")
	tagSYMB = newTag("SYMB")
	tagTYPE = newTag("TYPE")
)

// CurrentMajorVersion and CurrentMinorVersion are this implementation's
// modern-dialect version; they are written into the GURK carrier on
// encode and accepted (along with any earlier modern version) on decode.
const (
	CurrentMajorVersion = 3
	CurrentMinorVersion = 5
)

// legacyVersionThreshold is the (major<<8 | minor) value at and below which
// a file is decoded with the legacy 3.3-and-earlier dialect instead of the
// modern block schema (spec.md §4.3 ingest step 2).
const legacyVersionThreshold = 0x0303
