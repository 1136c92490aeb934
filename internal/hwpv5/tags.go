package hwpv5

const (
	recTagBegin = 0x10

	TagDistributeDocData     uint16 = recTagBegin + 12
	TagParaHeader            uint16 = recTagBegin + 50
	TagParaText              uint16 = recTagBegin + 51
	TagParaCharShape         uint16 = recTagBegin + 52
	TagParaLineSeg           uint16 = recTagBegin + 53
	TagCtrlHeader            uint16 = recTagBegin + 55
	TagListHeader            uint16 = recTagBegin + 56
	TagTableRecord           uint16 = recTagBegin + 61
	TagShapeComponentEllipse uint16 = recTagBegin + 64
)

// TagKind says what a record tag contributes to the extracted text.
type TagKind uint8

const (
	KindIgnored TagKind = iota
	// KindPlainText payloads are UTF-16LE text with control characters stripped.
	KindPlainText
	// KindParaText payloads are paragraph text with inline control codes.
	KindParaText
	// KindTableStart opens a table at the record's level.
	KindTableStart
	// KindTableBoundary starts a new cell inside an open table.
	KindTableBoundary
)

func (k TagKind) String() string {
	switch k {
	case KindPlainText:
		return "plain"
	case KindParaText:
		return "para"
	case KindTableStart:
		return "table"
	case KindTableBoundary:
		return "cell"
	default:
		return "ignored"
	}
}

// TagTable maps record tags to their kind. Tags not in the table are ignored.
type TagTable map[uint16]TagKind

// Kind returns the kind registered for tag.
func (t TagTable) Kind(tag uint16) TagKind {
	return t[tag]
}

// DefaultTagTable accepts every record family known to carry readable text.
func DefaultTagTable() TagTable {
	return TagTable{
		TagParaHeader:            KindPlainText,
		TagParaText:              KindParaText,
		TagParaCharShape:         KindPlainText,
		TagShapeComponentEllipse: KindPlainText,
		TagTableRecord:           KindTableStart,
		TagListHeader:            KindTableBoundary,
	}
}

// StrictTagTable reads only paragraph text records.
func StrictTagTable() TagTable {
	return TagTable{
		TagParaText:    KindParaText,
		TagTableRecord: KindTableStart,
		TagListHeader:  KindTableBoundary,
	}
}
