package byterange

import "fmt"

// Unit is the only range unit understood by the parser.
const Unit = "bytes"

// Range is a resolved byte range. Start is inclusive and End is exclusive, so
// a valid range always satisfies 0 <= Start < End <= content length.
type Range struct {
	Start int64
	End   int64
}

// Length returns the number of bytes covered by the range.
func (r Range) Length() int64 {
	return r.End - r.Start
}

// ContentRange returns the value of the Content-Range header that describes r
// within content of length clen. The wire format uses an inclusive last byte.
func (r Range) ContentRange(clen int64) string {
	return fmt.Sprintf("%s %d-%d/%d", Unit, r.Start, r.End-1, clen)
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}
