package protect

import "strings"

type PrintLevel string

const (
	PrintNone PrintLevel = "none"
	PrintLow  PrintLevel = "low"
	PrintHigh PrintLevel = "high"
)

// ParsePrintLevel reads PDF_PERMIT_PRINTING. Empty or unknown values mean high.
func ParsePrintLevel(s string) PrintLevel {
	switch PrintLevel(strings.ToLower(strings.TrimSpace(s))) {
	case PrintNone:
		return PrintNone
	case PrintLow:
		return PrintLow
	default:
		return PrintHigh
	}
}

// User access permission bits (PDF 32000-1, table 22).
const (
	PermPrint         uint32 = 1 << 2
	PermModify        uint32 = 1 << 3
	PermCopy          uint32 = 1 << 4
	PermAnnotate      uint32 = 1 << 5
	PermFillForms     uint32 = 1 << 8
	PermContentAccess uint32 = 1 << 9
	PermAssemble      uint32 = 1 << 10
	PermPrintHigh     uint32 = 1 << 11
)

// Policy is what a reader holding only the open password may do.
type Policy struct {
	Printing      PrintLevel
	Modify        bool
	Copy          bool
	Annotate      bool
	FillForms     bool
	ContentAccess bool
	Assemble      bool
}

// DefaultPolicy allows high quality printing and nothing else.
func DefaultPolicy() Policy {
	return Policy{Printing: PrintHigh}
}

// Flags OR-combines the permission bits granted by the policy. High quality
// printing needs the plain print bit as well, readers ignore bit 12 alone.
func (p Policy) Flags() uint32 {
	var f uint32
	switch p.Printing {
	case PrintLow:
		f |= PermPrint
	case PrintHigh:
		f |= PermPrint | PermPrintHigh
	}
	set := func(on bool, bit uint32) {
		if on {
			f |= bit
		}
	}
	set(p.Modify, PermModify)
	set(p.Copy, PermCopy)
	set(p.Annotate, PermAnnotate)
	set(p.FillForms, PermFillForms)
	set(p.ContentAccess, PermContentAccess)
	set(p.Assemble, PermAssemble)
	return f
}
