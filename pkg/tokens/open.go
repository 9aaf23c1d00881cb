package tokens

import (
	"fmt"
)

// Open opens a PDF statement and returns a token source, trying the
// preferred text-layer backend first and falling back when it cannot parse
// the file. A pdfcpu geometry pass supplies page sizes to whichever backend
// wins; geometry failures are non-fatal and leave backends on their own
// MediaBox handling.
func Open(filepath string) (Source, error) {
	sizes, err := PageSizes(filepath)
	if err != nil {
		sizes = nil
	}

	src, lerr := OpenWithLedongthuc(filepath, sizes)
	if lerr == nil {
		return src, nil
	}

	dsrc, derr := OpenWithDslipak(filepath, sizes)
	if derr == nil {
		return dsrc, nil
	}

	return nil, fmt.Errorf("no backend could open %s: %w (dslipak: %v)", filepath, lerr, derr)
}
