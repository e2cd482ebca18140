package lang

import (
	"fmt"
	"strings"
)

// DomainEnd is one past the highest address of the 16-bit address domain.
const DomainEnd uint32 = 0x10000

// Range is a half-open interval [Lo, Hi) over the 16-bit address domain.
// All surface forms (a..b, a..=b, a.., ..b, ..=b, .., bare address) reduce
// to this canonical shape; missing bounds default to the domain limits.
// Lo > Hi is representable and rejected by the accessor.
type Range struct {
	Lo uint32
	Hi uint32
}

// Single reports whether the range covers exactly one address.
func (r Range) Single() bool {
	return r.Hi == r.Lo+1
}

// Len returns the number of covered addresses, zero when inverted.
func (r Range) Len() int {
	if r.Hi < r.Lo {
		return 0
	}
	return int(r.Hi - r.Lo)
}

func (r Range) String() string {
	return fmt.Sprintf("$%04X..$%04X", r.Lo, r.Hi)
}

// parseRange parses an address-or-range token into canonical bounds.
func parseRange(tok string) (Range, error) {
	before, after, found := strings.Cut(tok, "..")
	if !found {
		a, err := literalUint(tok, 16)
		if err != nil {
			return Range{}, err
		}
		return Range{Lo: uint32(a), Hi: uint32(a) + 1}, nil
	}

	r := Range{Lo: 0, Hi: DomainEnd}

	if before != "" {
		lo, err := literalUint(before, 16)
		if err != nil {
			return Range{}, err
		}
		r.Lo = uint32(lo)
	}

	inclusive := strings.HasPrefix(after, "=")
	after = strings.TrimPrefix(after, "=")
	if after != "" {
		hi, err := literalUint(after, 16)
		if err != nil {
			return Range{}, err
		}
		r.Hi = uint32(hi)
		if inclusive {
			r.Hi++
		}
	} else if inclusive {
		// "a..=" has an = but no bound to include
		return Range{}, &ParseError{Token: tok, Msg: "missing upper bound after ..="}
	}

	return r, nil
}
