package indicator

import "errors"

// Construction errors, surfaced immediately so no indicator is left
// partially built (spec.md §7).
var (
	ErrNonPositivePeriod  = errors.New("indicator: period must be >= 1")
	ErrNegativeDevFactor  = errors.New("indicator: devfactor must be >= 0")
	ErrMissingInput       = errors.New("indicator: required input is nil")
	ErrInputShapeMismatch = errors.New("indicator: input collection is missing a required line")
	ErrInvalidParameter   = errors.New("indicator: parameter out of range")
)
