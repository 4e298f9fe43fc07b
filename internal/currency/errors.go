package currency

import "github.com/zeebo/errs"

// Error is the error class for failures raised while preparing an amount for
// formatting.
var Error = errs.Class("currency")

// ErrInvalidAmount is returned when an amount is not a finite real number,
// cannot be parsed as one, or falls outside the supported range.
var ErrInvalidAmount = Error.New("invalid amount")
