package currency

import "github.com/shopspring/decimal"

// Code is an optional currency tag. The zero value is an absent code, which
// formats without any prefix.
type Code struct {
	tag     string
	present bool
}

// NoCode is the absent currency code.
var NoCode = Code{}

// CodeOf returns a present code for tag. The empty string is a valid, present
// tag and yields a single-space prefix.
func CodeOf(tag string) Code {
	return Code{tag: tag, present: true}
}

// CodeFromPtr maps a nil pointer to NoCode and anything else to CodeOf.
func CodeFromPtr(tag *string) Code {
	if tag == nil {
		return NoCode
	}
	return CodeOf(*tag)
}

// Tag returns the raw tag and whether the code is present.
func (c Code) Tag() (string, bool) {
	return c.tag, c.present
}

// IsPresent reports whether the code carries a tag.
func (c Code) IsPresent() bool {
	return c.present
}

func (c Code) String() string {
	if !c.present {
		return "<none>"
	}
	return c.tag
}

// Symbol pairs a recognised currency code with its display prefix.
type Symbol struct {
	Code   string `json:"code"`
	Prefix string `json:"prefix"`
}

// Formatter renders monetary amounts for display. Format accepts any decimal;
// its cost grows with the number of digits, so amounts from outside the
// process go through ParseAmount or CheckAmount first.
type Formatter interface {
	Format(amount decimal.Decimal, code Code) string
	FormatFloat(amount float64, code Code) (string, error)
}
