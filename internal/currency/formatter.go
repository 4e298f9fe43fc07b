package currency

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/leekchan/accounting"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

const (
	precision         = 2
	thousandSeparator = ","
	decimalSeparator  = "."

	// The sign sits between the prefix and the digits: "$ -42.10".
	positiveFormat = "%s%v"
	negativeFormat = "%s-%v"
	zeroFormat     = "%s%v"

	layoutExpiration = 10 * time.Minute
	layoutCleanup    = 5 * time.Minute
)

var knownPrefixes = map[string]string{
	"GBP": "£ ",
	"DKK": "kr ",
	"USD": "$ ",
}

// Option configures a formatter built by New.
type Option func(*moneyFormatter)

// WithCaseInsensitiveCodes makes GBP, DKK and USD match regardless of case.
// Unrecognised codes keep their original spelling in the prefix.
func WithCaseInsensitiveCodes() Option {
	return func(f *moneyFormatter) {
		f.foldCase = true
	}
}

type moneyFormatter struct {
	foldCase bool
	layouts  *cache.Cache
}

// New creates a Formatter that renders amounts with two decimal places,
// comma grouping and a currency prefix.
func New(opts ...Option) Formatter {
	f := &moneyFormatter{
		layouts: cache.New(layoutExpiration, layoutCleanup),
	}
	for _, opt := range opts {
		opt(f)
	}
	for _, prefix := range knownPrefixes {
		f.layouts.Set(prefix, newLayout(prefix), cache.NoExpiration)
	}
	f.layouts.Set("", newLayout(""), cache.NoExpiration)
	return f
}

var defaultFormatter = New()

// Format renders amount with the default, case-sensitive formatter.
func Format(amount decimal.Decimal, code Code) string {
	return defaultFormatter.Format(amount, code)
}

// Prefix returns the display prefix for code using exact, case-sensitive
// matching.
func Prefix(code Code) string {
	return prefixFor(code, false)
}

// Known lists the recognised currency codes sorted by code.
func Known() []Symbol {
	out := make([]Symbol, 0, len(knownPrefixes))
	for code, prefix := range knownPrefixes {
		out = append(out, Symbol{Code: code, Prefix: prefix})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (f *moneyFormatter) Format(amount decimal.Decimal, code Code) string {
	prefix := prefixFor(code, f.foldCase)
	return f.layout(prefix).FormatMoneyDecimal(amount)
}

func (f *moneyFormatter) FormatFloat(amount float64, code Code) (string, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "", fmt.Errorf("%w: %v is not finite", ErrInvalidAmount, amount)
	}
	return f.Format(decimal.NewFromFloat(amount), code), nil
}

func (f *moneyFormatter) layout(prefix string) *accounting.Accounting {
	if v, found := f.layouts.Get(prefix); found {
		return v.(*accounting.Accounting)
	}
	ac := newLayout(prefix)
	f.layouts.SetDefault(prefix, ac)
	return ac
}

// newLayout returns a fully populated Accounting. FormatMoneyDecimal only
// writes to fields that are empty, so a populated value is safe to share.
func newLayout(prefix string) *accounting.Accounting {
	return accounting.NewAccounting(prefix, precision, thousandSeparator, decimalSeparator,
		positiveFormat, negativeFormat, zeroFormat)
}

func prefixFor(code Code, foldCase bool) string {
	tag, ok := code.Tag()
	if !ok {
		return ""
	}
	if prefix, found := knownPrefixes[tag]; found {
		return prefix
	}
	if foldCase {
		if prefix, found := knownPrefixes[strings.ToUpper(tag)]; found {
			return prefix
		}
	}
	return tag + " "
}
