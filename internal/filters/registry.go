package filters

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/kreinecke/moneyfmt/internal/currency"
)

// CurrencyFilter is the name under which the currency formatter is registered.
const CurrencyFilter = "currency"

var (
	// ErrInvalidFilter is returned when a filter has an empty name or nil function.
	ErrInvalidFilter = errors.New("filter must have a non-empty name and a function")
	// ErrDuplicateFilter is returned when a name is registered twice.
	ErrDuplicateFilter = errors.New("filter already registered")
	// ErrUnknownFilter is returned by Apply for names that were never registered.
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrUnsupportedAmount is returned when a value cannot be used as an amount.
	ErrUnsupportedAmount = errors.New("unsupported amount type")
)

// Filter turns a value, plus optional arguments, into display text.
type Filter func(value any, args ...string) (string, error)

// Registry holds the display filters available to a rendering layer. It is
// built once at startup and handed to whatever renders views.
type Registry struct {
	mu      sync.RWMutex
	filters map[string]Filter
}

// NewRegistry returns a Registry with the currency filter backed by f.
func NewRegistry(f currency.Formatter) *Registry {
	r := &Registry{filters: make(map[string]Filter)}
	_ = r.Register(CurrencyFilter, CurrencyFunc(f))
	return r
}

// Register adds a filter under name.
func (r *Registry) Register(name string, fn Filter) error {
	if name == "" || fn == nil {
		return ErrInvalidFilter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.filters[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFilter, name)
	}
	r.filters[name] = fn
	return nil
}

// Lookup returns the filter registered under name.
func (r *Registry) Lookup(name string) (Filter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.filters[name]
	return fn, ok
}

// Names returns the registered filter names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.filters))
	for name := range r.filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply runs the named filter.
func (r *Registry) Apply(name string, value any, args ...string) (string, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownFilter, name)
	}
	return fn(value, args...)
}

// FuncMap exposes every registered filter to html/template.
func (r *Registry) FuncMap() template.FuncMap {
	r.mu.RLock()
	defer r.mu.RUnlock()

	funcs := make(template.FuncMap, len(r.filters))
	for name, fn := range r.filters {
		funcs[name] = fn
	}
	return funcs
}

// CurrencyFunc adapts f into a Filter. The first argument, when given, is the
// currency code; without it the amount is rendered with no prefix.
func CurrencyFunc(f currency.Formatter) Filter {
	return func(value any, args ...string) (string, error) {
		code := currency.NoCode
		if len(args) > 0 {
			code = currency.CodeOf(args[0])
		}

		switch v := value.(type) {
		case float64:
			return f.FormatFloat(v, code)
		case float32:
			return f.FormatFloat(float64(v), code)
		}

		amount, err := toDecimal(value)
		if err != nil {
			return "", err
		}
		if err := currency.CheckAmount(amount); err != nil {
			return "", err
		}
		return f.Format(amount, code), nil
	}
}

func toDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, fmt.Errorf("%w: nil decimal", ErrUnsupportedAmount)
		}
		return *v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int8:
		return decimal.NewFromInt(int64(v)), nil
	case int16:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint8:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint16:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint32:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint64:
		return decimal.NewFromUint64(v), nil
	case string:
		return currency.ParseAmount(v)
	case json.Number:
		return currency.ParseAmount(v.String())
	default:
		return decimal.Zero, fmt.Errorf("%w: %T", ErrUnsupportedAmount, value)
	}
}
