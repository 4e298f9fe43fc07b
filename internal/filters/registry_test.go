package filters

import (
	"bytes"
	"encoding/json"
	"html/template"
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kreinecke/moneyfmt/internal/currency"
)

func TestNewRegistryRegistersCurrency(t *testing.T) {
	r := NewRegistry(currency.New())

	assert.Equal(t, []string{CurrencyFilter}, r.Names())
	_, ok := r.Lookup(CurrencyFilter)
	assert.True(t, ok)
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry(currency.New())
	upper := func(value any, _ ...string) (string, error) { return "X", nil }

	assert.ErrorIs(t, r.Register("", upper), ErrInvalidFilter)
	assert.ErrorIs(t, r.Register("upper", nil), ErrInvalidFilter)
	assert.ErrorIs(t, r.Register(CurrencyFilter, upper), ErrDuplicateFilter)

	require.NoError(t, r.Register("upper", upper))
	assert.Equal(t, []string{CurrencyFilter, "upper"}, r.Names())
}

func TestApplyCurrency(t *testing.T) {
	r := NewRegistry(currency.New())

	tests := []struct {
		name  string
		value any
		args  []string
		want  string
	}{
		{name: "decimal", value: decimal.RequireFromString("1234.5"), args: []string{"GBP"}, want: "£ 1,234.50"},
		{name: "decimal pointer", value: ptr(decimal.RequireFromString("0")), args: []string{"DKK"}, want: "kr 0.00"},
		{name: "float", value: -42.1, args: []string{"USD"}, want: "$ -42.10"},
		{name: "string", value: "99.999", args: []string{"EUR"}, want: "EUR 100.00"},
		{name: "int without code", value: 5, want: "5.00"},
		{name: "uint", value: uint16(7), args: []string{"gbp"}, want: "gbp 7.00"},
		{name: "json number", value: json.Number("1000000"), args: []string{"USD"}, want: "$ 1,000,000.00"},
		{name: "extra args ignored", value: 1, args: []string{"USD", "ignored"}, want: "$ 1.00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Apply(CurrencyFilter, tc.value, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestApplyErrors(t *testing.T) {
	r := NewRegistry(currency.New())

	_, err := r.Apply("missing", 1)
	assert.ErrorIs(t, err, ErrUnknownFilter)

	_, err = r.Apply(CurrencyFilter, math.NaN(), "USD")
	assert.ErrorIs(t, err, currency.ErrInvalidAmount)

	_, err = r.Apply(CurrencyFilter, "twelve")
	assert.ErrorIs(t, err, currency.ErrInvalidAmount)

	_, err = r.Apply(CurrencyFilter, struct{}{})
	assert.ErrorIs(t, err, ErrUnsupportedAmount)

	var nilDecimal *decimal.Decimal
	_, err = r.Apply(CurrencyFilter, nilDecimal)
	assert.ErrorIs(t, err, ErrUnsupportedAmount)

	_, err = r.Apply(CurrencyFilter, "1e50000000", "GBP")
	assert.ErrorIs(t, err, currency.ErrInvalidAmount)

	_, err = r.Apply(CurrencyFilter, decimal.New(1, 50_000_000), "GBP")
	assert.ErrorIs(t, err, currency.ErrInvalidAmount)

	_, err = r.Apply(CurrencyFilter, "1,2,3")
	assert.ErrorIs(t, err, currency.ErrInvalidAmount)
}

func TestFuncMapInTemplate(t *testing.T) {
	r := NewRegistry(currency.New())
	tmpl := template.Must(template.New("row").Funcs(r.FuncMap()).Parse(
		`{{currency .Amount .Code}}|{{currency .Amount}}`))

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, map[string]any{
		"Amount": decimal.RequireFromString("1234.5"),
		"Code":   "GBP",
	})
	require.NoError(t, err)
	assert.Equal(t, "£ 1,234.50|1,234.50", buf.String())
}

func TestFuncMapSurfacesFilterErrors(t *testing.T) {
	r := NewRegistry(currency.New())
	tmpl := template.Must(template.New("bad").Funcs(r.FuncMap()).Parse(`{{currency .}}`))

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, "not a number")
	assert.ErrorIs(t, err, currency.ErrInvalidAmount)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry(currency.New())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = r.Apply(CurrencyFilter, 1, "USD")
		}()
		go func() {
			defer wg.Done()
			_ = r.FuncMap()
		}()
	}
	wg.Wait()
}

func ptr[T any](v T) *T {
	return &v
}
