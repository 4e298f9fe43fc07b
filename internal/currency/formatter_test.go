package currency

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount string
		code   Code
		want   string
	}{
		{name: "GBPWithGrouping", amount: "1234.5", code: CodeOf("GBP"), want: "£ 1,234.50"},
		{name: "DKKZero", amount: "0", code: CodeOf("DKK"), want: "kr 0.00"},
		{name: "USDNegative", amount: "-42.1", code: CodeOf("USD"), want: "$ -42.10"},
		{name: "OtherCodeRoundsUp", amount: "99.999", code: CodeOf("EUR"), want: "EUR 100.00"},
		{name: "AbsentCode", amount: "5", code: NoCode, want: "5.00"},
		{name: "LowercaseIsVerbatim", amount: "1", code: CodeOf("gbp"), want: "gbp 1.00"},
		{name: "EmptyCodeIsPresent", amount: "1", code: CodeOf(""), want: " 1.00"},
		{name: "MillionsGrouping", amount: "1234567.891", code: NoCode, want: "1,234,567.89"},
		{name: "NegativeGrouping", amount: "-1234567.5", code: CodeOf("USD"), want: "$ -1,234,567.50"},
		{name: "NegativeThreeDigits", amount: "-123.4", code: NoCode, want: "-123.40"},
		{name: "HalfAwayFromZeroPositive", amount: "2.345", code: NoCode, want: "2.35"},
		{name: "HalfAwayFromZeroNegative", amount: "-2.345", code: NoCode, want: "-2.35"},
		{name: "BelowHalfRoundsDown", amount: "2.344", code: NoCode, want: "2.34"},
		{name: "TinyNegativeRendersUnsigned", amount: "-0.001", code: CodeOf("GBP"), want: "£ 0.00"},
		{name: "MultiWordCode", amount: "10", code: CodeOf("BTC sat"), want: "BTC sat 10.00"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			amount := decimal.RequireFromString(tc.amount)
			assert.Equal(t, tc.want, New().Format(amount, tc.code))
			assert.Equal(t, tc.want, Format(amount, tc.code))
		})
	}
}

func TestFormatFloat(t *testing.T) {
	t.Parallel()

	f := New()

	got, err := f.FormatFloat(1234.5, CodeOf("GBP"))
	require.NoError(t, err)
	assert.Equal(t, "£ 1,234.50", got)

	got, err = f.FormatFloat(99.999, CodeOf("EUR"))
	require.NoError(t, err)
	assert.Equal(t, "EUR 100.00", got)

	got, err = f.FormatFloat(-42.1, CodeOf("USD"))
	require.NoError(t, err)
	assert.Equal(t, "$ -42.10", got)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := f.FormatFloat(v, CodeOf("USD"))
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.True(t, Error.Has(err))
	}
}

func TestCaseInsensitiveCodes(t *testing.T) {
	t.Parallel()

	f := New(WithCaseInsensitiveCodes())
	one := decimal.NewFromInt(1)

	assert.Equal(t, "£ 1.00", f.Format(one, CodeOf("gbp")))
	assert.Equal(t, "kr 1.00", f.Format(one, CodeOf("Dkk")))
	assert.Equal(t, "$ 1.00", f.Format(one, CodeOf("usd")))
	assert.Equal(t, "eur 1.00", f.Format(one, CodeOf("eur")))
	assert.Equal(t, "1.00", f.Format(one, NoCode))
}

func TestPrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "£ ", Prefix(CodeOf("GBP")))
	assert.Equal(t, "kr ", Prefix(CodeOf("DKK")))
	assert.Equal(t, "$ ", Prefix(CodeOf("USD")))
	assert.Equal(t, "EUR ", Prefix(CodeOf("EUR")))
	assert.Equal(t, "usd ", Prefix(CodeOf("usd")))
	assert.Equal(t, "", Prefix(NoCode))
}

func TestKnownIsSorted(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []Symbol{
		{Code: "DKK", Prefix: "kr "},
		{Code: "GBP", Prefix: "£ "},
		{Code: "USD", Prefix: "$ "},
	}, Known())
}

func TestCode(t *testing.T) {
	t.Parallel()

	tag, ok := NoCode.Tag()
	assert.False(t, ok)
	assert.Empty(t, tag)
	assert.False(t, CodeFromPtr(nil).IsPresent())

	empty := ""
	assert.True(t, CodeFromPtr(&empty).IsPresent())

	gbp := "GBP"
	assert.Equal(t, CodeOf("GBP"), CodeFromPtr(&gbp))
	assert.Equal(t, "GBP", CodeOf("GBP").String())
	assert.Equal(t, "<none>", NoCode.String())
}

func TestFormatIsDeterministicAcrossGoroutines(t *testing.T) {
	t.Parallel()

	f := New()
	amount := decimal.RequireFromString("-98765.4321")
	want := "CHF -98,765.43"

	var wg sync.WaitGroup
	results := make([]string, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.Format(amount, CodeOf("CHF"))
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"1234.5":     "1234.5",
		" 1,234.50 ": "1234.5",
		"-42.1":      "-42.1",
		"0":          "0",
		"1e3":        "1000",
	}
	for in, want := range cases {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "ParseAmount(%q) = %s", in, got)
	}

	for _, in := range []string{"", "   ", "abc", "NaN", "12..3", "£ 5"} {
		_, err := ParseAmount(in)
		assert.True(t, errors.Is(err, ErrInvalidAmount), "expected ErrInvalidAmount for %q, got %v", in, err)
	}
}

func TestParseAmountGrouping(t *testing.T) {
	t.Parallel()

	valid := map[string]string{
		"1,234":           "1234",
		"-1,234,567.891":  "-1234567.891",
		"12,345.":         "12345",
		"999,999,999,999": "999999999999",
		"1234567":         "1234567",
	}
	for in, want := range valid {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "ParseAmount(%q) = %s", in, got)
	}

	for _, in := range []string{"1,2,3", ",5", "1,23", "1234,567", "1,234,", "1,,234", "1.234,5", "1,234e3", "-,123"} {
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestParseAmountBounds(t *testing.T) {
	t.Parallel()

	largest := "999999999999999999999999999999.99"
	got, err := ParseAmount(largest)
	require.NoError(t, err)
	assert.Equal(t, "999,999,999,999,999,999,999,999,999,999.99", New().Format(got, NoCode))

	_, err = ParseAmount("0." + strings.Repeat("0", MaxFractionDigits-1) + "1")
	require.NoError(t, err)

	for _, in := range []string{
		"1e50000000",
		"-1e50000000",
		"1e-50000000",
		"0e50000000",
		"1e30",
		"1" + strings.Repeat("0", MaxIntegerDigits),
		"-1" + strings.Repeat("0", MaxIntegerDigits),
		"0." + strings.Repeat("0", MaxFractionDigits) + "1",
		strings.Repeat("1", 200),
	} {
		start := time.Now()
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
		assert.Less(t, time.Since(start), time.Second, "rejecting %.20q took too long", in)
	}
}

func TestCheckAmount(t *testing.T) {
	t.Parallel()

	require.NoError(t, CheckAmount(decimal.Zero))
	require.NoError(t, CheckAmount(decimal.New(-99, 27)))
	assert.ErrorIs(t, CheckAmount(decimal.New(1, MaxIntegerDigits)), ErrInvalidAmount)
	assert.ErrorIs(t, CheckAmount(decimal.New(1, 50_000_000)), ErrInvalidAmount)
	assert.ErrorIs(t, CheckAmount(decimal.New(1, -50_000_000)), ErrInvalidAmount)
	assert.True(t, Error.Has(CheckAmount(decimal.New(5, 40))))
}

func BenchmarkFormatKnownCode(b *testing.B) {
	f := New()
	amount := decimal.RequireFromString("1234567.891")
	for i := 0; i < b.N; i++ {
		_ = f.Format(amount, CodeOf("GBP"))
	}
}

func BenchmarkFormatUnknownCode(b *testing.B) {
	f := New()
	amount := decimal.RequireFromString("1234567.891")
	for i := 0; i < b.N; i++ {
		_ = f.Format(amount, CodeOf("EUR"))
	}
}
