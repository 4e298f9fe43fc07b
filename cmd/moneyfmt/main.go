package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/kreinecke/moneyfmt/internal/currency"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run formats every amount argument on its own line. It returns 1 if any
// amount was invalid, after printing the ones that were not.
func run(args []string, stdout, stderr io.Writer) int {
	app := kingpin.New("moneyfmt", "Format monetary amounts for display")
	app.Writer(stdout)
	app.ErrorWriter(stderr)
	app.UsageWriter(stderr)

	var currencySet bool
	code := app.Flag("currency", "Currency code used for the prefix (GBP, DKK, USD or any other tag)").
		Short('c').IsSetByUser(&currencySet).String()
	normalize := app.Flag("normalize-currency-case", "Match GBP, DKK and USD case-insensitively").Bool()
	amounts := app.Arg("amount", "Amounts to format, e.g. 1234.5 or 1,234.50").Required().Strings()

	if _, err := app.Parse(args); err != nil {
		fmt.Fprintf(stderr, "moneyfmt: %v\n", err)
		return 2
	}

	var opts []currency.Option
	if *normalize {
		opts = append(opts, currency.WithCaseInsensitiveCodes())
	}
	formatter := currency.New(opts...)

	tag := currency.NoCode
	if currencySet {
		tag = currency.CodeOf(*code)
	}

	status := 0
	for _, raw := range *amounts {
		amount, err := currency.ParseAmount(raw)
		if err != nil {
			fmt.Fprintf(stderr, "moneyfmt: %v\n", err)
			status = 1
			continue
		}
		fmt.Fprintln(stdout, formatter.Format(amount, tag))
	}
	return status
}
