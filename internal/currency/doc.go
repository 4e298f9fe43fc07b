// Package currency renders monetary amounts for display. Amounts are shown
// with exactly two decimal places, rounded half away from zero, using ","
// between thousands and "." as the decimal point. GBP, DKK and USD map to
// their symbols; any other code is used verbatim as the prefix and an absent
// code produces no prefix at all.
package currency
