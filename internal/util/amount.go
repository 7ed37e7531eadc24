package util

import (
	"strconv"
	"strings"
)

// FormatIDR renders an integer rupiah amount as Rp1.250.000 (negative as -Rp...)
func FormatIDR(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "Rp" + groupThousands(strconv.FormatInt(amount, 10), ".")
}

// FormatAmount renders an amount in minor-less units with the currency code,
// using the rupiah style for IDR.
func FormatAmount(amount int64, currency string) string {
	if currency == "" || strings.EqualFold(currency, "IDR") {
		return FormatIDR(amount)
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + groupThousands(strconv.FormatInt(amount, 10), ",") + " " + strings.ToUpper(currency)
}

func groupThousands(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
