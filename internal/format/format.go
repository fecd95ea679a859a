package format

import (
	"fmt"
	"strings"
	"time"
)

// Naira formats a whole-naira amount.
// Example: Naira(50000) => "₦50,000"
func Naira(amount int64) string {
	if amount < 0 {
		return "-₦" + thousandSep(-amount)
	}
	return "₦" + thousandSep(amount)
}

// Currency formats amount in whole units for the currencies the site quotes.
func Currency(amount int64, currency string) string {
	switch strings.ToUpper(strings.TrimSpace(currency)) {
	case "", "NGN":
		return Naira(amount)
	case "USD":
		if amount < 0 { return "-$" + thousandSep(-amount) }
		return "$" + thousandSep(amount)
	default:
		return fmt.Sprintf("%s %s", strings.ToUpper(currency), thousandSep(amount))
	}
}

func thousandSep(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") { neg = true; s = s[1:] }
	var b strings.Builder
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 { b.WriteByte(',') }
		b.WriteRune(c)
	}
	if neg { return "-" + b.String() }
	return b.String()
}

// Date formats t as "Jan 2, 2006", or "Unknown Date" for the zero time.
func Date(t time.Time) string {
	if t.IsZero() {
		return "Unknown Date"
	}
	return t.Format("Jan 2, 2006")
}

// Day returns the day of month used on the post card badge.
func Day(t time.Time) string {
	if t.IsZero() { return "" }
	return fmt.Sprintf("%d", t.Day())
}

// MonthShort returns the short month name used on the post card badge.
func MonthShort(t time.Time) string {
	if t.IsZero() { return "" }
	return t.Format("Jan")
}

// Plural renders "1 Comment" / "3 Comments".
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
