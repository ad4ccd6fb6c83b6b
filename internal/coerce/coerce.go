// =============================================================================
// Payables Dashboard - Type Coercers
// =============================================================================
//
// Cell text -> typed values. None of these functions return errors: a value
// that cannot be read becomes 0 (numbers) or "no date" (dates) and the row
// carries on. Data-quality reporting looks at the raw text separately.
//
// =============================================================================

package coerce

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/textnorm"
	"github.com/shopspring/decimal"
)

// =============================================================================
// NUMBERS
// =============================================================================

// numberReplacer maps Arabic-Indic digits and separators to ASCII, and drops
// thousands separators.
var numberReplacer = strings.NewReplacer(
	",", "",
	"٬", "", // Arabic thousands separator
	"٫", ".", // Arabic decimal separator
	" ", "",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
)

// ToDecimal parses a possibly comma-formatted amount. Empty or non-numeric
// text yields zero. Negative values are kept, including the accounting form
// "(100)".
func ToDecimal(s string) decimal.Decimal {
	s = numberReplacer.Replace(textnorm.NormalizeText(s))
	s = strings.TrimPrefix(s, "+")
	if len(s) > 2 && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return ToDecimal(s[1 : len(s)-1]).Neg()
	}
	if s == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ToNumber is ToDecimal as a float64.
func ToNumber(s string) float64 {
	f := ToDecimal(s).InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// =============================================================================
// DATES
// =============================================================================

// excelEpoch is day zero of the spreadsheet serial date system.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const (
	minExcelSerial = 20000
	maxExcelSerial = 80000
	minCompactYear = 2000
	maxCompactYear = 2100
)

var (
	serialPattern  = regexp.MustCompile(`^\d+(\.\d+)?$`)
	isoPattern     = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)
	dmyPattern     = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})$`)
	compactPattern = regexp.MustCompile(`^[\d\s/.\-]+$`)
	nonDigit       = regexp.MustCompile(`\D`)
)

// ParseDateSmart reads a date cell. It tries, in order:
//   - a spreadsheet serial day count (exclusive range 20000..80000)
//   - ISO YYYY-MM-DD, optionally followed by a time part
//   - D-M-YYYY or M/D/YYYY; a first component above 12 is the day, otherwise
//     a second component above 12 is the day, otherwise day comes first
//   - an 8-digit compact form, yyyymmdd when the leading four digits are a
//     plausible year, ddmmyyyy otherwise
//
// The result is UTC midnight. ok is false for empty text, placeholders and
// calendar-invalid dates such as 31-02-2026.
func ParseDateSmart(s string) (time.Time, bool) {
	return parseDate(s, true)
}

// ParseUserDate reads a date typed by a user (CLI flags). It accepts the same
// textual forms as ParseDateSmart but never treats a bare number as a
// spreadsheet serial.
func ParseUserDate(s string) (time.Time, bool) {
	return parseDate(s, false)
}

func parseDate(raw string, allowSerial bool) (time.Time, bool) {
	s := numberDigits(textnorm.NormalizeText(raw))
	if s == "" || textnorm.IsPlaceholder(s) {
		return time.Time{}, false
	}

	if allowSerial && serialPattern.MatchString(s) {
		if n, err := strconv.ParseFloat(s, 64); err == nil && n > minExcelSerial && n < maxExcelSerial {
			return excelEpoch.AddDate(0, 0, int(math.Floor(n))), true
		}
	}

	datePart := s
	if i := strings.IndexAny(datePart, "T "); i > 0 {
		datePart = datePart[:i]
	}

	if m := isoPattern.FindStringSubmatch(datePart); m != nil {
		return civil(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}

	if m := dmyPattern.FindStringSubmatch(datePart); m != nil {
		a, b, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
		switch {
		case a > 12:
			return civil(year, b, a)
		case b > 12:
			return civil(year, a, b)
		default:
			return civil(year, b, a)
		}
	}

	if compactPattern.MatchString(s) {
		digits := nonDigit.ReplaceAllString(s, "")
		if len(digits) == 8 {
			if yyyy := atoi(digits[:4]); yyyy >= minCompactYear && yyyy <= maxCompactYear {
				return civil(yyyy, atoi(digits[4:6]), atoi(digits[6:8]))
			}
			return civil(atoi(digits[4:8]), atoi(digits[2:4]), atoi(digits[:2]))
		}
	}

	return time.Time{}, false
}

// civil builds a UTC date and rejects out-of-range components instead of
// letting time.Date normalize them (31 Feb must not become 3 Mar).
func civil(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// numberDigits maps Arabic-Indic digits to ASCII, leaving everything else.
func numberDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		}
		return r
	}, s)
}

// =============================================================================
// DATE ARITHMETIC
// =============================================================================

// Day truncates t to UTC midnight of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return Day(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DaysUntil returns ceil((to - from) / 24h).
func DaysUntil(from, to time.Time) int {
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}
