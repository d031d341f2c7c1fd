package docgen

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var malayMonths = [12]string{
	"Januari", "Februari", "Mac", "April", "Mei", "Jun",
	"Julai", "Ogos", "September", "Oktober", "November", "Disember",
}

var malayDays = [7]string{"Ahad", "Isnin", "Selasa", "Rabu", "Khamis", "Jumaat", "Sabtu"}

// ParseISODate parses YYYY-MM-DD strictly. Dates that do not exist on the
// calendar (2025-02-30) are rejected.
func ParseISODate(s string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders an ISO date as "5 Januari 2025". Invalid input yields "".
func FormatDate(s string) string {
	t, ok := ParseISODate(s)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d %s %d", t.Day(), malayMonths[t.Month()-1], t.Year())
}

// DayName returns the Malay weekday for an ISO date, "-" when invalid.
func DayName(s string) string {
	t, ok := ParseISODate(s)
	if !ok {
		return "-"
	}
	return malayDays[t.Weekday()]
}

// TimeSuffix returns the Malay period of day for a 24h hour.
func TimeSuffix(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "Pagi"
	case hour >= 12 && hour < 15:
		return "Tengah Hari"
	case hour >= 15 && hour < 19:
		return "Petang"
	default:
		return "Malam"
	}
}

// FormatTimeWithSuffix renders "07:30" as "7.30 Pagi". Strings that already
// contain letters are treated as formatted and returned as is, so are
// strings that do not parse as a 24h time.
func FormatTimeWithSuffix(s string) string {
	if s == "" {
		return ""
	}
	for _, r := range s {
		if unicode.IsLetter(r) {
			return s
		}
	}
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return s
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return s
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return s
	}
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour > 12:
		display = hour - 12
	}
	return fmt.Sprintf("%d.%02d %s", display, minute, TimeSuffix(hour))
}

// YearFromTarikh returns the year of an ISO date, or the year of now when
// the date is empty or invalid.
func YearFromTarikh(tarikh string, now time.Time) string {
	if t, ok := ParseISODate(tarikh); ok {
		return strconv.Itoa(t.Year())
	}
	return strconv.Itoa(now.Year())
}

// ResolveHari returns hari when set, otherwise derives it from tarikh.
func ResolveHari(hari, tarikh string) string {
	if strings.TrimSpace(hari) != "" {
		return hari
	}
	if day := DayName(tarikh); day != "-" {
		return day
	}
	return ""
}

// FormatDateTimeDay joins the non-empty parts of date, time and weekday
// with " / ". The time is shown as entered. All parts empty yields "-".
func FormatDateTimeDay(tarikh, masa string) string {
	parts := make([]string, 0, 3)
	if date := FormatDate(tarikh); date != "" {
		parts = append(parts, strings.ToUpper(date))
	}
	if masa = strings.TrimSpace(masa); masa != "" {
		parts = append(parts, strings.ToUpper(masa))
	}
	if day := DayName(tarikh); day != "-" {
		parts = append(parts, strings.ToUpper(day))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " / ")
}
