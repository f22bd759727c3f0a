package period

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Unknown is the label rendered for a missing or malformed period code.
const Unknown = "N/A"

// codeLayout is the persisted YYYYMM representation of a calendar month.
const codeLayout = "200601"

var (
	// ErrInvalidCode is returned when a period code is not six digits.
	ErrInvalidCode = errors.New("period: invalid code")
	// ErrInvalidMonth is returned when the month component is outside 1..12.
	ErrInvalidMonth = errors.New("period: invalid month")
	// ErrInvalidYear is returned when the year cannot be written with four digits.
	ErrInvalidYear = errors.New("period: invalid year")
)

// Form selects the verbosity of a month label.
type Form int

const (
	// Short renders three-letter abbreviations ("Jul").
	Short Form = iota
	// Long renders full month names followed by the year ("Julio 2024").
	Long
)

var shortMonths = [12]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

var longMonths = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// Period is a decoded calendar month.
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Decoded is the rendering-facing view of a period code.
type Decoded struct {
	Year       int    `json:"year"`
	MonthLabel string `json:"month_label"`
	Form       Form   `json:"-"`
	Valid      bool   `json:"valid"`
}

// String returns the month label, with the year appended in long form.
func (d Decoded) String() string {
	if !d.Valid {
		return Unknown
	}
	if d.Form == Long {
		return d.MonthLabel + " " + strconv.Itoa(d.Year)
	}
	return d.MonthLabel
}

// Parse splits a YYYYMM code into year and month.
func Parse(code string) (Period, error) {
	code = strings.TrimSpace(code)
	if len(code) != len(codeLayout) {
		return Period{}, ErrInvalidCode
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return Period{}, ErrInvalidCode
		}
	}
	year, _ := strconv.Atoi(code[:4])
	month, _ := strconv.Atoi(code[4:])
	if month < 1 || month > 12 {
		return Period{}, ErrInvalidMonth
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// Decode renders a code in the requested form. Malformed codes yield the
// Unknown sentinel instead of an error.
func Decode(code string, form Form) Decoded {
	p, err := Parse(code)
	if err != nil {
		return Decoded{MonthLabel: Unknown, Form: form}
	}
	return p.Decode(form)
}

// DecodeInt is Decode for integer codes such as 202407.
func DecodeInt(code int, form Form) Decoded {
	if code < 0 {
		return Decoded{MonthLabel: Unknown, Form: form}
	}
	return Decode(fmt.Sprintf("%06d", code), form)
}

// Label is shorthand for Decode(code, form).String().
func Label(code string, form Form) string {
	return Decode(code, form).String()
}

// Decode renders an already parsed period.
func (p Period) Decode(form Form) Decoded {
	if p.Month < time.January || p.Month > time.December {
		return Decoded{MonthLabel: Unknown, Form: form}
	}
	names := shortMonths
	if form == Long {
		names = longMonths
	}
	return Decoded{Year: p.Year, MonthLabel: names[p.Month-1], Form: form, Valid: true}
}

// Code returns the YYYYMM representation.
func (p Period) Code() string {
	code, err := Encode(p.Year, p.Month)
	if err != nil {
		return ""
	}
	return code
}

// Encode builds a YYYYMM code.
func Encode(year int, month time.Month) (string, error) {
	if year < 0 || year > 9999 {
		return "", ErrInvalidYear
	}
	if month < time.January || month > time.December {
		return "", ErrInvalidMonth
	}
	return fmt.Sprintf("%04d%02d", year, int(month)), nil
}

// ParseForm maps a query value to a Form; anything but "long" is Short.
func ParseForm(value string) Form {
	if strings.EqualFold(strings.TrimSpace(value), "long") {
		return Long
	}
	return Short
}
