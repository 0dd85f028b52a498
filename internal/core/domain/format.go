package domain

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// frenchShortMonths mirrors the abbreviated month names of the fr locale.
var frenchShortMonths = [...]string{
	"janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc.",
}

var frenchTitle = cases.Title(language.French)

// FormatDate renders a stored YYYY-MM-DD date the way the bill list shows it,
// e.g. "2004-04-04" becomes "4 Avr. 04".
func FormatDate(raw string) (string, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return "", fmt.Errorf("format date %q: %w", raw, err)
	}

	month := []rune(frenchTitle.String(frenchShortMonths[t.Month()-1]))
	if len(month) > 3 {
		month = month[:3]
	}
	return fmt.Sprintf("%d %s. %02d", t.Day(), string(month), t.Year()%100), nil
}

// FormatStatus returns the French label displayed for a status.
func FormatStatus(s BillStatus) string {
	switch s {
	case StatusPending:
		return "En attente"
	case StatusAccepted:
		return "Accepté"
	case StatusRefused:
		return "Refusé"
	default:
		return string(s)
	}
}
