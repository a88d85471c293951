package booking

import (
	"fmt"
	"time"
)

var ptBRMonths = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// FormatPtBR renders t as the pt-BR phrase used in notifications and
// cancellation mail, e.g. "dia 02 de janeiro, às 8:30h".
func FormatPtBR(t time.Time) string {
	return fmt.Sprintf("dia %02d de %s, às %d:%02dh",
		t.Day(), ptBRMonths[t.Month()-1], t.Hour(), t.Minute())
}

// StartOfHour truncates t to the beginning of its hour, preserving location.
func StartOfHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}
