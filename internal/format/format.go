// Package format turns raw flight values into the display strings shown to
// the traveller. Every function is pure.
package format

import (
	"math"
	"strconv"

	"github.com/pkordes/flightlog/internal/domain"
)

// Placeholder is shown wherever a value is absent.
const Placeholder = "—"

const (
	labelUnderOneYear = "Menos de 1 año"
	labelNoData       = "Sin datos"
	labelOnTime       = "Último tramo: en horario"
	labelCancelled    = "Último tramo: cancelado"
	labelDelayed      = "Último tramo: con retraso"
)

// Age renders an aircraft age in years.
// Nil and NaN render as Placeholder; [0, 0.5) as "Menos de 1 año"; anything
// else rounded to one decimal, e.g. "5.7 años".
func Age(age *float64) string {
	if age == nil || math.IsNaN(*age) {
		return Placeholder
	}
	if *age >= 0 && *age < 0.5 {
		return labelUnderOneYear
	}
	return years(*age)
}

// Status renders the previous-leg status line.
// delayMinutes is only read for LegDelayed.
func Status(status domain.LegStatus, delayMinutes *int) string {
	switch status {
	case domain.LegOnTime:
		return labelOnTime
	case domain.LegCancelled:
		return labelCancelled
	case domain.LegDelayed:
		if delayMinutes == nil || *delayMinutes <= 0 {
			return labelDelayed
		}
		return "Último tramo: +" + strconv.Itoa(*delayMinutes) + " min"
	default:
		return labelNoData
	}
}

func years(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + " años"
}
