package util

import (
	"fmt"
	"math"
	"strings"
)

func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue == 0:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e6:
		return fmt.Sprintf("%.3f M%s", value/1e6, unit)
	case absValue >= 1e3:
		return fmt.Sprintf("%.3f k%s", value/1e3, unit)
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}

func FormatPressure(value float64) string {
	return fmt.Sprintf("%10.2f", value) // e.g., "   1295.15"
}

func FormatTime(t float64) string {
	return fmt.Sprintf("%8.3f d", t) // e.g., "   3.000 d"
}

// FormatRow renders one row of a pressure field, nx values per line.
func FormatRow(values []float64) string {
	var sb strings.Builder
	for i, v := range values {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(FormatPressure(v))
	}
	return sb.String()
}

// FormatField renders a row-major field with the top row (largest j) first.
func FormatField(values []float64, nx int) string {
	if nx <= 0 || len(values)%nx != 0 {
		return FormatRow(values)
	}
	ny := len(values) / nx
	lines := make([]string, 0, ny)
	for j := ny - 1; j >= 0; j-- {
		lines = append(lines, FormatRow(values[j*nx:(j+1)*nx]))
	}
	return strings.Join(lines, "\n")
}
