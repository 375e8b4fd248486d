package service

import (
	"fmt"
	"strconv"
	"strings"
)

// Render formats a ranked result as the overlay caption for the top entry
// and one console line per entry.
func Render(r RankedResult) (overlay string, lines []string) {
	if len(r) == 0 {
		return "", nil
	}
	overlay = fmt.Sprintf("Label: %s, %.2f%%", r[0].Label, float64(r[0].Score)*100)
	lines = make([]string, len(r))
	for i, p := range r {
		lines[i] = fmt.Sprintf("%d. label: %s, probability: %s", i+1, p.Label, formatScore(p.Score))
	}
	return overlay, lines
}

// formatScore prints five significant digits, keeping a decimal point on
// whole numbers ("1.0", not "1").
func formatScore(v float32) string {
	s := strconv.FormatFloat(float64(v), 'g', 5, 32)
	if !strings.ContainsAny(s, ".eIN") {
		s += ".0"
	}
	return s
}
