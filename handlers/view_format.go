package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cell kinds drive client-side alignment and export styling.
const (
	CellText     = "text"
	CellNumber   = "number"
	CellCurrency = "currency"
	CellDate     = "date"
	CellSummary  = "summary"
)

// absent is rendered for values that were never reported. A stored zero
// renders as "0"; only nil becomes "-".
const absent = "-"

// formatCount renders an optional head count. Nil means the field was left
// empty on the form and must not be confused with a counted zero.
func formatCount(n *int) string {
	if n == nil {
		return absent
	}
	return formatInt(*n)
}

// formatInt renders an integer with thousands separators.
func formatInt(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

// formatFloat renders an optional measurement with up to two decimals.
func formatFloat(f *float64) string {
	if f == nil {
		return absent
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// formatCurrency renders an optional monetary value as dollars.
func formatCurrency(f *float64) string {
	if f == nil {
		return absent
	}
	return fmt.Sprintf("$%.2f", *f)
}

// formatDate renders a visit or joining date.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return absent
	}
	return t.Format("1/2/2006")
}

// formatOptText renders an optional text field.
func formatOptText(s *string) string {
	if s == nil || *s == "" {
		return absent
	}
	return *s
}

// intOrZero treats an unreported count as zero for arithmetic. Rendering
// keeps the nil distinction; sums do not.
func intOrZero(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// formatAnimalSummary renders the per-species breakdown of one line as a
// single cell, e.g. "14 total (5 sheep, 3 goats, 4 cattle, 2 dozo/yak, 0 others)".
// All-nil counts render as absent.
func formatAnimalSummary(sheep, goats, cattle, dozoYak, others *int) string {
	if sheep == nil && goats == nil && cattle == nil && dozoYak == nil && others == nil {
		return absent
	}
	total := intOrZero(sheep) + intOrZero(goats) + intOrZero(cattle) + intOrZero(dozoYak) + intOrZero(others)
	return fmt.Sprintf("%d total (%d sheep, %d goats, %d cattle, %d dozo/yak, %d others)",
		total, intOrZero(sheep), intOrZero(goats), intOrZero(cattle), intOrZero(dozoYak), intOrZero(others))
}

// formatSalesSummary renders the header-level livestock sales of a visit,
// e.g. "9 animals (4 sheep, 2 cattle, 3 goats)".
func formatSalesSummary(sheepSold, cattleSold, goatsSold *int) string {
	if sheepSold == nil && cattleSold == nil && goatsSold == nil {
		return absent
	}
	total := intOrZero(sheepSold) + intOrZero(cattleSold) + intOrZero(goatsSold)
	return fmt.Sprintf("%d animals (%d sheep, %d cattle, %d goats)",
		total, intOrZero(sheepSold), intOrZero(cattleSold), intOrZero(goatsSold))
}

// salesIncome is the derived value of sold livestock: the per-animal price
// times the number of animals sold. Nil when no price was recorded.
func salesIncome(perAnimal *float64, sheepSold, cattleSold, goatsSold *int) *float64 {
	if perAnimal == nil {
		return nil
	}
	total := float64(intOrZero(sheepSold) + intOrZero(cattleSold) + intOrZero(goatsSold))
	income := *perAnimal * total
	return &income
}

// predationLoss is the derived value of animals lost to a predator attack.
func predationLoss(perAnimal *float64, sheep, goats, cattle, dozoYak, others *int) *float64 {
	if perAnimal == nil {
		return nil
	}
	lost := float64(intOrZero(sheep) + intOrZero(goats) + intOrZero(cattle) + intOrZero(dozoYak) + intOrZero(others))
	loss := *perAnimal * lost
	return &loss
}
