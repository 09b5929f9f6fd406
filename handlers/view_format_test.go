package handlers

import (
	"testing"
	"time"
)

func TestFormatCountDistinguishesNilFromZero(t *testing.T) {
	if got := formatCount(nil); got != "-" {
		t.Errorf("formatCount(nil) = %q, want -", got)
	}
	if got := formatCount(intPtr(0)); got != "0" {
		t.Errorf("formatCount(0) = %q, want 0", got)
	}
	if got := formatCount(intPtr(1234)); got != "1,234" {
		t.Errorf("formatCount(1234) = %q, want 1,234", got)
	}
}

func TestFormatInt(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		if got := formatInt(tt.in); got != tt.want {
			t.Errorf("formatInt(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	if got := formatCurrency(nil); got != "-" {
		t.Errorf("formatCurrency(nil) = %q, want -", got)
	}
	if got := formatCurrency(floatPtr(0)); got != "$0.00" {
		t.Errorf("formatCurrency(0) = %q, want $0.00", got)
	}
	if got := formatCurrency(floatPtr(1250.5)); got != "$1250.50" {
		t.Errorf("formatCurrency(1250.5) = %q, want $1250.50", got)
	}
}

func TestFormatDate(t *testing.T) {
	if got := formatDate(time.Time{}); got != "-" {
		t.Errorf("formatDate(zero) = %q, want -", got)
	}
	d := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	if got := formatDate(d); got != "3/9/2024" {
		t.Errorf("formatDate = %q, want 3/9/2024", got)
	}
}

func TestFormatAnimalSummary(t *testing.T) {
	if got := formatAnimalSummary(nil, nil, nil, nil, nil); got != "-" {
		t.Errorf("all-nil summary = %q, want -", got)
	}

	got := formatAnimalSummary(intPtr(5), intPtr(3), intPtr(4), intPtr(2), nil)
	want := "14 total (5 sheep, 3 goats, 4 cattle, 2 dozo/yak, 0 others)"
	if got != want {
		t.Errorf("formatAnimalSummary = %q, want %q", got, want)
	}

	// A single explicit zero still renders, it is a reported value.
	got = formatAnimalSummary(intPtr(0), nil, nil, nil, nil)
	want = "0 total (0 sheep, 0 goats, 0 cattle, 0 dozo/yak, 0 others)"
	if got != want {
		t.Errorf("formatAnimalSummary zero = %q, want %q", got, want)
	}
}

func TestFormatSalesSummary(t *testing.T) {
	if got := formatSalesSummary(nil, nil, nil); got != "-" {
		t.Errorf("all-nil sales = %q, want -", got)
	}
	got := formatSalesSummary(intPtr(4), intPtr(2), intPtr(3))
	want := "9 animals (4 sheep, 2 cattle, 3 goats)"
	if got != want {
		t.Errorf("formatSalesSummary = %q, want %q", got, want)
	}
}

func TestSalesIncome(t *testing.T) {
	if got := salesIncome(nil, intPtr(4), intPtr(2), intPtr(3)); got != nil {
		t.Errorf("salesIncome without price = %v, want nil", *got)
	}
	got := salesIncome(floatPtr(100), intPtr(4), intPtr(2), intPtr(3))
	if got == nil || *got != 900 {
		t.Errorf("salesIncome = %v, want 900", got)
	}
	got = salesIncome(floatPtr(100), nil, nil, nil)
	if got == nil || *got != 0 {
		t.Errorf("salesIncome with no sales = %v, want 0", got)
	}
}

func TestPredationLoss(t *testing.T) {
	if got := predationLoss(nil, intPtr(2), nil, nil, nil, nil); got != nil {
		t.Errorf("predationLoss without price = %v, want nil", *got)
	}
	got := predationLoss(floatPtr(150), intPtr(2), intPtr(1), nil, nil, nil)
	if got == nil || *got != 450 {
		t.Errorf("predationLoss = %v, want 450", got)
	}
}
