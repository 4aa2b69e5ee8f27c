package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in         string
		want       Category
		recognized bool
	}{
		{"Narcotic", CategoryNarcotic, true},
		{"narcotic", CategoryNarcotic, true},
		{"  Muscle Relaxant ", CategoryMuscleRelaxant, true},
		{"critical event", CategoryCriticalEvent, true},
		{"Equipment", CategoryEquipment, true},
		{"Antibiotic", CategoryGeneral, false},
		{"", CategoryGeneral, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCategory(tt.in)
			if got != tt.want || ok != tt.recognized {
				t.Errorf("ParseCategory(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.recognized)
			}
		})
	}
}

func TestInterpretation_ToEvent_Defaults(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 30, 15, 500_000_000, time.Local)

	tests := []struct {
		name   string
		interp Interpretation
		want   Event
	}{
		{
			name:   "AllPresent",
			interp: Interpretation{"item": "Fentanyl", "qty": 50.0, "unit": "mcg", "cat": "Narcotic"},
			want:   Event{Item: "Fentanyl", Quantity: 50, Unit: "mcg", Category: CategoryNarcotic},
		},
		{
			name:   "Empty",
			interp: Interpretation{},
			want:   Event{Item: DefaultItem, Quantity: DefaultQuantity, Unit: DefaultUnit, Category: CategoryGeneral},
		},
		{
			name:   "MissingItemAndUnit",
			interp: Interpretation{"qty": 2.0, "cat": "Induction"},
			want:   Event{Item: "Unknown", Quantity: 2, Unit: "-", Category: CategoryInduction},
		},
		{
			name:   "NonNumericQty",
			interp: Interpretation{"item": "Propofol", "qty": "a lot", "unit": "mg"},
			want:   Event{Item: "Propofol", Quantity: 0, Unit: "mg", Category: CategoryGeneral},
		},
		{
			name:   "NumericStringQty",
			interp: Interpretation{"item": "Rocuronium", "qty": "2.5", "unit": "mg", "cat": "muscle relaxant"},
			want:   Event{Item: "Rocuronium", Quantity: 2.5, Unit: "mg", Category: CategoryMuscleRelaxant},
		},
		{
			name:   "NaNStringQty",
			interp: Interpretation{"item": "Fentanyl", "qty": "NaN", "unit": "mcg", "cat": "Narcotic"},
			want:   Event{Item: "Fentanyl", Quantity: 0, Unit: "mcg", Category: CategoryNarcotic},
		},
		{
			name:   "InfStringQty",
			interp: Interpretation{"item": "Fentanyl", "qty": "Inf", "unit": "mcg", "cat": "Narcotic"},
			want:   Event{Item: "Fentanyl", Quantity: 0, Unit: "mcg", Category: CategoryNarcotic},
		},
		{
			name:   "NegativeInfinityStringQty",
			interp: Interpretation{"item": "Fentanyl", "qty": "-Infinity", "unit": "mcg", "cat": "Narcotic"},
			want:   Event{Item: "Fentanyl", Quantity: 0, Unit: "mcg", Category: CategoryNarcotic},
		},
		{
			name:   "NullValues",
			interp: Interpretation{"item": nil, "qty": nil, "unit": nil, "cat": nil},
			want:   Event{Item: "Unknown", Quantity: 0, Unit: "-", Category: CategoryGeneral},
		},
		{
			name:   "UnknownCategory",
			interp: Interpretation{"item": "Cefazolin", "qty": 2.0, "unit": "g", "cat": "Antibiotic"},
			want:   Event{Item: "Cefazolin", Quantity: 2, Unit: "g", Category: CategoryGeneral},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.interp.ToEvent(now)
			tt.want.Timestamp = now.Truncate(time.Second)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ToEvent() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInterpretation_QuantityJSONNumber(t *testing.T) {
	interp := Interpretation{"qty": json.Number("12.5")}
	if got := interp.Quantity(); got != 12.5 {
		t.Errorf("Quantity() = %v, want 12.5", got)
	}
}

func TestInterpretation_QuantityNonFinite(t *testing.T) {
	tests := []any{
		json.Number("NaN"),
		json.Number("+Inf"),
		math.NaN(),
		math.Inf(-1),
		" infinity ",
	}
	for _, raw := range tests {
		if got := (Interpretation{"qty": raw}).Quantity(); got != 0 {
			t.Errorf("Quantity(%v) = %v, want 0", raw, got)
		}
	}

	m := ComputeMetrics([]Event{(Interpretation{"qty": "NaN", "cat": "Narcotic"}).ToEvent(time.Now())})
	if m.NarcoticSum != 0 {
		t.Errorf("NarcoticSum = %v, want 0", m.NarcoticSum)
	}
}

func TestInterpretation_RawCategory(t *testing.T) {
	if got := (Interpretation{"cat": "Antibiotic"}).RawCategory(); got != "Antibiotic" {
		t.Errorf("RawCategory() = %q, want Antibiotic", got)
	}
	if got := (Interpretation{}).RawCategory(); got != "" {
		t.Errorf("RawCategory() = %q, want empty", got)
	}
}

func TestEvent_Formatting(t *testing.T) {
	e := Event{
		Timestamp: time.Date(2026, 1, 2, 7, 5, 9, 0, time.Local),
		Quantity:  2.5,
	}
	if e.TimeString() != "07:05:09" {
		t.Errorf("TimeString() = %q, want 07:05:09", e.TimeString())
	}
	if e.QuantityString() != "2.5" {
		t.Errorf("QuantityString() = %q, want 2.5", e.QuantityString())
	}
	if FormatQuantity(50) != "50" {
		t.Errorf("FormatQuantity(50) = %q, want 50", FormatQuantity(50))
	}
}

func TestComputeMetrics(t *testing.T) {
	events := []Event{
		{Item: "Fentanyl", Quantity: 50, Category: CategoryNarcotic},
		{Item: "BP Drop", Category: CategoryCriticalEvent},
		{Item: "Morphine", Quantity: 4, Category: CategoryNarcotic},
		{Item: "ETT", Quantity: 1, Category: CategoryEquipment},
	}

	m := ComputeMetrics(events)

	if m.NarcoticSum != 54 {
		t.Errorf("NarcoticSum = %v, want 54", m.NarcoticSum)
	}
	if m.CriticalCount != 1 {
		t.Errorf("CriticalCount = %d, want 1", m.CriticalCount)
	}
	if m.TotalCount != 4 {
		t.Errorf("TotalCount = %d, want 4", m.TotalCount)
	}
	if diff := cmp.Diff([]float64{50, 50, 54, 54}, m.NarcoticSeries); diff != "" {
		t.Errorf("NarcoticSeries mismatch (-want +got):\n%s", diff)
	}
	if m.CategoryCounts[CategoryNarcotic] != 2 {
		t.Errorf("CategoryCounts[Narcotic] = %d, want 2", m.CategoryCounts[CategoryNarcotic])
	}
}

func TestComputeMetrics_Empty(t *testing.T) {
	m := ComputeMetrics(nil)
	if m.NarcoticSum != 0 || m.CriticalCount != 0 || m.TotalCount != 0 {
		t.Errorf("empty metrics = %+v, want zeros", m)
	}
}

func TestComputeMetricsNewestFirst(t *testing.T) {
	newestFirst := []Event{
		{Quantity: 10, Category: CategoryNarcotic},
		{Quantity: 50, Category: CategoryNarcotic},
	}
	m := ComputeMetricsNewestFirst(newestFirst)
	if diff := cmp.Diff([]float64{50, 60}, m.NarcoticSeries); diff != "" {
		t.Errorf("NarcoticSeries mismatch (-want +got):\n%s", diff)
	}
}
