// Package models defines data structures and domain types.
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Category classifies a clinical event.
type Category string

const (
	// CategoryNarcotic covers opioid analgesics.
	CategoryNarcotic Category = "Narcotic"
	// CategoryVasoactive covers vasopressors and inotropes.
	CategoryVasoactive Category = "Vasoactive"
	// CategoryInduction covers induction agents.
	CategoryInduction Category = "Induction"
	// CategoryMuscleRelaxant covers neuromuscular blockers.
	CategoryMuscleRelaxant Category = "Muscle Relaxant"
	// CategoryCriticalEvent covers intraoperative incidents (BP drop, desaturation).
	CategoryCriticalEvent Category = "Critical Event"
	// CategoryEquipment covers airway devices, lines and monitors.
	CategoryEquipment Category = "Equipment"
	// CategoryGeneral is the fallback for missing or unrecognized categories.
	CategoryGeneral Category = "General"
)

// Default field values applied when an interpretation omits a key.
const (
	DefaultItem     = "Unknown"
	DefaultQuantity = 0.0
	DefaultUnit     = "-"
)

// Categories lists the classification targets offered to the model, in display order.
var Categories = []Category{
	CategoryNarcotic,
	CategoryVasoactive,
	CategoryInduction,
	CategoryMuscleRelaxant,
	CategoryCriticalEvent,
	CategoryEquipment,
}

// String returns the display name of the category.
func (c Category) String() string {
	return string(c)
}

// ParseCategory maps a free-text category onto the closed set.
// The second return value is false when the input fell back to General.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return CategoryGeneral, false
}

// Event is one interpreted clinical action.
type Event struct {
	Timestamp time.Time `json:"time"`
	Item      string    `json:"item"`
	Unit      string    `json:"unit"`
	Category  Category  `json:"category"`
	Quantity  float64   `json:"qty"`
}

// TimeString returns the acceptance time as shown in the audit table.
func (e Event) TimeString() string {
	return e.Timestamp.Format("15:04:05")
}

// QuantityString formats the quantity without trailing zeros.
func (e Event) QuantityString() string {
	return FormatQuantity(e.Quantity)
}

// FormatQuantity formats a dose compactly ("50", "2.5").
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// Interpretation is the parsed JSON object returned by the text-generation
// service. Any subset of the keys item, qty, unit and cat may be present.
type Interpretation map[string]any

// Item returns the item name or DefaultItem.
func (i Interpretation) Item() string {
	return i.stringField("item", DefaultItem)
}

// Unit returns the unit or DefaultUnit.
func (i Interpretation) Unit() string {
	return i.stringField("unit", DefaultUnit)
}

// Quantity returns the numeric quantity, or DefaultQuantity when the key is
// absent, not numeric or not finite. Numeric strings are accepted.
func (i Interpretation) Quantity() float64 {
	raw, ok := i["qty"]
	if !ok || raw == nil {
		return DefaultQuantity
	}

	switch v := raw.(type) {
	case float64:
		return finiteOrDefault(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return finiteOrDefault(f)
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return finiteOrDefault(f)
		}
	}
	return DefaultQuantity
}

// finiteOrDefault rejects NaN and infinities, which ParseFloat accepts.
func finiteOrDefault(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return DefaultQuantity
	}
	return f
}

// Category returns the classified category; missing or unknown values map
// to CategoryGeneral. recognized reports whether the raw value matched.
func (i Interpretation) Category() (c Category, recognized bool) {
	raw, ok := i["cat"].(string)
	if !ok {
		return CategoryGeneral, false
	}
	return ParseCategory(raw)
}

// RawCategory returns the category string exactly as the service returned it.
func (i Interpretation) RawCategory() string {
	if v, ok := i["cat"]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

// ToEvent builds a fully defaulted Event accepted at now.
func (i Interpretation) ToEvent(now time.Time) Event {
	cat, _ := i.Category()
	return Event{
		Timestamp: now.Truncate(time.Second),
		Item:      i.Item(),
		Quantity:  i.Quantity(),
		Unit:      i.Unit(),
		Category:  cat,
	}
}

func (i Interpretation) stringField(key, def string) string {
	raw, ok := i[key]
	if !ok || raw == nil {
		return def
	}
	s, ok := raw.(string)
	if !ok {
		s = fmt.Sprint(raw)
	}
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// Metrics are aggregates derived from the session log on every read.
type Metrics struct {
	CategoryCounts map[Category]int
	NarcoticSeries []float64
	NarcoticSum    float64
	CriticalCount  int
	TotalCount     int
}

// ComputeMetrics derives Metrics from events ordered oldest first.
// NarcoticSeries holds the running narcotic total after each event.
func ComputeMetrics(oldestFirst []Event) Metrics {
	m := Metrics{
		CategoryCounts: make(map[Category]int),
		NarcoticSeries: make([]float64, 0, len(oldestFirst)),
	}
	for _, e := range oldestFirst {
		m.TotalCount++
		m.CategoryCounts[e.Category]++
		switch e.Category {
		case CategoryNarcotic:
			m.NarcoticSum += e.Quantity
		case CategoryCriticalEvent:
			m.CriticalCount++
		}
		m.NarcoticSeries = append(m.NarcoticSeries, m.NarcoticSum)
	}
	return m
}

// ComputeMetricsNewestFirst derives Metrics from events in display order.
func ComputeMetricsNewestFirst(newestFirst []Event) Metrics {
	ordered := make([]Event, len(newestFirst))
	for i, e := range newestFirst {
		ordered[len(newestFirst)-1-i] = e
	}
	return ComputeMetrics(ordered)
}
