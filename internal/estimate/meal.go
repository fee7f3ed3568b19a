// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package estimate

import (
	"regexp"
	"strconv"
	"strings"
)

// FoodItem is one parsed food with its estimate.
type FoodItem struct {
	Name      string    `json:"name"`
	Qty       float64   `json:"qty"`
	Unit      string    `json:"unit,omitempty"`
	Nutrition Nutrition `json:"nutrition"`
}

// Meal is a parsed meal with per-item estimates.
type Meal struct {
	Title string     `json:"title"`
	Kind  string     `json:"kind"` // breakfast, lunch, dinner, snack
	Items []FoodItem `json:"items"`
}

// MealOptions tweaks meal parsing.
type MealOptions struct {
	DefaultKind string // used when no meal word appears
}

var (
	mealKindRegex = regexp.MustCompile(`(?i)\b(breakfast|lunch|dinner|snack|brunch)\b`)
	// "had X", "ate X", "breakfast: X", "lunch was X"
	mealItemsRegex = regexp.MustCompile(`(?i)\b(?:had|ate)\s+(.+)|\b(?:breakfast|lunch|dinner|snack|brunch)(?:\s+was|\s*:)\s*(.+)`)
	qtyItemRegex   = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*(?:x\s*)?([a-z ]+)$`)
	mealSplitter   = regexp.MustCompile(`(?i)\s*(?:,|\bwith\b|\band\b|\+)\s*`)
)

// Totals sums the per-item estimates.
func (m *Meal) Totals() Nutrition {
	var total Nutrition
	for _, item := range m.Items {
		total.Calories += item.Nutrition.Calories
		total.ProteinG += item.Nutrition.ProteinG
		total.CarbsG += item.Nutrition.CarbsG
		total.FatG += item.Nutrition.FatG
	}
	return total
}

// ParseMealFromText extracts a meal from prose like "lunch: chicken and
// rice" or "had 2 eggs with toast". Returns false when the text has no meal
// phrasing.
func ParseMealFromText(text string, opts MealOptions) (*Meal, bool) {
	m := mealItemsRegex.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	kind := strings.ToLower(opts.DefaultKind)
	if km := mealKindRegex.FindStringSubmatch(text); km != nil {
		kind = strings.ToLower(km[1])
	}
	if kind == "" {
		kind = "snack"
	}

	rest := m[1]
	if rest == "" {
		rest = m[2]
	}
	if idx := strings.IndexAny(rest, ".!?\n"); idx != -1 {
		rest = rest[:idx]
	}

	meal := &Meal{Kind: kind, Title: strings.ToUpper(kind[:1]) + kind[1:]}
	for _, part := range mealSplitter.Split(rest, -1) {
		name := strings.Trim(strings.TrimSpace(part), ".,;")
		if name == "" || len(name) > 40 {
			continue
		}

		qty := 1.0
		if qm := qtyItemRegex.FindStringSubmatch(name); qm != nil {
			if v, err := strconv.ParseFloat(qm[1], 64); err == nil && v > 0 {
				qty = v
			}
			name = strings.TrimSpace(qm[2])
		}

		meal.Items = append(meal.Items, FoodItem{
			Name:      name,
			Qty:       qty,
			Nutrition: EstimateFoodNutrition(name, qty, ""),
		})
	}

	if len(meal.Items) == 0 {
		return nil, false
	}
	return meal, true
}
