// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package estimate provides rough nutrition and workout estimation from
// free text. Numbers here are serving-level approximations, not a food
// database.
package estimate

import "strings"

// Nutrition holds per-item macro estimates.
type Nutrition struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// nutritionTable maps food names to single-serving estimates.
var nutritionTable = map[string]Nutrition{
	"egg":      {Calories: 78, ProteinG: 6, CarbsG: 0.6, FatG: 5},
	"eggs":     {Calories: 78, ProteinG: 6, CarbsG: 0.6, FatG: 5},
	"toast":    {Calories: 75, ProteinG: 3, CarbsG: 13, FatG: 1},
	"bread":    {Calories: 75, ProteinG: 3, CarbsG: 13, FatG: 1},
	"oatmeal":  {Calories: 150, ProteinG: 5, CarbsG: 27, FatG: 3},
	"banana":   {Calories: 105, ProteinG: 1.3, CarbsG: 27, FatG: 0.4},
	"apple":    {Calories: 95, ProteinG: 0.5, CarbsG: 25, FatG: 0.3},
	"chicken":  {Calories: 230, ProteinG: 43, CarbsG: 0, FatG: 5},
	"salmon":   {Calories: 280, ProteinG: 39, CarbsG: 0, FatG: 13},
	"rice":     {Calories: 205, ProteinG: 4.3, CarbsG: 45, FatG: 0.4},
	"pasta":    {Calories: 220, ProteinG: 8, CarbsG: 43, FatG: 1.3},
	"salad":    {Calories: 120, ProteinG: 3, CarbsG: 10, FatG: 8},
	"yogurt":   {Calories: 150, ProteinG: 12, CarbsG: 17, FatG: 4},
	"coffee":   {Calories: 5, ProteinG: 0.3, CarbsG: 0, FatG: 0},
	"smoothie": {Calories: 210, ProteinG: 5, CarbsG: 45, FatG: 2},
	"burger":   {Calories: 550, ProteinG: 25, CarbsG: 40, FatG: 30},
	"pizza":    {Calories: 285, ProteinG: 12, CarbsG: 36, FatG: 10},
	"sandwich": {Calories: 350, ProteinG: 15, CarbsG: 40, FatG: 14},
	"soup":     {Calories: 170, ProteinG: 8, CarbsG: 20, FatG: 6},
	"steak":    {Calories: 420, ProteinG: 46, CarbsG: 0, FatG: 25},
	"tofu":     {Calories: 144, ProteinG: 16, CarbsG: 3, FatG: 8},
}

// defaultServing is used for foods outside the table.
var defaultServing = Nutrition{Calories: 250, ProteinG: 8, CarbsG: 30, FatG: 10}

// EstimateFoodNutrition returns an estimate for a quantity of a named food.
// Unknown foods fall back to a generic serving. Unit is advisory; only
// quantity scales the estimate.
func EstimateFoodNutrition(name string, qty float64, unit string) Nutrition {
	if qty <= 0 {
		qty = 1
	}

	base, ok := nutritionTable[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		// Try the last word ("grilled chicken" -> "chicken")
		words := strings.Fields(strings.ToLower(name))
		if len(words) > 0 {
			base, ok = nutritionTable[words[len(words)-1]]
		}
		if !ok {
			base = defaultServing
		}
	}

	return Nutrition{
		Calories: base.Calories * qty,
		ProteinG: base.ProteinG * qty,
		CarbsG:   base.CarbsG * qty,
		FatG:     base.FatG * qty,
	}
}
