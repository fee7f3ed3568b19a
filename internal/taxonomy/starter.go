// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package taxonomy

import "strings"

// starterTaxonomy is the built-in category tree. Inferred strings are
// canonicalized against it case-insensitively; user categories accumulate
// alongside it in the store.
var starterTaxonomy = map[string][]string{
	"Work":      {"General", "Clinic", "Meeting", "Job Application", "Deep Work"},
	"Health":    {"General", "Workout", "Walk", "Sleep", "Medical", "Skincare"},
	"Food":      {"General", "Meal", "Snack", "Cooking"},
	"Learning":  {"General", "Study", "Reading", "Course"},
	"Finance":   {"General", "Banking", "Bills", "Budget"},
	"Errands":   {"General", "Shopping", "Groceries"},
	"Transport": {"General", "Flight", "Transit", "Parking", "Driving"},
	"Home":      {"General", "Chores", "Rent", "Maintenance"},
	"Social":    {"General", "Call", "Visit"},
	"Personal":  {"General", "Morning Routine", "Evening Routine", "Self Care"},
}

// CategoriesFromStarter returns the starter category names.
func CategoriesFromStarter() []string {
	categories := make([]string, 0, len(starterTaxonomy))
	for c := range starterTaxonomy {
		categories = append(categories, c)
	}
	return categories
}

// SubcategoriesFromStarter returns the starter subcategories of a category,
// matched case-insensitively. Unknown categories return nil.
func SubcategoriesFromStarter(category string) []string {
	for c, subs := range starterTaxonomy {
		if strings.EqualFold(c, category) {
			out := make([]string, len(subs))
			copy(out, subs)
			return out
		}
	}
	return nil
}

// CanonicalCategory returns the starter casing for a category when it
// exists, else the input unchanged.
func CanonicalCategory(category string) string {
	for c := range starterTaxonomy {
		if strings.EqualFold(c, category) {
			return c
		}
	}
	return category
}

// CanonicalSubcategory returns the starter casing for a subcategory within
// a category when it exists, else the input unchanged.
func CanonicalSubcategory(category, subcategory string) string {
	for c, subs := range starterTaxonomy {
		if !strings.EqualFold(c, category) {
			continue
		}
		for _, s := range subs {
			if strings.EqualFold(s, subcategory) {
				return s
			}
		}
	}
	return subcategory
}
