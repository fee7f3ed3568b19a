// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package taxonomy

import (
	"testing"

	"github.com/daybook-io/daybook/internal/database"
	"github.com/stretchr/testify/assert"
)

func TestClassify_ClinicTag(t *testing.T) {
	out := Classify(Input{Title: "Clinic rounds", Tags: []string{"#clinic"}})

	assert.Equal(t, "Work", out.Category)
	assert.Equal(t, "Clinic", out.Subcategory)
}

func TestClassify_NoCrossCallMutation(t *testing.T) {
	// The heuristic table must not accumulate state between calls
	first := Classify(Input{Title: "Clinic rounds", Tags: []string{"#clinic"}})
	Classify(Input{Title: "Gym session", Tags: []string{"#workout"}})
	second := Classify(Input{Title: "Clinic rounds", Tags: []string{"#clinic"}})

	assert.Equal(t, first, second)
}

func TestClassify_SlashTagSetsBothFields(t *testing.T) {
	out := Classify(Input{Title: "rounds", Tags: []string{"#work/clinic"}})

	assert.Equal(t, "Work", out.Category)
	assert.Equal(t, "Clinic", out.Subcategory)
}

func TestClassify_SlashTagShortCircuitsHeuristics(t *testing.T) {
	// The workout force must not fire once a slash tag claimed the pair
	out := Classify(Input{Title: "gym workout", Tags: []string{"#personal/errands"}})

	assert.Equal(t, "Personal", out.Category)
	assert.Equal(t, "Errands", out.Subcategory)
}

func TestClassify_UserRuleBeatsHeuristics(t *testing.T) {
	rules := []database.TaxonomyRule{
		{Match: `side project`, Category: "Projects", Subcategory: "Side Project"},
	}

	out := Classify(Input{Title: "Worked on side project", Rules: rules})

	assert.Equal(t, "Projects", out.Category)
	assert.Equal(t, "Side Project", out.Subcategory)
}

func TestClassify_UserRuleExtraTags(t *testing.T) {
	rules := []database.TaxonomyRule{
		{Match: `piano`, Category: "Learning", Tags: []string{"music"}},
	}

	out := Classify(Input{Title: "Piano practice", Rules: rules})

	assert.Contains(t, out.ExtraTags, "music")
}

func TestClassify_MalformedRuleSkipped(t *testing.T) {
	rules := []database.TaxonomyRule{
		{Match: `([unclosed`, Category: "Broken"},
		{Match: `clinic`, Category: "Work", Subcategory: "Clinic"},
	}

	out := Classify(Input{Title: "clinic visit", Rules: rules})

	assert.Equal(t, "Work", out.Category)
}

func TestClassify_WorkoutForcesHealthOverEarlierMatch(t *testing.T) {
	// "work" claims category Work first, then the workout entry
	// force-overwrites to Health. Source behavior preserved as-is.
	out := Classify(Input{Title: "work then gym workout"})

	assert.Equal(t, "Health", out.Category)
	assert.Equal(t, "Workout", out.Subcategory)
}

func TestClassify_DefaultPersonalGeneral(t *testing.T) {
	out := Classify(Input{Title: "pondered things"})

	assert.Equal(t, "Personal", out.Category)
	assert.Equal(t, "General", out.Subcategory)
}

func TestClassify_OverrideBeatsCurrent(t *testing.T) {
	out := Classify(Input{
		Title:            "random note",
		OverrideCategory: "Projects",
		CurrentCategory:  "Personal",
	})

	assert.Equal(t, "Projects", out.Category)
}

func TestClassify_CurrentUsedWhenNoOverride(t *testing.T) {
	out := Classify(Input{Title: "random note", CurrentCategory: "Social"})

	assert.Equal(t, "Social", out.Category)
}

func TestClassify_FoodGetsMealSubcategory(t *testing.T) {
	out := Classify(Input{Title: "late dinner"})

	assert.Equal(t, "Food", out.Category)
	assert.Equal(t, "Meal", out.Subcategory)
}

func TestClassify_MorningRoutineFallback(t *testing.T) {
	out := Classify(Input{Title: "got ready slowly", CurrentCategory: "Personal"})

	assert.Equal(t, "Morning Routine", out.Subcategory)
}

func TestClassify_CanonicalizesCasing(t *testing.T) {
	out := Classify(Input{Title: "note", OverrideCategory: "HEALTH", OverrideSubcategory: "workout"})

	assert.Equal(t, "Health", out.Category)
	assert.Equal(t, "Workout", out.Subcategory)
}

func TestClassify_TransportSubBranching(t *testing.T) {
	out := Classify(Input{Title: "caught my flight home"})

	assert.Equal(t, "Transport", out.Category)
	assert.Equal(t, "Flight", out.Subcategory)
}

func TestClassify_FinanceSubBranching(t *testing.T) {
	out := Classify(Input{Title: "paid the electric bill"})

	assert.Equal(t, "Finance", out.Category)
	assert.Equal(t, "Bills", out.Subcategory)
}

func TestSubcategoriesFromStarter_CaseInsensitive(t *testing.T) {
	subs := SubcategoriesFromStarter("health")

	assert.Contains(t, subs, "Workout")
}

func TestCategoriesFromStarter_NotEmpty(t *testing.T) {
	assert.NotEmpty(t, CategoriesFromStarter())
}
