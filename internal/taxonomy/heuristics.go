// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package taxonomy

import "strings"

// Partial is one rule's contribution. Fields are applied first-non-empty
// wins per field, except ForceCategory which always overwrites.
type Partial struct {
	Category      string
	Subcategory   string
	ForceCategory bool
	Tags          []string
}

// heuristic matches a lowercased title plus tag set and yields a Partial.
type heuristic struct {
	name  string
	match func(title string, tags map[string]bool) *Partial
}

// kw reports whether any keyword occurs in the title (on word boundaries,
// so "ran" is not found inside "restaurant") or in the tag set.
func kw(title string, tags map[string]bool, words ...string) bool {
	for _, w := range words {
		if tags[w] || containsPhrase(title, w) {
			return true
		}
	}
	return false
}

// containsPhrase is a boundary-aware substring check on lowercased input.
func containsPhrase(s, phrase string) bool {
	offset := 0
	for {
		idx := strings.Index(s[offset:], phrase)
		if idx == -1 {
			return false
		}
		idx += offset
		startOK := idx == 0 || !isLetterOrDigit(s[idx-1])
		endIdx := idx + len(phrase)
		endOK := endIdx == len(s) || !isLetterOrDigit(s[endIdx])
		if startOK && endOK {
			return true
		}
		offset = idx + len(phrase)
	}
}

func isLetterOrDigit(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// heuristicTable is the fixed, ordered keyword table. Order is precedence:
// earlier entries claim a field before later ones see it. The workout entry
// keeps the source behavior of always forcing the category to Health even
// when an earlier entry already set cat, an inconsistency preserved on
// purpose and pinned by TestClassify_WorkoutForcesHealthOverEarlierMatch.
var heuristicTable = []heuristic{
	{"work", func(t string, tags map[string]bool) *Partial {
		if kw(t, tags, "work", "office", "shift") {
			return &Partial{Category: "Work"}
		}
		return nil
	}},
	{"clinic", func(t string, tags map[string]bool) *Partial {
		if kw(t, tags, "clinic", "rounds", "patients") {
			return &Partial{Category: "Work", Subcategory: "Clinic"}
		}
		return nil
	}},
	{"meeting", func(t string, tags map[string]bool) *Partial {
		if kw(t, tags, "meeting", "standup", "1:1", "sync") {
			return &Partial{Category: "Work", Subcategory: "Meeting"}
		}
		return nil
	}},
	{"study", func(t string, tags map[string]bool) *Partial {
		if kw(t, tags, "study", "studied", "lecture", "exam", "course") {
			return &Partial{Category: "Learning", Subcategory: "Study"}
		}
		return nil
	}},
	{"workout", func(t string, tags map[string]bool) *Partial {
		if kw(t, tags, "workout", "gym", "lifted", "lifting", "exercise", "training", "ran", "run") {
			return &Partial{Category: "Health", Subcategory: "Workout", ForceCategory: true, Tags: []string{"workout"}}
		}
		return nil
	}},
	{"sleep", func(t string, tags map[string]bool) *Partial {
		if kw(t, tags, "sleep", "slept", "nap", "napped") {
			return &Partial{Category: "Health", Subcategory: "Sleep"}
		}
		return nil
	}},
	{"shopping", func(t string, tags map[string]bool) *Partial {
		if kw(t, tags, "shopping", "groceries", "grocery", "bought", "shopping list") {
			return &Partial{Category: "Errands", Subcategory: "Shopping"}
		}
		return nil
	}},
	{"morning-routine", func(t string, tags map[string]bool) *Partial {
		if kw(t, tags, "morning routine", "got ready", "getting ready") {
			return &Partial{Category: "Personal", Subcategory: "Morning Routine"}
		}
		return nil
	}},
	{"food", func(t string, tags map[string]bool) *Partial {
		if kw(t, tags, "breakfast", "lunch", "dinner", "meal", "ate", "snack", "cooked", "cooking") {
			return &Partial{Category: "Food", Subcategory: "Meal"}
		}
		return nil
	}},
	{"walk", func(t string, tags map[string]bool) *Partial {
		if kw(t, tags, "walk", "walked", "stroll", "hike", "hiked") {
			return &Partial{Category: "Health", Subcategory: "Walk"}
		}
		return nil
	}},
	{"transport", func(t string, tags map[string]bool) *Partial {
		switch {
		case kw(t, tags, "flight", "flew", "airport", "boarding"):
			return &Partial{Category: "Transport", Subcategory: "Flight"}
		case kw(t, tags, "train", "bus", "subway", "metro", "transit"):
			return &Partial{Category: "Transport", Subcategory: "Transit"}
		case kw(t, tags, "parking", "parked"):
			return &Partial{Category: "Transport", Subcategory: "Parking"}
		case kw(t, tags, "drive", "drove", "driving", "commute", "commuted"):
			return &Partial{Category: "Transport", Subcategory: "Driving"}
		}
		return nil
	}},
	{"finance", func(t string, tags map[string]bool) *Partial {
		switch {
		case kw(t, tags, "bank", "banking", "deposit", "transfer"):
			return &Partial{Category: "Finance", Subcategory: "Banking"}
		case kw(t, tags, "bill", "bills", "paid the", "payment"):
			return &Partial{Category: "Finance", Subcategory: "Bills"}
		case kw(t, tags, "budget", "budgeting"):
			return &Partial{Category: "Finance", Subcategory: "Budget"}
		}
		return nil
	}},
	{"job-application", func(t string, tags map[string]bool) *Partial {
		if kw(t, tags, "job application", "applied to", "applied for", "interview prep", "resume", "cover letter") {
			return &Partial{Category: "Work", Subcategory: "Job Application"}
		}
		return nil
	}},
	{"rent", func(t string, tags map[string]bool) *Partial {
		if kw(t, tags, "rent", "landlord", "lease") {
			return &Partial{Category: "Home", Subcategory: "Rent"}
		}
		return nil
	}},
	{"skincare", func(t string, tags map[string]bool) *Partial {
		if kw(t, tags, "skincare", "skin care", "moisturizer", "sunscreen") {
			return &Partial{Category: "Health", Subcategory: "Skincare"}
		}
		return nil
	}},
	{"chores", func(t string, tags map[string]bool) *Partial {
		if kw(t, tags, "chores", "laundry", "dishes", "cleaned", "cleaning", "vacuum") {
			return &Partial{Category: "Home", Subcategory: "Chores"}
		}
		return nil
	}},
	{"retail", func(t string, tags map[string]bool) *Partial {
		if kw(t, tags, "target", "costco", "walmart", "trader joe", "whole foods", "ikea") {
			return &Partial{Category: "Errands", Subcategory: "Shopping"}
		}
		return nil
	}},
}
