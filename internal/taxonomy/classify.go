// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package taxonomy infers category/subcategory for a title plus tag set.
// Precedence is an ordered fold of pure rules with first-non-empty wins per
// field: slash tags, then user-authored rules, then the fixed keyword table,
// then frontmatter/current/Personal fallbacks, then canonicalization against
// the starter taxonomy.
package taxonomy

import (
	"regexp"
	"strings"

	"github.com/daybook-io/daybook/internal/database"
)

// Classification is the resolved category pair plus any extra tags
// contributed by user rules.
type Classification struct {
	Category    string
	Subcategory string
	ExtraTags   []string
}

// Input carries everything classification depends on. Override comes from
// capture frontmatter; Current is the caller's pre-existing value.
type Input struct {
	Title               string
	Tags                []string
	OverrideCategory    string
	OverrideSubcategory string
	CurrentCategory     string
	CurrentSubcategory  string
	Rules               []database.TaxonomyRule
}

var morningRoutineRegex = regexp.MustCompile(`(?i)\b(?:morning routine|got ready|getting ready)\b`)

// Classify resolves the category pair for a title and tag set.
func Classify(in Input) Classification {
	var out Classification

	title := strings.ToLower(in.Title)
	tags := make(map[string]bool, len(in.Tags))
	for _, t := range in.Tags {
		tags[strings.ToLower(strings.TrimPrefix(t, "#"))] = true
	}

	// 1. A slash tag sets both fields and short-circuits the keyword table.
	slashTagged := false
	for _, t := range in.Tags {
		raw := strings.TrimPrefix(t, "#")
		if idx := strings.Index(raw, "/"); idx > 0 && idx < len(raw)-1 {
			out.Category = titleCase(raw[:idx])
			out.Subcategory = titleCase(raw[idx+1:])
			slashTagged = true
			break
		}
	}

	// 2. User-authored rules match the title. Malformed patterns are
	// skipped, and extra tags accumulate even when the fields are taken.
	for _, rule := range in.Rules {
		re, err := regexp.Compile("(?i)" + rule.Match)
		if err != nil {
			continue
		}
		if !re.MatchString(in.Title) {
			continue
		}
		if out.Category == "" && rule.Category != "" {
			out.Category = rule.Category
		}
		if out.Subcategory == "" && rule.Subcategory != "" {
			out.Subcategory = rule.Subcategory
		}
		out.ExtraTags = append(out.ExtraTags, rule.Tags...)
	}

	// 3. The fixed keyword table, folded in order with first-wins fields.
	// The workout entry force-overwrites category (see heuristics.go).
	if !slashTagged {
		for _, h := range heuristicTable {
			p := h.match(title, tags)
			if p == nil {
				continue
			}
			if p.ForceCategory && p.Category != "" {
				out.Category = p.Category
			} else if out.Category == "" && p.Category != "" {
				out.Category = p.Category
			}
			if out.Subcategory == "" && p.Subcategory != "" {
				out.Subcategory = p.Subcategory
			}
			out.ExtraTags = append(out.ExtraTags, p.Tags...)
		}
	}

	// 4. Category fallbacks: frontmatter override, then current, then
	// Personal.
	if out.Category == "" {
		switch {
		case in.OverrideCategory != "":
			out.Category = in.OverrideCategory
		case in.CurrentCategory != "":
			out.Category = in.CurrentCategory
		default:
			out.Category = "Personal"
		}
	}

	// 5. Subcategory fallbacks.
	if out.Subcategory == "" {
		switch {
		case in.OverrideSubcategory != "":
			out.Subcategory = in.OverrideSubcategory
		case in.CurrentSubcategory != "":
			out.Subcategory = in.CurrentSubcategory
		case morningRoutineRegex.MatchString(in.Title):
			out.Subcategory = "Morning Routine"
		case strings.EqualFold(out.Category, "Food"):
			out.Subcategory = "Meal"
		default:
			out.Subcategory = "General"
		}
	}

	// 6. Canonicalize against the starter taxonomy.
	out.Category = CanonicalCategory(out.Category)
	out.Subcategory = CanonicalSubcategory(out.Category, out.Subcategory)

	return out
}

// titleCase uppercases the first letter of each word.
func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "-", " "))
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}
