// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package signal

import (
	"regexp"
	"strings"
)

// Mention kinds
const (
	MentionPerson  = "person"
	MentionPlace   = "place"
	MentionGeneric = "mention"
)

// Mention is one @name occurrence with its heuristic classification.
type Mention struct {
	Raw  string // as written, without the @
	Name string // cleaned-up label
	Kind string
}

var (
	atMentionRegex = regexp.MustCompile(`@([a-zA-Z][a-zA-Z0-9_-]*)`)

	// with Sam, with Dr. Lee, called Mom
	implicitPersonRegex = regexp.MustCompile(`\b(?:with|met|called|texted|emailed)\s+((?:[A-Z][a-z']+\.?\s?){1,3})`)
	// at the Gym, in Paris, to Whole Foods
	implicitPlaceRegex = regexp.MustCompile(`\b(?:at|in|to)\s+(?:the\s+)?((?:[A-Z][a-zA-Z']+\s?){1,3})`)

	// prepositions that mark the preceding mention as a person
	personPrepositions = []string{"with", "call", "called", "text", "texted", "dm", "dmed", "email", "emailed", "met", "meet", "meeting"}

	// relation words map to canonical person titles
	relationLexicon = map[string]string{
		"mom": "Mom", "mum": "Mom", "mother": "Mom",
		"dad": "Dad", "father": "Dad",
		"brother": "Brother", "sister": "Sister",
		"wife": "Wife", "husband": "Husband", "partner": "Partner",
		"grandma": "Grandma", "grandpa": "Grandpa",
		"aunt": "Aunt", "uncle": "Uncle",
	}

	honorifics = []string{"dr.", "dr", "mr.", "mr", "mrs.", "mrs", "ms.", "ms", "prof.", "prof"}

	// words that disqualify an implicit capture; time-of-day words and
	// generic clinical/role nouns are the main false-positive sources
	bannedNameWords = map[string]bool{
		"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
		"friday": true, "saturday": true, "sunday": true,
		"morning": true, "afternoon": true, "evening": true, "night": true,
		"noon": true, "midnight": true, "today": true, "tomorrow": true,
		"yesterday": true, "january": true, "february": true, "march": true,
		"april": true, "may": true, "june": true, "july": true,
		"august": true, "september": true, "october": true, "november": true,
		"december": true,
		"doctor": true, "dentist": true, "appointment": true, "clinic": true,
		"hospital": true, "therapy": true, "therapist": true, "patient": true,
		"meeting": true, "work": true, "lunch": true, "dinner": true,
		"breakfast": true, "home": true,
	}
)

// ExtractMentions finds @name tokens and classifies each as person, place,
// or generic mention from the words immediately before it.
func ExtractMentions(text string) []Mention {
	var mentions []Mention
	seen := make(map[string]bool)

	for _, loc := range atMentionRegex.FindAllStringSubmatchIndex(text, -1) {
		raw := text[loc[2]:loc[3]]
		key := strings.ToLower(raw)
		if seen[key] {
			continue
		}
		seen[key] = true

		kind := classifyMention(text, loc[0], key)
		name := cleanPersonName(raw)
		if name == "" {
			name = raw
		}
		mentions = append(mentions, Mention{Raw: raw, Name: name, Kind: kind})
	}

	return mentions
}

// classifyMention inspects the words before an @mention. A person
// preposition or a relation word marks it a person; at/in/to marks a place.
func classifyMention(text string, start int, key string) string {
	if _, ok := relationLexicon[key]; ok {
		return MentionPerson
	}

	from := start - 24
	if from < 0 {
		from = 0
	}
	before := strings.ToLower(text[from:start])
	words := strings.Fields(before)
	if len(words) == 0 {
		return MentionGeneric
	}
	last := words[len(words)-1]

	for _, p := range personPrepositions {
		if last == p {
			return MentionPerson
		}
	}
	if last == "at" || last == "in" || last == "to" || last == "near" {
		return MentionPlace
	}
	return MentionGeneric
}

// ExtractPeopleAndPlaces runs both @mention classification and the implicit
// capitalized-name scans, returning deduplicated people and places.
func ExtractPeopleAndPlaces(text string) (people []string, places []string) {
	seenPeople := make(map[string]bool)
	seenPlaces := make(map[string]bool)

	addPerson := func(name string) {
		name = cleanPersonName(name)
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if seenPeople[key] {
			return
		}
		seenPeople[key] = true
		people = append(people, name)
	}
	addPlace := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" || isBannedName(name) {
			return
		}
		key := strings.ToLower(name)
		if seenPlaces[key] {
			return
		}
		seenPlaces[key] = true
		places = append(places, name)
	}

	for _, m := range ExtractMentions(text) {
		switch m.Kind {
		case MentionPerson:
			addPerson(m.Raw)
		case MentionPlace:
			addPlace(m.Name)
		}
	}

	for _, m := range implicitPersonRegex.FindAllStringSubmatch(text, -1) {
		addPerson(m[1])
	}
	for _, m := range implicitPlaceRegex.FindAllStringSubmatch(text, -1) {
		addPlace(m[1])
	}

	return people, places
}

// cleanPersonName strips honorifics, rejects over-long captures and banned
// words, and maps relation words to canonical titles. Empty means rejected.
func cleanPersonName(name string) string {
	name = strings.TrimSpace(strings.Trim(name, ".,;"))
	if name == "" {
		return ""
	}

	if canonical, ok := relationLexicon[strings.ToLower(name)]; ok {
		return canonical
	}

	words := strings.Fields(name)
	if len(words) > 3 {
		return ""
	}

	var kept []string
	for _, w := range words {
		lw := strings.ToLower(w)
		isHonorific := false
		for _, h := range honorifics {
			if lw == h {
				isHonorific = true
				break
			}
		}
		if isHonorific {
			continue
		}
		if bannedNameWords[strings.Trim(lw, ".,")] {
			return ""
		}
		kept = append(kept, strings.Trim(w, "."))
	}

	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, " ")
}

// isBannedName rejects place captures made of time-of-day or generic words.
func isBannedName(name string) bool {
	for _, w := range strings.Fields(strings.ToLower(name)) {
		if bannedNameWords[strings.Trim(w, ".,")] {
			return true
		}
	}
	return false
}
