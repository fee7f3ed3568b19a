// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package signal

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	moneyDollarRegex = regexp.MustCompile(`\$(\d+(?:\.\d{1,2})?)`)
	moneyWordRegex   = regexp.MustCompile(`(?i)\b(\d+(?:\.\d{1,2})?)\s+(?:dollars|bucks)\b`)
	moneySpendRegex  = regexp.MustCompile(`(?i)\bspen[dt]\s+\$?(\d+(?:\.\d{1,2})?)\b`)

	shoppingVerbRegex = regexp.MustCompile(`(?i)\b(?:buy|bought|get|pick up|picked up|grab|grabbed)\s+(.+)`)
	shoppingSplitter  = regexp.MustCompile(`(?i)\s*(?:,|\band\b)\s*`)

	// a following preposition or relative-date word ends the item list
	shoppingStopRegex = regexp.MustCompile(`(?i)\s+(?:at|from|for|before|after|on|tomorrow|today|tonight|later|this week|next week)\b.*$`)
)

// ExtractMoney finds distinct money amounts ($N, N dollars/bucks, spend N).
func ExtractMoney(text string) []float64 {
	var amounts []float64
	seen := make(map[float64]bool)

	collect := func(matches [][]string) {
		for _, m := range matches {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil || seen[v] {
				continue
			}
			seen[v] = true
			amounts = append(amounts, v)
		}
	}

	collect(moneyDollarRegex.FindAllStringSubmatch(text, -1))
	collect(moneyWordRegex.FindAllStringSubmatch(text, -1))
	collect(moneySpendRegex.FindAllStringSubmatch(text, -1))

	return amounts
}

// ExtractShoppingItems finds item lists after buy/get/pick up/grab. The list
// is truncated at the first preposition or relative-date word and split on
// commas and "and".
func ExtractShoppingItems(text string) []string {
	m := shoppingVerbRegex.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	list := m[1]
	// Cut at sentence end first
	if idx := strings.IndexAny(list, ".!?\n"); idx != -1 {
		list = list[:idx]
	}
	list = shoppingStopRegex.ReplaceAllString(list, "")

	var items []string
	seen := make(map[string]bool)
	for _, part := range shoppingSplitter.Split(list, -1) {
		item := strings.TrimSpace(part)
		item = strings.Trim(item, ".,;")
		if item == "" || len(item) > 40 {
			continue
		}
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, item)
	}

	return items
}
