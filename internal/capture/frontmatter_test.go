// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePlainText(t *testing.T) {
	c := Parse("walked the dog in the park", 1000)

	assert.Equal(t, "walked the dog in the park", c.Body)
	assert.Equal(t, int64(1000), c.AnchorMs)
	assert.True(t, c.Overrides.IsZero())
}

func TestParseWithOverrides(t *testing.T) {
	content := `---
category: Learning
subcategory: Reading
tags:
  - book
importance: 6
---
Read two chapters of Dune`

	c := Parse(content, 1000)

	assert.Equal(t, "Read two chapters of Dune", c.Body)
	assert.Equal(t, "Learning", c.Overrides.Category)
	assert.Equal(t, "Reading", c.Overrides.Subcategory)
	assert.Equal(t, []string{"book"}, c.Overrides.Tags)
	assert.Equal(t, 6, c.Overrides.Importance)
	assert.False(t, c.Overrides.IsZero())
}

func TestParseUnclosedPreamble(t *testing.T) {
	content := "---\ncategory: Learning\nno closing marker here"

	c := Parse(content, 1000)

	// The whole text stays as the body when the preamble never closes.
	assert.Equal(t, content, c.Body)
	assert.True(t, c.Overrides.IsZero())
}

func TestParseMalformedPreamble(t *testing.T) {
	content := "---\n: : not yaml [\n---\nactual note text"

	c := Parse(content, 1000)

	assert.True(t, c.Overrides.IsZero())
	assert.Contains(t, c.Body, "actual note text")
}

func TestParseDashRuler(t *testing.T) {
	// A dictated note that merely starts with dashes is not a preamble.
	c := Parse("--- meeting notes ---", 1000)

	assert.True(t, c.Overrides.IsZero())
}

func TestParseEmptyBodyAfterPreamble(t *testing.T) {
	c := Parse("---\ncategory: Health\n---", 1000)

	assert.Equal(t, "", c.Body)
	assert.Equal(t, "Health", c.Overrides.Category)
}
