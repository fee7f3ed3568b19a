// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package capture

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Overrides is the optional structured preamble of a capture. Values here
// take precedence over heuristic classification.
type Overrides struct {
	Category    string   `yaml:"category,omitempty"`
	Subcategory string   `yaml:"subcategory,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Importance  int      `yaml:"importance,omitempty"`
	Difficulty  int      `yaml:"difficulty,omitempty"`
	Location    string   `yaml:"location,omitempty"`
}

// IsZero reports whether no override was provided.
func (o Overrides) IsZero() bool {
	return o.Category == "" && o.Subcategory == "" && len(o.Tags) == 0 &&
		o.Importance == 0 && o.Difficulty == 0 && o.Location == ""
}

// Capture is one raw submission split into preamble and free-text body.
type Capture struct {
	Overrides Overrides
	Body      string
	AnchorMs  int64 // ms epoch of the submission
}

// Parse splits an optional YAML preamble from the free-text body. Dictated
// text is messy, so nothing here is fatal: an unclosed or malformed preamble
// is folded back into the body and parsing continues without overrides.
func Parse(content string, anchorMs int64) *Capture {
	front, body := splitFrontmatter(content)

	c := &Capture{Body: body, AnchorMs: anchorMs}
	if front == "" {
		return c
	}

	var ov Overrides
	if err := yaml.Unmarshal([]byte(front), &ov); err != nil {
		// Not a preamble after all; keep the raw text
		c.Body = strings.TrimSpace(content)
		return c
	}
	c.Overrides = ov
	return c
}

// splitFrontmatter splits content into frontmatter and body. Content without
// a properly closed `---` block is returned whole as the body.
func splitFrontmatter(content string) (string, string) {
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, "---") {
		return "", content
	}

	lines := strings.Split(content, "\n")
	if len(lines) < 3 {
		return "", content
	}

	closingIndex := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			closingIndex = i
			break
		}
	}

	if closingIndex == -1 {
		return "", content
	}

	frontmatter := strings.Join(lines[1:closingIndex], "\n")

	body := ""
	if closingIndex+1 < len(lines) {
		body = strings.TrimSpace(strings.Join(lines[closingIndex+1:], "\n"))
	}

	return frontmatter, body
}
