// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package journal exports captures as markdown files in a local git
// repository, organized by year/month, with one commit per capture.
package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/daybook-io/daybook/internal/database"
)

// Journal writes capture markdown into a git-backed directory.
type Journal struct {
	repo *Repository
}

// Open opens (or initializes) the journal repository at path.
func Open(path string) (*Journal, error) {
	repo, err := OpenRepository(path)
	if err != nil {
		repo, err = InitRepository(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
	}
	return &Journal{repo: repo}, nil
}

// Path returns the journal root directory.
func (j *Journal) Path() string {
	return j.repo.Path
}

// entry is the YAML preamble written at the top of each exported file.
type entry struct {
	ID         string   `yaml:"id"`
	CapturedAt string   `yaml:"captured_at"`
	Entities   []string `yaml:"entities,omitempty"`
}

// ExportNote writes a capture to <year>/<month>/<slug>.md and commits it.
// Returns the path of the written file relative to the journal root.
func (j *Journal) ExportNote(note *database.Note) (string, error) {
	capturedAt := time.UnixMilli(note.CapturedAt)
	relPath := filepath.Join(
		capturedAt.Format("2006"),
		capturedAt.Format("01"),
		noteSlug(note, capturedAt)+".md",
	)

	fullPath := filepath.Join(j.repo.Path, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create journal directory: %w", err)
	}

	content, err := renderNote(note, capturedAt)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write journal file: %w", err)
	}

	message := fmt.Sprintf("Capture %s", capturedAt.Format("2006-01-02 15:04"))
	if err := j.repo.CommitFile(fullPath, message); err != nil {
		return "", fmt.Errorf("failed to commit journal file: %w", err)
	}

	return relPath, nil
}

// renderNote produces the markdown document for a capture.
func renderNote(note *database.Note, capturedAt time.Time) (string, error) {
	meta := entry{
		ID:         note.ID,
		CapturedAt: capturedAt.Format(time.RFC3339),
		Entities:   note.EntityIDs,
	}
	front, err := yaml.Marshal(&meta)
	if err != nil {
		return "", fmt.Errorf("failed to marshal journal frontmatter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(front)
	sb.WriteString("---\n\n")
	sb.WriteString(strings.TrimSpace(note.Body))
	sb.WriteString("\n")
	return sb.String(), nil
}

var (
	slugStripRegex = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugDashRegex  = regexp.MustCompile(`[\s-]+`)
)

// noteSlug builds a filename slug from the first words of the capture,
// suffixed with the time so same-day captures never collide.
func noteSlug(note *database.Note, capturedAt time.Time) string {
	words := strings.Fields(note.Body)
	if len(words) > 6 {
		words = words[:6]
	}

	slug := strings.ToLower(strings.Join(words, " "))
	slug = slugStripRegex.ReplaceAllString(slug, "")
	slug = slugDashRegex.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "capture"
	}

	return fmt.Sprintf("%s-%s", slug, capturedAt.Format("150405"))
}
