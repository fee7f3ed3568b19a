// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybook-io/daybook/internal/database"
)

func testNote(body string) *database.Note {
	return &database.Note{
		ID:         "note-1",
		Body:       body,
		CapturedAt: time.Date(2025, 3, 10, 14, 30, 5, 0, time.Local).UnixMilli(),
		EntityIDs:  database.StringList{"e1", "e2"},
	}
}

func TestOpenInitializesRepository(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal")
	j, err := Open(dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	assert.NoError(t, err)
	assert.Equal(t, dir, j.Path())
}

func TestOpenReopensExistingRepository(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal")
	_, err := Open(dir)
	require.NoError(t, err)

	_, err = Open(dir)
	assert.NoError(t, err)
}

func TestExportNoteWritesYearMonthPath(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal"))
	require.NoError(t, err)

	relPath, err := j.ExportNote(testNote("walked the dog in the park"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(relPath, filepath.Join("2025", "03")+string(filepath.Separator)))
	assert.Contains(t, relPath, "walked-the-dog")

	data, err := os.ReadFile(filepath.Join(j.Path(), relPath))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "id: note-1")
	assert.Contains(t, content, "walked the dog in the park")
	assert.True(t, strings.HasPrefix(content, "---\n"))
}

func TestExportNoteCommits(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal"))
	require.NoError(t, err)

	_, err = j.ExportNote(testNote("morning pages"))
	require.NoError(t, err)

	head, err := j.repo.repo.Head()
	require.NoError(t, err)
	commit, err := j.repo.repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Contains(t, commit.Message, "Capture 2025-03-10")
	assert.Equal(t, "Daybook", commit.Author.Name)
}

func TestNoteSlugFallback(t *testing.T) {
	note := testNote("!!!")
	slug := noteSlug(note, time.UnixMilli(note.CapturedAt))
	assert.True(t, strings.HasPrefix(slug, "capture-"))
}
