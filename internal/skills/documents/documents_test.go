package documents

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/metoolok/metoolok/internal/memory"
	"github.com/metoolok/metoolok/internal/skills"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleText = `Quarterly revenue grew by twelve percent. The new product line drove most of the growth.
Costs stayed flat compared to last quarter. Revenue from subscriptions doubled.
The board approved the expansion plan.`

func newTestSkill(t *testing.T) (*DocumentsSkill, *memory.Store, string) {
	t.Helper()
	dir := t.TempDir()
	mem, err := memory.Open(filepath.Join(dir, "context.json"), dir, zap.NewNop())
	require.NoError(t, err)

	docPath := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(docPath, []byte(sampleText), 0o644))

	raw, err := New(skills.Deps{Memory: mem, Logger: zap.NewNop()})
	require.NoError(t, err)
	return raw.(*DocumentsSkill), mem, docPath
}

func run(t *testing.T, s *DocumentsSkill, input string) string {
	t.Helper()
	out, err := s.Execute(context.Background(), input)
	require.NoError(t, err)
	return out
}

func TestLoadDocument(t *testing.T) {
	s, mem, docPath := newTestSkill(t)

	out := run(t, s, "doc load "+docPath)

	assert.Contains(t, out, "**Document loaded:** report.txt")
	assert.Equal(t, docPath, mem.String("last_uploaded_file", ""))
}

func TestLoadMissingFile(t *testing.T) {
	s, _, _ := newTestSkill(t)

	assert.Equal(t, "❌ File not found.", run(t, s, "doc load /nonexistent/file.txt"))
}

func TestSummary(t *testing.T) {
	s, mem, docPath := newTestSkill(t)
	mem.Set("last_uploaded_file", docPath)

	out := run(t, s, "doc summary")

	assert.Contains(t, out, "Summary: report.txt")
	assert.Contains(t, out, "Quarterly revenue grew by twelve percent.")
	assert.Contains(t, out, "5 sentences")
}

func TestSearch(t *testing.T) {
	s, mem, docPath := newTestSkill(t)
	mem.Set("last_uploaded_file", docPath)

	out := run(t, s, "doc search: revenue")

	assert.Contains(t, out, "'revenue' in report.txt")
	assert.Contains(t, out, "line 1")
	assert.Contains(t, out, "line 2")
}

func TestSearchNoMatch(t *testing.T) {
	s, mem, docPath := newTestSkill(t)
	mem.Set("last_uploaded_file", docPath)

	assert.Equal(t, "🔍 'unicorn' not found in report.txt.", run(t, s, "doc search: unicorn"))
}

func TestSearchEmptyQuery(t *testing.T) {
	s, mem, docPath := newTestSkill(t)
	mem.Set("last_uploaded_file", docPath)

	assert.Contains(t, run(t, s, "doc search:"), "Give a search term")
}

func TestStats(t *testing.T) {
	s, mem, docPath := newTestSkill(t)
	mem.Set("last_uploaded_file", docPath)

	out := run(t, s, "doc stats")

	assert.Contains(t, out, "Statistics: report.txt")
	assert.Contains(t, out, "Sentences: **5**")
	assert.Contains(t, out, "revenue (2)")
}

func TestNoActiveDocument(t *testing.T) {
	s, _, _ := newTestSkill(t)

	assert.Contains(t, run(t, s, "doc summary"), "No document loaded yet")
}

func TestStaleActiveDocument(t *testing.T) {
	s, mem, _ := newTestSkill(t)
	mem.Set("last_uploaded_file", "/gone/away.txt")

	assert.Contains(t, run(t, s, "doc summary"), "no longer readable")
}

func TestHelp(t *testing.T) {
	s, mem, docPath := newTestSkill(t)
	mem.Set("last_uploaded_file", docPath)

	assert.Contains(t, run(t, s, "doc"), "Usage")
}
