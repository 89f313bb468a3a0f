// Package documents analyzes uploaded text documents: summaries,
// in-document search and word statistics. The active document is
// remembered through the "last_uploaded_file" memory key.
package documents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/metoolok/metoolok/internal/skills"
	"go.uber.org/zap"
)

const activeFileKey = "last_uploaded_file"

const maxDocumentBytes = 8 << 20

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "his": true,
	"has": true, "have": true, "this": true, "that": true, "with": true,
	"from": true, "they": true, "will": true, "would": true, "there": true,
	"their": true, "what": true, "about": true, "which": true, "when": true,
	"were": true, "been": true, "more": true, "also": true, "into": true,
}

// DocumentsSkill reads and analyzes text documents.
type DocumentsSkill struct {
	*skills.BaseSkill
}

// New creates the documents skill.
func New(deps skills.Deps) (skills.Skill, error) {
	return &DocumentsSkill{
		BaseSkill: skills.NewBaseSkill(
			"documents",
			"Reads text documents, summarizes them and searches inside them.",
			[]string{"document", "doc", "file", "summary", "summarize", "analyze"},
			deps.Memory,
			deps.Logger,
		),
	}, nil
}

// Execute dispatches on the sub-command: "load <path>", "summary",
// "search: <query>" and "stats".
func (s *DocumentsSkill) Execute(ctx context.Context, input string) (string, error) {
	lower := strings.ToLower(input)

	if strings.Contains(lower, "load") || strings.HasSuffix(strings.TrimSpace(lower), ".txt") || strings.HasSuffix(strings.TrimSpace(lower), ".md") {
		fields := strings.Fields(input)
		if len(fields) == 0 {
			return "⚠️ Give a file path. Example: `doc load notes.txt`", nil
		}
		return s.load(fields[len(fields)-1]), nil
	}

	text, name, errMsg := s.activeDocument()
	if errMsg != "" {
		return errMsg, nil
	}

	switch {
	case strings.Contains(lower, "search:"):
		idx := strings.Index(lower, "search:")
		query := strings.TrimSpace(input[idx+len("search:"):])
		return s.search(text, name, query), nil
	case strings.Contains(lower, "stats") || strings.Contains(lower, "statistics"):
		return s.stats(text, name), nil
	case strings.Contains(lower, "summary") || strings.Contains(lower, "summarize") || strings.Contains(lower, "analyze"):
		return s.summary(text, name), nil
	}

	return s.help(), nil
}

// load records a document as the active one.
func (s *DocumentsSkill) load(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "❌ File not found."
	}
	if info.Size() > maxDocumentBytes {
		return "⚠️ File is too large to analyze (8 MB limit)."
	}

	s.SaveToMemory(activeFileKey, path)
	s.Logger().Info("Document loaded", zap.String("path", path), zap.Int64("bytes", info.Size()))

	return fmt.Sprintf(
		"📄 **Document loaded:** %s (%.1f KB)\n\n💡 Try `doc summary`, `doc stats` or `doc search: keyword`.",
		filepath.Base(path), float64(info.Size())/1024,
	)
}

// activeDocument reads the remembered file from disk.
func (s *DocumentsSkill) activeDocument() (text, name, errMsg string) {
	path, _ := s.ReadFromMemory(activeFileKey, "").(string)
	if path == "" {
		return "", "", "📂 No document loaded yet. Upload one or use `doc load <path>`."
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.Logger().Warn("Active document unreadable", zap.String("path", path), zap.Error(err))
		return "", "", "❌ The last document is no longer readable. Load another one."
	}
	if len(data) > maxDocumentBytes {
		return "", "", "⚠️ File is too large to analyze (8 MB limit)."
	}
	return string(data), filepath.Base(path), ""
}

// summary renders the leading sentences plus headline numbers.
func (s *DocumentsSkill) summary(text, name string) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return fmt.Sprintf("ℹ️ '%s' has no readable text.", name)
	}

	lead := sentences
	if len(lead) > 3 {
		lead = lead[:3]
	}

	words := extractWords(text)
	return fmt.Sprintf(
		"### 📄 Summary: %s\n\n%s\n\n_%d sentences, %d words in total._",
		name, strings.Join(lead, " "), len(sentences), len(words),
	)
}

// search finds lines containing the query and shows them with a line
// of context.
func (s *DocumentsSkill) search(text, name, query string) string {
	if query == "" {
		return "⚠️ Give a search term. Example: `doc search: revenue`"
	}

	lines := strings.Split(text, "\n")
	needle := strings.ToLower(query)
	var hits []string
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), needle) {
			hits = append(hits, fmt.Sprintf("- **line %d:** %s", i+1, strings.TrimSpace(line)))
			if len(hits) >= 5 {
				break
			}
		}
	}

	if len(hits) == 0 {
		return fmt.Sprintf("🔍 '%s' not found in %s.", query, name)
	}
	return fmt.Sprintf("### 🔍 '%s' in %s\n%s", query, name, strings.Join(hits, "\n"))
}

// stats reports word counts and the most frequent terms.
func (s *DocumentsSkill) stats(text, name string) string {
	words := extractWords(text)
	if len(words) == 0 {
		return fmt.Sprintf("ℹ️ '%s' has no readable text.", name)
	}

	freq := map[string]int{}
	for _, w := range words {
		if len(w) > 2 && !stopWords[w] {
			freq[w]++
		}
	}

	type wordCount struct {
		word  string
		count int
	}
	top := make([]wordCount, 0, len(freq))
	for w, c := range freq {
		top = append(top, wordCount{w, c})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].count != top[j].count {
			return top[i].count > top[j].count
		}
		return top[i].word < top[j].word
	})
	if len(top) > 5 {
		top = top[:5]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "### 📈 Statistics: %s\n", name)
	fmt.Fprintf(&b, "- Words: **%d**\n", len(words))
	fmt.Fprintf(&b, "- Characters: **%d**\n", len(text))
	fmt.Fprintf(&b, "- Sentences: **%d**\n", len(splitSentences(text)))
	fmt.Fprintf(&b, "- Lines: **%d**\n\n", len(strings.Split(text, "\n")))
	b.WriteString("**Top Words:**\n")
	for i, wc := range top {
		fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, wc.word, wc.count)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (s *DocumentsSkill) help() string {
	return "### 📄 Documents - Usage\n\n" +
		"`doc load notes.txt` - load a document\n" +
		"`doc summary` - lead sentences and totals\n" +
		"`doc search: keyword` - find matching lines\n" +
		"`doc stats` - word statistics"
}

var sentenceEnd = regexp.MustCompile(`[.!?]+\s+`)

func splitSentences(text string) []string {
	parts := sentenceEnd.Split(strings.TrimSpace(text), -1)
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			if !strings.HasSuffix(p, ".") && !strings.HasSuffix(p, "!") && !strings.HasSuffix(p, "?") {
				p += "."
			}
			out = append(out, p)
		}
	}
	return out
}

var wordPattern = regexp.MustCompile(`[a-zA-Z']+`)

func extractWords(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}
