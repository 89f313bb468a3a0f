// Package news aggregates recent headlines. The primary source is
// NewsAPI; when the API is unreachable or unconfigured the skill falls
// back to scraping Hacker News front-page titles.
package news

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/metoolok/metoolok/internal/httpx"
	"github.com/metoolok/metoolok/internal/skills"
	"go.uber.org/zap"
)

const (
	apiBase      = "https://newsapi.org/v2/everything"
	fallbackURL  = "https://news.ycombinator.com/"
	maxHeadlines = 5
	defaultTopic = "technology"
)

// NewsSkill fetches latest news headlines.
type NewsSkill struct {
	*skills.BaseSkill
	http        *httpx.Client
	baseURL     string
	fallbackURL string
}

// New creates the news skill.
func New(deps skills.Deps) (skills.Skill, error) {
	if deps.HTTP == nil {
		return nil, fmt.Errorf("news skill requires an http client")
	}
	s := &NewsSkill{
		BaseSkill: skills.NewBaseSkill(
			"news",
			"Fetches latest news headlines.",
			[]string{"news", "headline", "headlines"},
			deps.Memory,
			deps.Logger,
		),
		http:        deps.HTTP,
		baseURL:     apiBase,
		fallbackURL: fallbackURL,
	}
	return s, nil
}

type apiResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Execute extracts the topic from the input (default "technology"),
// queries NewsAPI and renders the top headlines as markdown links.
// API failures degrade to the scraped fallback instead of erroring.
func (s *NewsSkill) Execute(ctx context.Context, input string) (string, error) {
	topic := s.extractTopic(input)

	if key := s.APIKey("news"); key != "" {
		out, err := s.fromAPI(ctx, topic, key)
		if err == nil {
			return out, nil
		}
		s.Logger().Warn("News API failed, using fallback", zap.String("topic", topic), zap.Error(err))
	} else {
		s.Logger().Info("News API key missing, using fallback")
	}

	return s.fromFallback(ctx)
}

func (s *NewsSkill) fromAPI(ctx context.Context, topic, key string) (string, error) {
	q := url.Values{}
	q.Set("q", topic)
	q.Set("apiKey", key)
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")

	var data apiResponse
	if err := s.http.GetJSON(ctx, s.baseURL+"?"+q.Encode(), &data); err != nil {
		return "", err
	}
	if data.Status != "ok" {
		return "", fmt.Errorf("news api returned status %q", data.Status)
	}

	articles := data.Articles
	if len(articles) > maxHeadlines {
		articles = articles[:maxHeadlines]
	}
	if len(articles) == 0 {
		return fmt.Sprintf("ℹ️ No recent news found for topic: '%s'.", topic), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "### 📰 Headlines: %s\n", capitalize(topic))
	for i, a := range articles {
		source := a.Source.Name
		if source == "" {
			source = "Unknown"
		}
		date := a.PublishedAt
		if len(date) > 10 {
			date = date[:10]
		}
		fmt.Fprintf(&b, "%d. **[%s](%s)**\n   _%s • %s_\n", i+1, a.Title, a.URL, source, date)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// fromFallback scrapes the Hacker News front page for titles.
func (s *NewsSkill) fromFallback(ctx context.Context) (string, error) {
	body, err := s.http.Get(ctx, s.fallbackURL)
	if err != nil {
		return "", fmt.Errorf("news fallback: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("news fallback parse: %w", err)
	}

	var b strings.Builder
	b.WriteString("### 📰 Headlines: Tech (Hacker News)\n")
	count := 0
	doc.Find("span.titleline > a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Text())
		href, _ := sel.Attr("href")
		if title == "" {
			return true
		}
		count++
		fmt.Fprintf(&b, "%d. **[%s](%s)**\n", count, title, href)
		return count < maxHeadlines
	})

	if count == 0 {
		return "ℹ️ No headlines available right now.", nil
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// extractTopic strips the trigger keywords; the first remaining token
// is the topic.
func (s *NewsSkill) extractTopic(input string) string {
	triggers := make(map[string]bool)
	for _, k := range s.Keywords() {
		triggers[k] = true
	}
	for _, filler := range []string{"about", "on", "the", "latest", "get", "show", "me"} {
		triggers[filler] = true
	}

	for _, p := range strings.Fields(input) {
		word := strings.Trim(strings.ToLower(p), "?.,!")
		if !triggers[word] && word != "" {
			return word
		}
	}
	return defaultTopic
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
