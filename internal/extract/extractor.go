// Package extract turns raw search results into candidate claims via
// keyword heuristics over sentence-split text.
package extract

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/memouritsen-ui/solid-robot-sub000/internal/model"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/source"
)

// Claims appearing with no corroboration start at this confidence
const baseConfidence = 0.5

// Extractor is the default heuristic claim extractor
type Extractor struct {
	keywords []string
}

// NewExtractor creates an extractor with the standard assertion keywords
func NewExtractor() *Extractor {
	return &Extractor{
		keywords: []string{
			"originated", "origin", "first", "introduced", "invented",
			"according to", "is defined as", "established", "founded",
			"created", "discovered", "developed", "announced", "reported",
			"shows that", "found that", "concluded", "estimated",
			"increased", "decreased", "reached", "grew",
		},
	}
}

// Extract mines all collect results for claims. Claims with identical
// statements are merged, accumulating supporting sources.
func (e *Extractor) Extract(results []source.RawResult) []model.Claim {
	byStatement := make(map[string]*model.Claim)
	var order []string

	for _, result := range results {
		text := plainText(result.Snippet)
		for _, sentence := range splitSentences(text) {
			if !e.looksLikeClaim(sentence) {
				continue
			}

			key := strings.ToLower(sentence)
			if existing, ok := byStatement[key]; ok {
				existing.AddSource(result.Source)
				continue
			}

			claim := model.NewClaim(sentence, []string{result.Source}, baseConfidence)
			claim.Entities = extractEntities(sentence)
			byStatement[key] = &claim
			order = append(order, key)
		}
	}

	claims := make([]model.Claim, 0, len(order))
	for _, key := range order {
		claims = append(claims, *byStatement[key])
	}
	return claims
}

// looksLikeClaim reports whether a sentence matches any assertion keyword
func (e *Extractor) looksLikeClaim(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, keyword := range e.keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// plainText strips HTML when the snippet contains markup, otherwise
// returns it unchanged
func plainText(snippet string) string {
	if !strings.Contains(snippet, "<") {
		return snippet
	}

	doc, err := html.Parse(strings.NewReader(snippet))
	if err != nil {
		return snippet
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return buf.String()
}

// splitSentences splits text on sentence terminators, keeping sentences
// of plausible claim length
func splitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		if len(sentence) >= 30 && len(sentence) <= 500 {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	for i, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			// Look ahead to avoid splitting on abbreviations
			if i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\t') {
				flush()
			}
		}
	}
	flush()

	return sentences
}

// extractEntities pulls capitalized-word runs out of a sentence as
// candidate named entities, skipping the sentence-initial word
func extractEntities(sentence string) []string {
	words := strings.Fields(sentence)
	var entities []string
	var run []string

	flush := func() {
		if len(run) > 0 {
			entities = append(entities, strings.Join(run, " "))
			run = nil
		}
	}

	for i, word := range words {
		trimmed := strings.Trim(word, ".,;:!?()[]{}\"'")
		if trimmed == "" {
			flush()
			continue
		}

		first := []rune(trimmed)[0]
		if unicode.IsUpper(first) && i > 0 {
			run = append(run, trimmed)
			continue
		}
		// Sentence-initial capitals only count when the run continues
		if i == 0 && unicode.IsUpper(first) && len(words) > 1 {
			next := strings.Trim(words[1], ".,;:!?()[]{}\"'")
			if next != "" && unicode.IsUpper([]rune(next)[0]) {
				run = append(run, trimmed)
				continue
			}
		}
		flush()
	}
	flush()

	return dedupe(entities)
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var unique []string
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		unique = append(unique, v)
	}
	return unique
}
