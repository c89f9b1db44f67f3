package autopost

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

var titleCaser = cases.Title(language.English)

// sectionTitle renders a section name for headings ("blog" -> "Blog").
func sectionTitle(section model.Section) string {
	return titleCaser.String(string(section))
}

// postTitle is the deterministic placeholder title for a generated post.
func postTitle(section model.Section, at time.Time) string {
	return fmt.Sprintf("%s update %s", sectionTitle(section), at.UTC().Format("2006-01-02"))
}

// renderMarkdown converts a Markdown source to HTML for a content block.
func renderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// postContent builds the contentJson and seoJson documents for a new post.
// The body is placeholder template text, not generated content.
func postContent(section model.Section, at time.Time) (contentJSON, seoJSON string, err error) {
	title := postTitle(section, at)
	src := fmt.Sprintf(`## %s

This is an automatically generated %s entry.

- Section: %s
- Created: %s
`, title, section, section, at.UTC().Format(time.RFC3339))

	html, err := renderMarkdown(src)
	if err != nil {
		return "", "", err
	}
	return encodeDocs(title, fmt.Sprintf("Automatically generated %s entry.", section), html)
}

// indexEntry is one row of a section listing.
type indexEntry struct {
	Label string
	Href  string
}

// indexContent builds the contentJson and seoJson documents for a section
// index page listing the given entries, newest first.
func indexContent(section model.Section, entries []indexEntry) (contentJSON, seoJSON string, err error) {
	title := sectionTitle(section)
	var src bytes.Buffer
	fmt.Fprintf(&src, "## %s\n\n", title)
	if len(entries) == 0 {
		src.WriteString("No entries yet.\n")
	}
	for _, e := range entries {
		fmt.Fprintf(&src, "- [%s](%s)\n", e.Label, e.Href)
	}

	html, err := renderMarkdown(src.String())
	if err != nil {
		return "", "", err
	}
	return encodeDocs(title, fmt.Sprintf("Latest %s entries.", section), html)
}

func encodeDocs(title, description, html string) (string, string, error) {
	data, err := json.Marshal(model.ContentData{HTML: html})
	if err != nil {
		return "", "", fmt.Errorf("encode content block: %w", err)
	}
	doc, err := json.Marshal(model.ContentDoc{Blocks: []model.Block{
		{Type: model.BlockContent, Data: data},
	}})
	if err != nil {
		return "", "", fmt.Errorf("encode content document: %w", err)
	}
	seo, err := json.Marshal(model.SEODoc{Title: title, Description: description})
	if err != nil {
		return "", "", fmt.Errorf("encode seo document: %w", err)
	}
	return string(doc), string(seo), nil
}
