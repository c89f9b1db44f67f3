package render

import (
	"fmt"
	"html"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// StylesheetPath is where the orchestrator writes the compiled CSS, relative
// to the domain root. Pages reference it absolutely.
const StylesheetPath = "assets/site.css"

// ShellInput carries everything the document shell wraps around a body fragment.
type ShellInput struct {
	SEO       model.SEODoc
	Analytics *model.AnalyticsProfile // optional head/body_end script injection
	Body      string
}

// Shell wraps a rendered body fragment in the fixed HTML document shell.
func Shell(in ShellInput) string {
	var b strings.Builder
	b.WriteString("<!doctype html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(in.SEO.Title))
	if in.SEO.Description != "" {
		fmt.Fprintf(&b, "<meta name=\"description\" content=\"%s\">\n", html.EscapeString(in.SEO.Description))
	}
	fmt.Fprintf(&b, "<link rel=\"stylesheet\" href=\"/%s\">\n", StylesheetPath)
	if in.Analytics != nil && in.Analytics.HeadHTML != "" {
		b.WriteString(in.Analytics.HeadHTML)
		b.WriteString("\n")
	}
	b.WriteString("</head>\n<body>\n")
	b.WriteString(in.Body)
	b.WriteString("\n")
	if in.Analytics != nil && in.Analytics.BodyEndHTML != "" {
		b.WriteString(in.Analytics.BodyEndHTML)
		b.WriteString("\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
