package render

import (
	"strings"
	"testing"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

func TestShellSEOAndBody(t *testing.T) {
	out := Shell(ShellInput{
		SEO:  model.SEODoc{Title: "Acme <Home>", Description: `The "best"`},
		Body: "<section>body</section>",
	})

	if !strings.Contains(out, "<title>Acme &lt;Home&gt;</title>") {
		t.Error("title must be escaped")
	}
	if !strings.Contains(out, `content="The &#34;best&#34;"`) {
		t.Error("description must be escaped")
	}
	if !strings.Contains(out, "<section>body</section>") {
		t.Error("body fragment must embed verbatim")
	}
	if !strings.Contains(out, `href="/assets/site.css"`) {
		t.Error("shell must link the compiled stylesheet")
	}
}

func TestShellAnalyticsInjection(t *testing.T) {
	out := Shell(ShellInput{
		Analytics: &model.AnalyticsProfile{
			HeadHTML:    "<script>head()</script>",
			BodyEndHTML: "<script>end()</script>",
		},
	})

	headIdx := strings.Index(out, "<script>head()</script>")
	bodyOpen := strings.Index(out, "<body>")
	endIdx := strings.Index(out, "<script>end()</script>")
	bodyClose := strings.Index(out, "</body>")

	if headIdx < 0 || headIdx > bodyOpen {
		t.Error("head snippet must inject inside <head>")
	}
	if endIdx < bodyOpen || endIdx > bodyClose {
		t.Error("body_end snippet must inject before </body>")
	}
}

func TestShellNoDescriptionNoMeta(t *testing.T) {
	out := Shell(ShellInput{SEO: model.SEODoc{Title: "T"}})
	if strings.Contains(out, `name="description"`) {
		t.Error("empty description must not emit a meta tag")
	}
}
