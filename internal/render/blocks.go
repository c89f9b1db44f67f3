package render

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// creditFragment is always appended after the rendered blocks.
const creditFragment = `<div class="credit"><div class="container">Generated with SiteBuilder</div></div>`

// contactFields is the fixed render order of contacts block fields.
var contactFields = []struct {
	label string
	value func(model.ContactsData) string
}{
	{"Company", func(c model.ContactsData) string { return c.Company }},
	{"Phone", func(c model.ContactsData) string { return c.Phone }},
	{"Email", func(c model.ContactsData) string { return c.Email }},
	{"Address", func(c model.ContactsData) string { return c.Address }},
	{"Hours", func(c model.ContactsData) string { return c.Hours }},
}

// Blocks renders the ordered block list into an HTML body fragment. For each
// supported block type at most one instance renders: the first enabled
// occurrence wins, later duplicates are ignored. Text fields are HTML-escaped;
// the content block's raw HTML payload is the documented exception.
func Blocks(blocks []model.Block, slots SlotMap) string {
	var b strings.Builder
	seen := make(map[model.BlockType]bool)

	for _, blk := range blocks {
		if !blk.IsEnabled() || seen[blk.Type] {
			continue
		}
		switch blk.Type {
		case model.BlockHero:
			var data model.HeroData
			decode(blk.Data, &data)
			renderHero(&b, data, slots)
		case model.BlockContent:
			var data model.ContentData
			decode(blk.Data, &data)
			renderContent(&b, data)
		case model.BlockContacts:
			var data model.ContactsData
			decode(blk.Data, &data)
			renderContacts(&b, data)
		case model.BlockFAQ:
			var data model.FAQData
			decode(blk.Data, &data)
			renderFAQ(&b, data)
		case model.BlockFooterLinks:
			var data model.FooterLinksData
			decode(blk.Data, &data)
			renderFooterLinks(&b, data, slots)
		default:
			continue // unknown block types are skipped, not errors
		}
		seen[blk.Type] = true
	}

	b.WriteString(creditFragment)
	return b.String()
}

func decode(raw json.RawMessage, v any) {
	if len(raw) > 0 {
		// A malformed payload renders as the zero value rather than failing
		// the whole page.
		_ = json.Unmarshal(raw, v)
	}
}

func renderHero(b *strings.Builder, data model.HeroData, slots SlotMap) {
	b.WriteString(`<section class="hero"><div class="container">`)
	fmt.Fprintf(b, "<h1>%s</h1>", html.EscapeString(data.Heading))
	if data.Subheading != "" {
		fmt.Fprintf(b, "<p>%s</p>", html.EscapeString(data.Subheading))
	}
	if data.PrimaryCTA != nil || data.SecondaryCTA != nil {
		b.WriteString(`<div class="cta-row">`)
		if cta := data.PrimaryCTA; cta != nil {
			fmt.Fprintf(b, `<a class="btn btn-primary" href="%s">%s</a>`,
				html.EscapeString(slots.ResolveHref(cta.Href)), html.EscapeString(cta.Label))
		}
		if cta := data.SecondaryCTA; cta != nil {
			fmt.Fprintf(b, `<a class="btn" href="%s">%s</a>`,
				html.EscapeString(slots.ResolveHref(cta.Href)), html.EscapeString(cta.Label))
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div></section>`)
}

func renderContent(b *strings.Builder, data model.ContentData) {
	// Raw HTML passes through verbatim; the trust boundary is authoring-side.
	b.WriteString(`<section class="section"><div class="container">`)
	b.WriteString(data.HTML)
	b.WriteString(`</div></section>`)
}

func renderContacts(b *strings.Builder, data model.ContactsData) {
	b.WriteString(`<section class="section contacts"><div class="container">`)
	any := false
	for _, f := range contactFields {
		if v := f.value(data); v != "" {
			if !any {
				b.WriteString("<dl>")
				any = true
			}
			fmt.Fprintf(b, "<dt>%s</dt><dd>%s</dd>", f.label, html.EscapeString(v))
		}
	}
	if any {
		b.WriteString("</dl>")
	} else {
		b.WriteString(`<p class="muted">No contact details provided.</p>`)
	}
	b.WriteString(`</div></section>`)
}

func renderFAQ(b *strings.Builder, data model.FAQData) {
	if len(data.Items) == 0 {
		return
	}
	b.WriteString(`<section class="section faq"><div class="container">`)
	for _, item := range data.Items {
		fmt.Fprintf(b, "<details><summary>%s</summary><p>%s</p></details>",
			html.EscapeString(item.Question), html.EscapeString(item.Answer))
	}
	b.WriteString(`</div></section>`)
}

func renderFooterLinks(b *strings.Builder, data model.FooterLinksData, slots SlotMap) {
	if len(data.Items) == 0 {
		return
	}
	b.WriteString(`<footer class="footer-links"><div class="container"><ul>`)
	for _, item := range data.Items {
		fmt.Fprintf(b, `<li><a href="%s">%s</a></li>`,
			html.EscapeString(slots.ResolveHref(item.Href)), html.EscapeString(item.Label))
	}
	b.WriteString(`</ul></div></footer>`)
}
