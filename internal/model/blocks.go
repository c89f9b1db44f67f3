package model

import (
	"encoding/json"
	"fmt"
)

// BlockType tags a content block variant.
type BlockType string

const (
	BlockHero        BlockType = "hero"
	BlockContent     BlockType = "content"
	BlockContacts    BlockType = "contacts"
	BlockFAQ         BlockType = "faq"
	BlockFooterLinks BlockType = "footer_links"
)

// Block is one typed, independently toggleable content unit. Data stays raw
// until the renderer decodes it by Type; an absent Enabled flag means enabled.
type Block struct {
	Type    BlockType       `json:"type"`
	Enabled *bool           `json:"enabled,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// IsEnabled reports whether the block should render (enabled unless
// explicitly disabled).
func (b Block) IsEnabled() bool {
	return b.Enabled == nil || *b.Enabled
}

// ContentDoc is the decoded form of a PageVersion's contentJson.
type ContentDoc struct {
	Blocks []Block `json:"blocks"`
}

// DecodeContent parses a contentJson document. An empty document yields an
// empty block list, not an error.
func DecodeContent(raw string) (ContentDoc, error) {
	var doc ContentDoc
	if raw == "" {
		return doc, nil
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return ContentDoc{}, fmt.Errorf("decode content document: %w", err)
	}
	return doc, nil
}

// CTALink is a call-to-action label/href pair in a hero block.
type CTALink struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// HeroData is the payload of a hero block.
type HeroData struct {
	Heading      string   `json:"heading"`
	Subheading   string   `json:"subheading"`
	PrimaryCTA   *CTALink `json:"primary_cta,omitempty"`
	SecondaryCTA *CTALink `json:"secondary_cta,omitempty"`
}

// ContentData carries pre-formatted raw HTML. This is the one payload that is
// embedded verbatim; the trust boundary is the authoring side.
type ContentData struct {
	HTML string `json:"html"`
}

// ContactsData is the payload of a contacts block. Fields render in a fixed
// order; only non-empty fields appear.
type ContactsData struct {
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Hours   string `json:"hours"`
}

// FAQItem is one question/answer pair.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FAQData is the payload of a faq block.
type FAQData struct {
	Items []FAQItem `json:"items"`
}

// FooterLink is one label/href pair in a footer_links block.
type FooterLink struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// FooterLinksData is the payload of a footer_links block.
type FooterLinksData struct {
	Items []FooterLink `json:"items"`
}

// SEODoc is the decoded form of a PageVersion's seoJson.
type SEODoc struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DecodeSEO parses a seoJson document; missing fields stay empty.
func DecodeSEO(raw string) SEODoc {
	var doc SEODoc
	if raw == "" {
		return doc
	}
	// Malformed SEO metadata should not fail a build; it degrades to empty.
	_ = json.Unmarshal([]byte(raw), &doc)
	return doc
}
