package model

import "encoding/json"

// Theme token defaults. Every field of a theme document has one so the
// compiler stays total on arbitrary stored JSON.
const (
	DefaultColorBackground = "#ffffff"
	DefaultColorSurface    = "#f6f7f9"
	DefaultColorText       = "#111827"
	DefaultColorMuted      = "#6b7280"
	DefaultColorBorder     = "#e5e7eb"
	DefaultColorPrimary    = "#2563eb"
	DefaultColorAccent     = "#7c3aed"

	DefaultRadiusBase    = "md"
	DefaultRadiusControl = "xl"

	ButtonStyleSolid    = "solid"
	ButtonStyleGradient = "gradient"
)

// ThemeColors are the color tokens of a theme preset.
type ThemeColors struct {
	Background string `json:"background"`
	Surface    string `json:"surface"`
	Text       string `json:"text"`
	Muted      string `json:"muted"`
	Border     string `json:"border"`
	Primary    string `json:"primary"`
	Accent     string `json:"accent"`
}

// ThemeRadius are the corner-radius tokens of a theme preset. Values are
// either a token from the closed radius table or a literal CSS length.
type ThemeRadius struct {
	Base    string `json:"base"`
	Control string `json:"control"`
}

// ThemeButton carries button style knobs.
type ThemeButton struct {
	Style string `json:"style"` // solid|gradient
}

// ThemeDoc is the decoded form of a ThemePreset's tokensJson.
type ThemeDoc struct {
	Colors ThemeColors `json:"colors"`
	Radius ThemeRadius `json:"radius"`
	Button ThemeButton `json:"button"`
}

// DecodeTheme parses a tokensJson document and fills every missing field with
// its default. It never fails: malformed JSON degrades to the full default set.
func DecodeTheme(raw string) ThemeDoc {
	var doc ThemeDoc
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &doc)
	}
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&doc.Colors.Background, DefaultColorBackground)
	fill(&doc.Colors.Surface, DefaultColorSurface)
	fill(&doc.Colors.Text, DefaultColorText)
	fill(&doc.Colors.Muted, DefaultColorMuted)
	fill(&doc.Colors.Border, DefaultColorBorder)
	fill(&doc.Colors.Primary, DefaultColorPrimary)
	fill(&doc.Colors.Accent, DefaultColorAccent)
	fill(&doc.Radius.Base, DefaultRadiusBase)
	fill(&doc.Radius.Control, DefaultRadiusControl)
	fill(&doc.Button.Style, ButtonStyleSolid)
	return doc
}

// ComponentStyleDoc is the decoded form of a ComponentStylePreset's
// stylesJson. Only the hero CTA style override participates in compilation.
type ComponentStyleDoc struct {
	Hero struct {
		CTAStyle string `json:"cta_style"` // overrides ThemeButton.Style when set
	} `json:"hero"`
}

// DecodeComponentStyle parses a stylesJson document; it never fails.
func DecodeComponentStyle(raw string) ComponentStyleDoc {
	var doc ComponentStyleDoc
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &doc)
	}
	return doc
}
