// Package theme compiles a theme preset's design tokens into the site's CSS.
// Compilation is a pure function of the token documents: every field has a
// default and no input can make it fail.
package theme

import (
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// radiusTokens is the closed token table for corner radii.
var radiusTokens = map[string]string{
	"sm":  "8px",
	"md":  "12px",
	"lg":  "14px",
	"xl":  "16px",
	"2xl": "20px",
}

var cssLength = regexp.MustCompile(`^\d+(\.\d+)?(px|rem|em|%)$`)

// ResolveRadius maps a radius token to a CSS length. Literal CSS lengths pass
// through unchanged; unknown tokens fall back to the supplied default.
func ResolveRadius(token, fallback string) string {
	if v, ok := radiusTokens[token]; ok {
		return v
	}
	if cssLength.MatchString(token) {
		return token
	}
	return fallback
}

// EffectiveCTAStyle returns the hero CTA button style: the component style
// preset's override when set, else the theme's button style.
func EffectiveCTAStyle(theme model.ThemeDoc, styles model.ComponentStyleDoc) string {
	if s := styles.Hero.CTAStyle; s == model.ButtonStyleSolid || s == model.ButtonStyleGradient {
		return s
	}
	return theme.Button.Style
}

// Compile renders the full stylesheet for a site: custom properties derived
// from the theme tokens plus the fixed layout and component classes.
func Compile(theme model.ThemeDoc, styles model.ComponentStyleDoc) string {
	radiusBase := ResolveRadius(theme.Radius.Base, radiusTokens[model.DefaultRadiusBase])
	radiusControl := ResolveRadius(theme.Radius.Control, radiusTokens[model.DefaultRadiusControl])

	ctaBackground := theme.Colors.Primary
	if EffectiveCTAStyle(theme, styles) == model.ButtonStyleGradient {
		ctaBackground = fmt.Sprintf("linear-gradient(135deg, %s, %s)", theme.Colors.Primary, theme.Colors.Accent)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `:root {
  --bg: %s;
  --surface: %s;
  --text: %s;
  --muted: %s;
  --border: %s;
  --radius: %s;
  --radius-control: %s;
}
`, theme.Colors.Background, theme.Colors.Surface, theme.Colors.Text, theme.Colors.Muted, theme.Colors.Border, radiusBase, radiusControl)

	b.WriteString(`* { box-sizing: border-box; }
body {
  margin: 0;
  background: var(--bg);
  color: var(--text);
  font-family: system-ui, -apple-system, "Segoe UI", sans-serif;
  line-height: 1.6;
}
.container { max-width: 960px; margin: 0 auto; padding: 0 20px; }
.section { padding: 48px 0; }
.surface { background: var(--surface); border: 1px solid var(--border); border-radius: var(--radius); }
.muted { color: var(--muted); }
.hero { padding: 96px 0 64px; }
.hero h1 { font-size: 2.5rem; margin: 0 0 12px; }
.hero p { font-size: 1.15rem; color: var(--muted); margin: 0 0 28px; }
.cta-row { display: flex; gap: 12px; flex-wrap: wrap; }
.btn {
  display: inline-block;
  padding: 12px 24px;
  border-radius: var(--radius-control);
  border: 1px solid var(--border);
  color: var(--text);
  text-decoration: none;
}
`)
	fmt.Fprintf(&b, `.btn-primary { background: %s; border-color: transparent; color: #ffffff; }
`, ctaBackground)
	b.WriteString(`.contacts dt { font-weight: 600; margin-top: 12px; }
.contacts dd { margin: 0; color: var(--muted); }
.faq details { border-bottom: 1px solid var(--border); padding: 12px 0; }
.faq summary { cursor: pointer; font-weight: 600; }
.footer-links { padding: 32px 0; border-top: 1px solid var(--border); }
.footer-links ul { list-style: none; display: flex; gap: 20px; margin: 0; padding: 0; flex-wrap: wrap; }
.footer-links a { color: var(--muted); text-decoration: none; }
.credit { padding: 16px 0 32px; font-size: 0.85rem; color: var(--muted); }
`)
	return b.String()
}
