package builder

import (
	"fmt"
	"html"
	"strings"
)

// robotsTxt renders the fixed robots.txt pointing at the domain's sitemap.
func robotsTxt(domain string) string {
	return fmt.Sprintf("User-agent: *\nAllow: /\nSitemap: https://%s/sitemap.xml\n", domain)
}

// sitemapXML renders the standard sitemap with one url entry per rendered
// route, as absolute HTTPS URLs under the domain. The root route renders as
// the bare domain root URL.
func sitemapXML(domain string, routes []string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, route := range routes {
		loc := "https://" + domain
		if route != "/" {
			loc += route
		} else {
			loc += "/"
		}
		fmt.Fprintf(&b, "  <url><loc>%s</loc></url>\n", html.EscapeString(loc))
	}
	b.WriteString("</urlset>\n")
	return b.String()
}
