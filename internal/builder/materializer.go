// Package builder materializes a site's authoritative content to static files:
// one HTML document per page plus the compiled stylesheet, robots.txt, and
// sitemap.xml under the domain's output directory.
package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
	"git.home.luguber.info/inful/sitebuilder/internal/store"
)

// AuthoritativeVersion picks the version used for rendering: the published
// one, else the highest version number. ok is false when no version exists,
// in which case the page is skipped without error.
func AuthoritativeVersion(versions []model.PageVersion) (model.PageVersion, bool) {
	if len(versions) == 0 {
		return model.PageVersion{}, false
	}
	best := versions[0]
	for _, v := range versions {
		if v.IsPublished {
			return v, true
		}
		if v.VersionNumber > best.VersionNumber {
			best = v
		}
	}
	return best, true
}

// OutputRelPath maps a route to its file path relative to the domain root:
// "/" becomes index.html, any other route gains a trailing index.html.
func OutputRelPath(route string) (string, error) {
	if route == "" || !strings.HasPrefix(route, "/") {
		return "", fmt.Errorf("route %q must start with /", route)
	}
	for _, seg := range strings.Split(route, "/") {
		if seg == ".." {
			return "", fmt.Errorf("route %q escapes the output directory", route)
		}
	}
	if route == "/" {
		return "index.html", nil
	}
	return filepath.Join(filepath.FromSlash(strings.TrimPrefix(route, "/")), "index.html"), nil
}

// materializePage renders one page's authoritative version and writes it under
// outDir. The returned bool is false when the page had no version to render.
func materializePage(outDir string, pw store.PageWithVersions, slots render.SlotMap, analytics *model.AnalyticsProfile) (bool, error) {
	version, ok := AuthoritativeVersion(pw.Versions)
	if !ok {
		return false, nil
	}

	relPath, err := OutputRelPath(pw.Page.Route)
	if err != nil {
		return false, err
	}

	content, err := model.DecodeContent(version.ContentJSON)
	if err != nil {
		return false, fmt.Errorf("page %s: %w", pw.Page.Route, err)
	}

	doc := render.Shell(render.ShellInput{
		SEO:       model.DecodeSEO(version.SEOJSON),
		Analytics: analytics,
		Body:      render.Blocks(content.Blocks, slots),
	})

	target := filepath.Join(outDir, relPath)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return false, fmt.Errorf("create page directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(doc), 0o644); err != nil {
		return false, fmt.Errorf("write page %s: %w", pw.Page.Route, err)
	}
	return true, nil
}
