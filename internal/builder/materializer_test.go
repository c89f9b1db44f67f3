package builder

import (
	"testing"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

func TestAuthoritativeVersionPublishedWins(t *testing.T) {
	versions := []model.PageVersion{
		{VersionNumber: 1, IsPublished: true},
		{VersionNumber: 2},
		{VersionNumber: 3},
	}
	v, ok := AuthoritativeVersion(versions)
	if !ok || v.VersionNumber != 1 {
		t.Errorf("published version must win, got %d ok=%v", v.VersionNumber, ok)
	}
}

func TestAuthoritativeVersionLatestFallback(t *testing.T) {
	versions := []model.PageVersion{
		{VersionNumber: 1},
		{VersionNumber: 2},
	}
	v, ok := AuthoritativeVersion(versions)
	if !ok || v.VersionNumber != 2 {
		t.Errorf("highest version should be the fallback, got %d ok=%v", v.VersionNumber, ok)
	}
}

func TestAuthoritativeVersionNone(t *testing.T) {
	if _, ok := AuthoritativeVersion(nil); ok {
		t.Error("no versions means no authoritative version")
	}
}

func TestOutputRelPath(t *testing.T) {
	cases := []struct {
		route string
		want  string
	}{
		{"/", "index.html"},
		{"/contacts", "contacts/index.html"},
		{"/blog/blog-17", "blog/blog-17/index.html"},
	}
	for _, c := range cases {
		got, err := OutputRelPath(c.route)
		if err != nil {
			t.Errorf("OutputRelPath(%q): %v", c.route, err)
			continue
		}
		if got != c.want {
			t.Errorf("OutputRelPath(%q) = %q, want %q", c.route, got, c.want)
		}
	}
}

func TestOutputRelPathRejectsBadRoutes(t *testing.T) {
	for _, route := range []string{"", "relative", "/../etc", "/a/../../b"} {
		if _, err := OutputRelPath(route); err == nil {
			t.Errorf("OutputRelPath(%q) should fail", route)
		}
	}
}
