package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// seedSite creates a domain + site pair and returns the site.
func seedSite(t *testing.T, s *SQLiteStore, domainName string) model.Site {
	t.Helper()
	ctx := t.Context()
	d := model.Domain{Name: domainName, Status: model.DomainStatusActive}
	require.NoError(t, s.CreateDomain(ctx, &d))
	site := model.Site{DomainID: d.ID, TemplateID: "tpl-1"}
	require.NoError(t, s.CreateSite(ctx, &site))
	return site
}

func TestDomainUniqueName(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	d1 := model.Domain{Name: "acme.example"}
	require.NoError(t, s.CreateDomain(ctx, &d1))

	d2 := model.Domain{Name: "acme.example"}
	err := s.CreateDomain(ctx, &d2)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestDomainOwnsAtMostOneSite(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()
	site := seedSite(t, s, "acme.example")

	second := model.Site{DomainID: site.DomainID, TemplateID: "tpl-2"}
	err := s.CreateSite(ctx, &second)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestPageRouteUniquePerSite(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()
	site := seedSite(t, s, "acme.example")

	p1 := model.Page{SiteID: site.ID, Route: "/contacts"}
	require.NoError(t, s.CreatePage(ctx, &p1))

	p2 := model.Page{SiteID: site.ID, Route: "/contacts"}
	assert.ErrorIs(t, s.CreatePage(ctx, &p2), ErrDuplicate)

	// The same route on another site is fine.
	other := seedSite(t, s, "other.example")
	p3 := model.Page{SiteID: other.ID, Route: "/contacts"}
	assert.NoError(t, s.CreatePage(ctx, &p3))
}

func TestPageVersionNumbersMonotonic(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()
	site := seedSite(t, s, "acme.example")
	page := model.Page{SiteID: site.ID, Route: "/"}
	require.NoError(t, s.CreatePage(ctx, &page))

	for want := 1; want <= 3; want++ {
		v := model.PageVersion{PageID: page.ID, ContentJSON: "{}"}
		require.NoError(t, s.CreatePageVersion(ctx, &v))
		assert.Equal(t, want, v.VersionNumber)
	}

	versions, err := s.ListPageVersions(ctx, page.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, 1, versions[0].VersionNumber)
	assert.Equal(t, 3, versions[2].VersionNumber)
}

func TestSinglePublishedVersionInvariant(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()
	site := seedSite(t, s, "acme.example")
	page := model.Page{SiteID: site.ID, Route: "/"}
	require.NoError(t, s.CreatePage(ctx, &page))

	v1 := model.PageVersion{PageID: page.ID, IsPublished: true}
	require.NoError(t, s.CreatePageVersion(ctx, &v1))
	v2 := model.PageVersion{PageID: page.ID, IsPublished: true}
	require.NoError(t, s.CreatePageVersion(ctx, &v2))

	versions, err := s.ListPageVersions(ctx, page.ID)
	require.NoError(t, err)
	published := 0
	for _, v := range versions {
		if v.IsPublished {
			published++
			assert.Equal(t, 2, v.VersionNumber)
		}
	}
	assert.Equal(t, 1, published, "at most one published version per page")
}

func TestPublishSitePagesPromotesLatest(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()
	site := seedSite(t, s, "acme.example")
	page := model.Page{SiteID: site.ID, Route: "/"}
	require.NoError(t, s.CreatePage(ctx, &page))

	v1 := model.PageVersion{PageID: page.ID, IsPublished: true}
	require.NoError(t, s.CreatePageVersion(ctx, &v1))
	v2 := model.PageVersion{PageID: page.ID}
	require.NoError(t, s.CreatePageVersion(ctx, &v2))

	require.NoError(t, s.PublishSitePages(ctx, site.ID))

	versions, err := s.ListPageVersions(ctx, page.ID)
	require.NoError(t, err)
	assert.False(t, versions[0].IsPublished, "old published flag must clear")
	assert.True(t, versions[1].IsPublished, "latest version must be promoted")

	got, err := s.GetPage(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PageStatusPublished, got.Status)
}

func TestBuildNumberingPerSite(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()
	site := seedSite(t, s, "acme.example")

	for want := 1; want <= 3; want++ {
		b, err := s.CreateBuild(ctx, site.ID)
		require.NoError(t, err)
		assert.Equal(t, want, b.BuildNumber)
		assert.Equal(t, model.BuildStatusQueued, b.Status)
	}

	// A different site starts at 1 again.
	other := seedSite(t, s, "other.example")
	b, err := s.CreateBuild(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, b.BuildNumber)
}

func TestCreateBuildUnknownSite(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateBuild(t.Context(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuildStatusTransitions(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()
	site := seedSite(t, s, "acme.example")

	b, err := s.CreateBuild(ctx, site.ID)
	require.NoError(t, err)

	require.NoError(t, s.MarkBuildReady(ctx, b.ID, "/out/acme.example", "/out/acme.example"))
	got, err := s.GetBuild(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BuildStatusReady, got.Status)
	assert.Equal(t, "/out/acme.example", got.OutputDir)
	assert.NotNil(t, got.FinishedAt)

	require.NoError(t, s.MarkBuildPublished(ctx, b.ID))
	got, err = s.GetBuild(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BuildStatusPublished, got.Status)
}

func TestListDueSchedules(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()
	site := seedSite(t, s, "acme.example")
	now := time.Now().UTC()

	due := model.AutopostSchedule{
		SiteID: site.ID, Section: model.SectionBlog,
		CadenceType: model.CadenceEveryNDays, IsEnabled: true,
		NextRunAt: now.Add(-time.Minute),
	}
	require.NoError(t, s.CreateSchedule(ctx, &due))

	future := model.AutopostSchedule{
		SiteID: site.ID, Section: model.SectionNews,
		CadenceType: model.CadenceEveryNDays, IsEnabled: true,
		NextRunAt: now.Add(time.Hour),
	}
	require.NoError(t, s.CreateSchedule(ctx, &future))

	disabled := model.AutopostSchedule{
		SiteID: site.ID, Section: model.SectionNews,
		CadenceType: model.CadenceEveryNDays, IsEnabled: false,
		NextRunAt: now.Add(-time.Hour),
	}
	require.NoError(t, s.CreateSchedule(ctx, &disabled))

	got, err := s.ListDueSchedules(ctx, now, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, due.ID, got[0].ID)
}

func TestListPagesByRoutePrefixNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()
	site := seedSite(t, s, "acme.example")

	base := time.Now().UTC().Add(-time.Hour)
	for i, route := range []string{"/blog/blog-1", "/blog/blog-2", "/news/news-1"} {
		p := model.Page{
			SiteID: site.ID, Route: route,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base,
		}
		require.NoError(t, s.CreatePage(ctx, &p))
	}

	got, err := s.ListPagesByRoutePrefix(ctx, site.ID, "/blog/")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "/blog/blog-2", got[0].Route, "newest first")
	assert.Equal(t, "/blog/blog-1", got[1].Route)
}

func TestLoadSiteBundle(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	d := model.Domain{Name: "acme.example", Status: model.DomainStatusActive}
	require.NoError(t, s.CreateDomain(ctx, &d))

	tp := model.ThemePreset{Name: "default", TokensJSON: `{"colors":{"primary":"#123456"}}`, IsSystem: true}
	require.NoError(t, s.CreateThemePreset(ctx, &tp))
	ap := model.AnalyticsProfile{Name: "ga", HeadHTML: "<script></script>"}
	require.NoError(t, s.CreateAnalyticsProfile(ctx, &ap))

	site := model.Site{DomainID: d.ID, TemplateID: "tpl", ThemePresetID: tp.ID, AnalyticsProfileID: ap.ID}
	require.NoError(t, s.CreateSite(ctx, &site))

	link := model.LinkLibrary{Name: "main", URL: "https://go.example"}
	require.NoError(t, s.CreateLinkLibrary(ctx, &link))
	require.NoError(t, s.CreateLinkAssignment(ctx, &model.LinkAssignment{
		SiteID: site.ID, LinkID: link.ID, Placement: "HERO_CTA", IsEnabled: true,
	}))

	page := model.Page{SiteID: site.ID, Route: "/"}
	require.NoError(t, s.CreatePage(ctx, &page))
	require.NoError(t, s.CreatePageVersion(ctx, &model.PageVersion{PageID: page.ID, ContentJSON: "{}"}))

	bundle, err := s.LoadSiteBundle(ctx, site.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme.example", bundle.Domain.Name)
	require.NotNil(t, bundle.Theme)
	assert.Equal(t, tp.ID, bundle.Theme.ID)
	assert.Nil(t, bundle.Styles)
	require.NotNil(t, bundle.Analytics)
	require.Len(t, bundle.Assignments, 1)
	assert.Equal(t, "HERO_CTA", bundle.Assignments[0].Placement)
	require.Len(t, bundle.Pages, 1)
	require.Len(t, bundle.Pages[0].Versions, 1)
}

func TestLoadSiteBundleNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.LoadSiteBundle(t.Context(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFinishRunAndListRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()
	site := seedSite(t, s, "acme.example")
	sched := model.AutopostSchedule{
		SiteID: site.ID, Section: model.SectionBlog,
		CadenceType: model.CadenceEveryNDays, IsEnabled: true,
		NextRunAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreateSchedule(ctx, &sched))

	base := time.Now().UTC().Add(-time.Hour)
	r1 := model.AutopostRun{ScheduleID: sched.ID, StartedAt: base}
	require.NoError(t, s.CreateRun(ctx, &r1))
	require.NoError(t, s.FinishRun(ctx, r1.ID, model.RunStatusFailed, "", "boom", ""))

	r2 := model.AutopostRun{ScheduleID: sched.ID, StartedAt: base.Add(time.Minute)}
	require.NoError(t, s.CreateRun(ctx, &r2))
	require.NoError(t, s.FinishRun(ctx, r2.ID, model.RunStatusSuccess, `{"ok":true}`, "", "page-1"))

	runs, err := s.ListRecentRuns(ctx, sched.ID, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, r2.ID, runs[0].ID, "newest first")
	assert.Equal(t, model.RunStatusSuccess, runs[0].Status)
	assert.Equal(t, "page-1", runs[0].CreatedPageID)
	assert.Equal(t, "boom", runs[1].Error)
}

func TestBulkOperationRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()
	site := seedSite(t, s, "acme.example")

	op := model.BulkOperation{SiteID: site.ID, Find: "old", Replace: "new", BeforeJSON: `{"p":1}`, PagesTouched: 2}
	require.NoError(t, s.CreateBulkOperation(ctx, &op))

	got, err := s.GetBulkOperation(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, "old", got.Find)
	assert.Nil(t, got.UndoneAt)

	require.NoError(t, s.MarkBulkOperationUndone(ctx, op.ID, time.Now().UTC()))
	got, err = s.GetBulkOperation(ctx, op.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.UndoneAt)
}
