package bulkops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/store"
)

type fixture struct {
	store   *store.SQLiteStore
	service *Service
	site    model.Site
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	domain := model.Domain{Name: "bulk.test", Status: model.DomainStatusActive}
	require.NoError(t, st.CreateDomain(ctx, &domain))
	site := model.Site{DomainID: domain.ID, TemplateID: "starter", Status: model.SiteStatusDraft}
	require.NoError(t, st.CreateSite(ctx, &site))

	return &fixture{store: st, service: NewService(st), site: site}
}

func (f *fixture) addPage(t *testing.T, route, html string, published bool) model.Page {
	t.Helper()
	ctx := context.Background()
	page := model.Page{SiteID: f.site.ID, Route: route, PageType: "page", Status: model.PageStatusDraft}
	require.NoError(t, f.store.CreatePage(ctx, &page))
	v := model.PageVersion{
		PageID:      page.ID,
		ContentJSON: `{"blocks":[{"type":"content","data":{"html":"` + html + `"}}]}`,
		SEOJSON:     `{"title":"` + route + `"}`,
		IsPublished: published,
	}
	require.NoError(t, f.store.CreatePageVersion(ctx, &v))
	return page
}

func TestFindReplaceCreatesNewVersions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	touched := f.addPage(t, "/a", "Call 555-0100 today", true)
	untouched := f.addPage(t, "/b", "Nothing to see", true)

	op, err := f.service.FindReplace(ctx, f.site.ID, "555-0100", "555-0199")
	require.NoError(t, err)
	assert.Equal(t, 1, op.PagesTouched)

	versions, err := f.store.ListPageVersions(ctx, touched.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	latest := versions[len(versions)-1]
	assert.Contains(t, latest.ContentJSON, "555-0199")
	assert.NotContains(t, latest.ContentJSON, "555-0100")
	assert.True(t, latest.IsPublished, "published page stays published after replacement")

	versions, err = f.store.ListPageVersions(ctx, untouched.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1, "pages without a match get no new version")
}

func TestFindReplaceUndoRestoresPublishedVersions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	page := f.addPage(t, "/a", "old name here", true)

	op, err := f.service.FindReplace(ctx, f.site.ID, "old name", "new name")
	require.NoError(t, err)

	require.NoError(t, f.service.Undo(ctx, op.ID))

	versions, err := f.store.ListPageVersions(ctx, page.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.True(t, versions[0].IsPublished, "undo re-promotes the original version")
	assert.False(t, versions[1].IsPublished)

	// A second undo is rejected.
	err = f.service.Undo(ctx, op.ID)
	require.Error(t, err)
}

func TestFindReplaceValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.FindReplace(ctx, f.site.ID, "", "x")
	require.Error(t, err)

	_, err = f.service.FindReplace(ctx, "missing-site", "a", "b")
	require.Error(t, err)
}

func TestFindReplaceSkipsStructureBreakingReplacement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	page := f.addPage(t, "/a", "quote me", true)

	// Replacing with a raw quote would corrupt the JSON document.
	op, err := f.service.FindReplace(ctx, f.site.ID, "quote", `"`)
	require.NoError(t, err)
	assert.Equal(t, 0, op.PagesTouched)

	versions, err := f.store.ListPageVersions(ctx, page.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}
