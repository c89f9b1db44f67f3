package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/builder"
	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

type fakeRenderer struct {
	result builder.Result
	err    error
	siteID string
}

func (f *fakeRenderer) BuildSite(_ context.Context, siteID, _ string) (builder.Result, error) {
	f.siteID = siteID
	return f.result, f.err
}

func doRender(t *testing.T, renderer *fakeRenderer, body string) *httptest.ResponseRecorder {
	t.Helper()
	srv := New(":0", renderer, nil)
	req := httptest.NewRequest(http.MethodPost, "/internal/render", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleRenderSuccess(t *testing.T) {
	renderer := &fakeRenderer{result: builder.Result{OutputDir: "/srv/out", ArtifactPath: "/srv/out", Pages: 4}}
	rec := doRender(t, renderer, `{"siteId":"s1","buildId":"b1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", renderer.siteID)

	var resp struct {
		OK     bool   `json:"ok"`
		OutDir string `json:"outDir"`
		Pages  int    `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "/srv/out", resp.OutDir)
	assert.Equal(t, 4, resp.Pages)
}

func TestHandleRenderNotFound(t *testing.T) {
	renderer := &fakeRenderer{err: sberrors.SiteNotFound("s1")}
	rec := doRender(t, renderer, `{"siteId":"s1"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":false`)
}

func TestHandleRenderBusy(t *testing.T) {
	renderer := &fakeRenderer{err: sberrors.BuildBusy("s1")}
	rec := doRender(t, renderer, `{"siteId":"s1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleRenderBadRequest(t *testing.T) {
	renderer := &fakeRenderer{}
	assert.Equal(t, http.StatusBadRequest, doRender(t, renderer, `{not json`).Code)
	assert.Equal(t, http.StatusBadRequest, doRender(t, renderer, `{"buildId":"b1"}`).Code)
}

func TestHandleRenderMethodNotAllowed(t *testing.T) {
	srv := New(":0", &fakeRenderer{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/internal/render", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv := New(":0", &fakeRenderer{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
