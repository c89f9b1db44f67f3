package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

func TestHTTPTriggerSuccess(t *testing.T) {
	var gotReq RenderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(RenderResponse{OK: true, OutDir: "/out", ArtifactPath: "/out", Pages: 2})
	}))
	defer srv.Close()

	trigger := &HTTPTrigger{Endpoint: srv.URL}
	res, err := trigger.Render(context.Background(), "s1", "b1")
	require.NoError(t, err)

	assert.Equal(t, RenderRequest{SiteID: "s1", BuildID: "b1"}, gotReq)
	assert.Equal(t, "/out", res.OutputDir)
	assert.Equal(t, 2, res.Pages)
}

func TestHTTPTriggerRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(RenderResponse{OK: false, Error: "site bundle missing"})
	}))
	defer srv.Close()

	trigger := &HTTPTrigger{Endpoint: srv.URL}
	_, err := trigger.Render(context.Background(), "s1", "b1")
	require.Error(t, err)
	assert.True(t, sberrors.IsCategory(err, sberrors.CategoryRender))
	assert.Contains(t, err.Error(), "site bundle missing")
}

func TestHTTPTriggerTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	trigger := &HTTPTrigger{Endpoint: srv.URL, Timeout: 50 * time.Millisecond}
	_, err := trigger.Render(context.Background(), "s1", "b1")
	require.Error(t, err)
	assert.True(t, sberrors.IsCategory(err, sberrors.CategoryNetwork))
	assert.True(t, sberrors.IsRetryable(err))
}
