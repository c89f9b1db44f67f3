// Package publish promotes a site's latest content versions, allocates the
// next Build, and drives the site build orchestrator either in-process or
// across a network boundary. The contract is identical both ways.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/builder"
	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// RenderRequest is the render-trigger request body.
type RenderRequest struct {
	SiteID  string `json:"siteId"`
	BuildID string `json:"buildId"`
}

// RenderResponse is the render-trigger response body.
type RenderResponse struct {
	OK           bool   `json:"ok"`
	ArtifactPath string `json:"artifactPath,omitempty"`
	OutDir       string `json:"outDir,omitempty"`
	Pages        int    `json:"pages"`
	Error        string `json:"error,omitempty"`
}

// RenderTrigger invokes a site render and reports its artifacts.
type RenderTrigger interface {
	Render(ctx context.Context, siteID, buildID string) (builder.Result, error)
}

// InProcTrigger calls the orchestrator directly.
type InProcTrigger struct {
	Orchestrator *builder.Orchestrator
}

// Render implements RenderTrigger.
func (t *InProcTrigger) Render(ctx context.Context, siteID, buildID string) (builder.Result, error) {
	return t.Orchestrator.BuildSite(ctx, siteID, buildID)
}

// DefaultRenderTimeout bounds the render round trip; a timed-out render is a
// Build failure, never a hang.
const DefaultRenderTimeout = 60 * time.Second

// HTTPTrigger calls a remote render endpoint.
type HTTPTrigger struct {
	// Endpoint is the full render URL, e.g. http://builder:8080/internal/render.
	Endpoint string
	Client   *http.Client
	Timeout  time.Duration
}

// Render implements RenderTrigger over HTTP with a bounded timeout.
func (t *HTTPTrigger) Render(ctx context.Context, siteID, buildID string) (builder.Result, error) {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(RenderRequest{SiteID: siteID, BuildID: buildID})
	if err != nil {
		return builder.Result{}, fmt.Errorf("marshal render request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(body))
	if err != nil {
		return builder.Result{}, fmt.Errorf("build render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return builder.Result{}, sberrors.RenderTimeout(siteID, err)
		}
		return builder.Result{}, sberrors.WrapRetryable(err, sberrors.CategoryNetwork, sberrors.SeverityError, "render trigger call failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return builder.Result{}, fmt.Errorf("read render response: %w", err)
	}
	var rr RenderResponse
	if err := json.Unmarshal(raw, &rr); err != nil {
		return builder.Result{}, fmt.Errorf("decode render response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !rr.OK {
		detail := rr.Error
		if detail == "" {
			detail = fmt.Sprintf("render endpoint returned status %d", resp.StatusCode)
		}
		return builder.Result{}, sberrors.RenderFailed(siteID, fmt.Errorf("%s", detail))
	}
	return builder.Result{OutputDir: rr.OutDir, ArtifactPath: rr.ArtifactPath, Pages: rr.Pages}, nil
}
