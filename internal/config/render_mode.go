package config

import (
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/normalization"
)

// RenderMode selects how the publish pipeline invokes the build orchestrator.
type RenderMode string

const (
	// RenderModeInProc calls the orchestrator directly.
	RenderModeInProc RenderMode = "inproc"
	// RenderModeHTTP posts render requests to a separate render service.
	RenderModeHTTP RenderMode = "http"
)

var renderModeNormalizer = normalization.NewNormalizer(map[string]RenderMode{
	"inproc":     RenderModeInProc,
	"in-process": RenderModeInProc,
	"http":       RenderModeHTTP,
}, RenderModeInProc)

func NormalizeRenderMode(raw string) RenderMode {
	return renderModeNormalizer.Normalize(raw)
}
