package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeySiteID     = "site_id"
	KeyDomain     = "domain"
	KeyPageID     = "page_id"
	KeyRoute      = "route"
	KeyBuildID    = "build_id"
	KeyBuildNum   = "build_number"
	KeyScheduleID = "schedule_id"
	KeyRunID      = "run_id"
	KeySection    = "section"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPages      = "pages"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func SiteID(id string) slog.Attr      { return slog.String(KeySiteID, id) }
func Domain(name string) slog.Attr    { return slog.String(KeyDomain, name) }
func PageID(id string) slog.Attr      { return slog.String(KeyPageID, id) }
func Route(r string) slog.Attr        { return slog.String(KeyRoute, r) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func BuildNumber(n int) slog.Attr     { return slog.Int(KeyBuildNum, n) }
func ScheduleID(id string) slog.Attr  { return slog.String(KeyScheduleID, id) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
