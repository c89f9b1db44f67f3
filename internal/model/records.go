// Package model defines the persisted record types and the typed JSON
// documents (content blocks, theme tokens, cadence parameters) consumed by
// the build pipeline and the autopost engine.
package model

import "time"

// DomainStatus represents the lifecycle state of a Domain.
type DomainStatus string

const (
	DomainStatusDraft    DomainStatus = "draft"
	DomainStatusActive   DomainStatus = "active"
	DomainStatusArchived DomainStatus = "archived"
)

// Domain is a hostname owning at most one Site.
type Domain struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"` // unique hostname
	Status    DomainStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// SiteStatus represents the publishing state of a Site.
type SiteStatus string

const (
	SiteStatusDraft     SiteStatus = "draft"
	SiteStatusPublished SiteStatus = "published"
)

// Site belongs to exactly one Domain and owns an ordered set of Pages.
type Site struct {
	ID                     string     `json:"id"`
	DomainID               string     `json:"domain_id"`
	TemplateID             string     `json:"template_id"`
	ThemePresetID          string     `json:"theme_preset_id,omitempty"`
	ComponentStylePresetID string     `json:"component_style_preset_id,omitempty"`
	AnalyticsProfileID     string     `json:"analytics_profile_id,omitempty"`
	Status                 SiteStatus `json:"status"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// PageStatus represents the publishing state of a Page.
type PageStatus string

const (
	PageStatusDraft     PageStatus = "draft"
	PageStatusPublished PageStatus = "published"
)

// Page belongs to a Site; (SiteID, Route) is unique.
type Page struct {
	ID        string     `json:"id"`
	SiteID    string     `json:"site_id"`
	Route     string     `json:"route"`
	PageType  string     `json:"page_type"`
	Status    PageStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// PageVersion is an immutable content snapshot. Version numbers are strictly
// increasing per page starting at 1; at most one version per page is published.
type PageVersion struct {
	ID            string    `json:"id"`
	PageID        string    `json:"page_id"`
	VersionNumber int       `json:"version_number"`
	ContentJSON   string    `json:"content_json"`
	SEOJSON       string    `json:"seo_json"`
	SchemaJSON    string    `json:"schema_json"`
	IsPublished   bool      `json:"is_published"`
	CreatedAt     time.Time `json:"created_at"`
}

// ThemePreset is a named, versionless document of design tokens.
type ThemePreset struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TokensJSON string    `json:"tokens_json"`
	IsSystem   bool      `json:"is_system"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ComponentStylePreset carries per-component style knobs.
type ComponentStylePreset struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StylesJSON string    `json:"styles_json"`
	IsSystem   bool      `json:"is_system"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AnalyticsProfile bundles raw script snippets keyed by injection point.
type AnalyticsProfile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	HeadHTML    string    `json:"head_html"`
	BodyEndHTML string    `json:"body_end_html"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LinkKind tags a LinkLibrary entry.
type LinkKind string

const (
	LinkKindAnchor     LinkKind = "anchor"
	LinkKindURLDisplay LinkKind = "url_display"
	LinkKindButton     LinkKind = "button"
	LinkKindMention    LinkKind = "mention"
)

// LinkLibrary is a reusable named URL.
type LinkLibrary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Kind      LinkKind  `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LinkAssignment binds a LinkLibrary entry to a (site, placement) pair.
// Multiple assignments may exist per placement; the slot resolver picks the
// first enabled one in stored order.
type LinkAssignment struct {
	ID          string    `json:"id"`
	SiteID      string    `json:"site_id"`
	LinkID      string    `json:"link_id"`
	Placement   string    `json:"placement"`
	IsEnabled   bool      `json:"is_enabled"`
	DisplayText string    `json:"display_text,omitempty"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// ResolvedAssignment is a LinkAssignment joined with its library entry's URL,
// in stored order, as consumed by the slot resolver.
type ResolvedAssignment struct {
	Placement   string
	URL         string
	IsEnabled   bool
	DisplayText string
}

// BuildStatus represents the state of a publish attempt.
type BuildStatus string

const (
	BuildStatusQueued    BuildStatus = "queued"
	BuildStatusReady     BuildStatus = "ready"
	BuildStatusPublished BuildStatus = "published"
	BuildStatusFailed    BuildStatus = "failed"
)

// Build is one attempt to materialize a site's published content.
// BuildNumber is monotonic per site, 1-based.
type Build struct {
	ID           string      `json:"id"`
	SiteID       string      `json:"site_id"`
	BuildNumber  int         `json:"build_number"`
	Status       BuildStatus `json:"status"`
	OutputDir    string      `json:"output_dir,omitempty"`
	ArtifactPath string      `json:"artifact_path,omitempty"`
	Detail       string      `json:"detail,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	StartedAt    *time.Time  `json:"started_at,omitempty"`
	FinishedAt   *time.Time  `json:"finished_at,omitempty"`
}

// Section enumerates autopost content sections.
type Section string

const (
	SectionBlog Section = "blog"
	SectionNews Section = "news"
)

// CadenceType enumerates the three closed cadence kinds.
type CadenceType string

const (
	CadenceEveryNDays CadenceType = "every_n_days"
	CadenceWeekly     CadenceType = "weekly"
	CadenceCron       CadenceType = "cron"
)

// AutopostSchedule drives periodic content generation for one site section.
type AutopostSchedule struct {
	ID              string      `json:"id"`
	SiteID          string      `json:"site_id"`
	Section         Section     `json:"section"`
	CadenceType     CadenceType `json:"cadence_type"`
	CadenceJSON     string      `json:"cadence_json"`
	RequireApproval bool        `json:"require_approval"`
	IsEnabled       bool        `json:"is_enabled"`
	NextRunAt       time.Time   `json:"next_run_at"`
	LastRunAt       *time.Time  `json:"last_run_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// RunStatus represents the state of one autopost invocation.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// AutopostRun records one engine invocation for a schedule.
type AutopostRun struct {
	ID            string     `json:"id"`
	ScheduleID    string     `json:"schedule_id"`
	Status        RunStatus  `json:"status"`
	ResultJSON    string     `json:"result_json,omitempty"`
	Error         string     `json:"error,omitempty"`
	CreatedPageID string     `json:"created_page_id,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

// BulkOperation records a find/replace mutation's before-state for a
// single-step undo.
type BulkOperation struct {
	ID           string     `json:"id"`
	SiteID       string     `json:"site_id"`
	Find         string     `json:"find"`
	Replace      string     `json:"replace"`
	BeforeJSON   string     `json:"before_json"` // page id -> version number promoted before the mutation
	PagesTouched int        `json:"pages_touched"`
	UndoneAt     *time.Time `json:"undone_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
