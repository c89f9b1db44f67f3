// Package render turns a page version's ordered block list into an HTML
// fragment and resolves link slots to concrete URLs. Both operations are pure.
package render

import (
	"regexp"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// SlotMap maps a placement name to its resolved URL.
type SlotMap map[string]string

// slotRef matches the literal {{slot:PLACEMENT}} reference form. Anything
// else in an href passes through unchanged.
var slotRef = regexp.MustCompile(`^\{\{slot:([A-Z0-9_-]+)\}\}$`)

// BuildSlotMap derives the placement->URL mapping from a site's link
// assignments in stored order. Disabled assignments are skipped; the first
// enabled assignment for a placement wins and later ones are ignored.
func BuildSlotMap(assignments []model.ResolvedAssignment) SlotMap {
	slots := make(SlotMap)
	for _, a := range assignments {
		if !a.IsEnabled {
			continue
		}
		if _, taken := slots[a.Placement]; taken {
			continue
		}
		slots[a.Placement] = a.URL
	}
	return slots
}

// ResolveHref resolves an href through the slot map. A {{slot:NAME}} reference
// becomes the mapped URL, or "#" when the placement has no resolution; plain
// URLs pass through unchanged.
func (s SlotMap) ResolveHref(href string) string {
	m := slotRef.FindStringSubmatch(href)
	if m == nil {
		return href
	}
	if url, ok := s[m[1]]; ok {
		return url
	}
	return "#"
}
