package model

import "encoding/json"

// CadenceDoc is the decoded form of an AutopostSchedule's cadenceJson.
// Field meaning depends on the cadence type; zero values select the
// documented defaults at calculation time.
type CadenceDoc struct {
	// every_n_days
	Days int `json:"days"`
	// weekly: ISO day of week (Monday=1..Sunday=7) and time of day
	DayOfWeek int `json:"day_of_week"`
	Hour      int `json:"hour"`
	Minute    int `json:"minute"`
	// cron (interval-only)
	Minutes int `json:"minutes"`

	hourSet bool
	daysSet bool
}

// HourSet reports whether the document carried an explicit hour field, so a
// configured "hour": 0 is distinguishable from an absent one.
func (d CadenceDoc) HourSet() bool { return d.hourSet }

// DaysSet reports whether the document carried an explicit days field, so a
// configured "days": 0 clamps to 1 instead of selecting the default.
func (d CadenceDoc) DaysSet() bool { return d.daysSet }

// UnmarshalJSON tracks field presence for the defaults that depend on it.
func (d *CadenceDoc) UnmarshalJSON(raw []byte) error {
	type alias CadenceDoc
	var a alias
	if err := json.Unmarshal(raw, &a); err != nil {
		return err
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return err
	}
	*d = CadenceDoc(a)
	_, d.hourSet = probe["hour"]
	_, d.daysSet = probe["days"]
	return nil
}

// DecodeCadence parses a cadenceJson document; malformed or empty input
// yields the zero document (all defaults).
func DecodeCadence(raw string) CadenceDoc {
	var doc CadenceDoc
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &doc)
	}
	return doc
}
