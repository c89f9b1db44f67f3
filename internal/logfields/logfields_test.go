package logfields

import (
	"errors"
	"testing"
)

func TestErrorFieldNil(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("key = %q, want %q", attr.Key, KeyError)
	}
	if got := attr.Value.String(); got != "" {
		t.Errorf("nil error rendered as %q, want empty", got)
	}
}

func TestErrorFieldMessage(t *testing.T) {
	attr := Error(errors.New("boom"))
	if got := attr.Value.String(); got != "boom" {
		t.Errorf("error rendered as %q, want boom", got)
	}
}

func TestFieldKeys(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{SiteID("s").Key, KeySiteID},
		{Domain("d").Key, KeyDomain},
		{Route("/").Key, KeyRoute},
		{BuildID("b").Key, KeyBuildID},
		{ScheduleID("x").Key, KeyScheduleID},
		{Section("blog").Key, KeySection},
	}
	for _, c := range cases {
		if c.key != c.want {
			t.Errorf("field key = %q, want %q", c.key, c.want)
		}
	}
}
