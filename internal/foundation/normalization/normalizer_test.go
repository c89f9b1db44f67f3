package normalization

import "testing"

type color string

const (
	colorRed  color = "red"
	colorBlue color = "blue"
)

var colors = NewNormalizer(map[string]color{
	"red":  colorRed,
	"blue": colorBlue,
}, colorRed)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want color
	}{
		{"red", colorRed},
		{"BLUE", colorBlue},
		{"  blue  ", colorBlue},
		{"green", colorRed}, // unrecognized falls back to default
		{"", colorRed},
	}
	for _, tc := range cases {
		if got := colors.Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeWithError(t *testing.T) {
	if _, err := colors.NormalizeWithError("green"); err == nil {
		t.Error("expected error for unrecognized value")
	}
	got, err := colors.NormalizeWithError("Red")
	if err != nil {
		t.Fatalf("NormalizeWithError() error = %v", err)
	}
	if got != colorRed {
		t.Errorf("got %q, want red", got)
	}
}

func TestValidKeys(t *testing.T) {
	keys := colors.ValidKeys()
	if len(keys) != 2 || keys[0] != "blue" || keys[1] != "red" {
		t.Errorf("ValidKeys() = %v", keys)
	}
}
