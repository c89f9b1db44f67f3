package retry

import (
	"testing"
	"time"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.Mode != BackoffLinear {
		t.Errorf("mode = %q, want linear", p.Mode)
	}
	if p.Initial != 5*time.Minute {
		t.Errorf("initial = %v, want 5m", p.Initial)
	}
	if p.Max != time.Hour {
		t.Errorf("max = %v, want 1h", p.Max)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestNewPolicyFallbacks(t *testing.T) {
	p := NewPolicy("bogus", 0, 0, -1)
	if p != DefaultPolicy() {
		t.Errorf("invalid inputs should yield defaults, got %+v", p)
	}

	p = NewPolicy(BackoffFixed, 10*time.Minute, time.Minute, 1)
	if p.Initial != time.Minute {
		t.Errorf("initial should be clamped to max, got %v", p.Initial)
	}
}

func TestDelayLinear(t *testing.T) {
	p := Policy{Mode: BackoffLinear, Initial: 5 * time.Minute, Max: time.Hour}
	cases := []struct {
		retry int
		want  time.Duration
	}{
		{0, 0},
		{1, 5 * time.Minute},
		{3, 15 * time.Minute},
		{12, time.Hour},
		{100, time.Hour},
	}
	for _, tc := range cases {
		if got := p.Delay(tc.retry); got != tc.want {
			t.Errorf("Delay(%d) = %v, want %v", tc.retry, got, tc.want)
		}
	}
}

func TestDelayExponential(t *testing.T) {
	p := Policy{Mode: BackoffExponential, Initial: time.Minute, Max: 10 * time.Minute}
	if got := p.Delay(1); got != time.Minute {
		t.Errorf("Delay(1) = %v", got)
	}
	if got := p.Delay(3); got != 4*time.Minute {
		t.Errorf("Delay(3) = %v", got)
	}
	if got := p.Delay(10); got != 10*time.Minute {
		t.Errorf("Delay(10) should cap at max, got %v", got)
	}
}

func TestDelayFixed(t *testing.T) {
	p := Policy{Mode: BackoffFixed, Initial: 2 * time.Minute, Max: time.Hour}
	for retry := 1; retry < 5; retry++ {
		if got := p.Delay(retry); got != 2*time.Minute {
			t.Errorf("Delay(%d) = %v, want 2m", retry, got)
		}
	}
}
