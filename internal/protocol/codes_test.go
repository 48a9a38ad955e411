package protocol

import "testing"

func TestCodeClassification(t *testing.T) {
	cases := []struct {
		code      string
		known     bool
		retryable bool
	}{
		{"", true, false},
		{CodeRateLimit, true, true},
		{CodeWorldBusy, true, true},
		{CodeStale, true, true},
		{CodeBlocked, true, false},
		{CodeInvalidTarget, true, false},
		{CodeNoResource, true, false},
		{"E_NOT_DEFINED", false, false},
	}
	for _, c := range cases {
		if got := IsKnownCode(c.code); got != c.known {
			t.Fatalf("IsKnownCode(%q)=%v want %v", c.code, got, c.known)
		}
		if got := Retryable(c.code); got != c.retryable {
			t.Fatalf("Retryable(%q)=%v want %v", c.code, got, c.retryable)
		}
	}
}
