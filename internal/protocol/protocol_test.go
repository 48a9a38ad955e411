package protocol

import "testing"

func TestIsSupportedVersion(t *testing.T) {
	for _, v := range []string{"", Version, "1.0"} {
		if !IsSupportedVersion(v) {
			t.Fatalf("expected supported: %q", v)
		}
	}
	if IsSupportedVersion("0.1") {
		t.Fatalf("expected 0.1 rejected")
	}
}

func TestDecodeBase(t *testing.T) {
	m, err := DecodeBase([]byte(`{"type":"OBS","protocol_version":"0.9","tick":3}`))
	if err != nil {
		t.Fatalf("DecodeBase: %v", err)
	}
	if m.Type != TypeObs || m.ProtocolVersion != Version {
		t.Fatalf("unexpected base: %+v", m)
	}
	if _, err := DecodeBase([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}
