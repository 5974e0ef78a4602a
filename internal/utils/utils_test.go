package utils

import "testing"

func TestGenToken(t *testing.T) {
	token := GenToken(64)
	if len(token) != 128 {
		t.Fatalf("GenToken(64) length = %d, want 128", len(token))
	}
	for _, r := range token {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			t.Fatalf("GenToken(64) contains non-hex rune %q", r)
		}
	}
	if GenToken(64) == token {
		t.Fatal("GenToken returned the same token twice")
	}
}
