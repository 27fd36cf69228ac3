package http

import "testing"

func TestFrameLimiter(t *testing.T) {
	var unlimited *frameLimiter
	for i := 0; i < 100; i++ {
		if !unlimited.allow() {
			t.Fatalf("nil limiter must allow every frame")
		}
	}
	if newFrameLimiter(0, 10) != nil {
		t.Fatalf("zero rate should disable limiting")
	}

	l := newFrameLimiter(1, 3)
	for i := 0; i < 3; i++ {
		if !l.allow() {
			t.Fatalf("frame %d within burst was rejected", i)
		}
	}
	if l.allow() {
		t.Fatalf("frame beyond burst was allowed")
	}
}
