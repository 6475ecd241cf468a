package ratelimit

import (
	"net/http/httptest"
	"testing"
)

func TestClientIPForwardedFor(t *testing.T) {
	r := httptest.NewRequest("POST", "/submissions", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if got := ClientIP(r); got != "203.0.113.7" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}
}

func TestClientIPRealIP(t *testing.T) {
	r := httptest.NewRequest("POST", "/submissions", nil)
	r.Header.Set("X-Real-IP", "203.0.113.9")

	if got := ClientIP(r); got != "203.0.113.9" {
		t.Fatalf("expected X-Real-IP, got %q", got)
	}
}

func TestClientIPRemoteAddr(t *testing.T) {
	r := httptest.NewRequest("POST", "/submissions", nil)
	r.RemoteAddr = "192.0.2.1:54321"

	if got := ClientIP(r); got != "192.0.2.1" {
		t.Fatalf("expected RemoteAddr host, got %q", got)
	}
}

func TestClientIPUnknownSentinel(t *testing.T) {
	r := httptest.NewRequest("POST", "/submissions", nil)
	r.RemoteAddr = ""

	if got := ClientIP(r); got != UnknownIdentity {
		t.Fatalf("expected %q, got %q", UnknownIdentity, got)
	}
}
