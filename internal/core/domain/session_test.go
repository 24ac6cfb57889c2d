package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestParseSessionPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    SessionPolicy
		wantErr bool
	}{
		{"shared", SessionPolicyShared, false},
		{"page", SessionPolicyPage, false},
		{" PAGE ", SessionPolicyPage, false},
		{"", "", true},
		{"per-user", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSessionPolicy(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSessionPolicy) {
					t.Errorf("expected ErrInvalidSessionPolicy, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
			if !got.IsValid() {
				t.Errorf("expected %s to be valid", got)
			}
		})
	}
}

func TestDeriveSessionID_Shared(t *testing.T) {
	a := DeriveSessionID(SessionPolicyShared, "docs/intro", "tok-1")
	b := DeriveSessionID(SessionPolicyShared, "blog/post", "tok-2")
	if a != SharedSessionID || b != SharedSessionID {
		t.Errorf("expected shared session for all visitors, got %q and %q", a, b)
	}
}

func TestDeriveSessionID_Page(t *testing.T) {
	got := DeriveSessionID(SessionPolicyPage, "https://example.com/docs", "abc123")
	want := "https:example.comdocs--abc123"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDeriveSessionID_PageDeterministic(t *testing.T) {
	first := DeriveSessionID(SessionPolicyPage, "docs/intro", "tok")
	for i := 0; i < 5; i++ {
		if got := DeriveSessionID(SessionPolicyPage, "docs/intro", "tok"); got != first {
			t.Fatalf("derivation not deterministic: %q vs %q", first, got)
		}
	}
}

func TestDeriveSessionID_PageInputSensitive(t *testing.T) {
	base := DeriveSessionID(SessionPolicyPage, "docs/intro", "tok")
	if DeriveSessionID(SessionPolicyPage, "docs/other", "tok") == base {
		t.Error("changing the URL should change the session id")
	}
	if DeriveSessionID(SessionPolicyPage, "docs/intro", "tok2") == base {
		t.Error("changing the token should change the session id")
	}
}

func TestDeriveSessionID_PageNeverContainsSlash(t *testing.T) {
	inputs := []struct{ url, token string }{
		{"https://example.com/a/b/c", "t/o/k"},
		{"/", "/"},
		{"a//b", ""},
	}
	for _, in := range inputs {
		got := DeriveSessionID(SessionPolicyPage, in.url, in.token)
		if strings.Contains(got, "/") {
			t.Errorf("session id %q contains a slash", got)
		}
	}
}

func TestDeriveSessionID_AbsentCookie(t *testing.T) {
	got := DeriveSessionID(SessionPolicyPage, "docs/intro", "")
	if got != "docsintro--anonymous" {
		t.Errorf("expected docsintro--anonymous, got %q", got)
	}
	if strings.Contains(got, "undefined") {
		t.Error("absent token must not stringify to undefined")
	}
}
