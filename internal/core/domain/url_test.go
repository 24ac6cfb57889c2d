package domain

import (
	"errors"
	"testing"
)

func TestReconstructURL(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		want     string
	}{
		{"empty", []string{}, ""},
		{"nil", nil, ""},
		{"single", []string{"docs"}, "docs"},
		{"joined in order", []string{"docs", "intro"}, "docs/intro"},
		{"decodes before join", []string{"a%2Fb", "c"}, "a/b/c"},
		{"scheme segment", []string{"https%3A", "", "example.com", "page"}, "https:/" + "/example.com/page"},
		{"space", []string{"hello%20world"}, "hello world"},
		{"plus kept literal", []string{"a+b"}, "a+b"},
		{"unicode", []string{"caf%C3%A9"}, "café"},
		{"empty segments preserved", []string{"a", "", "b", ""}, "a//b/"},
		{"case preserved", []string{"Docs", "INTRO"}, "Docs/INTRO"},
		{"double decode not applied", []string{"%2541"}, "%41"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReconstructURL(tt.segments)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestReconstructURL_InvalidEscape(t *testing.T) {
	tests := [][]string{
		{"bad%zz"},
		{"ok", "trailing%"},
		{"%FF"},
	}

	for _, segments := range tests {
		_, err := ReconstructURL(segments)
		if err == nil {
			t.Errorf("expected error for %v", segments)
			continue
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for %v, got %v", segments, err)
		}
	}
}

func TestSplitRouteSegments(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"", nil},
		{"/", nil},
		{"/docs", []string{"docs"}},
		{"/docs/intro", []string{"docs", "intro"}},
		{"/a%2Fb/c", []string{"a%2Fb", "c"}},
		{"/https:/" + "/example.com", []string{"https:", "", "example.com"}},
		{"/docs/", []string{"docs", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := SplitRouteSegments(tt.path)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d segments, got %d (%v)", len(tt.want), len(got), got)
			}
			if tt.want == nil && got != nil {
				t.Errorf("expected nil, got %v", got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}
